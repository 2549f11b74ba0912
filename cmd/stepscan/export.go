package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stepscan/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [flags] file.stp --out DIR",
		Short: "Write the entity table and PMI as Arrow IPC files",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("out")
			if dir == "" {
				return usagef("--out is required")
			}
			noPMI, _ := cmd.Flags().GetBool("no-pmi")
			doc, err := a.load(cmd, args[0], noPMI)
			if err != nil {
				return err
			}
			paths, err := export.WriteDir(dir, exportStem(args[0]), doc.Table, doc.PMI)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			if !a.quiet {
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
			}
			return finish(doc.Bag)
		},
	}
	cmd.Flags().String("out", "", "output directory")
	cmd.Flags().Bool("no-pmi", false, "export only the entity table")
	return cmd
}

// exportStem is the input base name without its extension; s3 keys work too.
func exportStem(path string) string {
	base := filepath.Base(path)
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
