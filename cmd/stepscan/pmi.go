package main

import (
	"github.com/spf13/cobra"

	"stepscan/internal/diagfmt"
	"stepscan/internal/pmi"
)

func newPMICmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pmi [flags] file.stp",
		Short: "Extract semantic and presentation PMI",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := readFormat(cmd)
			if err != nil {
				return err
			}
			groups, _ := cmd.Flags().GetBool("groups")
			doc, err := a.load(cmd, args[0], false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				payload := diagfmt.PMIOutput{Result: doc.PMI}
				if groups {
					payload.Groups = pmi.Groups(doc.PMI.Polylines)
					payload.GroupTypes = pmi.GroupTypes(payload.Groups)
				}
				if err := diagfmt.WriteJSON(out, payload); err != nil {
					return err
				}
			} else {
				diagfmt.FormatPMIPretty(out, doc.PMI, groups)
			}
			return finish(doc.Bag)
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Bool("groups", false, "group polylines by annotation name")
	return cmd
}
