package main

import (
	"github.com/spf13/cobra"

	"stepscan/internal/diagfmt"
)

func newHeaderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "header [flags] file.stp",
		Short: "Show the HEADER section and a section summary",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := readFormat(cmd)
			if err != nil {
				return err
			}
			doc, err := a.load(cmd, args[0], true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == "json" {
				if err := diagfmt.WriteJSON(out, diagfmt.HeaderOutput{Header: doc.Header, Summary: doc.Summary}); err != nil {
					return err
				}
			} else {
				diagfmt.FormatHeaderPretty(out, doc.Header, doc.Summary)
			}
			return finish(doc.Bag)
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}
