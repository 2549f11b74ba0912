package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stepscan/internal/diagfmt"
	"stepscan/internal/driver"
)

func newTokenizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] file.stp",
		Short: "Tokenize an exchange file",
		Long:  `Tokenize breaks an exchange file into Part 21 tokens, comments and whitespace included`,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenize(a, cmd, args[0])
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runTokenize(a *app, cmd *cobra.Command, filePath string) error {
	format, err := readFormat(cmd)
	if err != nil {
		return err
	}

	result, err := driver.Tokenize(filePath, a.cfg.Scan.MaxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	a.printDiagnostics(cmd.ErrOrStderr(), result.Bag, result.FileSet)

	out := cmd.OutOrStdout()
	if format == "json" {
		err = diagfmt.FormatTokensJSON(out, result.Tokens, result.FileSet)
	} else {
		err = diagfmt.FormatTokensPretty(out, result.Tokens, result.FileSet)
	}
	if err != nil {
		return err
	}
	return finish(result.Bag)
}
