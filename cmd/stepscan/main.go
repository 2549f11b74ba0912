package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"stepscan/internal/version"
)

// main builds the command tree and maps the returned error to the exit status:
// 0 success, 1 load failure or error diagnostics, 2 usage.
func main() {
	root, a := newRootCmd()
	err := root.Execute()
	a.close()
	os.Exit(exitCode(err))
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "stepscan",
		Short:         "ISO 10303-21 (STEP) reader and PMI extractor",
		Long:          `stepscan parses STEP exchange files, resolves the entity graph and reports header and PMI content`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to keep per file")
	pf.String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	pf.String("config", "", "path to stepscan.toml (default: search upward from the working directory)")
	pf.String("log-level", "warn", "log level (debug|info|warn|error)")
	pf.String("log-format", "console", "log encoding (console|json)")
	pf.Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	pf.Int("max-depth", 256, "maximum list nesting in attribute values")
	pf.Bool("skip-bad-entities", true, "drop entities whose attributes do not parse instead of failing")
	pf.String("s3-region", "", "AWS region for s3:// inputs")
	pf.String("s3-endpoint", "", "custom S3 endpoint, e.g. a MinIO URL")
	pf.Bool("s3-path-style", false, "use path-style S3 addressing")
	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file on exit")
	pf.String("runtime-trace", "", "write runtime trace to file")

	root.AddCommand(
		newTokenizeCmd(a),
		newHeaderCmd(a),
		newEntitiesCmd(a),
		newPMICmd(a),
		newScanCmd(a),
		newExportCmd(a),
		newVersionCmd(),
	)
	return root, a
}

// usageError marks bad flags, arguments and option values.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// errDiagnostics is returned when a command finished but reported errors.
var errDiagnostics = errors.New("errors reported")

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(os.Stderr, "stepscan: %v\n", err)
		return 2
	}
	if !errors.Is(err, errDiagnostics) {
		fmt.Fprintf(os.Stderr, "stepscan: %v\n", err)
	}
	return 1
}

// exactArgs wraps cobra.ExactArgs so a wrong argument count exits with 2.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
