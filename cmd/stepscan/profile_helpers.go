package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stepscan/internal/prof"
)

// setupProfiling starts the profilers named by the persistent profiling
// flags. The returned cleanup is safe to call more than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Flags()
	var opts prof.Options
	opts.CPU, _ = flags.GetString("cpu-profile")
	opts.Mem, _ = flags.GetString("mem-profile")
	opts.Trace, _ = flags.GetString("runtime-trace")
	if !opts.Enabled() {
		return func() {}, nil
	}

	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "stepscan: profiling: %v\n", err)
		}
	}, nil
}
