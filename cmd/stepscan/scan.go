package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stepscan/internal/diagfmt"
	"stepscan/internal/driver"
	"stepscan/internal/metrics"
)

func newScanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [flags] PATH...",
		Short: "Scan many exchange files in parallel",
		Long: `Scan loads every file given, every *.stp, *.step and *.p21 file below the
directories given, and s3://bucket/key objects. Reports are cached by content`,
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(a, cmd, args)
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	cmd.Flags().Bool("cache", true, "reuse cached reports")
	cmd.Flags().String("cache-dir", "", "report cache directory (default $XDG_CACHE_HOME/stepscan)")
	cmd.Flags().Bool("clear-cache", false, "drop every cached report before scanning")
	cmd.Flags().Bool("no-pmi", false, "skip PMI extraction")
	cmd.Flags().String("metrics-textfile", "", "write Prometheus metrics to this node-exporter textfile")
	cmd.Flags().String("run-id", "", "run id for logs and reports (default: random UUID)")
	return cmd
}

func runScan(a *app, cmd *cobra.Command, args []string) error {
	format, err := readFormat(cmd)
	if err != nil {
		return err
	}
	uiFlag, _ := cmd.Flags().GetString("ui")
	mode, err := readTriState("ui", uiFlag)
	if err != nil {
		return err
	}
	clearCache, _ := cmd.Flags().GetBool("clear-cache")
	noPMI, _ := cmd.Flags().GetBool("no-pmi")
	runID, _ := cmd.Flags().GetString("run-id")

	inputs, err := driver.ListInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no exchange files found")
	}

	m := metrics.New()
	opts := driver.ScanOptions{
		Load:   a.loadOptions(),
		Jobs:   a.cfg.Scan.Jobs,
		Reader: a.fetcher,
		RunID:  runID,
	}
	opts.Load.SkipPMI = noPMI
	opts.Load.Metrics = m

	if a.cfg.Cache.Enabled {
		cache, err := driver.OpenReportCache(a.cfg.Cache.Dir)
		if err != nil {
			return fmt.Errorf("failed to open report cache: %w", err)
		}
		if clearCache {
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("failed to clear report cache: %w", err)
			}
		}
		opts.Cache = cache
		a.logger.Debug("report cache", zap.String("dir", cache.Dir()))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var res *driver.ScanResult
	// JSON на stdout и --quiet отключают прогресс в режиме auto
	useTUI := mode == stateOn || (mode == stateAuto && format != "json" && !a.quiet && mode.enabledFor(os.Stdout))
	if useTUI {
		res, err = runScanWithUI(ctx, "stepscan scan", inputs, opts)
	} else {
		res, err = driver.Scan(ctx, inputs, opts, nil)
	}
	if err != nil {
		return err
	}

	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := m.WriteTextfile(path); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := diagfmt.WriteJSON(out, res); err != nil {
			return err
		}
	} else {
		printScanPretty(out, res, a.quiet)
	}

	for i := range res.Reports {
		if res.Reports[i].Failed || res.Reports[i].Errors > 0 {
			return errDiagnostics
		}
	}
	return nil
}

func printScanPretty(out io.Writer, res *driver.ScanResult, quiet bool) {
	for i := range res.Reports {
		r := &res.Reports[i]
		if quiet && !r.Failed && r.Errors == 0 {
			continue
		}
		line := r.String()
		if r.Cached {
			line += " (cached)"
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "%d files, %d failed, %d from cache in %.1f ms (run %s)\n",
		len(res.Reports), res.Failed, res.CacheHits, res.DurationMS, res.RunID)
}
