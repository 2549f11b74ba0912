package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stepscan/internal/config"
	"stepscan/internal/diag"
	"stepscan/internal/diagfmt"
	"stepscan/internal/driver"
	"stepscan/internal/fetch"
	"stepscan/internal/logging"
	"stepscan/internal/source"
)

// app holds what PersistentPreRunE resolved for the running command.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	fetcher *fetch.Fetcher

	color    triState
	quiet    bool
	timings  bool
	pathMode diagfmt.PathMode

	cleanup func()
}

func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()

	colorFlag, _ := flags.GetString("color")
	color, err := readTriState("color", colorFlag)
	if err != nil {
		return err
	}
	a.color = color
	a.quiet, _ = flags.GetBool("quiet")
	a.timings, _ = flags.GetBool("timings")
	pathMode, _ := flags.GetString("path-mode")
	switch pathMode {
	case "auto", "absolute", "relative", "basename":
	default:
		return usagef("invalid --path-mode value %q", pathMode)
	}
	a.pathMode = diagfmt.ParsePathMode(pathMode)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.logger = logger.With(zap.String("command", cmd.Name()))
	if cfg.Path != "" {
		a.logger.Debug("config loaded", zap.String("path", cfg.Path))
	}

	a.fetcher = fetch.New(fetch.Options{
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		PathStyle:       cfg.S3.PathStyle,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	})

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	a.cleanup = cleanup
	return nil
}

// loadConfig reads --config or the discovered stepscan.toml, then overlays
// changed flags and STEPSCAN_* variables.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, usageError{err}
	}
	cfg = config.Overlay(cfg, config.NewViper(cmd.Flags()))
	if err := cfg.Validate(); err != nil {
		return config.Config{}, usageError{err}
	}
	return cfg, nil
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) useColor(w io.Writer) bool {
	return a.color.enabledFor(w)
}

func (a *app) loadOptions() driver.Options {
	opts := driver.DefaultOptions()
	opts.MaxDiagnostics = a.cfg.Scan.MaxDiagnostics
	opts.MaxDepth = a.cfg.Scan.MaxDepth
	opts.Jobs = a.cfg.Scan.Jobs
	opts.SkipBadEntities = a.cfg.Scan.SkipBadEntities
	opts.Logger = a.logger
	return opts
}

// load reads one local file or s3:// object and prints its diagnostics to
// stderr. A structural failure is returned as an error.
func (a *app) load(cmd *cobra.Command, path string, skipPMI bool) (*driver.Document, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts := a.loadOptions()
	opts.SkipPMI = skipPMI

	var (
		doc *driver.Document
		err error
	)
	if fetch.IsRemote(path) {
		var data []byte
		data, err = a.fetcher.Read(ctx, path)
		if err == nil {
			doc, err = driver.LoadBytes(ctx, path, data, opts)
		}
	} else {
		doc, err = driver.Load(ctx, path, opts)
	}
	if err != nil {
		return nil, err
	}

	a.printDiagnostics(cmd.ErrOrStderr(), doc.Bag, doc.FileSet)
	if a.timings {
		_ = doc.Timing.Write(cmd.ErrOrStderr())
	}
	return doc, nil
}

func (a *app) printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	if a.quiet && !bag.HasErrors() {
		return
	}
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     a.useColor(w),
		Context:   1,
		PathMode:  a.pathMode,
		ShowNotes: true,
	})
}

// finish turns error diagnostics into exit status 1 once output is written.
func finish(bag *diag.Bag) error {
	if bag != nil && bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func readFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "pretty", "json":
		return format, nil
	default:
		return "", usagef("unsupported format %q (must be pretty or json)", format)
	}
}
