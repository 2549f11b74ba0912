package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"stepscan/internal/diagfmt"
	"stepscan/internal/version"
)

type versionOptions struct {
	format      string
	showHash    bool
	showMessage bool
	showDate    bool
	color       bool
}

type versionPayload struct {
	Tool string `json:"tool"`
	version.Info
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show stepscan build information",
		Args:  exactArgs(0),
		// version не нуждается в конфиге и логгере
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := readFormat(cmd)
			if err != nil {
				return err
			}
			full, _ := cmd.Flags().GetBool("full")
			hash, _ := cmd.Flags().GetBool("hash")
			message, _ := cmd.Flags().GetBool("message")
			date, _ := cmd.Flags().GetBool("date")
			colorFlag, _ := cmd.Flags().GetString("color")
			opts := versionOptions{
				format:      format,
				showHash:    hash || full,
				showMessage: message || full,
				showDate:    date || full,
				color:       colorFlag == "on",
			}

			info := collectVersionInfo()
			if opts.format == "json" {
				return renderVersionJSON(cmd.OutOrStdout(), info, opts)
			}
			renderVersionPretty(cmd.OutOrStdout(), info, opts)
			return nil
		},
	}
	cmd.Flags().Bool("hash", false, "include git commit hash")
	cmd.Flags().Bool("message", false, "include git commit message")
	cmd.Flags().Bool("date", false, "include build timestamp")
	cmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func collectVersionInfo() version.Info {
	info := version.Current()
	info.Version = strings.TrimSpace(info.Version)
	if info.Version == "" {
		info.Version = "dev"
	}
	info.GitCommit = strings.TrimSpace(info.GitCommit)
	info.GitMessage = strings.TrimSpace(info.GitMessage)
	info.BuildDate = strings.TrimSpace(info.BuildDate)
	return info
}

func renderVersionPretty(out io.Writer, info version.Info, opts versionOptions) {
	v := info.Version
	if opts.color && v == version.Version {
		v = version.Colored(true)
	}
	fmt.Fprintf(out, "stepscan %s\n", v)
	if opts.showHash {
		fmt.Fprintf(out, "commit:  %s\n", valueOrUnknown(info.GitCommit))
	}
	if opts.showMessage {
		fmt.Fprintf(out, "message: %s\n", valueOrUnknown(info.GitMessage))
	}
	if opts.showDate {
		fmt.Fprintf(out, "built:   %s\n", valueOrUnknown(info.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, info version.Info, opts versionOptions) error {
	payload := versionPayload{Tool: "stepscan", Info: version.Info{Version: info.Version}}
	if opts.showHash {
		payload.GitCommit = valueOrUnknown(info.GitCommit)
	}
	if opts.showMessage {
		payload.GitMessage = valueOrUnknown(info.GitMessage)
	}
	if opts.showDate {
		payload.BuildDate = valueOrUnknown(info.BuildDate)
	}
	return diagfmt.WriteJSON(out, payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
