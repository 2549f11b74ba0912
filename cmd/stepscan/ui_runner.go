package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"stepscan/internal/driver"
	"stepscan/internal/ui"
)

type scanOutcome struct {
	result *driver.ScanResult
	err    error
}

// runScanWithUI drives driver.Scan behind the progress view. Quitting the
// view early (Ctrl-C) cancels the scan.
func runScanWithUI(ctx context.Context, title string, inputs []string, opts driver.ScanOptions) (*driver.ScanResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan scanOutcome, 1)

	go func() {
		res, err := driver.Scan(ctx, inputs, opts, driver.ChannelSink{Ch: events})
		outcomeCh <- scanOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, inputs, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()

	// view is gone; keep the scan from blocking on the channel
	go func() {
		for range events {
		}
	}()
	var outcome scanOutcome
	select {
	case outcome = <-outcomeCh:
	default:
		cancel()
		outcome = <-outcomeCh
	}
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
