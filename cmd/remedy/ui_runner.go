package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"remedy/internal/driver"
	"remedy/internal/source"
	"remedy/internal/ui"
)

type diagnoseOutcome struct {
	results []driver.FileResult
	err     error
}

func runDiagnoseWithUI(ctx context.Context, title string, fs *source.FileSet, paths []string, opts driver.Options, metrics *driver.Metrics) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan diagnoseOutcome, 1)

	go func() {
		res, err := driver.DiagnoseAll(ctx, fs, paths, opts, metrics, func(ev driver.Event) {
			events <- ev
		})
		outcomeCh <- diagnoseOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
