package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"zkc/internal/driver"
	"zkc/internal/ui"
)

type compileOutcome struct {
	results []*driver.CompileResult
	err     error
}

// runCompileWithUI runs CompileAll while a Bubble Tea model renders its
// progress events.
func runCompileWithUI(ctx context.Context, title string, reqs []*driver.CompileRequest, jobs int) ([]*driver.CompileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	units := make([]string, 0, len(reqs))
	withSink := make([]*driver.CompileRequest, 0, len(reqs))
	for _, req := range reqs {
		reqCopy := *req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		withSink = append(withSink, &reqCopy)
		units = append(units, req.Unit())
	}

	go func() {
		res, err := driver.CompileAll(ctx, withSink, jobs)
		outcomeCh <- compileOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, units, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// модель могла выйти раньше (Ctrl+C): дочитываем события, чтобы воркеры не заблокировались
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
