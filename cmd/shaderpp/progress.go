package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"shaderpp/internal/buildpipeline"
	"shaderpp/internal/trace"
	"shaderpp/internal/ui"
)

// runBuildWithUI builds req while a Bubble Tea program renders its progress.
func runBuildWithUI(ctx context.Context, title string, req *buildpipeline.Request) (*buildpipeline.Result, error) {
	type outcome struct {
		res *buildpipeline.Result
		err error
	}
	events := make(chan buildpipeline.Event, 256)
	done := make(chan outcome, 1)

	run := *req
	run.Progress = buildpipeline.ChannelSink{Ch: events}
	go func() {
		defer close(events)
		res, err := buildpipeline.Build(ctx, &run)
		done <- outcome{res, err}
	}()

	model := ui.NewProgressModel(title, req.Files(), events)
	_, uiErr := tea.NewProgram(model, tea.WithOutput(os.Stdout)).Run()
	if uiErr != nil {
		// UI умер, дочитываем события, чтобы Build не встал
		for range events {
		}
	}
	o := <-done
	return o.res, errors.Join(uiErr, o.err)
}

// traceProgress turns build events into trace points under the current span.
func traceProgress(ctx context.Context) buildpipeline.ProgressSink {
	tracer := trace.FromContext(ctx)
	if !tracer.Enabled() {
		return nil
	}
	parent := trace.CurrentSpan(ctx)
	return buildpipeline.SinkFunc(func(ev buildpipeline.Event) {
		name := "program"
		if ev.File != "" {
			name = ev.File
		}
		detail := string(ev.Phase) + " " + string(ev.Status)
		if ev.Err != nil {
			detail += ": " + ev.Err.Error()
		}
		trace.Point(tracer, trace.ScopeFragment, name, detail, parent)
	})
}
