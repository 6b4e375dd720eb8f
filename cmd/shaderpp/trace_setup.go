package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"shaderpp/internal/trace"
)

type traceOptions struct {
	output    string
	level     trace.Level
	mode      trace.StorageMode
	ringSize  int
	heartbeat time.Duration
}

func readTraceOptions(flags *pflag.FlagSet) (traceOptions, error) {
	var (
		opts        traceOptions
		level, mode string
		err         error
	)
	if opts.output, err = flags.GetString("trace"); err != nil {
		return opts, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if level, err = flags.GetString("trace-level"); err != nil {
		return opts, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if mode, err = flags.GetString("trace-mode"); err != nil {
		return opts, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if opts.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return opts, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if opts.heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return opts, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	if opts.level, err = trace.ParseLevel(level); err != nil {
		return opts, err
	}
	// --trace без уровня включает phase
	if opts.level == trace.LevelOff && opts.output != "" && !flags.Changed("trace-level") {
		opts.level = trace.LevelPhase
	}
	if opts.level != trace.LevelOff {
		if opts.mode, err = trace.ParseMode(mode); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// setupTracing installs the tracer chosen by the --trace* flags into the
// command context and returns the function that flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	opts, err := readTraceOptions(cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	if opts.level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      opts.level,
		Mode:       opts.mode,
		OutputPath: opts.output,
		RingSize:   opts.ringSize,
		Heartbeat:  opts.heartbeat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	heartbeat := trace.StartHeartbeat(tracer, opts.heartbeat)
	return func() {
		heartbeat.Stop()
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}

// dumpTraceRing prints the ring buffer so the events leading up to a panic
// are not lost.
func dumpTraceRing(cmd *cobra.Command) {
	ring := trace.FindRing(trace.FromContext(cmd.Context()))
	if ring == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "trace: last events before panic:")
	if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
		fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
	}
}
