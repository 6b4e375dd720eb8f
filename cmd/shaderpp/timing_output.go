package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shaderpp/internal/buildpipeline"
	"shaderpp/internal/observ"
)

func timingsEnabled(cmd *cobra.Command) bool {
	on, err := cmd.Root().PersistentFlags().GetBool("timings")
	return err == nil && on
}

func printTimings(cmd *cobra.Command, timer *observ.Timer) {
	if timer == nil || !timingsEnabled(cmd) {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
}

// buildTimer folds per-phase build timings (summed over stages) into a Timer.
func buildTimer(res *buildpipeline.Result) *observ.Timer {
	timer := observ.NewTimer()
	if res == nil {
		return timer
	}
	for _, p := range buildpipeline.Phases {
		if res.Timings.Has(p) {
			timer.Record(string(p), res.Timings.Duration(p), fmt.Sprintf("%d stages", len(res.Stages)))
		}
	}
	return timer
}
