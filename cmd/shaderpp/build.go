package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"shaderpp/internal/buildpipeline"
	"shaderpp/internal/compiler"
	"shaderpp/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [program...]",
	Short: "Preprocess, write and compile the stages of shader programs",
	Long: `Build programs listed in shaderpp.toml (all of them when none is named).
With --auto, each argument is a base path and the existing
<base>.vert/.tesc/.tese/.geom/.frag/.comp files become its stages.
When a compiler is configured, its log is translated back to the
original files through the source map.`,
	RunE: runBuild,
}

func init() {
	addSessionFlags(buildCmd)
	addDiagnosticFlags(buildCmd)
	buildCmd.Flags().Bool("auto", false, "treat arguments as base paths and discover their stages")
	buildCmd.Flags().StringP("output-dir", "o", "", "output directory (default: manifest [output].dir or build)")
	buildCmd.Flags().Bool("no-map", false, "do not write source map sidecars")
	buildCmd.Flags().StringArray("compiler", nil, "compiler argv, one flag per argument; {file} and {stage} are substituted")
	buildCmd.Flags().Bool("no-compile", false, "skip the compiler even if one is configured")
	buildCmd.Flags().Bool("print-commands", false, "echo compiler command lines")
	buildCmd.Flags().Int("jobs", 0, "max stages built in parallel (0=auto)")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	buildCmd.Flags().Bool("dedup", false, "collapse identical translated diagnostics")
}

type buildTarget struct {
	name   string
	stages []buildpipeline.StageRequest
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out, err := readDiagOutput(cmd)
	if err != nil {
		return err
	}
	auto, err := cmd.Flags().GetBool("auto")
	if err != nil {
		return fmt.Errorf("failed to get auto flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := parseSwitch("ui", uiValue)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	dedup, err := cmd.Flags().GetBool("dedup")
	if err != nil {
		return fmt.Errorf("failed to get dedup flag: %w", err)
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	targets, err := resolveTargets(sess.manifest, args, auto)
	if err != nil {
		return err
	}
	outputDir, maps, err := resolveOutput(cmd, sess.manifest)
	if err != nil {
		return err
	}
	comp, err := resolveCompiler(cmd, sess.manifest)
	if err != nil {
		return err
	}

	failed := false
	for _, target := range targets {
		req := &buildpipeline.Request{
			Program:        target.name,
			Stages:         target.stages,
			Engine:         sess.engine,
			Compiler:       comp,
			OutputDir:      outputDir,
			SourceMaps:     maps,
			Jobs:           jobs,
			Dedup:          dedup,
			MaxDiagnostics: out.maxDiag,
			Progress:       traceProgress(ctx),
		}
		var res *buildpipeline.Result
		if mode.enabled(os.Stdout) && out.format == "pretty" && !quiet(cmd) {
			res, err = runBuildWithUI(ctx, "build "+programTitle(target, req), req)
		} else {
			res, err = buildpipeline.Build(ctx, req)
		}
		if err != nil && res == nil {
			return err
		}
		if reportErr := reportBuild(cmd, out, res); reportErr != nil {
			return reportErr
		}
		if err != nil {
			return err
		}
		if res.Failed() {
			failed = true
		}
	}
	if failed {
		return errReported
	}
	return nil
}

func programTitle(t buildTarget, req *buildpipeline.Request) string {
	if t.name != "" {
		return t.name
	}
	return buildpipeline.ProgramName(req.Stages[0].Ref)
}

func resolveTargets(m *project.Manifest, args []string, auto bool) ([]buildTarget, error) {
	if auto {
		if len(args) == 0 {
			return nil, fmt.Errorf("--auto needs at least one base path")
		}
		targets := make([]buildTarget, 0, len(args))
		for _, base := range args {
			stages, err := buildpipeline.DiscoverStages(base)
			if err != nil {
				return nil, err
			}
			targets = append(targets, buildTarget{name: filepath.Base(base), stages: stages})
		}
		return targets, nil
	}
	if m == nil {
		return nil, fmt.Errorf("no %s found; use --auto <base> or run `shaderpp init`", project.ManifestName)
	}
	names := args
	if len(names) == 0 {
		names = m.ProgramNames()
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: no [programs] defined", m.Path)
	}
	targets := make([]buildTarget, 0, len(names))
	for _, name := range names {
		refs, err := m.Program(name)
		if err != nil {
			return nil, err
		}
		stages := make([]buildpipeline.StageRequest, len(refs))
		for i, r := range refs {
			stages[i] = buildpipeline.StageRequest{Stage: r.Stage, Ref: r.Ref}
		}
		targets = append(targets, buildTarget{name: name, stages: stages})
	}
	return targets, nil
}

func resolveOutput(cmd *cobra.Command, m *project.Manifest) (dir string, maps bool, err error) {
	dir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return "", false, fmt.Errorf("failed to get output-dir flag: %w", err)
	}
	noMap, err := cmd.Flags().GetBool("no-map")
	if err != nil {
		return "", false, fmt.Errorf("failed to get no-map flag: %w", err)
	}
	maps = !noMap
	if m != nil {
		if dir == "" {
			dir = m.OutputDir()
		}
		maps = maps && m.WriteSourceMaps()
	}
	if dir == "" {
		dir = "build"
	}
	return dir, maps, nil
}

func resolveCompiler(cmd *cobra.Command, m *project.Manifest) (compiler.Compiler, error) {
	skip, err := cmd.Flags().GetBool("no-compile")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-compile flag: %w", err)
	}
	if skip {
		return nil, nil
	}
	argv, err := cmd.Flags().GetStringArray("compiler")
	if err != nil {
		return nil, fmt.Errorf("failed to get compiler flag: %w", err)
	}
	if len(argv) == 0 && m != nil {
		argv = m.Config.Compiler.Command
	}
	if len(argv) == 0 {
		return nil, nil
	}
	echo, err := cmd.Flags().GetBool("print-commands")
	if err != nil {
		return nil, fmt.Errorf("failed to get print-commands flag: %w", err)
	}
	e := &compiler.Exec{Command: argv}
	if echo {
		e.Echo = cmd.ErrOrStderr()
	}
	return e, nil
}

// reportBuild prints diagnostics stage by stage so pretty output can quote
// the fragments each stage loaded.
func reportBuild(cmd *cobra.Command, out diagOutput, res *buildpipeline.Result) error {
	w := cmd.ErrOrStderr()
	if out.format == "json" {
		bag := res.Diagnostics(out.maxDiag)
		if timingsEnabled(cmd) {
			bag.Add(buildTimer(res).Diagnostic())
		}
		return out.render(cmd.OutOrStdout(), bag, nil)
	}

	for i := range res.Stages {
		st := &res.Stages[i]
		if err := out.render(w, st.Bag, st.FileSet()); err != nil {
			return err
		}
		if st.Translation != nil {
			if err := st.Translation.Err(); err != nil && !quiet(cmd) {
				fmt.Fprintf(w, "%s: %v\n", st.Ref, err)
			}
		}
	}

	if !quiet(cmd) {
		for i := range res.Stages {
			st := &res.Stages[i]
			status := "ok"
			switch {
			case errors.Is(st.Err, context.Canceled):
				status = "canceled"
			case st.Failed():
				status = "failed"
			}
			line := fmt.Sprintf("%-16s %-8s %s", st.Stage, status, st.Ref)
			if st.OutputPath != "" {
				line += " -> " + st.OutputPath
			}
			fmt.Fprintln(w, line)
		}
		summary := fmt.Sprintf("%s: %d stage(s) in %s", res.Program, len(res.Stages), res.Elapsed.Round(time.Millisecond))
		if bag := res.Diagnostics(0); bag.HasErrors() {
			summary += fmt.Sprintf(", %d diagnostic(s)", bag.Len())
		}
		fmt.Fprintln(w, summary)
	}
	printTimings(cmd, buildTimer(res))
	return nil
}
