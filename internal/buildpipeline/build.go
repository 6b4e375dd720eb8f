// Package buildpipeline builds shader programs: every stage is expanded,
// optionally written out with its source map, compiled, and the compiler log
// translated back to original files. Stages run concurrently and share one
// read-only loader registry.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"shaderpp/internal/compiler"
	"shaderpp/internal/diag"
	"shaderpp/internal/preprocess"
	"shaderpp/internal/source"
	"shaderpp/internal/srcmap"
	"shaderpp/internal/trace"
	"shaderpp/internal/translate"
)

var (
	ErrNoStages       = errors.New("program has no stages")
	ErrDuplicateStage = errors.New("stage listed twice")
)

// StageRequest names the root source of one stage.
type StageRequest struct {
	Stage preprocess.Stage
	Ref   string
}

// Request configures one program build.
type Request struct {
	// Program names the outputs; defaults to the base name of the first stage.
	Program string
	Stages  []StageRequest
	Engine  *preprocess.Engine
	// Compiler is optional; without it the build stops after writing units.
	Compiler compiler.Compiler
	// OutputDir receives <program><ext> files; "" writes nothing.
	OutputDir  string
	SourceMaps bool
	// Jobs bounds concurrent stages; <= 0 means GOMAXPROCS.
	Jobs int
	// Dedup collapses identical translated diagnostics within a stage.
	Dedup bool
	// MaxDiagnostics caps each stage bag; <= 0 means no practical limit.
	MaxDiagnostics int
	Progress       ProgressSink
}

// Files returns the stage references in request order, as reported in events.
func (r *Request) Files() []string {
	out := make([]string, len(r.Stages))
	for i, s := range r.Stages {
		out[i] = s.Ref
	}
	return out
}

// StageResult is the outcome of one stage.
type StageResult struct {
	Stage       preprocess.Stage
	Ref         string
	Unit        *preprocess.Unit
	OutputPath  string
	MapPath     string
	Log         string
	Translation *translate.Result
	Bag         *diag.Bag
	Timings     Timings
	// Err is the failure that stopped the stage early, if any.
	Err error
}

// Failed reports whether the stage produced errors.
func (s *StageResult) Failed() bool {
	return s.Err != nil || (s.Bag != nil && s.Bag.HasErrors())
}

// FileSet returns the fragments loaded for the stage, or nil when expansion failed.
func (s *StageResult) FileSet() *source.FileSet {
	if s.Unit == nil {
		return nil
	}
	return s.Unit.FileSet()
}

// Result collects every stage in request order.
type Result struct {
	Program string
	Stages  []StageResult
	Timings Timings
	Elapsed time.Duration
}

// Failed reports whether any stage failed.
func (r *Result) Failed() bool {
	for i := range r.Stages {
		if r.Stages[i].Failed() {
			return true
		}
	}
	return false
}

func newBag(max int) *diag.Bag {
	if max <= 0 {
		max = math.MaxUint16
	}
	return diag.NewBag(max)
}

// Diagnostics merges the stage bags; max <= 0 keeps everything.
func (r *Result) Diagnostics(max int) *diag.Bag {
	out := newBag(max)
	for i := range r.Stages {
		if r.Stages[i].Bag != nil {
			out.Merge(r.Stages[i].Bag)
		}
	}
	return out
}

// Build runs every stage of req. Stage failures are reported in the result;
// the returned error covers invalid requests and cancellation only.
func Build(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || req.Engine == nil {
		return nil, fmt.Errorf("missing build request or engine")
	}
	if len(req.Stages) == 0 {
		return nil, ErrNoStages
	}
	seen := make(map[preprocess.Stage]string, len(req.Stages))
	for _, s := range req.Stages {
		if prev, ok := seen[s.Stage]; ok {
			return nil, fmt.Errorf("%w: %s (%s and %s)", ErrDuplicateStage, s.Stage, prev, s.Ref)
		}
		seen[s.Stage] = s.Ref
	}

	program := req.Program
	if program == "" {
		program = ProgramName(req.Stages[0].Ref)
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, span := trace.Start(ctx, trace.ScopeCommand, "build:"+program)
	span.WithExtra("stages", fmt.Sprint(len(req.Stages)))
	span.WithExtra("max_depth", fmt.Sprint(req.Engine.MaxDepth()))
	start := time.Now()

	res := &Result{Program: program, Stages: make([]StageResult, len(req.Stages))}
	whole := progress{sink: req.Progress}
	whole.send(PhasePreprocess, StatusWorking, nil, 0)
	for _, ref := range req.Files() {
		progress{req.Progress, ref}.send(PhasePreprocess, StatusQueued, nil, 0)
	}

	if req.OutputDir != "" {
		if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
			span.Fail(err)
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, s := range req.Stages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				res.Stages[i] = StageResult{Stage: s.Stage, Ref: s.Ref, Err: err, Bag: newBag(req.MaxDiagnostics)}
				progress{req.Progress, s.Ref}.send(PhasePreprocess, StatusError, err, 0)
				return err
			}
			res.Stages[i] = buildStage(gctx, req, program, s)
			return nil
		})
	}
	waitErr := g.Wait()

	for i := range res.Stages {
		for _, p := range Phases {
			if res.Stages[i].Timings.Has(p) {
				res.Timings.Add(p, res.Stages[i].Timings.Duration(p))
			}
		}
	}
	res.Elapsed = time.Since(start)
	if res.Failed() {
		whole.send(PhaseTranslate, StatusError, nil, res.Elapsed)
		span.End("failed")
	} else {
		whole.send(PhaseTranslate, StatusDone, nil, res.Elapsed)
		span.End("ok")
	}
	return res, waitErr
}

func buildStage(ctx context.Context, req *Request, program string, s StageRequest) StageResult {
	out := StageResult{Stage: s.Stage, Ref: s.Ref, Bag: newBag(req.MaxDiagnostics)}
	ctx, span := trace.Start(ctx, trace.ScopeUnit, "stage:"+s.Stage.String())
	span.WithExtra("ref", s.Ref)
	defer func() {
		if out.Err != nil {
			span.Fail(out.Err)
		} else if out.Failed() {
			span.End("failed")
		} else {
			span.End("ok")
		}
	}()

	prog := progress{req.Progress, s.Ref}
	fail := func(phase Phase, err error, elapsed time.Duration) StageResult {
		out.Err = err
		prog.send(phase, StatusError, err, elapsed)
		return out
	}

	// preprocess
	prog.send(PhasePreprocess, StatusWorking, nil, 0)
	t0 := time.Now()
	unit, err := req.Engine.Expand(ctx, s.Ref, s.Stage)
	out.Timings.Set(PhasePreprocess, time.Since(t0))
	if err != nil {
		out.Bag.Add(DiagnosticFromError(err, s.Ref))
		return fail(PhasePreprocess, err, time.Since(t0))
	}
	out.Unit = unit

	// write
	if req.OutputDir != "" {
		prog.send(PhaseWrite, StatusWorking, nil, 0)
		t0 = time.Now()
		outPath, mapPath, err := writeUnit(req.OutputDir, program, unit, req.SourceMaps)
		out.Timings.Set(PhaseWrite, time.Since(t0))
		if err != nil {
			out.Bag.Add(diag.Errorf(diag.IOLoadFileError, source.Location{Path: outPath}, "write merged unit: %v", err))
			return fail(PhaseWrite, err, time.Since(t0))
		}
		out.OutputPath, out.MapPath = outPath, mapPath
	}

	if req.Compiler == nil {
		prog.send(PhaseWrite, StatusDone, nil, out.Timings.Sum(Phases...))
		return out
	}

	// compile
	prog.send(PhaseCompile, StatusWorking, nil, 0)
	t0 = time.Now()
	log, compileErr := req.Compiler.Compile(ctx, unit)
	out.Timings.Set(PhaseCompile, time.Since(t0))
	out.Log = log
	if compileErr != nil && !errors.Is(compileErr, compiler.ErrCompileFailed) {
		out.Bag.Add(diag.NewError(diag.CmpFailed, source.Location{Path: unit.Root}, compileErr.Error()))
		return fail(PhaseCompile, compileErr, time.Since(t0))
	}

	// translate
	prog.send(PhaseTranslate, StatusWorking, nil, 0)
	t0 = time.Now()
	tr := translate.New(unit.Map).Translate(ctx, log)
	out.Translation = tr
	var rep diag.Reporter = diag.BagReporter{Bag: out.Bag}
	if req.Dedup {
		rep = diag.Dedup(rep)
	}
	tr.Report(rep)
	out.Timings.Set(PhaseTranslate, time.Since(t0))

	if compileErr != nil {
		if !tr.HasErrors() {
			out.Bag.Add(diag.NewError(diag.CmpFailed, source.Location{Path: unit.Root}, compileErr.Error()))
		}
		return fail(PhaseCompile, compileErr, out.Timings.Sum(Phases...))
	}
	if out.Bag.HasErrors() {
		prog.send(PhaseTranslate, StatusError, nil, out.Timings.Sum(Phases...))
		return out
	}
	prog.send(PhaseTranslate, StatusDone, nil, out.Timings.Sum(Phases...))
	return out
}

// writeUnit stores the merged text as <dir>/<program><ext> and, when maps is
// set, the sidecar next to it.
func writeUnit(dir, program string, unit *preprocess.Unit, maps bool) (outPath, mapPath string, err error) {
	ext := unit.Stage.Ext()
	if ext == "" {
		ext = ".glsl"
	}
	outPath = filepath.Join(dir, program+ext)
	if err := os.WriteFile(outPath, []byte(unit.Text), 0o644); err != nil { //nolint:gosec // build output is meant to be readable
		return outPath, "", fmt.Errorf("write %s: %w", outPath, err)
	}
	if !maps {
		return outPath, "", nil
	}
	mapPath = srcmap.SidecarPath(outPath)
	if err := srcmap.WriteFile(mapPath, unit.Map); err != nil {
		return outPath, mapPath, fmt.Errorf("write %s: %w", mapPath, err)
	}
	return outPath, mapPath, nil
}

// ProgramName derives a program name from a stage reference: the file name without extension.
func ProgramName(raw string) string {
	s := strings.ReplaceAll(raw, `\`, "/")
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		s = s[:i]
	}
	if s == "" {
		return "program"
	}
	return s
}
