package buildpipeline

import (
	"errors"

	"shaderpp/internal/compiler"
	"shaderpp/internal/diag"
	"shaderpp/internal/loader"
	"shaderpp/internal/preprocess"
	"shaderpp/internal/ref"
	"shaderpp/internal/source"
)

// CodeForError picks the diagnostic code for a preprocessing or compile failure.
func CodeForError(err error) diag.Code {
	switch {
	case err == nil:
		return diag.UnknownCode
	case errors.Is(err, preprocess.ErrCyclicInclude):
		return diag.PPCyclicInclude
	case errors.Is(err, preprocess.ErrIncludeDepth):
		return diag.PPIncludeDepth
	case errors.Is(err, loader.ErrUnknownProtocol):
		return diag.PPUnknownProtocol
	case errors.Is(err, loader.ErrDuplicateProtocol):
		return diag.PPDuplicateProtocol
	case errors.Is(err, ref.ErrInvalidReference):
		return diag.PPInvalidReference
	case errors.Is(err, compiler.ErrCompileFailed), errors.Is(err, compiler.ErrNoCommand):
		return diag.CmpFailed
	}
	var le *loader.LoadError
	if errors.As(err, &le) {
		return diag.PPLoadError
	}
	return diag.UnknownCode
}

// DiagnosticFromError converts an error returned by preprocess.Engine into a
// diagnostic. The directive that failed becomes the primary location and each
// outer include step a note; root is used when the error carries no chain.
func DiagnosticFromError(err error, root string) diag.Diagnostic {
	var ie *preprocess.IncludeError
	if !errors.As(err, &ie) || len(ie.Chain) == 0 {
		return diag.NewError(CodeForError(err), source.Location{Path: root}, err.Error())
	}
	last := ie.Chain[len(ie.Chain)-1]
	d := diag.NewError(CodeForError(ie.Err), source.Location{Path: last.Ref, Line: last.Line}, ie.Err.Error())
	for i := len(ie.Chain) - 2; i >= 0; i-- {
		f := ie.Chain[i]
		d = d.WithNote(source.Location{Path: f.Ref, Line: f.Line}, "included from here")
	}
	return d
}
