package fuzztests

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shaderpp/internal/loader"
	"shaderpp/internal/preprocess"
	"shaderpp/internal/ref"
	"shaderpp/internal/testkit"
)

func newEngine(t testing.TB) *preprocess.Engine {
	r := loader.NewRegistry()
	if _, err := r.Replace(ref.LocalProtocol, loader.NewMemory(fuzzFiles)); err != nil {
		t.Fatal(err)
	}
	return preprocess.NewEngine(r, preprocess.WithMaxDepth(16))
}

func FuzzExpandString(f *testing.F) {
	addStringSeeds(f, sourceSeeds)
	f.Fuzz(func(t *testing.T, input []byte) {
		text := string(clip(input))
		unit, err := newEngine(t).ExpandString(context.Background(), "<fuzz>", text, preprocess.StageFragment)
		if err != nil {
			known := errors.Is(err, preprocess.ErrCyclicInclude) ||
				errors.Is(err, preprocess.ErrIncludeDepth) ||
				errors.Is(err, ref.ErrInvalidReference) ||
				errors.Is(err, loader.ErrUnknownProtocol)
			var le *loader.LoadError
			if !known && !errors.As(err, &le) {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			return
		}
		if err := testkit.CheckMapInvariants(unit.Text, unit.Map, unit.FileSet()); err != nil {
			t.Fatal(err)
		}
		for _, f := range unit.Files() {
			if strings.HasSuffix(f.Name, "c.glsl") && strings.Count(unit.Text, "float c;") == 0 {
				t.Fatalf("c.glsl registered but not merged:\n%s", unit.Text)
			}
		}
		if unit.Text != "" && !strings.HasSuffix(unit.Text, "\n") {
			t.Fatalf("merged text %q lacks trailing newline", unit.Text)
		}
	})
}
