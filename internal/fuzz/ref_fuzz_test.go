package fuzztests

import (
	"errors"
	"testing"

	"shaderpp/internal/ref"
)

func FuzzReferenceParse(f *testing.F) {
	addStringSeeds(f, referenceSeeds)
	f.Fuzz(func(t *testing.T, input []byte) {
		raw := string(clip(input))
		r, err := ref.Parse(raw)
		if err != nil {
			if !errors.Is(err, ref.ErrInvalidReference) {
				t.Fatalf("Parse(%q) error %v is not ErrInvalidReference", raw, err)
			}
			return
		}
		if r.Path == "" {
			t.Fatalf("Parse(%q) accepted an empty path", raw)
		}
		once := ref.Clean(r.Path)
		if twice := ref.Clean(once); twice != once {
			t.Fatalf("Clean not idempotent: %q -> %q -> %q", r.Path, once, twice)
		}
		proto, _ := ref.Join(ref.Key{}, r)
		if proto == "" {
			t.Fatalf("Join(%q) produced no protocol", raw)
		}
	})
}
