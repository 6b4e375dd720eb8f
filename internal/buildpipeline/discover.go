package buildpipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shaderpp/internal/preprocess"
)

// DiscoverStages finds the stage sources of a program by base name:
// "shaders/basic" yields every existing basic.vert, basic.tesc, ... in
// pipeline order. An explicit stage extension on base is stripped first.
func DiscoverStages(base string) ([]StageRequest, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("empty program base name")
	}
	if _, ok := preprocess.StageFromPath(base); ok {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	var out []StageRequest
	for _, st := range preprocess.Stages {
		candidate := base + st.Ext()
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			out = append(out, StageRequest{Stage: st, Ref: filepath.ToSlash(candidate)})
		case err == nil, errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no %s.{vert,tesc,tese,geom,frag,comp} found", ErrNoStages, base)
	}
	return out, nil
}
