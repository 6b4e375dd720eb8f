package preprocess

import (
	"fmt"
	"path"
	"strings"
)

// Stage tags a compilation unit with the pipeline stage it feeds.
type Stage string

const (
	StageUnknown        Stage = ""
	StageVertex         Stage = "vertex"
	StageTessControl    Stage = "tess_control"
	StageTessEvaluation Stage = "tess_evaluation"
	StageGeometry       Stage = "geometry"
	StageFragment       Stage = "fragment"
	StageCompute        Stage = "compute"
)

// Stages lists every known stage in pipeline order.
var Stages = []Stage{
	StageVertex,
	StageTessControl,
	StageTessEvaluation,
	StageGeometry,
	StageFragment,
	StageCompute,
}

var stageExt = map[Stage]string{
	StageVertex:         ".vert",
	StageTessControl:    ".tesc",
	StageTessEvaluation: ".tese",
	StageGeometry:       ".geom",
	StageFragment:       ".frag",
	StageCompute:        ".comp",
}

// Ext returns the conventional file extension of s, or "" for an unknown stage.
func (s Stage) Ext() string {
	return stageExt[s]
}

func (s Stage) String() string {
	if s == StageUnknown {
		return "unknown"
	}
	return string(s)
}

// ParseStage accepts a stage name ("vertex") or extension ("vert", ".vert").
func ParseStage(s string) (Stage, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range Stages {
		if s == string(st) || "."+s == st.Ext() || s == st.Ext() {
			return st, nil
		}
	}
	return StageUnknown, fmt.Errorf("unknown shader stage %q", s)
}

// StageFromPath infers the stage from a file name's extension.
func StageFromPath(p string) (Stage, bool) {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(p, `\`, "/")))
	for _, st := range Stages {
		if ext == st.Ext() {
			return st, true
		}
	}
	return StageUnknown, false
}
