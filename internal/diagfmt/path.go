package diagfmt

import (
	"path"
	"strings"

	"shaderpp/internal/source"
)

func formatLocation(loc source.Location, mode PathMode) source.Location {
	if mode == PathModeBasename && loc.Path != "" {
		p := loc.Path
		if i := strings.Index(p, "://"); i >= 0 {
			p = p[i+3:]
		}
		loc.Path = path.Base(p)
	}
	return loc
}
