// Package version holds build metadata for the shaderpp CLI.
package version

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
)

// Set with -ldflags "-X shaderpp/internal/version.Version=...".
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

// Info describes the running binary.
type Info struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

// Current reads the ldflags values. Missing commit and date fall back to the
// VCS stamp the go tool embeds.
func Current() Info {
	info := Info{
		Tool:      "shaderpp",
		Version:   Version,
		GitCommit: strings.TrimSpace(GitCommit),
		BuildDate: strings.TrimSpace(BuildDate),
		GoVersion: runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

var componentColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Colored renders a MAJOR.MINOR.PATCH[-suffix] version with one color per
// number. Anything else is returned as is. Follows color.NoColor.
func Colored(v string) string {
	core, suffix, hasSuffix := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if len(parts) != len(componentColors) {
		return v
	}
	for i, p := range parts {
		parts[i] = componentColors[i].Sprint(p)
	}
	out := strings.Join(parts, ".")
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}

// Banner is the one-line form: "shaderpp 1.2.3 (abc123) built 2024-01-15".
func (i Info) Banner(colored bool) string {
	v := i.Version
	if colored {
		v = Colored(v)
	}
	var b strings.Builder
	b.WriteString(i.Tool + " " + v)
	if i.GitCommit != "" {
		b.WriteString(" (" + i.GitCommit)
		if i.Modified {
			b.WriteString("+dirty")
		}
		b.WriteString(")")
	}
	if i.BuildDate != "" {
		b.WriteString(" built " + i.BuildDate)
	}
	return b.String()
}
