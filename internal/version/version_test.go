package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestBanner(t *testing.T) {
	cases := []struct {
		info Info
		want string
	}{
		{Info{Tool: "shaderpp", Version: "1.2.3", GitCommit: "abc123", BuildDate: "2024-01-15"}, "shaderpp 1.2.3 (abc123) built 2024-01-15"},
		{Info{Tool: "shaderpp", Version: "1.2.3"}, "shaderpp 1.2.3"},
		{Info{Tool: "shaderpp", Version: "1.2.3", GitCommit: "abc123", Modified: true}, "shaderpp 1.2.3 (abc123+dirty)"},
	}
	for _, tc := range cases {
		if got := tc.info.Banner(false); got != tc.want {
			t.Errorf("Banner = %q, want %q", got, tc.want)
		}
	}
}

func TestCurrentPrefersLdflags(t *testing.T) {
	origV, origC, origD := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origV, origC, origD })
	Version, GitCommit, BuildDate = "2.0.0", " deadbeef ", "2025-03-01"

	info := Current()
	if info.Version != "2.0.0" || info.GitCommit != "deadbeef" || info.BuildDate != "2025-03-01" || info.GoVersion == "" {
		t.Fatalf("info = %+v", info)
	}
	if shortRevision("0123456789abcdef") != "0123456789ab" {
		t.Fatal("revision not shortened")
	}
}

func TestColoredWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	for _, v := range []string{"0.1.0-dev", "nightly", "1.2"} {
		if got := Colored(v); got != v {
			t.Errorf("Colored(%q) = %q", v, got)
		}
	}
}
