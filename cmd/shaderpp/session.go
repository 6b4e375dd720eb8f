package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shaderpp/internal/loader"
	"shaderpp/internal/preprocess"
	"shaderpp/internal/project"
	"shaderpp/internal/ref"
)

// addSessionFlags registers the flags that shape the loader registry.
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().String("base", "", "directory bare references are resolved against (default: manifest base or .)")
	cmd.Flags().StringArray("protocol", nil, "mount a directory under a protocol, name=dir (repeatable)")
	cmd.Flags().Int("max-depth", 0, "include nesting limit (0 = manifest or 256)")
	cmd.Flags().Bool("no-manifest", false, "ignore shaderpp.toml")
}

// session is the registry and engine a command works with.
type session struct {
	manifest *project.Manifest // nil without shaderpp.toml
	registry *loader.Registry
	engine   *preprocess.Engine
}

func openSession(cmd *cobra.Command) (*session, error) {
	s := &session{}
	noManifest, err := cmd.Flags().GetBool("no-manifest")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-manifest flag: %w", err)
	}
	if !noManifest {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		m, _, err := project.Discover(wd)
		if err != nil {
			return nil, err
		}
		s.manifest = m
	}

	if s.manifest != nil {
		if s.registry, err = s.manifest.Registry(); err != nil {
			return nil, err
		}
	} else {
		s.registry = loader.NewDefaultRegistry(".")
	}

	base, err := cmd.Flags().GetString("base")
	if err != nil {
		return nil, fmt.Errorf("failed to get base flag: %w", err)
	}
	if base != "" {
		if _, err := s.registry.Replace(ref.LocalProtocol, loader.NewLocal(base)); err != nil {
			return nil, err
		}
	}

	mounts, err := cmd.Flags().GetStringArray("protocol")
	if err != nil {
		return nil, fmt.Errorf("failed to get protocol flag: %w", err)
	}
	for _, mount := range mounts {
		name, dir, ok := strings.Cut(mount, "=")
		if !ok || name == "" || dir == "" {
			return nil, fmt.Errorf("invalid --protocol %q (expected name=dir)", mount)
		}
		if _, err := s.registry.Replace(name, loader.NewDir(dir)); err != nil {
			return nil, err
		}
	}

	depth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-depth flag: %w", err)
	}
	if depth == 0 && s.manifest != nil {
		depth = s.manifest.Config.Preprocess.MaxDepth
	}
	var opts []preprocess.Option
	if depth > 0 {
		opts = append(opts, preprocess.WithMaxDepth(depth))
	}
	s.engine = preprocess.NewEngine(s.registry, opts...)
	return s, nil
}
