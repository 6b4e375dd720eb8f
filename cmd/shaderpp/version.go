package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"shaderpp/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show shaderpp build information",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("full", false, "include commit, build date and Go version")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	info := version.Current()
	w := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		if !full {
			info = version.Info{Tool: info.Tool, Version: info.Version}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "pretty":
		printVersion(w, info, full)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func printVersion(w io.Writer, info version.Info, full bool) {
	if !full {
		fmt.Fprintln(w, info.Banner(useColor()))
		return
	}
	fmt.Fprintf(w, "%s %s\n", info.Tool, version.Colored(info.Version))
	for _, row := range [][2]string{
		{"commit", info.GitCommit},
		{"built", info.BuildDate},
		{"go", info.GoVersion},
	} {
		v := row[1]
		if v == "" {
			v = "unknown"
		}
		fmt.Fprintf(w, "%-7s %s\n", row[0]+":", v)
	}
}
