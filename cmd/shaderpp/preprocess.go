package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shaderpp/internal/buildpipeline"
	"shaderpp/internal/diag"
	"shaderpp/internal/observ"
	"shaderpp/internal/preprocess"
	"shaderpp/internal/srcmap"
	"shaderpp/internal/trace"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [flags] <ref|->",
	Short: "Expand #include_once directives into one compilation unit",
	Long: `Expand a shader source and everything it includes into a single unit.
The reference may carry a protocol (lib://noise.glsl); bare references are
resolved against --base. Use "-" to read the root source from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreprocess,
}

func init() {
	addSessionFlags(preprocessCmd)
	addDiagnosticFlags(preprocessCmd)
	preprocessCmd.Flags().String("stage", "", "shader stage (vertex|fragment|...; default: from the file extension)")
	preprocessCmd.Flags().StringP("output", "o", "", "write the merged unit here instead of stdout")
	preprocessCmd.Flags().Bool("map", false, "write the source map next to --output (<output>.map)")
	preprocessCmd.Flags().String("map-file", "", "write the source map to this path")
	preprocessCmd.Flags().String("stdin-name", "<stdin>", "name used for stdin in diagnostics and the source map")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	ctx, span := trace.Start(cmd.Context(), trace.ScopeCommand, "preprocess")
	span.WithExtra("ref", args[0])
	defer span.End("")

	out, err := readDiagOutput(cmd)
	if err != nil {
		return err
	}
	stageFlag, err := cmd.Flags().GetString("stage")
	if err != nil {
		return fmt.Errorf("failed to get stage flag: %w", err)
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	writeMap, err := cmd.Flags().GetBool("map")
	if err != nil {
		return fmt.Errorf("failed to get map flag: %w", err)
	}
	mapPath, err := cmd.Flags().GetString("map-file")
	if err != nil {
		return fmt.Errorf("failed to get map-file flag: %w", err)
	}
	if writeMap && mapPath == "" {
		if outputPath == "" {
			return fmt.Errorf("--map needs --output (or use --map-file)")
		}
		mapPath = srcmap.SidecarPath(outputPath)
	}

	stage := preprocess.StageUnknown
	if stageFlag != "" {
		if stage, err = preprocess.ParseStage(stageFlag); err != nil {
			return err
		}
	} else if st, ok := preprocess.StageFromPath(args[0]); ok {
		stage = st
	}

	timer := observ.NewTimer()
	lap := timer.Start("session")
	sess, err := openSession(cmd)
	lap.Stop("")
	if err != nil {
		return err
	}

	lap = timer.Start("expand")
	var unit *preprocess.Unit
	if args[0] == "-" {
		name, nameErr := cmd.Flags().GetString("stdin-name")
		if nameErr != nil {
			return fmt.Errorf("failed to get stdin-name flag: %w", nameErr)
		}
		text, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("read stdin: %w", readErr)
		}
		unit, err = sess.engine.ExpandString(ctx, name, string(text), stage)
	} else {
		unit, err = sess.engine.Expand(ctx, args[0], stage)
	}
	if err != nil {
		lap.Stop("failed")
		bag := diag.NewBag(out.maxDiag)
		bag.Add(buildpipeline.DiagnosticFromError(err, args[0]))
		if renderErr := out.render(cmd.ErrOrStderr(), bag, nil); renderErr != nil {
			return renderErr
		}
		printTimings(cmd, timer)
		return errReported
	}
	lap.Stop(fmt.Sprintf("%d lines, %d files", unit.LineCount(), len(unit.Files())))

	lap = timer.Start("write")
	if outputPath == "" {
		if _, err := io.WriteString(cmd.OutOrStdout(), unit.Text); err != nil {
			return err
		}
	} else if err := os.WriteFile(outputPath, []byte(unit.Text), 0o644); err != nil { //nolint:gosec // output is meant to be readable
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	if mapPath != "" {
		if err := srcmap.WriteFile(mapPath, unit.Map); err != nil {
			return fmt.Errorf("write %s: %w", mapPath, err)
		}
	}
	lap.Stop("")

	if outputPath != "" && !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d lines from %d files)\n", outputPath, unit.LineCount(), len(unit.Files()))
		if mapPath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", mapPath)
		}
	}
	printTimings(cmd, timer)
	return nil
}
