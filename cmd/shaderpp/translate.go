package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shaderpp/internal/diag"
	"shaderpp/internal/source"
	"shaderpp/internal/srcmap"
	"shaderpp/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate --map <unit.map> [log|-]",
	Short: "Map compiler diagnostics on a merged unit back to the original files",
	Long: `Read a compiler log produced for a merged unit and rewrite every
located diagnostic to the original fragment and line using the source map
written by "preprocess --map" or "build". Lines that cannot be mapped are kept
with a note. Without a log argument (or with "-") the log is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranslate,
}

func init() {
	addSessionFlags(translateCmd)
	addDiagnosticFlags(translateCmd)
	translateCmd.Flags().String("map", "", "source map sidecar (required)")
	translateCmd.Flags().Bool("raw", false, "print translated log lines instead of diagnostics")
	translateCmd.Flags().Bool("sources", false, "load the original fragments to quote source lines (pretty format)")
	translateCmd.Flags().Bool("dedup", false, "collapse identical diagnostics")
	_ = translateCmd.MarkFlagRequired("map")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	out, err := readDiagOutput(cmd)
	if err != nil {
		return err
	}
	mapPath, err := cmd.Flags().GetString("map")
	if err != nil {
		return fmt.Errorf("failed to get map flag: %w", err)
	}
	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return fmt.Errorf("failed to get raw flag: %w", err)
	}
	withSources, err := cmd.Flags().GetBool("sources")
	if err != nil {
		return fmt.Errorf("failed to get sources flag: %w", err)
	}
	dedup, err := cmd.Flags().GetBool("dedup")
	if err != nil {
		return fmt.Errorf("failed to get dedup flag: %w", err)
	}

	m, err := srcmap.ReadFile(mapPath)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, openErr := os.Open(args[0])
		if openErr != nil {
			return openErr
		}
		defer f.Close()
		r = f
	}
	log, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	res := translate.New(m).Translate(cmd.Context(), string(log))

	if raw {
		for _, line := range res.Messages() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	} else {
		bag := diag.NewBag(out.maxDiag)
		var rep diag.Reporter = diag.BagReporter{Bag: bag}
		if dedup {
			rep = diag.Dedup(rep)
		}
		res.Report(rep)

		var fs *source.FileSet
		if withSources && out.format == "pretty" {
			if fs, err = loadOrigins(cmd, m); err != nil {
				return err
			}
		}
		w := cmd.ErrOrStderr()
		if out.format == "json" {
			w = cmd.OutOrStdout()
		}
		if err := out.render(w, bag, fs); err != nil {
			return err
		}
	}

	if err := res.Err(); err != nil && !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: %v\n", err)
	}
	if res.HasErrors() {
		return errReported
	}
	return nil
}

// loadOrigins reloads every fragment named in the map through the session registry.
// Fragments that no longer load are skipped; the diagnostics stay without context.
func loadOrigins(cmd *cobra.Command, m *srcmap.Map) (*source.FileSet, error) {
	sess, err := openSession(cmd)
	if err != nil {
		return nil, err
	}
	fs := source.NewFileSet()
	for _, o := range m.Origins {
		if o.Raw() {
			continue
		}
		key := o.Key()
		text, err := sess.registry.Load(key)
		if err != nil {
			if !quiet(cmd) {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: cannot quote %s: %v\n", o, err)
			}
			continue
		}
		fs.AddText(key.String(), o.String(), text)
	}
	return fs, nil
}
