package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"worktoolkit/internal/fileutil"
	"worktoolkit/internal/logging"
	"worktoolkit/internal/splitter"
)

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "split <pdf-or-dir>...",
		Short: "Write every page of each PDF as its own file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			paths, err := collectPDFArgs(args)
			if err != nil {
				return err
			}

			dest := strings.TrimSpace(outDir)
			if dest == "" {
				dest = filepath.Join(filepath.Dir(paths[0]), "split_pages")
			} else if dest, err = filepath.Abs(dest); err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}

			results := splitter.SplitAll(cmd.Context(), paths, dest,
				logging.NewComponentLogger(logger, "split"))

			failed := 0
			pages := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					continue
				}
				pages += r.Pages
			}
			fmt.Fprintf(out, "Split %d document(s) into %d page file(s) under %s\n",
				len(results)-failed, pages, dest)
			if failed > 0 {
				return fmt.Errorf("%d document(s) failed to split", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Output directory (default: split_pages next to the first input)")
	return cmd
}

// collectPDFArgs expands a mix of file and directory arguments into an
// absolute, ordered list of PDF paths.
func collectPDFArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", arg, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("inspect path %q: %w", arg, err)
		}
		if info.IsDir() {
			listed, err := fileutil.ListPDFs(abs)
			if err != nil {
				return nil, err
			}
			paths = append(paths, listed...)
			continue
		}
		if !strings.EqualFold(filepath.Ext(abs), ".pdf") {
			return nil, fmt.Errorf("%q is not a PDF", arg)
		}
		paths = append(paths, abs)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF documents found in the given paths")
	}
	return paths, nil
}
