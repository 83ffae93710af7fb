package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"worktoolkit/internal/logging"
	"worktoolkit/internal/search"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var terms []string
	var termsFile string
	var blockSize int
	var caseSensitive bool

	cmd := &cobra.Command{
		Use:   "search <pdf-or-dir>...",
		Short: "Find terms inside PDFs and report the page blocks to print",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			loaded, err := search.LoadTerms(terms, termsFile, caseSensitive)
			if err != nil {
				return err
			}

			size := blockSize
			if size < 1 {
				size = cfg.Search.BlockSize
			}

			paths, err := collectPDFArgs(args)
			if err != nil {
				return err
			}

			searchLogger := logging.NewComponentLogger(logger, "search")
			failed := 0
			totalMatches := 0
			for _, path := range paths {
				result := search.ScanDocument(cmd.Context(), path, loaded, caseSensitive, searchLogger)
				if result.Err != nil {
					failed++
					searchLogger.Error("document scan failed",
						logging.String("path", path),
						logging.Error(result.Err))
					continue
				}
				totalMatches += len(result.Matches)
				printDocumentMatches(cmd, result, size)
			}

			if totalMatches == 0 && failed == 0 {
				fmt.Fprintln(out, "No matches found.")
			}
			if failed > 0 {
				return fmt.Errorf("%d document(s) could not be scanned", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&terms, "term", "t", nil, "Search term (repeatable)")
	cmd.Flags().StringVar(&termsFile, "terms-file", "", "File with one search term per line")
	cmd.Flags().IntVar(&blockSize, "block-size", 0, "Pages per print block (0 uses the configured default)")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Match terms case-sensitively")
	return cmd
}

func printDocumentMatches(cmd *cobra.Command, result search.DocumentResult, blockSize int) {
	if len(result.Matches) == 0 {
		return
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s (%d pages)\n", filepath.Base(result.Path), result.Pages)

	rows := make([][]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		rows = append(rows, []string{m.Term.Raw, strconv.Itoa(m.Page)})
	}
	fmt.Fprintln(out, renderTable([]string{"TERM", "PAGE"}, rows, 1))

	blocks := search.BlocksForMatches(result.Matches, blockSize, result.Pages)
	spans := make([]string, 0, len(blocks))
	for _, b := range blocks {
		spans = append(spans, fmt.Sprintf("%d-%d", b.First, b.Last))
	}
	fmt.Fprintf(out, "Print blocks: %s\n\n", strings.Join(spans, ", "))
}
