package search

import (
	"context"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"worktoolkit/internal/logging"
	"worktoolkit/internal/services"
)

// DocumentResult holds the matches found in one document.
type DocumentResult struct {
	Path    string
	Pages   int
	Matches []Match
	Err     error
}

// ScanDocument extracts text page by page and matches every term
// against it. Pages whose text cannot be extracted are skipped.
func ScanDocument(ctx context.Context, path string, terms []Term, caseSensitive bool, logger *slog.Logger) DocumentResult {
	result := DocumentResult{Path: path}

	f, reader, err := pdf.Open(path)
	if err != nil {
		result.Err = services.Wrap(services.ErrExternalTool, "search", "scan", "open pdf", err)
		return result
	}
	defer f.Close()

	result.Pages = reader.NumPage()
	var fonts map[string]*pdf.Font

	for i := 1; i <= result.Pages; i++ {
		if err := ctx.Err(); err != nil {
			result.Err = err
			return result
		}

		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		if fonts == nil {
			fonts = make(map[string]*pdf.Font)
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}

		text, err := p.GetPlainText(fonts)
		if err != nil {
			if logger != nil {
				logger.Debug("page text extraction failed",
					logging.String("path", path),
					logging.Int("page", i),
					logging.Error(err))
			}
			continue
		}

		result.Matches = append(result.Matches, MatchPage(terms, PageText{Page: i, Text: text}, caseSensitive)...)
	}

	return result
}
