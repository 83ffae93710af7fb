package splitter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"worktoolkit/internal/fileutil"
	"worktoolkit/internal/logging"
	"worktoolkit/internal/services"
)

// Result reports the outcome of splitting one document.
type Result struct {
	Path  string
	Pages int
	Err   error
}

// PageName builds the output file name for one page of a document,
// padding the page number so files sort naturally.
func PageName(stem string, page, total int) string {
	width := len(fmt.Sprintf("%d", total))
	if width < 3 {
		width = 3
	}
	return fmt.Sprintf("%s - p%0*d.pdf", stem, width, page)
}

// SplitFile writes every page of a document as its own single page PDF
// into outDir.
func SplitFile(ctx context.Context, path, outDir string, logger *slog.Logger) Result {
	result := Result{Path: path}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	total, err := api.PageCountFile(path)
	if err != nil {
		result.Err = services.Wrap(services.ErrExternalTool, "splitter", "split", "count pages", err)
		return result
	}
	if total < 1 {
		result.Err = fmt.Errorf("%w: splitter: split: document has no pages", services.ErrValidation)
		return result
	}

	if err := fileutil.EnsureDir(outDir); err != nil {
		result.Err = services.Wrap(services.ErrConfiguration, "splitter", "split", "create output directory", err)
		return result
	}

	stem := fileutil.Stem(path)
	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			result.Err = err
			return result
		}

		dest := filepath.Join(outDir, PageName(stem, page, total))
		selection := []string{fmt.Sprintf("%d", page)}
		if err := api.TrimFile(path, dest, selection, conf); err != nil {
			result.Err = services.Wrap(services.ErrExternalTool, "splitter", "split",
				fmt.Sprintf("extract page %d", page), err)
			return result
		}
		result.Pages++
	}

	if logger != nil {
		logger.Info("document split",
			logging.String("path", path),
			logging.Int("pages", result.Pages))
	}
	return result
}

// SplitAll splits every document in order, continuing past per-file
// failures.
func SplitAll(ctx context.Context, paths []string, outDir string, logger *slog.Logger) []Result {
	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Path: p, Err: err})
			continue
		}
		r := SplitFile(ctx, p, outDir, logger)
		if r.Err != nil && logger != nil {
			logger.Error("split failed",
				logging.String("path", p),
				logging.Error(r.Err))
		}
		results = append(results, r)
	}
	return results
}
