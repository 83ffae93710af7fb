package pdfops

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"worktoolkit/internal/fileutil"
	"worktoolkit/internal/logging"
	"worktoolkit/internal/services"
)

// ImageOptions controls the recompression pass over a merged document's
// embedded images.
type ImageOptions struct {
	Enabled       bool
	Quality       int // JPEG quality, 1-100
	MinKB         int // streams below this stored size are left alone
	OnlyIfSmaller bool
}

// UnifyGroup merges the ordered sources into one document at destPath,
// recompresses oversized embedded images, applies the optimization level,
// and serializes the result. The whole group fails if any source is
// malformed; on failure no partial output is left at destPath. It returns
// the number of image streams replaced.
func UnifyGroup(ctx context.Context, destPath string, sources []string, level Level, img ImageOptions, logger *slog.Logger) (int, error) {
	if len(sources) == 0 {
		return 0, services.Wrap(services.ErrValidation, "unify", "merge", "group has no sources", nil)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := fileutil.EnsureDir(filepath.Dir(destPath)); err != nil {
		return 0, services.Wrap(services.ErrTransient, "unify", "prepare", "", err)
	}

	// Work on a temp file next to the destination; only a fully processed
	// document is renamed into place.
	tmp := destPath + ".tmp"
	defer os.Remove(tmp)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if len(sources) == 1 {
		if err := fileutil.CopyFile(sources[0], tmp); err != nil {
			return 0, services.Wrap(services.ErrTransient, "unify", "copy", sources[0], err)
		}
	} else if err := api.MergeCreateFile(sources, tmp, false, conf); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "unify", "merge", fmt.Sprintf("%d sources", len(sources)), err)
	}

	pdfCtx, err := api.ReadContextFile(tmp)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "unify", "read merged document", "", err)
	}

	stripInteractive(pdfCtx)

	replaced := 0
	if img.Enabled {
		replaced = recompressImages(pdfCtx, img, logger)
	}

	if err := ctx.Err(); err != nil {
		return replaced, err
	}
	if err := writeDocument(pdfCtx, tmp, level); err != nil {
		return replaced, err
	}
	if err := os.Rename(tmp, destPath); err != nil {
		return replaced, services.Wrap(services.ErrTransient, "unify", "finalize", destPath, err)
	}
	return replaced, nil
}

// stripInteractive drops hyperlinks, annotations, and form widgets from the
// merged document. Links and widgets are annotation subtypes, so removing
// each page's Annots array covers all three; the catalog's AcroForm tree
// goes with it.
func stripInteractive(pdfCtx *model.Context) {
	if catalog, err := pdfCtx.XRefTable.Catalog(); err == nil {
		delete(catalog, "AcroForm")
	}
	for _, entry := range pdfCtx.XRefTable.Table {
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		d, ok := entry.Object.(types.Dict)
		if !ok {
			continue
		}
		if typ, ok := d["Type"].(types.Name); ok && typ.Value() == "Page" {
			delete(d, "Annots")
		}
	}
}
