package pdfops

import (
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"worktoolkit/internal/services"
)

// writeDocument applies the optimization level and serializes the document.
//
//	none:  serialize as-is, no structural rewriting.
//	light: deduplicate and garbage-collect unreferenced objects, compress
//	       streams, group small objects into object streams.
//	full:  additionally scrub document info, XML metadata, and page
//	       thumbnails before the optimization pass. pdfcpu's optimizer
//	       deduplicates font and image objects; glyph-level subsetting of
//	       already-embedded fonts is not rewritten.
func writeDocument(pdfCtx *model.Context, destPath string, level Level) error {
	switch level {
	case LevelNone:
		pdfCtx.WriteObjectStream = false
	case LevelLight:
		pdfCtx.WriteObjectStream = true
		if err := api.OptimizeContext(pdfCtx); err != nil {
			return services.Wrap(services.ErrExternalTool, "unify", "optimize", string(level), err)
		}
	case LevelFull:
		pdfCtx.WriteObjectStream = true
		scrubMetadata(pdfCtx)
		if err := api.OptimizeContext(pdfCtx); err != nil {
			return services.Wrap(services.ErrExternalTool, "unify", "optimize", string(level), err)
		}
	}
	if err := api.WriteContextFile(pdfCtx, destPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "unify", "serialize", destPath, err)
	}
	return nil
}

// scrubMetadata removes identifying and redundant structures: the document
// info dictionary, the catalog's XML metadata and embedded-file tree, and
// per-page thumbnails.
func scrubMetadata(pdfCtx *model.Context) {
	xref := pdfCtx.XRefTable
	xref.Info = nil

	if catalog, err := xref.Catalog(); err == nil {
		delete(catalog, "Metadata")
		if namesObj, ok := catalog["Names"]; ok {
			if names, err := xref.DereferenceDict(namesObj); err == nil {
				delete(names, "EmbeddedFiles")
			}
		}
	}

	for _, entry := range xref.Table {
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		if d, ok := entry.Object.(types.Dict); ok {
			if typ, ok := d["Type"].(types.Name); ok && typ.Value() == "Page" {
				delete(d, "Thumb")
			}
		}
	}
}
