// Package extract routes source documents to the text extractor registered
// for their file type.
package extract

import (
	"context"
	"fmt"

	"mrstrict/internal/domain"
	"mrstrict/internal/extract/pdf"
	"mrstrict/internal/extract/plaintext"
	"mrstrict/internal/port"
)

// Registry is a port.TextExtractor that dispatches on domain.FileType.
type Registry struct {
	extractors map[domain.FileType]port.TextExtractor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[domain.FileType]port.TextExtractor{}}
}

// NewDefaultRegistry creates a Registry with the PDF and plain-text extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(domain.FileTypePDF, pdf.NewExtractor())
	r.Register(domain.FileTypeText, plaintext.NewExtractor())
	return r
}

// Register binds an extractor to a file type, replacing any previous one.
func (r *Registry) Register(ft domain.FileType, e port.TextExtractor) {
	r.extractors[ft] = e
}

// Supports reports whether an extractor is registered for ft.
func (r *Registry) Supports(ft domain.FileType) bool {
	_, ok := r.extractors[ft]
	return ok
}

func (r *Registry) Extract(ctx context.Context, doc domain.SourceDocument) domain.Extraction {
	if err := ctx.Err(); err != nil {
		return domain.FailedExtraction(err)
	}
	e, ok := r.extractors[doc.FileType]
	if !ok {
		return domain.FailedExtraction(fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, doc.Name))
	}
	return e.Extract(ctx, doc)
}
