package port

import (
	"context"

	"mrstrict/internal/domain"
)

// TextExtractor pulls plain text out of a source document. Failures are
// reported through the returned Extraction, never as text.
type TextExtractor interface {
	Extract(ctx context.Context, doc domain.SourceDocument) domain.Extraction
}
