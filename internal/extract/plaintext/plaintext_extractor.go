// Package plaintext extracts text from UTF-8 text files.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"mrstrict/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor implements port.TextExtractor for .txt files.
type Extractor struct{}

// NewExtractor creates a plain-text Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, doc domain.SourceDocument) domain.Extraction {
	data := bytes.TrimPrefix(doc.Data, utf8BOM)
	if !utf8.Valid(data) {
		return domain.FailedExtraction(fmt.Errorf("plaintext: %q is not valid UTF-8", doc.Name))
	}
	return domain.NewExtraction(norm.NFC.String(string(data)))
}
