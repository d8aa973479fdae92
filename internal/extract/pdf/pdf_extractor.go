// Package pdf extracts plain text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"mrstrict/internal/domain"
)

// Extractor implements port.TextExtractor for PDF files.
type Extractor struct{}

// NewExtractor creates a PDF Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract rebuilds the text of every page row by row: a change of baseline
// starts a new line and a wide horizontal gap inside a row becomes a space.
// Malformed documents yield a failed extraction.
func (e *Extractor) Extract(ctx context.Context, doc domain.SourceDocument) (result domain.Extraction) {
	// The PDF reader panics on some corrupt cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			result = domain.FailedExtraction(fmt.Errorf("pdf: malformed document %q: %v", doc.Name, r))
		}
	}()

	if len(doc.Data) == 0 {
		return domain.FailedExtraction(fmt.Errorf("pdf: %q is empty", doc.Name))
	}

	reader, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return domain.FailedExtraction(fmt.Errorf("pdf: opening %q: %w", doc.Name, err))
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return domain.FailedExtraction(err)
		}
		page := reader.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").IsNull() {
			continue
		}
		writeRows(&b, page.Content().Text)
	}

	return domain.NewExtraction(norm.NFC.String(b.String()))
}

const (
	// Baseline shift, as a fraction of the font size, that starts a new row.
	rowTolerance = 0.5
	// Horizontal gap, as a fraction of the font size, read as a word break.
	wordGap = 0.25
)

// writeRows appends glyphs in content order, one output line per text row.
// The page always ends with a newline.
func writeRows(b *strings.Builder, glyphs []pdf.Text) {
	var (
		started      bool
		lastY, lastX float64
		lastSpace    bool
	)
	for _, g := range glyphs {
		// The reader emits a synthetic "\n" glyph after every TJ array.
		if g.S == "" || g.S == "\n" {
			continue
		}
		size := math.Max(g.FontSize, 1)

		if started {
			switch {
			case math.Abs(g.Y-lastY) > rowTolerance*size:
				b.WriteByte('\n')
				lastSpace = true
			case g.X-lastX > wordGap*size && !lastSpace:
				b.WriteByte(' ')
				lastSpace = true
			}
		}
		b.WriteString(g.S)
		started = true
		lastY = g.Y
		lastX = g.X + g.W
		lastSpace = strings.TrimSpace(g.S) == ""
	}
	b.WriteByte('\n')
}
