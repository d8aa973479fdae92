package report

import (
	"encoding/csv"
	"io"

	"mrstrict/internal/domain"
	"mrstrict/internal/scoring"
)

// BOM is the UTF-8 byte order mark, written first for Excel on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the marks sheet header row.
var columns = []string{
	"Student File",
	"Marks",
	"Score %",
}

// CSVWriter wraps csv.Writer for exporting comparison results.
type CSVWriter struct {
	out io.Writer
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes CSV to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{out: w, csv: csv.NewWriter(w)}
}

// WriteBOM writes the UTF-8 byte order mark. Call it before anything else.
func (w *CSVWriter) WriteBOM() error {
	_, err := w.out.Write(BOM)
	return err
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResults writes one row per result, in the given order.
func (w *CSVWriter) WriteResults(results []domain.ComparisonResult) error {
	for i := range results {
		if err := w.csv.Write(resultToRow(&results[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// WriteCSV renders a complete marks report: BOM, header and rows.
func WriteCSV(out io.Writer, results []domain.ComparisonResult) error {
	w := NewCSVWriter(out)
	if err := w.WriteBOM(); err != nil {
		return err
	}
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteResults(results); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func resultToRow(r *domain.ComparisonResult) []string {
	return []string{
		r.CandidateID,
		r.Grade.String(),
		scoring.FormatPercent(r.ScorePercent),
	}
}
