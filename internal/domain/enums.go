package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileType represents the document formats text can be extracted from.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeText FileType = "txt"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
	"txt": FileTypeText,
}

// FileTypeFromName resolves the FileType of a file from its extension.
func FileTypeFromName(name string) (FileType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	ft, ok := AllowedExtensions[ext]
	return ft, ok
}

// ExtractionStatus is the outcome class of a text extraction.
type ExtractionStatus string

const (
	ExtractionOK     ExtractionStatus = "ok"
	ExtractionEmpty  ExtractionStatus = "empty"
	ExtractionFailed ExtractionStatus = "failed"
)

// EvaluationStatus represents the outcome of a batch evaluation run.
type EvaluationStatus string

const (
	EvaluationStatusCompleted    EvaluationStatus = "completed"
	EvaluationStatusNoValidInput EvaluationStatus = "no_valid_input"
)

// Grade is a mark out of ten. Valid grades are 1 through 10.
type Grade int

const (
	MinGrade Grade = 1
	MaxGrade Grade = 10
)

// String renders the grade the way it appears on reports, e.g. "9/10".
func (g Grade) String() string {
	return fmt.Sprintf("%d/%d", int(g), int(MaxGrade))
}

// Valid reports whether g is inside the 1..10 range.
func (g Grade) Valid() bool {
	return g >= MinGrade && g <= MaxGrade
}
