package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceDocument is an uploaded or on-disk document awaiting text extraction.
type SourceDocument struct {
	Name     string
	FileType FileType
	Data     []byte
}

// NewSourceDocument builds a SourceDocument, resolving its type from the name.
// Unknown extensions leave FileType empty; extraction reports them as failed.
func NewSourceDocument(name string, data []byte) SourceDocument {
	ft, _ := FileTypeFromName(name)
	return SourceDocument{Name: name, FileType: ft, Data: data}
}

// Extraction is the tri-state result of pulling plain text out of a document.
// Text is only meaningful when Status is ExtractionOK.
type Extraction struct {
	Status ExtractionStatus
	Text   string
	Err    error
}

// NewExtraction classifies extracted text: whitespace-only text is empty.
func NewExtraction(text string) Extraction {
	if strings.TrimSpace(text) == "" {
		return Extraction{Status: ExtractionEmpty}
	}
	return Extraction{Status: ExtractionOK, Text: text}
}

// FailedExtraction wraps an extraction error.
func FailedExtraction(err error) Extraction {
	return Extraction{Status: ExtractionFailed, Err: err}
}

// OK reports whether the extraction produced usable text.
func (e Extraction) OK() bool {
	return e.Status == ExtractionOK
}

// Reason describes why an extraction is not usable.
func (e Extraction) Reason() string {
	switch e.Status {
	case ExtractionOK:
		return ""
	case ExtractionEmpty:
		return "no text found in document"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "text extraction failed"
	}
}

// ComparisonResult is the score of one candidate against the reference.
type ComparisonResult struct {
	EvaluationID uuid.UUID `db:"evaluation_id" json:"-"`
	CandidateID  string    `db:"candidate_id" json:"candidate_id"`
	Grade        Grade     `db:"grade" json:"grade"`
	ScorePercent float64   `db:"score_percent" json:"score_percent"`
	LineScore    float64   `db:"line_score" json:"line_score"`
	WordScore    float64   `db:"word_score" json:"word_score"`
}

// SkippedCandidate records a candidate that could not be scored.
type SkippedCandidate struct {
	EvaluationID uuid.UUID        `db:"evaluation_id" json:"-"`
	CandidateID  string           `db:"candidate_id" json:"candidate_id"`
	Status       ExtractionStatus `db:"status" json:"status"`
	Reason       string           `db:"reason" json:"reason"`
}

// Evaluation is one batch run of candidates against a reference document.
type Evaluation struct {
	ID             uuid.UUID          `db:"id" json:"id"`
	OwnerID        uuid.UUID          `db:"owner_id" json:"owner_id"`
	ReferenceName  string             `db:"reference_name" json:"reference_name"`
	Status         EvaluationStatus   `db:"status" json:"status"`
	CandidateCount int                `db:"candidate_count" json:"candidate_count"`
	ScoredCount    int                `db:"scored_count" json:"scored_count"`
	SkippedCount   int                `db:"skipped_count" json:"skipped_count"`
	ReportKey      string             `db:"report_key" json:"report_key,omitempty"`
	NotifiedTo     string             `db:"notified_to" json:"notified_to,omitempty"`
	NotifiedAt     *time.Time         `db:"notified_at" json:"notified_at,omitempty"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `db:"updated_at" json:"updated_at"`
	Results        []ComparisonResult `db:"-" json:"results"`
	Skipped        []SkippedCandidate `db:"-" json:"skipped"`
}

// Attachment is a file sent along with a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an outgoing notification.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}
