// Package report renders comparison results as CSV and XLSX marks sheets.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultCSVName is the attachment and archive name of the CSV report.
const DefaultCSVName = "assignment_marks.csv"

// Format is an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ParseFormat validates a user-supplied format; empty means CSV.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a download name for a report on the reference
// document. Format: marks_{sanitized_reference}_{YYYY-MM-DD}.{ext}
func BuildFilename(referenceName string, f Format, now time.Time) string {
	base := strings.TrimSuffix(referenceName, pathExt(referenceName))
	sanitized := SanitizeFilename(base)
	if sanitized == "" {
		return fmt.Sprintf("marks_%s.%s", now.Format("2006-01-02"), f)
	}
	return fmt.Sprintf("marks_%s_%s.%s", sanitized, now.Format("2006-01-02"), f)
}

func pathExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}
