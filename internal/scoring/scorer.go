// Package scoring grades a candidate text against a reference text using a
// blend of distinct-line and distinct-word overlap.
package scoring

import (
	"strconv"
	"strings"
	"unicode"

	"mrstrict/internal/domain"
)

const (
	wordWeight = 0.6
	lineWeight = 0.4
)

// band maps a final score to a grade; lower bounds are inclusive.
type band struct {
	lower float64
	grade domain.Grade
}

// bands is scanned top-down; anything below the last bound gets MinGrade.
var bands = []band{
	{90, 10},
	{80, 9},
	{70, 8},
	{60, 7},
	{50, 6},
	{40, 5},
	{30, 4},
	{20, 3},
	{10, 2},
}

// Result is the outcome of scoring one candidate.
type Result struct {
	Grade     domain.Grade
	Percent   float64
	LineScore float64
	WordScore float64
}

// Score compares candidate against reference.
//
// LineScore is the share of the candidate's distinct normalized lines that
// also appear in the reference. WordScore is the share of the reference's
// distinct lower-cased tokens that also appear in the candidate. Either is 0
// when its denominator set is empty. Percent blends them 60/40 in favor of
// words.
func Score(reference, candidate string) Result {
	refLines, candLines := lineSet(reference), lineSet(candidate)
	refWords, candWords := wordSet(reference), wordSet(candidate)

	lineScore := overlapPercent(candLines, refLines)
	wordScore := overlapPercent(refWords, candWords)

	// The explicit conversions force rounding of each product so no
	// architecture fuses them into an FMA; scores must be bit-identical.
	final := float64(wordWeight*wordScore) + float64(lineWeight*lineScore)

	return Result{
		Grade:     GradeFor(final),
		Percent:   final,
		LineScore: lineScore,
		WordScore: wordScore,
	}
}

// GradeFor buckets a final score into a grade out of ten.
func GradeFor(score float64) domain.Grade {
	for _, b := range bands {
		if score >= b.lower {
			return b.grade
		}
	}
	return domain.MinGrade
}

// FormatPercent renders a score for display, e.g. "80.00%".
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64) + "%"
}

// overlapPercent returns the share of of's elements also in in, as a percentage,
// or 0 when of is empty.
func overlapPercent(of, in map[string]struct{}) float64 {
	if len(of) == 0 {
		return 0
	}
	matched := 0
	for k := range of {
		if _, ok := in[k]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(of)) * 100
}

// lineSet and wordSet fold case with simple per-rune mapping, so U+0130
// lowers to a bare "i".
func lineSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		line = strings.ToLower(strings.TrimFunc(line, isSpace))
		if line != "" {
			set[line] = struct{}{}
		}
	}
	return set
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), isSpace) {
		set[w] = struct{}{}
	}
	return set
}

// isLineBreak matches every line boundary a universal-newline splitter
// recognizes. "\r\n" splits twice; the empty piece between is dropped.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// isSpace extends unicode.IsSpace with the ASCII information separators,
// which also separate words.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
