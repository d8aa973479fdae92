package scoring_test

import (
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrstrict/internal/domain"
	"mrstrict/internal/scoring"
)

func TestScore_SelfComparisonIsPerfect(t *testing.T) {
	texts := []string{
		"apple",
		"The quick brown fox\njumps over\nthe lazy dog",
		"  indented line\n\n\ttabbed line  \n",
	}
	for _, text := range texts {
		r := scoring.Score(text, text)
		assert.Equal(t, domain.Grade(10), r.Grade, text)
		assert.Equal(t, 100.0, r.Percent, text)
		assert.Equal(t, 100.0, r.LineScore, text)
		assert.Equal(t, 100.0, r.WordScore, text)
	}
}

func TestScore_EmptyCandidate(t *testing.T) {
	r := scoring.Score("apple\nbanana", "")
	assert.Equal(t, 0.0, r.LineScore)
	assert.Equal(t, 0.0, r.WordScore)
	assert.Equal(t, 0.0, r.Percent)
	assert.Equal(t, domain.MinGrade, r.Grade)
}

func TestScore_BothEmpty(t *testing.T) {
	r := scoring.Score("", "")
	assert.Equal(t, 0.0, r.Percent)
	assert.Equal(t, domain.MinGrade, r.Grade)

	r = scoring.Score(" \n\t\n", "   ")
	assert.Equal(t, 0.0, r.Percent)
	assert.Equal(t, domain.MinGrade, r.Grade)
}

func TestScore_EmptyReferenceStillScoresLines(t *testing.T) {
	// No reference words: word score guard fires. No candidate line is in
	// the (empty) reference line set either.
	r := scoring.Score("", "apple")
	assert.Equal(t, 0.0, r.WordScore)
	assert.Equal(t, 0.0, r.LineScore)
	assert.Equal(t, domain.MinGrade, r.Grade)
}

func TestScore_ConcreteScenario(t *testing.T) {
	r := scoring.Score("apple\nbanana\ncherry", "apple\nbanana")

	assert.Equal(t, 100.0, r.LineScore)
	assert.InDelta(t, 66.67, r.WordScore, 0.01)
	assert.Equal(t, 80.0, r.Percent)
	assert.Equal(t, domain.Grade(9), r.Grade)
	assert.Equal(t, "9/10", r.Grade.String())
	assert.Equal(t, "80.00%", scoring.FormatPercent(r.Percent))
}

func TestScore_CaseAndSurroundingWhitespaceIgnored(t *testing.T) {
	normalized := scoring.Score("hello world", "hello world")

	assert.Equal(t, normalized, scoring.Score("  Hello World\t", "hello world"))
	assert.Equal(t, normalized, scoring.Score("HELLO WORLD", "  hello world  "))

	// Inner whitespace changes the line but not the words.
	r := scoring.Score("Hello World", "hello   world")
	assert.Equal(t, 100.0, r.WordScore)
	assert.Equal(t, 0.0, r.LineScore)
}

func TestScore_DottedCapitalIFoldsToPlainI(t *testing.T) {
	// Simple case mapping: U+0130 lowers to "i" without a combining dot.
	r := scoring.Score("\u0130stanbul", "istanbul")

	assert.Equal(t, 100.0, r.LineScore)
	assert.Equal(t, 100.0, r.WordScore)
	assert.Equal(t, 0.0, scoring.Score("\u0130stanbul", "i\u0307stanbul").WordScore)
}

func TestScore_DuplicatesCollapse(t *testing.T) {
	r := scoring.Score("apple\nbanana", "apple\napple\nAPPLE")

	assert.Equal(t, 100.0, r.LineScore)
	assert.Equal(t, 50.0, r.WordScore)
	assert.Equal(t, 70.0, r.Percent)
	assert.Equal(t, domain.Grade(8), r.Grade)
}

func TestScore_LineEndingsAreEquivalent(t *testing.T) {
	lf := scoring.Score("apple\nbanana\ncherry", "apple\nbanana")
	crlf := scoring.Score("apple\r\nbanana\r\ncherry", "apple\r\nbanana")
	cr := scoring.Score("apple\rbanana\rcherry", "apple\rbanana")
	ls := scoring.Score("apple\u2028banana\u2028cherry", "apple\u2029banana")

	assert.Equal(t, lf, crlf)
	assert.Equal(t, lf, cr)
	assert.Equal(t, lf, ls)
}

func TestScore_WordScoreIsRelativeToReference(t *testing.T) {
	// Extra candidate words do not dilute the word score.
	r := scoring.Score("alpha beta", "alpha beta gamma delta")
	assert.Equal(t, 100.0, r.WordScore)
	assert.Equal(t, 0.0, r.LineScore)
	assert.Equal(t, 60.0, r.Percent)
	assert.Equal(t, domain.Grade(7), r.Grade)
}

func TestScore_MonotonicInOverlap(t *testing.T) {
	reference := "one two three\nfour five six\nseven eight nine\nten eleven twelve"
	lines := strings.Split(reference, "\n")

	prev := -1.0
	for i := 1; i <= len(lines); i++ {
		candidate := strings.Join(lines[:i], "\n")
		r := scoring.Score(reference, candidate)
		assert.GreaterOrEqual(t, r.Percent, prev, "candidate with %d lines", i)
		prev = r.Percent
	}
	assert.Equal(t, 100.0, prev)
}

func TestScore_Deterministic(t *testing.T) {
	reference := "The mitochondria is the powerhouse of the cell\nATP is produced here"
	candidate := "the mitochondria is the powerhouse of the cell\nenergy comes from glucose"
	want := scoring.Score(reference, candidate)

	var wg sync.WaitGroup
	results := make([]scoring.Result, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = scoring.Score(reference, candidate)
		}()
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, want, got)
	}
}

func TestGradeFor_Bands(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.Grade
	}{
		{100, 10},
		{90, 10},
		{89.99, 9},
		{80, 9},
		{math.Nextafter(80, 0), 8},
		{70, 8},
		{60, 7},
		{50, 6},
		{40, 5},
		{30, 4},
		{20, 3},
		{10, 2},
		{9.999, 1},
		{0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scoring.GradeFor(tt.score), "score %v", tt.score)
	}
}

func TestGradeFor_AlwaysValid(t *testing.T) {
	for s := 0.0; s <= 100; s += 0.5 {
		assert.True(t, scoring.GradeFor(s).Valid(), "score %v", s)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "0.00%", scoring.FormatPercent(0))
	assert.Equal(t, "66.67%", scoring.FormatPercent(200.0/3))
	assert.Equal(t, "100.00%", scoring.FormatPercent(100))
}
