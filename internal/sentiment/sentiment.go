// Package sentiment assigns coarse sentiment to Turkish review text via
// fixed keyword lexicons. Scores live on a single canonical 0..1 scale:
// 0.5 is the neutral midpoint, labels derive from the 0.3/0.7 thresholds.
package sentiment

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Categorical labels derived from the score.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Label thresholds on the 0..1 scale.
const (
	positiveThreshold = 0.7
	negativeThreshold = 0.3
	neutralMidpoint   = 0.5
)

// Tagger scores free-text reviews against positive/negative word lists.
type Tagger struct {
	positive []string
	negative []string
}

// New compiles the lexicons into a read-only tagger. Words are stored
// Turkish-lowered; matching is substring-based, so inflected forms
// ("beğendim" in "çok beğendim!") still hit.
func New(positive, negative []string) *Tagger {
	return &Tagger{
		positive: foldAll(positive),
		negative: foldAll(negative),
	}
}

// Score rates text on the 0..1 scale: the fraction of lexicon hits that are
// positive. Text with no hits at all scores the neutral midpoint.
func (t *Tagger) Score(text string) float64 {
	folded := lowerTR(text)

	pos := countHits(folded, t.positive)
	neg := countHits(folded, t.negative)

	if pos == 0 && neg == 0 {
		return neutralMidpoint
	}
	return float64(pos) / float64(pos+neg)
}

// Label maps a 0..1 score to its categorical label.
func Label(score float64) string {
	switch {
	case score > positiveThreshold:
		return LabelPositive
	case score < negativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// FromRating maps a 1-5 star rating onto the canonical scale, for sources
// that supply a rating but no usable text.
func FromRating(rating int) float64 {
	switch {
	case rating >= 4:
		return 1.0
	case rating <= 2 && rating > 0:
		return 0.0
	default:
		return neutralMidpoint
	}
}

// Tag scores text and falls back to the rating only when the text has no
// lexicon hits at all. Balanced hits are a genuine neutral and stand as-is.
// Returns score and label together.
func (t *Tagger) Tag(text string, rating int) (float64, string) {
	folded := lowerTR(text)
	pos := countHits(folded, t.positive)
	neg := countHits(folded, t.negative)

	var score float64
	switch {
	case pos == 0 && neg == 0 && rating > 0:
		score = FromRating(rating)
	case pos == 0 && neg == 0:
		score = neutralMidpoint
	default:
		score = float64(pos) / float64(pos+neg)
	}
	return score, Label(score)
}

func countHits(folded string, words []string) int {
	n := 0
	for _, w := range words {
		if w != "" {
			n += strings.Count(folded, w)
		}
	}
	return n
}

func foldAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = lowerTR(w)
	}
	return out
}

// lowerTR lower-cases with Turkish casing rules. Fresh caser per call;
// cases.Caser is stateful and not safe to share between goroutines.
func lowerTR(s string) string {
	return cases.Lower(language.Turkish).String(s)
}
