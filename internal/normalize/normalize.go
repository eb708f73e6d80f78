// Package normalize converts loosely-typed candidate records into canonical
// values: locale price parsing, brand resolution, category assignment, and
// review date parsing. All lookups are built once from configuration so the
// functions stay pure and testable.
package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pazarlab/tezgah/internal/config"
)

// DefaultCategorySlug is the fallback bucket when no keyword matches.
const DefaultCategorySlug = "diger"

// lowerTR lower-cases with Turkish casing rules (dotless ı, İ→i).
// A fresh caser per call: cases.Caser is not safe for concurrent use.
func lowerTR(s string) string {
	return cases.Lower(language.Turkish).String(s)
}

type category struct {
	slug     string
	keywords []string // Turkish-lowered
}

// Normalizer resolves brands and categories against immutable lexicons.
type Normalizer struct {
	brands     []string // original casing, declared order
	brandsFold []string // Turkish-lowered, same order
	categories []category
}

// New compiles the lexicon configuration into read-only lookup structures.
func New(lex config.LexiconConfig) *Normalizer {
	n := &Normalizer{
		brands:     lex.Brands,
		brandsFold: make([]string, len(lex.Brands)),
		categories: make([]category, 0, len(lex.Categories)),
	}
	for i, b := range lex.Brands {
		n.brandsFold[i] = lowerTR(b)
	}
	for _, c := range lex.Categories {
		cat := category{slug: c.Slug, keywords: make([]string, len(c.Keywords))}
		for i, kw := range c.Keywords {
			cat.keywords[i] = lowerTR(kw)
		}
		n.categories = append(n.categories, cat)
	}
	return n
}

// ResolveBrand returns the product's brand. A source-supplied brand wins;
// otherwise the title is searched for a known brand name; as a last resort
// the first whitespace-delimited token of the title stands in.
func (n *Normalizer) ResolveBrand(brand, title string) string {
	if b := strings.TrimSpace(brand); b != "" {
		return b
	}
	folded := lowerTR(title)
	for i, bf := range n.brandsFold {
		if bf != "" && strings.Contains(folded, bf) {
			return n.brands[i]
		}
	}
	if fields := strings.Fields(title); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// AssignCategory keyword-matches title+description against the category
// table. Entries are checked in declared order and the first match wins;
// nothing matching lands in the default bucket.
func (n *Normalizer) AssignCategory(title, description string) string {
	haystack := lowerTR(title + " " + description)
	for _, cat := range n.categories {
		for _, kw := range cat.keywords {
			if kw != "" && strings.Contains(haystack, kw) {
				return cat.slug
			}
		}
	}
	return DefaultCategorySlug
}

// ParseReviewDate parses a review date in whatever format the source used.
// Returns the zero time when the value is empty or unrecognizable.
func ParseReviewDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ClampRating forces a rating into the 0.0-5.0 range.
func ClampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

// ClampCount forces a count to be non-negative.
func ClampCount(c int) int {
	if c < 0 {
		return 0
	}
	return c
}
