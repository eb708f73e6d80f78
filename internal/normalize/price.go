package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencyMarkers are stripped from price strings before parsing.
var currencyMarkers = []string{"₺", "TL", "tl", "Tl", "TRY"}

// ParsePrice converts a Turkish locale-formatted price string into a decimal.
// "1.234,56 TL" parses to 1234.56. Returns ok=false on non-numeric residue;
// callers treat that as price unknown, not as a fatal error.
//
// Strings carrying a decimal comma follow the Turkish convention: dots are
// thousands separators. Values that arrived as JSON numbers ("1350.99") keep
// a single dot as the decimal point.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, false
	}

	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Decimal{}, false
	}

	switch {
	case strings.Contains(s, ","):
		// Turkish format: dots separate thousands, comma is the decimal mark.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") == 1 && len(s)-strings.Index(s, ".") <= 3:
		// Single dot with at most two trailing digits: already a decimal point.
	default:
		// Remaining dots are thousands separators ("1.500").
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Discount computes the discount percentage rounded to two decimals.
// Zero when the original price is missing or not above the current price;
// the result is never negative.
func Discount(price, original decimal.Decimal) decimal.Decimal {
	if !original.IsPositive() || !price.IsPositive() || original.LessThanOrEqual(price) {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	return original.Sub(price).Div(original).Mul(hundred).Round(2)
}
