package normalize

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pazarlab/tezgah/internal/config"
)

// --- Price Parsing Tests ---

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.234,56 TL", "1234.56", true},
		{"₺899,90", "899.9", true},
		{"2.499,00TL", "2499", true},
		{"1.500", "1500", true},
		{"12.345.678", "12345678", true},
		{"1350.99", "1350.99", true},
		{"349", "349", true},
		{"349,5", "349.5", true},
		{"0", "0", true},
		{"abc", "", false},
		{"", "", false},
		{"TL", "", false},
		{"-50", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParsePrice(tc.in)
			if ok != tc.ok {
				t.Fatalf("ParsePrice(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if !tc.ok {
				return
			}
			want := decimal.RequireFromString(tc.want)
			if !got.Equal(want) {
				t.Errorf("ParsePrice(%q) = %s, want %s", tc.in, got, want)
			}
		})
	}
}

func TestParsePriceRoundTrip(t *testing.T) {
	got, ok := ParsePrice("1.234,56 TL")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if got.StringFixed(2) != "1234.56" {
		t.Errorf("got %s, want 1234.56", got.StringFixed(2))
	}
}

// --- Discount Tests ---

func TestDiscount(t *testing.T) {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	cases := []struct {
		name     string
		price    string
		original string
		want     string
	}{
		{"twenty percent", "80", "100", "20"},
		{"rounded", "89.99", "149.99", "40"},
		{"no original", "80", "0", "0"},
		{"equal prices", "100", "100", "0"},
		{"price above original", "120", "100", "0"},
		{"zero price", "0", "100", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Discount(d(tc.price), d(tc.original))
			if got.IsNegative() {
				t.Fatalf("discount must never be negative, got %s", got)
			}
			if !got.Equal(d(tc.want)) {
				t.Errorf("Discount(%s, %s) = %s, want %s", tc.price, tc.original, got, tc.want)
			}
		})
	}
}

// --- Brand Resolution Tests ---

func TestResolveBrand(t *testing.T) {
	n := New(config.LexiconConfig{Brands: config.DefaultBrands()})

	cases := []struct {
		name  string
		brand string
		title string
		want  string
	}{
		{"given brand wins", "Acme", "Samsung Galaxy S24", "Acme"},
		{"known brand in title", "", "Apple iPhone 15 Pro 256GB", "Apple"},
		{"case insensitive match", "", "SAMSUNG Galaxy Buds", "Samsung"},
		{"turkish capital dotted i", "", "MAVİ Kot Pantolon", "Mavi"},
		{"fallback first token", "", "Zelda Oyun Konsolu Kılıfı", "Zelda"},
		{"empty title", "", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := n.ResolveBrand(tc.brand, tc.title)
			if got != tc.want {
				t.Errorf("ResolveBrand(%q, %q) = %q, want %q", tc.brand, tc.title, got, tc.want)
			}
		})
	}
}

// --- Category Assignment Tests ---

func TestAssignCategory(t *testing.T) {
	n := New(config.LexiconConfig{Categories: config.DefaultCategories()})

	cases := []struct {
		name  string
		title string
		desc  string
		want  string
	}{
		{"electronics", "Akıllı Telefon 128GB", "", "elektronik"},
		{"uppercase turkish", "TELEFON KILIFI", "", "elektronik"},
		{"clothing", "Erkek Slim Fit Gömlek", "", "giyim"},
		{"keyword in description", "Hediyelik Set", "kaliteli parfüm ve krem", "kozmetik"},
		{"no match falls back", "Bahçe Hortumu 20m", "", DefaultCategorySlug},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := n.AssignCategory(tc.title, tc.desc)
			if got != tc.want {
				t.Errorf("AssignCategory(%q, %q) = %q, want %q", tc.title, tc.desc, got, tc.want)
			}
		})
	}
}

// TestAssignCategoryPrecedence pins the declared-order tie-break: a title
// matching both elektronik and giyim keywords lands in elektronik because it
// is declared first.
func TestAssignCategoryPrecedence(t *testing.T) {
	n := New(config.LexiconConfig{Categories: config.DefaultCategories()})

	got := n.AssignCategory("Telefon Tutuculu Kazak", "")
	if got != "elektronik" {
		t.Errorf("expected first declared category to win, got %q", got)
	}
}

// --- Review Date Tests ---

func TestParseReviewDate(t *testing.T) {
	if d := ParseReviewDate("2024-01-15T10:30:00Z"); d.IsZero() {
		t.Error("expected ISO timestamp to parse")
	}
	if d := ParseReviewDate("2024-01-15"); d.IsZero() {
		t.Error("expected plain date to parse")
	}
	if d := ParseReviewDate(""); !d.IsZero() {
		t.Error("expected empty date to be zero")
	}
	if d := ParseReviewDate("not a date at all"); !d.IsZero() {
		t.Error("expected garbage date to be zero")
	}
}

// --- Clamp Tests ---

func TestClamps(t *testing.T) {
	if got := ClampRating(7.2); got != 5 {
		t.Errorf("ClampRating(7.2) = %v, want 5", got)
	}
	if got := ClampRating(-1); got != 0 {
		t.Errorf("ClampRating(-1) = %v, want 0", got)
	}
	if got := ClampRating(4.3); got != 4.3 {
		t.Errorf("ClampRating(4.3) = %v, want 4.3", got)
	}
	if got := ClampCount(-10); got != 0 {
		t.Errorf("ClampCount(-10) = %v, want 0", got)
	}
	if got := ClampCount(42); got != 42 {
		t.Errorf("ClampCount(42) = %v, want 42", got)
	}
}
