package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for tezgah.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"   yaml:"store"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Ingest  IngestConfig  `mapstructure:"ingest"  yaml:"ingest"`
	Sites   []SiteProfile `mapstructure:"sites"   yaml:"sites"`
	Lexicon LexiconConfig `mapstructure:"lexicon" yaml:"lexicon"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// StoreConfig controls the relational store.
type StoreConfig struct {
	DSN         string        `mapstructure:"dsn"          yaml:"dsn"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout"`
}

// FetcherConfig controls the HTTP fetcher.
type FetcherConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay"  yaml:"politeness_delay"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
}

// IngestConfig controls the ingestion run.
type IngestConfig struct {
	// CommitEvery is the incremental commit interval in records. A crash
	// mid-run keeps every batch committed before the failure.
	CommitEvery int `mapstructure:"commit_every" yaml:"commit_every"`

	// ReviewMinimum is the backfill threshold: products with fewer stored
	// reviews are topped up to this count, products at or above are skipped.
	ReviewMinimum int `mapstructure:"review_minimum" yaml:"review_minimum"`

	// AcceptanceThreshold is the fraction of rows that must pass the post-run
	// sanity checks for the process to exit zero.
	AcceptanceThreshold float64 `mapstructure:"acceptance_threshold" yaml:"acceptance_threshold"`

	// SiteConcurrency caps how many sites are fetched in parallel. Writes are
	// always serialized through a single writer regardless of this value.
	SiteConcurrency int `mapstructure:"site_concurrency" yaml:"site_concurrency"`
}

// SiteProfile describes one marketplace source.
type SiteProfile struct {
	Name    string        `mapstructure:"name"     yaml:"name"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Targets []string      `mapstructure:"targets"  yaml:"targets"`
	Kind    string        `mapstructure:"kind"     yaml:"kind"` // json, html
	Delay   time.Duration `mapstructure:"delay"    yaml:"delay"`

	// SelectorType picks the selector engine for html profiles: css or xpath.
	SelectorType string      `mapstructure:"selector_type" yaml:"selector_type"`
	Selectors    SelectorSet `mapstructure:"selectors"     yaml:"selectors"`
}

// SelectorSet holds the per-field selectors for html card extraction.
// Card scopes one product; the rest are evaluated relative to it.
type SelectorSet struct {
	Card          string `mapstructure:"card"           yaml:"card"`
	Name          string `mapstructure:"name"           yaml:"name"`
	Price         string `mapstructure:"price"          yaml:"price"`
	OriginalPrice string `mapstructure:"original_price" yaml:"original_price"`
	Rating        string `mapstructure:"rating"         yaml:"rating"`
	ReviewCount   string `mapstructure:"review_count"   yaml:"review_count"`
	URL           string `mapstructure:"url"            yaml:"url"`
	Image         string `mapstructure:"image"          yaml:"image"`
	Brand         string `mapstructure:"brand"          yaml:"brand"`
}

// LexiconConfig carries the fixed keyword tables. Declared order of the
// category entries is the tie-break when a title matches several sets.
type LexiconConfig struct {
	Categories    []CategoryKeywords `mapstructure:"categories"     yaml:"categories"`
	Brands        []string           `mapstructure:"brands"         yaml:"brands"`
	PositiveWords []string           `mapstructure:"positive_words" yaml:"positive_words"`
	NegativeWords []string           `mapstructure:"negative_words" yaml:"negative_words"`
}

// CategoryKeywords maps one category to its trigger keywords.
type CategoryKeywords struct {
	Slug     string   `mapstructure:"slug"     yaml:"slug"`
	Name     string   `mapstructure:"name"     yaml:"name"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults, including the stock
// Turkish lexicons.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			DSN:         "tezgah.db",
			BusyTimeout: 5 * time.Second,
		},
		Fetcher: FetcherConfig{
			RequestTimeout:  30 * time.Second,
			PolitenessDelay: 1500 * time.Millisecond,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Ingest: IngestConfig{
			CommitEvery:         50,
			ReviewMinimum:       20,
			AcceptanceThreshold: 0.5,
			SiteConcurrency:     4,
		},
		Lexicon: LexiconConfig{
			Categories:    DefaultCategories(),
			Brands:        DefaultBrands(),
			PositiveWords: DefaultPositiveWords(),
			NegativeWords: DefaultNegativeWords(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultCategories returns the stock category keyword table. Order matters:
// the first matching entry wins.
func DefaultCategories() []CategoryKeywords {
	return []CategoryKeywords{
		{Slug: "elektronik", Name: "Elektronik", Keywords: []string{
			"telefon", "laptop", "tablet", "bilgisayar", "kulaklık", "televizyon",
			"monitör", "klavye", "mouse", "şarj", "powerbank", "kamera",
		}},
		{Slug: "giyim", Name: "Giyim", Keywords: []string{
			"tişört", "t-shirt", "pantolon", "elbise", "gömlek", "mont", "ceket",
			"ayakkabı", "sweatshirt", "etek", "kazak", "şort",
		}},
		{Slug: "ev-yasam", Name: "Ev & Yaşam", Keywords: []string{
			"mobilya", "koltuk", "tencere", "tava", "nevresim", "halı", "perde",
			"avize", "yastık", "battaniye",
		}},
		{Slug: "kozmetik", Name: "Kozmetik", Keywords: []string{
			"parfüm", "krem", "şampuan", "makyaj", "ruj", "maskara", "cilt bakım",
		}},
		{Slug: "anne-bebek", Name: "Anne & Bebek", Keywords: []string{
			"bebek", "biberon", "emzik", "bebek bezi", "oyuncak",
		}},
		{Slug: "spor", Name: "Spor & Outdoor", Keywords: []string{
			"koşu", "fitness", "dambıl", "yoga", "kamp", "bisiklet", "mat",
		}},
		{Slug: "diger", Name: "Diğer", Keywords: nil},
	}
}

// DefaultBrands returns the stock known-brand list for title matching.
func DefaultBrands() []string {
	return []string{
		"Samsung", "Apple", "Xiaomi", "Huawei", "Lenovo", "Asus", "HP", "Casper",
		"Arçelik", "Vestel", "Beko", "Philips", "Bosch", "Tefal", "Karaca",
		"Nike", "Adidas", "Puma", "New Balance", "Skechers",
		"Mavi", "Koton", "LC Waikiki", "Defacto", "Penti",
		"L'Oreal", "Maybelline", "Nivea", "Gratis",
	}
}

// DefaultPositiveWords returns the stock positive sentiment lexicon.
func DefaultPositiveWords() []string {
	return []string{
		"harika", "mükemmel", "kaliteli", "memnun", "güzel", "beğendim",
		"tavsiye", "süper", "hızlı", "sağlam", "başarılı", "muhteşem",
	}
}

// DefaultNegativeWords returns the stock negative sentiment lexicon.
func DefaultNegativeWords() []string {
	return []string{
		"kötü", "berbat", "bozuk", "kalitesiz", "pişman", "iade", "yavaş",
		"çöp", "kırık", "rezalet", "defolu", "sahte",
	}
}
