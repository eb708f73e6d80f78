package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Store.DSN == "" {
		return fmt.Errorf("store.dsn must not be empty")
	}

	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.PolitenessDelay < 0 {
		return fmt.Errorf("fetcher.politeness_delay must be >= 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Ingest.CommitEvery < 1 {
		return fmt.Errorf("ingest.commit_every must be >= 1, got %d", cfg.Ingest.CommitEvery)
	}
	if cfg.Ingest.ReviewMinimum < 0 {
		return fmt.Errorf("ingest.review_minimum must be >= 0, got %d", cfg.Ingest.ReviewMinimum)
	}
	if cfg.Ingest.AcceptanceThreshold < 0 || cfg.Ingest.AcceptanceThreshold > 1 {
		return fmt.Errorf("ingest.acceptance_threshold must be in [0,1], got %v", cfg.Ingest.AcceptanceThreshold)
	}
	if cfg.Ingest.SiteConcurrency < 1 {
		return fmt.Errorf("ingest.site_concurrency must be >= 1, got %d", cfg.Ingest.SiteConcurrency)
	}

	for i, site := range cfg.Sites {
		if site.Name == "" {
			return fmt.Errorf("sites[%d].name must not be empty", i)
		}
		if site.Kind != "json" && site.Kind != "html" {
			return fmt.Errorf("sites[%d].kind must be 'json' or 'html', got %q", i, site.Kind)
		}
		if site.Kind == "html" {
			if site.SelectorType != "" && site.SelectorType != "css" && site.SelectorType != "xpath" {
				return fmt.Errorf("sites[%d].selector_type must be 'css' or 'xpath', got %q", i, site.SelectorType)
			}
			if site.Selectors.Card == "" {
				return fmt.Errorf("sites[%d].selectors.card must not be empty for html profiles", i)
			}
		}
		for _, target := range site.Targets {
			if err := ValidateURL(target); err != nil {
				return fmt.Errorf("sites[%d] target %q: %w", i, target, err)
			}
		}
	}

	seen := make(map[string]bool, len(cfg.Lexicon.Categories))
	for _, cat := range cfg.Lexicon.Categories {
		if cat.Slug == "" {
			return fmt.Errorf("lexicon.categories entries must have a slug")
		}
		if seen[cat.Slug] {
			return fmt.Errorf("lexicon.categories has duplicate slug %q", cat.Slug)
		}
		seen[cat.Slug] = true
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is a usable fetch target.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
