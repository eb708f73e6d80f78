package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pazarlab/tezgah/internal/config"
	"github.com/pazarlab/tezgah/internal/store"
)

var (
	cfgFile     string
	verbose     bool
	dsn         string
	commitEvery int
	delay       string
	userAgent   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tezgah",
		Short: "Tezgah — Turkish e-commerce product and review ingestion pipeline",
		Long: `Tezgah scrapes Turkish marketplace listing and review endpoints, normalizes
the loosely-typed payloads (prices, brands, categories, review dates), tags
review sentiment, and persists everything into a relational catalog with
idempotent upserts.

Subcommands:
  ingest   fetch configured sites (or replay a saved payload) into the store
  seed     load a deterministic synthetic catalog for dashboards
  purge    remove synthetic rows, keep genuine scraped data
  verify   report genuine-vs-synthetic stats, exit non-zero below threshold
  export   write the catalog to CSV
  stats    aggregate counts by category, brand, and site`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dsn, "db", "", "SQLite DSN override")

	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(purgeCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads, overrides, and validates the configuration in one step.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured SQLite store, migrated and ready.
func openStore(cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tezgah %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Store:\n")
			fmt.Printf("  DSN:                 %s\n", cfg.Store.DSN)
			fmt.Printf("  Busy Timeout:        %s\n", cfg.Store.BusyTimeout)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Request Timeout:     %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  Politeness Delay:    %s\n", cfg.Fetcher.PolitenessDelay)
			fmt.Printf("  Follow Redirects:    %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Printf("  Max Body Size:       %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("  User Agents:         %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Printf("\nIngest:\n")
			fmt.Printf("  Commit Every:        %d records\n", cfg.Ingest.CommitEvery)
			fmt.Printf("  Review Minimum:      %d\n", cfg.Ingest.ReviewMinimum)
			fmt.Printf("  Acceptance Threshold: %.2f\n", cfg.Ingest.AcceptanceThreshold)
			fmt.Printf("  Site Concurrency:    %d\n", cfg.Ingest.SiteConcurrency)
			fmt.Printf("\nSites:               %d configured\n", len(cfg.Sites))
			for _, s := range cfg.Sites {
				fmt.Printf("  %-16s %s (%s, %d targets)\n", s.Name, s.BaseURL, s.Kind, len(s.Targets))
			}
			fmt.Printf("\nLexicon:\n")
			fmt.Printf("  Categories:          %d\n", len(cfg.Lexicon.Categories))
			fmt.Printf("  Known Brands:        %d\n", len(cfg.Lexicon.Brands))
			fmt.Printf("  Sentiment Words:     %d positive, %d negative\n",
				len(cfg.Lexicon.PositiveWords), len(cfg.Lexicon.NegativeWords))
			return nil
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if dsn != "" {
		cfg.Store.DSN = dsn
	}
	if commitEvery > 0 {
		cfg.Ingest.CommitEvery = commitEvery
	}
	if delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			cfg.Fetcher.PolitenessDelay = d
		}
	}
	if userAgent != "" {
		cfg.Fetcher.UserAgents = []string{userAgent}
	}
}
