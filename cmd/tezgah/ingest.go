package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pazarlab/tezgah/internal/config"
	"github.com/pazarlab/tezgah/internal/fetcher"
	"github.com/pazarlab/tezgah/internal/ingest"
	"github.com/pazarlab/tezgah/internal/seed"
	"github.com/pazarlab/tezgah/internal/types"
)

var (
	ingestInput    string
	ingestSiteName string
	ingestBackfill bool
)

// ingestCmd creates the "ingest" subcommand.
func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [site...]",
		Short: "Fetch configured sites and load products and reviews into the store",
		Long: `Run the full pipeline: fetch each configured site's targets, parse the
JSON or HTML payloads, normalize prices/brands/categories, tag review
sentiment, and upsert into the store with incremental commits.

With no arguments every configured site runs. Naming sites restricts the run.
--input replays a saved raw payload through the same parse/normalize/persist
path instead of fetching live.`,
		RunE: runIngest,
	}

	cmd.Flags().StringVarP(&ingestInput, "input", "i", "", "ingest a saved payload file instead of fetching")
	cmd.Flags().StringVar(&ingestSiteName, "site", "", "site profile to parse --input with (default: first configured)")
	cmd.Flags().BoolVar(&ingestBackfill, "backfill", false, "top up review-poor products with generated reviews after the run")
	cmd.Flags().IntVar(&commitEvery, "commit-every", 0, "incremental commit interval in records")
	cmd.Flags().StringVar(&delay, "delay", "", "politeness delay between requests")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "custom User-Agent string")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sites, err := selectSites(cfg, args)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	httpFetcher, err := fetcher.NewHTTPFetcher(&cfg.Fetcher, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	runner := ingest.NewRunner(cfg, httpFetcher, st, logger)

	// Ctrl-C cancels the run; committed batches stay.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	summary, runErr := runIngestMode(ctx, runner, cfg, sites)
	elapsed := time.Since(start)
	if summary == nil {
		return runErr
	}

	if ingestBackfill && ctx.Err() == nil {
		inserted, err := runner.BackfillReviews(ctx, seed.NewGenerator(), cfg.Ingest.ReviewMinimum)
		if err != nil {
			logger.Warn("review backfill incomplete", "error", err)
		}
		fmt.Printf("Backfill: %d reviews generated\n", inserted)
	}

	snap := summary.Snapshot()
	fmt.Printf("\nIngest finished in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Targets:   %v fetched, %v failed\n", snap["targets_fetched"], snap["fetch_failures"])
	fmt.Printf("  Items:     %v raw, %v parse skips\n", snap["raw_items"], snap["parse_skips"])
	fmt.Printf("  Products:  %v created, %v updated\n", snap["products_created"], snap["products_updated"])
	fmt.Printf("  Reviews:   %v inserted, %v duplicate\n", snap["reviews_inserted"], snap["reviews_duplicate"])
	fmt.Printf("  Errors:    %v normalize, %v store\n", snap["normalize_errors"], snap["store_failures"])

	return runErr
}

// runIngestMode dispatches between the live run and the saved-payload replay.
func runIngestMode(ctx context.Context, runner *ingest.Runner, cfg *config.Config, sites []config.SiteProfile) (*types.RunSummary, error) {
	if ingestInput == "" {
		return runner.Run(ctx, sites)
	}

	body, err := os.ReadFile(ingestInput)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	site, err := findSite(cfg, ingestSiteName)
	if err != nil {
		return nil, err
	}
	return runner.IngestPayload(ctx, body, site)
}

// selectSites filters the configured sites down to the named ones, or returns
// all of them when no names are given.
func selectSites(cfg *config.Config, names []string) ([]config.SiteProfile, error) {
	if len(names) == 0 {
		return cfg.Sites, nil
	}
	var sites []config.SiteProfile
	for _, name := range names {
		site, err := findSite(cfg, name)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, nil
}

func findSite(cfg *config.Config, name string) (config.SiteProfile, error) {
	if name == "" {
		if len(cfg.Sites) == 0 {
			return config.SiteProfile{}, fmt.Errorf("no sites configured")
		}
		return cfg.Sites[0], nil
	}
	for _, s := range cfg.Sites {
		if s.Name == name {
			return s, nil
		}
	}
	return config.SiteProfile{}, fmt.Errorf("unknown site %q", name)
}
