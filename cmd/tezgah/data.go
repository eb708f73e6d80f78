package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pazarlab/tezgah/internal/export"
	"github.com/pazarlab/tezgah/internal/ingest"
	"github.com/pazarlab/tezgah/internal/seed"
	"github.com/pazarlab/tezgah/internal/store"
	"github.com/pazarlab/tezgah/internal/verify"
)

var (
	seedReviews     bool
	verifyThreshold float64
	exportOutput    string
)

// seedCmd creates the "seed" subcommand.
func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a deterministic synthetic catalog",
		Long: `Seed the store with a fixed synthetic catalog: a two-level category tree
and a set of plausible Turkish marketplace products. Seeded rows carry
placeholder URLs and no scrape timestamp, so verify and purge can always
tell them apart from genuine data. Re-seeding updates in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := seed.New(cfg, st, logger).Run(ctx)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Printf("Seeded %d categories, %d products (%d created, %d updated)\n",
				res.Categories, res.Products, res.Created, res.Updated)

			if seedReviews {
				runner := ingest.NewRunner(cfg, nil, st, logger)
				inserted, err := runner.BackfillReviews(ctx, seed.NewGenerator(), cfg.Ingest.ReviewMinimum)
				if err != nil {
					return fmt.Errorf("backfill reviews: %w", err)
				}
				fmt.Printf("Backfilled %d reviews\n", inserted)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seedReviews, "reviews", true, "also backfill reviews up to the configured minimum")
	return cmd
}

// purgeCmd creates the "purge" subcommand.
func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete synthetic rows, keep genuine scraped data",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			purged, err := st.PurgeSynthetic(context.Background())
			if err != nil {
				return fmt.Errorf("purge: %w", err)
			}
			fmt.Printf("Purged %d synthetic products (and their reviews)\n", purged)
			return nil
		},
	}
}

// verifyCmd creates the "verify" subcommand. It is the acceptance gate: the
// exit code is non-zero when the genuine fraction or the sanity rate falls
// below the threshold.
func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Report genuine-vs-synthetic data stats and enforce the acceptance threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if verifyThreshold > 0 {
				cfg.Ingest.AcceptanceThreshold = verifyThreshold
			}
			st, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := verify.Build(context.Background(), st, logger)
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			report.Write(os.Stdout)

			if !report.Check(cfg.Ingest.AcceptanceThreshold) {
				return fmt.Errorf("verification failed: below acceptance threshold %.2f",
					cfg.Ingest.AcceptanceThreshold)
			}
			fmt.Printf("\nOK (threshold %.2f)\n", cfg.Ingest.AcceptanceThreshold)
			return nil
		},
	}
	cmd.Flags().Float64VarP(&verifyThreshold, "threshold", "t", 0, "acceptance threshold override (0 = use config)")
	return cmd
}

// exportCmd creates the "export" subcommand.
func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the product catalog to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			out := os.Stdout
			if exportOutput != "" && exportOutput != "-" {
				f, err := os.Create(exportOutput)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}

			n, err := export.WriteProductsCSV(context.Background(), st, out)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if exportOutput != "" && exportOutput != "-" {
				fmt.Printf("Exported %d products to %s\n", n, exportOutput)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	return cmd
}

// statsCmd creates the "stats" subcommand.
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate counts by category, brand, and site",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()

			byCategory, err := st.CountsByCategory(ctx)
			if err != nil {
				return err
			}
			byBrand, err := st.CountsByBrand(ctx)
			if err != nil {
				return err
			}
			bySite, err := st.CountsBySite(ctx)
			if err != nil {
				return err
			}
			avg, err := st.AverageRating(ctx)
			if err != nil {
				return err
			}

			printCounts := func(title string, rows []store.CountRow, max int) {
				fmt.Printf("%s:\n", title)
				for i, r := range rows {
					if i >= max {
						fmt.Printf("  … %d more\n", len(rows)-max)
						break
					}
					label := r.Label
					if label == "" {
						label = "(none)"
					}
					fmt.Printf("  %-24s %d\n", label, r.Count)
				}
			}

			printCounts("By category", byCategory, 20)
			printCounts("By brand", byBrand, 15)
			printCounts("By site", bySite, 10)
			fmt.Printf("Average rating: %.2f\n", avg)
			return nil
		},
	}
}
