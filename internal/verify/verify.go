// Package verify answers the post-run question: how much of what the store
// holds is genuine scraped data, and is it sane enough to accept?
package verify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pazarlab/tezgah/internal/store"
)

// Report is the verification snapshot over the whole store.
type Report struct {
	Products        int64
	Genuine         int64
	Synthetic       int64
	PlaceholderURLs int64

	Reviews        int64
	GenuineReviews int64
	SelfReported   int64 // sum of source-site review counts
	ReviewCoverage float64

	WithPrice    int64
	WithCategory int64
	SaneRatings  int64

	GenuineFraction float64
	SanityRate      float64
}

// Build computes the report from the store's aggregate counts.
func Build(ctx context.Context, st *store.Store, logger *slog.Logger) (*Report, error) {
	stats, err := st.GenuineBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Products:        stats.Products,
		Genuine:         stats.GenuineProducts,
		Synthetic:       stats.Products - stats.GenuineProducts,
		PlaceholderURLs: stats.PlaceholderURLs,
		Reviews:         stats.Reviews,
		GenuineReviews:  stats.GenuineReviews,
		SelfReported:    stats.SelfReportedTotal,
		WithPrice:       stats.PricedProducts,
		WithCategory:    stats.Categorized,
		SaneRatings:     stats.SaneRatings,
	}

	if r.Products > 0 {
		r.GenuineFraction = float64(r.Genuine) / float64(r.Products)
		// Sanity rate is the weakest of the three per-product checks, so one
		// bad dimension cannot hide behind two good ones.
		r.SanityRate = minRate(r.Products, r.SaneRatings, r.WithPrice, r.WithCategory)
	}
	if r.SelfReported > 0 {
		r.ReviewCoverage = float64(r.Reviews) / float64(r.SelfReported)
	}

	logger.Debug("verification report built",
		"products", r.Products, "genuine", r.Genuine, "reviews", r.Reviews)
	return r, nil
}

func minRate(total int64, counts ...int64) float64 {
	rate := 1.0
	for _, c := range counts {
		if r := float64(c) / float64(total); r < rate {
			rate = r
		}
	}
	return rate
}

// Check reports whether the store passes the acceptance threshold. An empty
// store fails: zero rows is never an acceptable run outcome.
func (r *Report) Check(threshold float64) bool {
	if r.Products == 0 {
		return false
	}
	return r.GenuineFraction >= threshold && r.SanityRate >= threshold
}

// Write renders the report as an aligned text block.
func (r *Report) Write(w io.Writer) {
	fmt.Fprintf(w, "Products:          %d\n", r.Products)
	fmt.Fprintf(w, "  genuine:         %d\n", r.Genuine)
	fmt.Fprintf(w, "  synthetic:       %d\n", r.Synthetic)
	fmt.Fprintf(w, "  placeholder URL: %d\n", r.PlaceholderURLs)
	fmt.Fprintf(w, "  with price:      %d\n", r.WithPrice)
	fmt.Fprintf(w, "  with category:   %d\n", r.WithCategory)
	fmt.Fprintf(w, "  sane rating:     %d\n", r.SaneRatings)
	fmt.Fprintf(w, "Reviews:           %d\n", r.Reviews)
	fmt.Fprintf(w, "  genuine:         %d\n", r.GenuineReviews)
	fmt.Fprintf(w, "  site-reported:   %d\n", r.SelfReported)
	fmt.Fprintf(w, "Genuine fraction:  %.2f\n", r.GenuineFraction)
	fmt.Fprintf(w, "Sanity rate:       %.2f\n", r.SanityRate)
	if r.SelfReported > 0 {
		fmt.Fprintf(w, "Review coverage:   %.2f\n", r.ReviewCoverage)
	}
}
