package types

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RunSummary tracks per-run ingestion statistics. Counters are atomic so the
// fetch goroutines and the writer can update them concurrently.
type RunSummary struct {
	RunID     string
	StartTime time.Time

	TargetsFetched   atomic.Int64
	FetchFailures    atomic.Int64
	RawItems         atomic.Int64
	ParseSkips       atomic.Int64
	NormalizeErrors  atomic.Int64
	ProductsCreated  atomic.Int64
	ProductsUpdated  atomic.Int64
	ReviewsInserted  atomic.Int64
	ReviewsDuplicate atomic.Int64
	StoreFailures    atomic.Int64
}

// NewRunSummary creates a summary for a fresh ingestion run.
func NewRunSummary() *RunSummary {
	return &RunSummary{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
}

// Succeeded returns the number of records that reached the store.
func (s *RunSummary) Succeeded() int64 {
	return s.ProductsCreated.Load() + s.ProductsUpdated.Load()
}

// Failed returns the number of records lost to any error kind.
func (s *RunSummary) Failed() int64 {
	return s.FetchFailures.Load() + s.ParseSkips.Load() + s.StoreFailures.Load()
}

// Snapshot returns a copy of the counters safe for logging.
func (s *RunSummary) Snapshot() map[string]any {
	return map[string]any{
		"run_id":            s.RunID,
		"targets_fetched":   s.TargetsFetched.Load(),
		"fetch_failures":    s.FetchFailures.Load(),
		"raw_items":         s.RawItems.Load(),
		"parse_skips":       s.ParseSkips.Load(),
		"normalize_errors":  s.NormalizeErrors.Load(),
		"products_created":  s.ProductsCreated.Load(),
		"products_updated":  s.ProductsUpdated.Load(),
		"reviews_inserted":  s.ReviewsInserted.Load(),
		"reviews_duplicate": s.ReviewsDuplicate.Load(),
		"store_failures":    s.StoreFailures.Load(),
		"elapsed":           time.Since(s.StartTime).String(),
	}
}
