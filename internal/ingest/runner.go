// Package ingest orchestrates one ingestion run: concurrent per-site
// fetching feeding a single writer that normalizes, tags, and upserts
// records with incremental commits. One runner per run; per-record failures
// feed the run summary and never abort the batch.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pazarlab/tezgah/internal/config"
	"github.com/pazarlab/tezgah/internal/fetcher"
	"github.com/pazarlab/tezgah/internal/normalize"
	"github.com/pazarlab/tezgah/internal/parser"
	"github.com/pazarlab/tezgah/internal/sentiment"
	"github.com/pazarlab/tezgah/internal/store"
	"github.com/pazarlab/tezgah/internal/types"
)

// Store is the slice of the persistence layer the runner drives.
// *store.Store satisfies it.
type Store interface {
	Transaction(ctx context.Context, fn func(tx *store.Store) error) error
	EnsureCategories(ctx context.Context, cats []config.CategoryKeywords) error
	CategoryIDBySlug(ctx context.Context, slug string) (*uint, error)
	ReviewDeficits(ctx context.Context, min int) ([]store.ReviewDeficit, error)
}

// Runner wires the pipeline stages for one ingestion run.
type Runner struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	parser  *parser.Parser
	norm    *normalize.Normalizer
	tagger  *sentiment.Tagger
	store   Store
	logger  *slog.Logger
}

// NewRunner creates a runner around an open store and a fetcher. The
// lexicons are compiled once here; the stages themselves stay pure.
func NewRunner(cfg *config.Config, f fetcher.Fetcher, st Store, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		fetcher: f,
		parser:  parser.New(logger),
		norm:    normalize.New(cfg.Lexicon),
		tagger:  sentiment.New(cfg.Lexicon.PositiveWords, cfg.Lexicon.NegativeWords),
		store:   st,
		logger:  logger.With("component", "ingest"),
	}
}

// Run fetches every target of the given sites and ingests the results.
// Sites are fetched concurrently; all writes flow through a single writer.
// Cancellation abandons remaining raw records; committed batches stay put.
func (r *Runner) Run(ctx context.Context, sites []config.SiteProfile) (*types.RunSummary, error) {
	summary := types.NewRunSummary()
	r.logger.Info("run starting", "run_id", summary.RunID, "sites", len(sites))

	catIDs, err := r.prepareCategories(ctx)
	if err != nil {
		return summary, err
	}

	candCh := make(chan *types.CandidateProduct, 64)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		r.writeLoop(ctx, candCh, catIDs, summary)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Ingest.SiteConcurrency)
	for _, site := range sites {
		g.Go(func() error {
			r.fetchSite(gctx, site, candCh, summary)
			return nil // a failed site never sinks the others
		})
	}
	_ = g.Wait()
	close(candCh)
	<-writerDone

	r.logger.Info("run complete", "stats", summary.Snapshot())
	if ctx.Err() != nil {
		return summary, types.ErrRunCancelled
	}
	return summary, nil
}

// IngestPayload ingests one saved raw payload (the --input path), bypassing
// the fetcher. Used when live scraping fails and a payload was captured out
// of band.
func (r *Runner) IngestPayload(ctx context.Context, body []byte, site config.SiteProfile) (*types.RunSummary, error) {
	summary := types.NewRunSummary()

	catIDs, err := r.prepareCategories(ctx)
	if err != nil {
		return summary, err
	}

	candidates, err := r.parser.Products(body, site)
	if err != nil {
		summary.ParseSkips.Add(1)
		return summary, err
	}
	summary.RawItems.Add(int64(len(candidates)))

	r.writeBatches(ctx, candidates, catIDs, summary)
	r.logger.Info("payload ingested", "stats", summary.Snapshot())
	return summary, nil
}

// prepareCategories seeds the category tree from the lexicon and returns the
// slug → row-ID lookup used during writes.
func (r *Runner) prepareCategories(ctx context.Context) (map[string]*uint, error) {
	if err := r.store.EnsureCategories(ctx, r.cfg.Lexicon.Categories); err != nil {
		return nil, err
	}
	catIDs := make(map[string]*uint, len(r.cfg.Lexicon.Categories))
	for _, c := range r.cfg.Lexicon.Categories {
		id, err := r.store.CategoryIDBySlug(ctx, c.Slug)
		if err != nil {
			return nil, err
		}
		catIDs[c.Slug] = id
	}
	return catIDs, nil
}

// fetchSite pulls every target of one site and feeds extracted candidates to
// the writer. Failures are counted and skipped; the courtesy delay between
// targets is jittered, not a lock.
func (r *Runner) fetchSite(ctx context.Context, site config.SiteProfile, out chan<- *types.CandidateProduct, summary *types.RunSummary) {
	delay := site.Delay
	if delay == 0 {
		delay = r.cfg.Fetcher.PolitenessDelay
	}

	for i, target := range site.Targets {
		if ctx.Err() != nil {
			return
		}
		if i > 0 && delay > 0 {
			select {
			case <-time.After(fetcher.RandomDelay(delay)):
			case <-ctx.Done():
				return
			}
		}

		payload, err := r.fetcher.Fetch(ctx, target)
		if err != nil {
			summary.FetchFailures.Add(1)
			r.logger.Warn("fetch failed", "site", site.Name, "target", target, "error", err)
			continue
		}
		summary.TargetsFetched.Add(1)

		candidates, err := r.parser.Products(payload.Body, site)
		if err != nil {
			summary.ParseSkips.Add(1)
			r.logger.Warn("parse failed", "site", site.Name, "target", target, "error", err)
			continue
		}
		summary.RawItems.Add(int64(len(candidates)))

		for _, c := range candidates {
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}
}

// writeLoop is the single writer: it drains the candidate channel in commit
// batches. Each batch is one transaction, so a crash mid-run keeps every
// previously committed batch.
func (r *Runner) writeLoop(ctx context.Context, in <-chan *types.CandidateProduct, catIDs map[string]*uint, summary *types.RunSummary) {
	commitEvery := r.cfg.Ingest.CommitEvery
	batch := make([]*types.CandidateProduct, 0, commitEvery)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		r.commitBatch(ctx, batch, catIDs, summary)
		batch = batch[:0]
	}

	for c := range in {
		if ctx.Err() != nil {
			// Abandon remaining raw records; what is batched but uncommitted
			// is dropped whole, never half-written.
			return
		}
		batch = append(batch, c)
		if len(batch) >= commitEvery {
			flush()
		}
	}
	flush()
}

// writeBatches ingests an in-memory candidate slice with the same commit
// discipline as the channel writer.
func (r *Runner) writeBatches(ctx context.Context, candidates []*types.CandidateProduct, catIDs map[string]*uint, summary *types.RunSummary) {
	commitEvery := r.cfg.Ingest.CommitEvery
	for start := 0; start < len(candidates); start += commitEvery {
		if ctx.Err() != nil {
			return
		}
		end := start + commitEvery
		if end > len(candidates) {
			end = len(candidates)
		}
		r.commitBatch(ctx, candidates[start:end], catIDs, summary)
	}
}

// commitBatch writes one batch inside one transaction. A single bad record
// is skipped inside the transaction; only a transaction-level failure counts
// the whole batch as lost.
func (r *Runner) commitBatch(ctx context.Context, batch []*types.CandidateProduct, catIDs map[string]*uint, summary *types.RunSummary) {
	err := r.store.Transaction(ctx, func(tx *store.Store) error {
		for _, c := range batch {
			if err := r.ingestOne(ctx, tx, c, catIDs, summary); err != nil {
				summary.StoreFailures.Add(1)
				r.logger.Warn("record skipped", "name", c.Name, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		summary.StoreFailures.Add(int64(len(batch)))
		r.logger.Error("batch commit failed", "size", len(batch), "error", err)
	}
}

// ingestOne normalizes and persists a single candidate with its reviews.
func (r *Runner) ingestOne(ctx context.Context, tx *store.Store, c *types.CandidateProduct, catIDs map[string]*uint, summary *types.RunSummary) error {
	price, ok := normalize.ParsePrice(c.RawPrice)
	if !ok && c.RawPrice != "" {
		// Unparseable price is price-unknown, not a dropped record.
		summary.NormalizeErrors.Add(1)
		r.logger.Debug("price unparseable", "name", c.Name, "raw", c.RawPrice)
	}
	original, _ := normalize.ParsePrice(c.RawOriginalPrice)

	slug := r.norm.AssignCategory(c.Name, c.Description)
	catID, known := catIDs[slug]
	if !known {
		// Missing mapping for the slug: fall back to the default bucket.
		r.logger.Warn("no category mapping", "slug", slug)
		catID = catIDs[normalize.DefaultCategorySlug]
	}

	product := &store.Product{
		Name:          c.Name,
		Brand:         r.norm.ResolveBrand(c.Brand, c.Name),
		Price:         price,
		OriginalPrice: original,
		DiscountPct:   normalize.Discount(price, original),
		CategoryID:    catID,
		Rating:        normalize.ClampRating(c.Rating),
		ReviewCount:   normalize.ClampCount(c.ReviewCount),
		InStock:       c.InStock,
		URL:           c.URL,
		ImageURL:      c.ImageURL,
		SiteName:      c.SiteName,
		Description:   c.Description,
		ScrapedAt:     types.ScrapeTime(),
	}

	created, err := tx.UpsertProduct(ctx, product)
	if err != nil {
		return err
	}
	if created {
		summary.ProductsCreated.Add(1)
	} else {
		summary.ProductsUpdated.Add(1)
	}

	for _, rev := range c.Reviews {
		score, label := r.tagger.Tag(rev.Text, rev.Rating)
		row := &store.ProductReview{
			ProductID:      product.ID,
			ReviewerName:   rev.ReviewerName,
			Rating:         clampStars(rev.Rating),
			ReviewText:     rev.Text,
			ReviewDate:     normalize.ParseReviewDate(rev.RawDate),
			HelpfulCount:   normalize.ClampCount(rev.HelpfulCount),
			SentimentScore: score,
			Sentiment:      label,
			ScrapedAt:      types.ScrapeTime(),
		}
		inserted, err := tx.InsertReviewIfAbsent(ctx, row)
		if err != nil {
			summary.StoreFailures.Add(1)
			r.logger.Warn("review skipped", "product", c.Name, "error", err)
			continue
		}
		if inserted {
			summary.ReviewsInserted.Add(1)
		} else {
			summary.ReviewsDuplicate.Add(1)
		}
	}

	return nil
}

// clampStars forces a review rating into 0-5.
func clampStars(r int) int {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}
