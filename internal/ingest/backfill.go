package ingest

import (
	"context"

	"github.com/pazarlab/tezgah/internal/normalize"
	"github.com/pazarlab/tezgah/internal/store"
	"github.com/pazarlab/tezgah/internal/types"
)

// ReviewGenerator supplies stand-in reviews for products that came back from
// scraping with too few of their own.
type ReviewGenerator interface {
	Generate(productName string, need int) []types.CandidateReview
}

// BackfillReviews tops up every product sitting under min stored reviews with
// generated ones. Generated rows carry a nil scraped-at so verification and
// purge can always tell them from live data. Products already at or above the
// minimum are untouched. Returns the number of reviews inserted.
func (r *Runner) BackfillReviews(ctx context.Context, gen ReviewGenerator, min int) (int, error) {
	deficits, err := r.store.ReviewDeficits(ctx, min)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, d := range deficits {
		if ctx.Err() != nil {
			return inserted, types.ErrRunCancelled
		}

		need := min - d.Have
		reviews := gen.Generate(d.Name, need)

		err := r.store.Transaction(ctx, func(tx *store.Store) error {
			for _, rev := range reviews {
				score, label := r.tagger.Tag(rev.Text, rev.Rating)
				row := &store.ProductReview{
					ProductID:      d.ProductID,
					ReviewerName:   rev.ReviewerName,
					Rating:         clampStars(rev.Rating),
					ReviewText:     rev.Text,
					ReviewDate:     normalize.ParseReviewDate(rev.RawDate),
					HelpfulCount:   normalize.ClampCount(rev.HelpfulCount),
					SentimentScore: score,
					Sentiment:      label,
					ScrapedAt:      nil,
				}
				ok, err := tx.InsertReviewIfAbsent(ctx, row)
				if err != nil {
					return err
				}
				if ok {
					inserted++
				}
			}
			return nil
		})
		if err != nil {
			r.logger.Warn("backfill failed for product", "product", d.Name, "error", err)
		}
	}

	r.logger.Info("review backfill complete", "products", len(deficits), "inserted", inserted)
	return inserted, nil
}
