package types

import "time"

// CandidateProduct is a provisionally extracted, not-yet-validated product
// record derived from one raw fetched item. Fields the source did not supply
// stay at their zero value; only Name is mandatory for the record to exist.
type CandidateProduct struct {
	// Name is the product title. A candidate without a name is never emitted.
	Name string

	// Brand as reported by the source. May be empty; the normalizer resolves
	// it from the title when missing.
	Brand string

	// RawPrice is the locale-formatted price string ("1.234,56 TL").
	RawPrice string

	// RawOriginalPrice is the pre-discount price string, when present.
	RawOriginalPrice string

	// Rating is the source-reported average rating (0.0-5.0, unclamped).
	Rating float64

	// ReviewCount is the source site's self-reported review count.
	ReviewCount int

	// URL is the marketplace product link, the natural dedup identity when
	// it is not a placeholder.
	URL string

	ImageURL    string
	Description string

	// SiteName identifies which marketplace the record came from.
	SiteName string

	// InStock defaults to true; sources rarely list sold-out items.
	InStock bool

	// Reviews holds comments extracted alongside the product, if any.
	Reviews []CandidateReview
}

// CandidateReview is one provisionally extracted customer comment.
type CandidateReview struct {
	ReviewerName string
	Rating       int
	Text         string

	// RawDate is the unparsed review date string in whatever format the
	// source used.
	RawDate string

	HelpfulCount int
}

// ScrapeTime marks records coming from a live fetch. A nil scraped-at on a
// persisted row means the row is synthetic/seeded.
func ScrapeTime() *time.Time {
	now := time.Now().UTC()
	return &now
}
