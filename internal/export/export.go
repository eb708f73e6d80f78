// Package export renders derived flat views of the catalog. The CSV is a
// snapshot for spreadsheets and dashboards, never a source of truth.
package export

import (
	"context"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/pazarlab/tezgah/internal/store"
)

// ProductRow is one CSV line: a product with its category slug and locally
// stored review count joined in.
type ProductRow struct {
	ID            uint    `csv:"id"`
	Name          string  `csv:"name"`
	Brand         string  `csv:"brand"`
	Price         string  `csv:"price"`
	DiscountPct   string  `csv:"discount_pct"`
	CategorySlug  string  `csv:"category"`
	Rating        float64 `csv:"rating"`
	ReviewCount   int     `csv:"review_count"`
	StoredReviews int     `csv:"stored_reviews"`
	InStock       bool    `csv:"in_stock"`
	URL           string  `csv:"url"`
	SiteName      string  `csv:"site"`
	Genuine       bool    `csv:"genuine"`
}

// WriteProductsCSV writes the full catalog view to w, header included.
func WriteProductsCSV(ctx context.Context, st *store.Store, w io.Writer) (int, error) {
	src, err := st.ExportRows(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([]*ProductRow, 0, len(src))
	for _, r := range src {
		rows = append(rows, &ProductRow{
			ID:            r.ID,
			Name:          r.Name,
			Brand:         r.Brand,
			Price:         r.Price,
			DiscountPct:   r.DiscountPct,
			CategorySlug:  r.CategorySlug,
			Rating:        r.Rating,
			ReviewCount:   r.ReviewCount,
			StoredReviews: r.StoredReviews,
			InStock:       r.InStock,
			URL:           r.URL,
			SiteName:      r.SiteName,
			Genuine:       r.Genuine,
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return 0, err
	}
	return len(rows), nil
}
