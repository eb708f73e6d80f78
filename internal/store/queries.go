package store

import (
	"context"

	"github.com/pazarlab/tezgah/internal/types"
)

// CountRow is one label/count pair from an aggregate query.
type CountRow struct {
	Label string
	Count int64
}

// CountsByCategory groups products by category name. Uncategorized rows show
// up under an empty label.
func (s *Store) CountsByCategory(ctx context.Context) ([]CountRow, error) {
	var rows []CountRow
	err := s.db.WithContext(ctx).
		Model(&Product{}).
		Select("COALESCE(categories.name, '') AS label, COUNT(products.id) AS count").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Group("categories.name").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, &types.StoreError{Op: "counts by category", Err: err}
	}
	return rows, nil
}

// CountsByBrand groups products by brand.
func (s *Store) CountsByBrand(ctx context.Context) ([]CountRow, error) {
	var rows []CountRow
	err := s.db.WithContext(ctx).
		Model(&Product{}).
		Select("brand AS label, COUNT(id) AS count").
		Group("brand").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, &types.StoreError{Op: "counts by brand", Err: err}
	}
	return rows, nil
}

// CountsBySite groups products by source site.
func (s *Store) CountsBySite(ctx context.Context) ([]CountRow, error) {
	var rows []CountRow
	err := s.db.WithContext(ctx).
		Model(&Product{}).
		Select("site_name AS label, COUNT(id) AS count").
		Group("site_name").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, &types.StoreError{Op: "counts by site", Err: err}
	}
	return rows, nil
}

// AverageRating returns the mean product rating across the catalog.
func (s *Store) AverageRating(ctx context.Context) (float64, error) {
	var avg *float64
	err := s.db.WithContext(ctx).
		Model(&Product{}).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil {
		return 0, &types.StoreError{Op: "average rating", Err: err}
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// GenuineStats splits stored rows into live-scraped and synthetic, using the
// scraped_at / placeholder-URL heuristics.
type GenuineStats struct {
	Products          int64
	GenuineProducts   int64
	PlaceholderURLs   int64
	Reviews           int64
	GenuineReviews    int64
	SaneRatings       int64
	PricedProducts    int64
	Categorized       int64
	SelfReportedTotal int64 // sum of products.review_count as reported by sources
}

// GenuineBreakdown answers the "what fraction of rows are genuine" question
// with simple aggregate counts. Read-only.
func (s *Store) GenuineBreakdown(ctx context.Context) (*GenuineStats, error) {
	db := s.db.WithContext(ctx)
	stats := &GenuineStats{}
	cond, args := placeholderURLCondition()

	counts := []func() error{
		func() error {
			return db.Model(&Product{}).Count(&stats.Products).Error
		},
		func() error {
			return db.Model(&Product{}).
				Where("scraped_at IS NOT NULL").
				Where("NOT "+cond, args...).
				Count(&stats.GenuineProducts).Error
		},
		func() error {
			return db.Model(&Product{}).Where(cond, args...).Count(&stats.PlaceholderURLs).Error
		},
		func() error {
			return db.Model(&ProductReview{}).Count(&stats.Reviews).Error
		},
		func() error {
			return db.Model(&ProductReview{}).Where("scraped_at IS NOT NULL").Count(&stats.GenuineReviews).Error
		},
		func() error {
			return db.Model(&Product{}).Where("rating >= 0 AND rating <= 5").Count(&stats.SaneRatings).Error
		},
		func() error {
			return db.Model(&Product{}).Where("price > 0").Count(&stats.PricedProducts).Error
		},
		func() error {
			return db.Model(&Product{}).Where("category_id IS NOT NULL").Count(&stats.Categorized).Error
		},
	}
	for _, count := range counts {
		if err := count(); err != nil {
			return nil, &types.StoreError{Op: "genuine breakdown", Err: err}
		}
	}

	var selfReported *int64
	if err := db.Model(&Product{}).Select("SUM(review_count)").Scan(&selfReported).Error; err != nil {
		return nil, &types.StoreError{Op: "genuine breakdown", Err: err}
	}
	if selfReported != nil {
		stats.SelfReportedTotal = *selfReported
	}

	return stats, nil
}

// PurgeSynthetic deletes seeded rows: products with a nil scraped_at or a
// placeholder URL, and their reviews. Returns the number of products removed.
func (s *Store) PurgeSynthetic(ctx context.Context) (int64, error) {
	cond, args := placeholderURLCondition()
	var purged int64

	err := s.Transaction(ctx, func(tx *Store) error {
		sub := tx.db.Model(&Product{}).
			Select("id").
			Where("scraped_at IS NULL OR "+cond, args...)

		if err := tx.db.Where("product_id IN (?)", sub).Delete(&ProductReview{}).Error; err != nil {
			return err
		}

		res := tx.db.Where("scraped_at IS NULL OR "+cond, args...).Delete(&Product{})
		if res.Error != nil {
			return res.Error
		}
		purged = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, &types.StoreError{Op: "purge synthetic", Err: err}
	}
	return purged, nil
}

// ExportRow is the flat one-row-per-product view consumed by the CSV export.
type ExportRow struct {
	ID            uint    `gorm:"column:id"`
	Name          string  `gorm:"column:name"`
	Brand         string  `gorm:"column:brand"`
	Price         string  `gorm:"column:price"`
	DiscountPct   string  `gorm:"column:discount_pct"`
	CategorySlug  string  `gorm:"column:category_slug"`
	Rating        float64 `gorm:"column:rating"`
	ReviewCount   int     `gorm:"column:review_count"`
	StoredReviews int     `gorm:"column:stored_reviews"`
	InStock       bool    `gorm:"column:in_stock"`
	URL           string  `gorm:"column:url"`
	SiteName      string  `gorm:"column:site_name"`
	Genuine       bool    `gorm:"column:genuine"`
}

// ExportRows builds the derived flat view: one row per product with the
// category slug and locally stored review count joined in.
func (s *Store) ExportRows(ctx context.Context) ([]ExportRow, error) {
	var rows []ExportRow
	err := s.db.WithContext(ctx).
		Model(&Product{}).
		Select(`products.id, products.name, products.brand,
			CAST(products.price AS TEXT) AS price,
			CAST(products.discount_pct AS TEXT) AS discount_pct,
			COALESCE(categories.slug, '') AS category_slug,
			products.rating, products.review_count,
			COUNT(product_reviews.id) AS stored_reviews,
			products.in_stock, products.url, products.site_name,
			products.scraped_at IS NOT NULL AS genuine`).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Joins("LEFT JOIN product_reviews ON product_reviews.product_id = products.id").
		Group("products.id").
		Order("products.id").
		Scan(&rows).Error
	if err != nil {
		return nil, &types.StoreError{Op: "export rows", Err: err}
	}
	return rows, nil
}
