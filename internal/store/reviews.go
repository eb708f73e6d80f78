package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pazarlab/tezgah/internal/types"
)

// InsertReviewIfAbsent inserts a review unless an identical
// (product_id, reviewer_name, review_text) row already exists. Duplicates are
// harmless and report (false, nil). The schema's unique index backs this up,
// so a race between the lookup and the insert still cannot produce two rows.
func (s *Store) InsertReviewIfAbsent(ctx context.Context, r *ProductReview) (inserted bool, err error) {
	db := s.db.WithContext(ctx)

	var count int64
	err = db.Model(&ProductReview{}).
		Where("product_id = ? AND reviewer_name = ? AND review_text = ?",
			r.ProductID, r.ReviewerName, r.ReviewText).
		Count(&count).Error
	if err != nil {
		return false, &types.StoreError{Op: "lookup review", Err: err}
	}
	if count > 0 {
		return false, nil
	}

	if err := db.Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, &types.StoreError{Op: "insert review", Err: err}
	}
	return true, nil
}

// ReviewDeficit names a product sitting under the review backfill minimum.
type ReviewDeficit struct {
	ProductID uint
	Name      string
	Have      int
}

// ReviewDeficits lists products with fewer than min stored reviews, ordered
// by how far under the minimum they are. Products at or above min are
// excluded entirely.
func (s *Store) ReviewDeficits(ctx context.Context, min int) ([]ReviewDeficit, error) {
	var deficits []ReviewDeficit
	err := s.db.WithContext(ctx).
		Model(&Product{}).
		Select("products.id AS product_id, products.name AS name, COUNT(product_reviews.id) AS have").
		Joins("LEFT JOIN product_reviews ON product_reviews.product_id = products.id").
		Group("products.id").
		Having("COUNT(product_reviews.id) < ?", min).
		Order("have ASC").
		Scan(&deficits).Error
	if err != nil {
		return nil, &types.StoreError{Op: "review deficits", Err: err}
	}
	return deficits, nil
}

// StoredReviewCount counts the locally persisted reviews for one product.
func (s *Store) StoredReviewCount(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&ProductReview{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	if err != nil {
		return 0, &types.StoreError{Op: "count reviews", Err: err}
	}
	return count, nil
}

// isUniqueViolation recognizes SQLite's unique-constraint error text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
