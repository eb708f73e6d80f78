package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pazarlab/tezgah/internal/config"
	"github.com/pazarlab/tezgah/internal/types"
)

// UpsertProduct writes a product with the at-most-one-row-per-identity
// guarantee. Identity is the URL when it is a genuine marketplace link, the
// exact name otherwise. A match updates the mutable fields only; CreatedAt
// survives re-ingestion. Reports whether a new row was created.
func (s *Store) UpsertProduct(ctx context.Context, p *Product) (created bool, err error) {
	db := s.db.WithContext(ctx)

	var existing Product
	query := db.Where("name = ?", p.Name)
	if !IsPlaceholderURL(p.URL) {
		query = db.Where("url = ?", p.URL)
	}

	err = query.First(&existing).Error
	switch {
	case err == nil:
		// Identity collision routes to UPDATE, never surfaces as an error.
		updates := map[string]any{
			"price":          p.Price,
			"original_price": p.OriginalPrice,
			"discount_pct":   p.DiscountPct,
			"rating":         p.Rating,
			"review_count":   p.ReviewCount,
			"in_stock":       p.InStock,
		}
		if p.CategoryID != nil {
			updates["category_id"] = p.CategoryID
		}
		if p.Brand != "" {
			updates["brand"] = p.Brand
		}
		if p.ImageURL != "" {
			updates["image_url"] = p.ImageURL
		}
		if p.Description != "" {
			updates["description"] = p.Description
		}
		if p.ScrapedAt != nil {
			updates["scraped_at"] = p.ScrapedAt
		}
		if uerr := db.Model(&existing).Updates(updates).Error; uerr != nil {
			return false, &types.StoreError{Op: "update product", Err: uerr}
		}
		p.ID = existing.ID
		return false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		if cerr := db.Create(p).Error; cerr != nil {
			return false, &types.StoreError{Op: "insert product", Err: cerr}
		}
		return true, nil

	default:
		return false, &types.StoreError{Op: "lookup product", Err: err}
	}
}

// FindProductByURL returns the product with the given genuine URL, or nil.
func (s *Store) FindProductByURL(ctx context.Context, url string) (*Product, error) {
	if IsPlaceholderURL(url) {
		return nil, nil
	}
	var p Product
	err := s.db.WithContext(ctx).Where("url = ?", url).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &types.StoreError{Op: "find product", Err: err}
	}
	return &p, nil
}

// EnsureCategories seeds the root categories from the lexicon table,
// preserving declared order as the display order. Existing slugs are left
// untouched.
func (s *Store) EnsureCategories(ctx context.Context, cats []config.CategoryKeywords) error {
	db := s.db.WithContext(ctx)
	for i, c := range cats {
		cat := Category{Name: c.Name, Slug: c.Slug, OrderIndex: i}
		err := db.Where("slug = ?", c.Slug).FirstOrCreate(&cat).Error
		if err != nil {
			return &types.StoreError{Op: "ensure category", Err: err}
		}
	}
	return nil
}

// EnsureCategory creates a category row unless the slug already exists. Used
// for child categories; the roots come from EnsureCategories.
func (s *Store) EnsureCategory(ctx context.Context, cat *Category) error {
	err := s.db.WithContext(ctx).Where("slug = ?", cat.Slug).FirstOrCreate(cat).Error
	if err != nil {
		return &types.StoreError{Op: "ensure category", Err: err}
	}
	return nil
}

// CategoryIDBySlug resolves a category slug to its row ID. A missing slug is
// a configuration error recovered by the caller with the default bucket.
func (s *Store) CategoryIDBySlug(ctx context.Context, slug string) (*uint, error) {
	var cat Category
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &types.StoreError{Op: "category by slug", Err: err}
	}
	return &cat.ID, nil
}

// AssignCategory points a product at a category.
func (s *Store) AssignCategory(ctx context.Context, productID uint, categoryID *uint) error {
	err := s.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ?", productID).
		Update("category_id", categoryID).Error
	if err != nil {
		return &types.StoreError{Op: "assign category", Err: err}
	}
	return nil
}
