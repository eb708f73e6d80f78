package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pazarlab/tezgah/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// testStore opens a per-test in-memory database. The DSN carries the test
// name so tests never share state.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	st, err := Open(config.StoreConfig{DSN: dsn}, testLogger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func scrapedNow() *time.Time {
	now := time.Now().UTC()
	return &now
}

func genuineProduct(name, url string) *Product {
	return &Product{
		Name:      name,
		Brand:     "TestBrand",
		Price:     d("1500.00"),
		Rating:    4.5,
		InStock:   true,
		URL:       url,
		SiteName:  "test",
		ScrapedAt: scrapedNow(),
	}
}

// --- Upsert Tests ---

func TestUpsertProductCreatesThenUpdates(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	p1 := genuineProduct("Test Phone", "https://www.trendyol.com/test-phone-p-123")
	created, err := st.UpsertProduct(ctx, p1)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Fatal("first upsert should create")
	}

	// Re-ingesting the same URL with a new price must update the row in place.
	p2 := genuineProduct("Test Phone", "https://www.trendyol.com/test-phone-p-123")
	p2.Price = d("1350.00")
	created, err = st.UpsertProduct(ctx, p2)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatal("second upsert must update, not create")
	}
	if p2.ID != p1.ID {
		t.Errorf("update must keep the row ID: %d != %d", p2.ID, p1.ID)
	}

	got, err := st.FindProductByURL(ctx, p1.URL)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("product not found after upsert")
	}
	if !got.Price.Equal(d("1350.00")) {
		t.Errorf("price = %s, want 1350.00", got.Price)
	}

	var count int64
	if err := st.db.Model(&Product{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 row, got %d", count)
	}
}

func TestUpsertProductPlaceholderURLUsesName(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	p1 := genuineProduct("Seed Kettle", "https://example.com/urun/1")
	if _, err := st.UpsertProduct(ctx, p1); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Same name, different placeholder URL: still the same row.
	p2 := genuineProduct("Seed Kettle", "https://example.org/other/2")
	created, err := st.UpsertProduct(ctx, p2)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created {
		t.Error("placeholder URLs must dedup by name")
	}
}

func TestUpsertProductPreservesFieldsOnEmptyUpdate(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	p1 := genuineProduct("Test Phone", "https://www.trendyol.com/p-9")
	p1.Description = "original description"
	p1.ImageURL = "https://cdn.example.net/a.jpg"
	if _, err := st.UpsertProduct(ctx, p1); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	p2 := genuineProduct("Test Phone", "https://www.trendyol.com/p-9")
	p2.Description = ""
	p2.ImageURL = ""
	p2.Brand = ""
	if _, err := st.UpsertProduct(ctx, p2); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, _ := st.FindProductByURL(ctx, p1.URL)
	if got.Description != "original description" {
		t.Errorf("empty update must not wipe description: %q", got.Description)
	}
	if got.ImageURL != "https://cdn.example.net/a.jpg" {
		t.Errorf("empty update must not wipe image: %q", got.ImageURL)
	}
	if got.Brand != "TestBrand" {
		t.Errorf("empty update must not wipe brand: %q", got.Brand)
	}
}

// --- Review Tests ---

func TestInsertReviewIfAbsent(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	p := genuineProduct("Test Phone", "https://www.trendyol.com/p-1")
	if _, err := st.UpsertProduct(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	r := &ProductReview{
		ProductID:    p.ID,
		ReviewerName: "Ali K.",
		ReviewText:   "Harika ürün",
		Rating:       5,
	}
	inserted, err := st.InsertReviewIfAbsent(ctx, r)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !inserted {
		t.Fatal("first insert should succeed")
	}

	dup := &ProductReview{
		ProductID:    p.ID,
		ReviewerName: "Ali K.",
		ReviewText:   "Harika ürün",
		Rating:       4, // different rating, same identity
	}
	inserted, err = st.InsertReviewIfAbsent(ctx, dup)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Error("duplicate identity must not insert")
	}

	count, err := st.StoredReviewCount(ctx, p.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 review, got %d", count)
	}

	// Same text from a different reviewer is a distinct review.
	other := &ProductReview{ProductID: p.ID, ReviewerName: "Veli D.", ReviewText: "Harika ürün", Rating: 5}
	if inserted, _ = st.InsertReviewIfAbsent(ctx, other); !inserted {
		t.Error("different reviewer must insert")
	}
}

func TestReviewDeficits(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	poor := genuineProduct("Poor Phone", "https://www.trendyol.com/p-poor")
	rich := genuineProduct("Rich Phone", "https://www.trendyol.com/p-rich")
	st.UpsertProduct(ctx, poor)
	st.UpsertProduct(ctx, rich)

	for i := 0; i < 3; i++ {
		st.InsertReviewIfAbsent(ctx, &ProductReview{
			ProductID: rich.ID, ReviewerName: fmt.Sprintf("User %d", i), ReviewText: fmt.Sprintf("yorum %d", i),
		})
	}

	deficits, err := st.ReviewDeficits(ctx, 3)
	if err != nil {
		t.Fatalf("deficits: %v", err)
	}
	if len(deficits) != 1 {
		t.Fatalf("expected 1 deficit, got %d", len(deficits))
	}
	if deficits[0].ProductID != poor.ID || deficits[0].Have != 0 {
		t.Errorf("deficit = %+v", deficits[0])
	}
}

// --- Category Tests ---

func TestEnsureCategories(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	cats := config.DefaultCategories()

	if err := st.EnsureCategories(ctx, cats); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// Idempotent: second run adds nothing.
	if err := st.EnsureCategories(ctx, cats); err != nil {
		t.Fatalf("re-ensure: %v", err)
	}

	var count int64
	st.db.Model(&Category{}).Count(&count)
	if count != int64(len(cats)) {
		t.Errorf("expected %d categories, got %d", len(cats), count)
	}

	id, err := st.CategoryIDBySlug(ctx, "elektronik")
	if err != nil || id == nil {
		t.Fatalf("slug lookup failed: %v, %v", id, err)
	}
	missing, err := st.CategoryIDBySlug(ctx, "yok-boyle-bir-sey")
	if err != nil || missing != nil {
		t.Errorf("missing slug should be (nil, nil), got %v, %v", missing, err)
	}
}

// --- Placeholder / Purge Tests ---

func TestIsPlaceholderURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.com/urun/1", true},
		{"https://example.org/x", true},
		{"http://localhost:8080/p", true},
		{"https://test.com/a", true},
		{"", true},
		{"https://www.trendyol.com/telefon-p-123", false},
	}
	for _, tc := range cases {
		if got := IsPlaceholderURL(tc.url); got != tc.want {
			t.Errorf("IsPlaceholderURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestPurgeSynthetic(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	genuine := genuineProduct("Real Phone", "https://www.trendyol.com/p-1")
	st.UpsertProduct(ctx, genuine)

	synthetic := genuineProduct("Fake Phone", "https://example.com/urun/1")
	synthetic.ScrapedAt = nil
	st.UpsertProduct(ctx, synthetic)

	st.InsertReviewIfAbsent(ctx, &ProductReview{ProductID: genuine.ID, ReviewerName: "A", ReviewText: "iyi"})
	st.InsertReviewIfAbsent(ctx, &ProductReview{ProductID: synthetic.ID, ReviewerName: "B", ReviewText: "sahte"})

	purged, err := st.PurgeSynthetic(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged product, got %d", purged)
	}

	var products, reviews int64
	st.db.Model(&Product{}).Count(&products)
	st.db.Model(&ProductReview{}).Count(&reviews)
	if products != 1 || reviews != 1 {
		t.Errorf("after purge: %d products, %d reviews; want 1, 1", products, reviews)
	}
}

func TestGenuineBreakdown(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	st.EnsureCategories(ctx, config.DefaultCategories())
	catID, _ := st.CategoryIDBySlug(ctx, "elektronik")

	genuine := genuineProduct("Real Phone", "https://www.trendyol.com/p-1")
	genuine.CategoryID = catID
	genuine.ReviewCount = 250
	st.UpsertProduct(ctx, genuine)

	synthetic := genuineProduct("Fake Phone", "https://example.com/urun/1")
	synthetic.ScrapedAt = nil
	st.UpsertProduct(ctx, synthetic)

	stats, err := st.GenuineBreakdown(ctx)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if stats.Products != 2 || stats.GenuineProducts != 1 {
		t.Errorf("products = %d genuine = %d, want 2/1", stats.Products, stats.GenuineProducts)
	}
	if stats.PlaceholderURLs != 1 {
		t.Errorf("placeholder URLs = %d, want 1", stats.PlaceholderURLs)
	}
	if stats.Categorized != 1 {
		t.Errorf("categorized = %d, want 1", stats.Categorized)
	}
	if stats.SelfReportedTotal != 250 {
		t.Errorf("self-reported = %d, want 250", stats.SelfReportedTotal)
	}
}

// --- Export View Tests ---

func TestExportRows(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	st.EnsureCategories(ctx, config.DefaultCategories())
	catID, _ := st.CategoryIDBySlug(ctx, "elektronik")

	p := genuineProduct("Export Phone", "https://www.trendyol.com/p-1")
	p.CategoryID = catID
	st.UpsertProduct(ctx, p)
	st.InsertReviewIfAbsent(ctx, &ProductReview{ProductID: p.ID, ReviewerName: "A", ReviewText: "x"})
	st.InsertReviewIfAbsent(ctx, &ProductReview{ProductID: p.ID, ReviewerName: "B", ReviewText: "y"})

	rows, err := st.ExportRows(ctx)
	if err != nil {
		t.Fatalf("export rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.CategorySlug != "elektronik" {
		t.Errorf("category slug = %q", row.CategorySlug)
	}
	if row.StoredReviews != 2 {
		t.Errorf("stored reviews = %d, want 2", row.StoredReviews)
	}
	if !row.Genuine {
		t.Error("scraped product must be genuine")
	}
}

// --- Transaction Tests ---

func TestTransactionRollback(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	err := st.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.UpsertProduct(ctx, genuineProduct("Doomed", "https://www.trendyol.com/p-x")); err != nil {
			return err
		}
		return fmt.Errorf("forced failure")
	})
	if err == nil {
		t.Fatal("expected transaction error")
	}

	got, _ := st.FindProductByURL(ctx, "https://www.trendyol.com/p-x")
	if got != nil {
		t.Error("rolled-back row must not persist")
	}
}
