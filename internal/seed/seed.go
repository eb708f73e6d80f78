// Package seed fills the store with a deterministic synthetic catalog so
// dashboards and exports have data when live scraping is unavailable. Every
// seeded row carries a placeholder URL and a nil scraped-at, so verification
// and purge can always separate it from genuine data.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/pazarlab/tezgah/internal/config"
	"github.com/pazarlab/tezgah/internal/normalize"
	"github.com/pazarlab/tezgah/internal/store"
)

// rngSeed pins the catalog so repeated seeding produces identical rows and
// the upsert path turns re-seeding into a no-op update.
const rngSeed = 7319

// Seeder writes the synthetic catalog.
type Seeder struct {
	cfg    *config.Config
	store  *store.Store
	norm   *normalize.Normalizer
	logger *slog.Logger
	rng    *rand.Rand
}

// Result summarizes one seeding pass.
type Result struct {
	Categories int
	Products   int
	Created    int
	Updated    int
}

func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Seeder {
	return &Seeder{
		cfg:    cfg,
		store:  st,
		norm:   normalize.New(cfg.Lexicon),
		logger: logger.With("component", "seed"),
		rng:    rand.New(rand.NewSource(rngSeed)),
	}
}

// childCategory is a second-level category under a lexicon root.
type childCategory struct {
	parentSlug string
	name       string
	slug       string
}

var childCategories = []childCategory{
	{"elektronik", "Telefon", "telefon"},
	{"elektronik", "Bilgisayar", "bilgisayar"},
	{"elektronik", "Televizyon", "televizyon"},
	{"giyim", "Kadın Giyim", "kadin-giyim"},
	{"giyim", "Erkek Giyim", "erkek-giyim"},
	{"giyim", "Ayakkabı", "ayakkabi"},
	{"ev-yasam", "Mobilya", "mobilya"},
	{"ev-yasam", "Mutfak", "mutfak"},
	{"kozmetik", "Parfüm", "parfum"},
	{"kozmetik", "Cilt Bakımı", "cilt-bakimi"},
	{"anne-bebek", "Bebek Arabası", "bebek-arabasi"},
	{"spor", "Fitness", "fitness"},
}

// productTemplate is one synthetic product before pricing.
type productTemplate struct {
	name  string
	brand string
	base  float64 // list price in TRY
}

var productTemplates = []productTemplate{
	{"Akıllı Telefon 128GB Siyah", "Samsung", 18999},
	{"Kablosuz Kulaklık Pro", "Apple", 7499},
	{"Dizüstü Bilgisayar 15.6\" 16GB RAM", "Lenovo", 27999},
	{"55\" 4K Smart Televizyon", "LG", 21499},
	{"Robot Süpürge Akıllı Haritalama", "Xiaomi", 12999},
	{"Erkek Spor Ayakkabı Beyaz", "Nike", 3299},
	{"Kadın Triko Kazak Bej", "Koton", 549},
	{"Slim Fit Erkek Gömlek Mavi", "Mavi", 799},
	{"Kadın Deri Çanta Siyah", "Derimod", 2199},
	{"Çocuk Pamuklu Tişört 3'lü Paket", "LC Waikiki", 349},
	{"Paslanmaz Çelik Tencere Seti 8 Parça", "Karaca", 4599},
	{"Ortopedik Yastık Visco", "Yataş", 899},
	{"Kahve Makinesi Türk Kahvesi", "Arzum", 1849},
	{"Erkek Parfüm 100ml EDT", "Hugo Boss", 2799},
	{"Nemlendirici Yüz Kremi 50ml", "Nivea", 299},
	{"Bebek Arabası Travel Sistem", "Chicco", 15999},
	{"Bebek Bezi 4 Numara 120'li", "Prima", 699},
	{"Koşu Bandı Katlanabilir", "Voit", 18499},
	{"Yoga Matı 10mm Mor", "Delta", 399},
	{"Dambıl Seti 20kg", "Altis", 1299},
}

// Run seeds the category tree and the product catalog. Re-running updates the
// same rows in place; it never duplicates.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	if err := s.store.EnsureCategories(ctx, s.cfg.Lexicon.Categories); err != nil {
		return nil, err
	}
	res.Categories = len(s.cfg.Lexicon.Categories)

	for i, child := range childCategories {
		parentID, err := s.store.CategoryIDBySlug(ctx, child.parentSlug)
		if err != nil {
			return nil, err
		}
		if parentID == nil {
			s.logger.Warn("parent category missing, skipping child", "parent", child.parentSlug, "child", child.slug)
			continue
		}
		cat := &store.Category{Name: child.name, Slug: child.slug, ParentID: parentID, OrderIndex: i}
		if err := s.store.EnsureCategory(ctx, cat); err != nil {
			return nil, err
		}
		res.Categories++
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		for i, tpl := range productTemplates {
			created, err := s.seedProduct(ctx, tx, i, tpl)
			if err != nil {
				return err
			}
			res.Products++
			if created {
				res.Created++
			} else {
				res.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("seed complete",
		"categories", res.Categories, "products", res.Products,
		"created", res.Created, "updated", res.Updated)
	return res, nil
}

func (s *Seeder) seedProduct(ctx context.Context, tx *store.Store, idx int, tpl productTemplate) (bool, error) {
	original := decimal.NewFromFloat(tpl.base)
	// Discounts land on 5% steps between 0 and 40.
	discountSteps := int64(s.rng.Intn(9))
	price := original.Mul(decimal.NewFromInt(100 - discountSteps*5)).Div(decimal.NewFromInt(100)).Round(2)

	rating := 3.0 + s.rng.Float64()*2.0 // seeded shelves skew positive
	reviewCount := 10 + s.rng.Intn(490)

	slug := s.norm.AssignCategory(tpl.name, "")
	catID, err := tx.CategoryIDBySlug(ctx, slug)
	if err != nil {
		return false, err
	}

	p := &store.Product{
		Name:          tpl.name,
		Brand:         tpl.brand,
		Price:         price,
		OriginalPrice: original,
		DiscountPct:   normalize.Discount(price, original),
		CategoryID:    catID,
		Rating:        float64(int(rating*10)) / 10,
		ReviewCount:   reviewCount,
		InStock:       true,
		URL:           fmt.Sprintf("https://example.com/urun/%d", idx+1),
		ImageURL:      fmt.Sprintf("https://example.com/gorsel/%d.jpg", idx+1),
		SiteName:      "seed",
		Description:   tpl.name,
		ScrapedAt:     nil,
	}
	return tx.UpsertProduct(ctx, p)
}
