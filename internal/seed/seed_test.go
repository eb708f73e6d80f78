package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/pazarlab/tezgah/internal/config"
	"github.com/pazarlab/tezgah/internal/store"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testSetup(t *testing.T) (*config.Config, *store.Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	st, err := store.Open(cfg.Store, testLogger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return cfg, st
}

// --- Seeding Tests ---

func TestSeedRun(t *testing.T) {
	cfg, st := testSetup(t)
	ctx := context.Background()

	res, err := New(cfg, st, testLogger).Run(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res.Products == 0 || res.Created != res.Products {
		t.Errorf("first seed should create everything: %+v", res)
	}
	// Root categories plus children.
	if res.Categories <= len(cfg.Lexicon.Categories) {
		t.Errorf("expected child categories on top of the %d roots, got %d",
			len(cfg.Lexicon.Categories), res.Categories)
	}

	stats, err := st.GenuineBreakdown(ctx)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if stats.GenuineProducts != 0 {
		t.Errorf("seeded rows must never count as genuine, got %d", stats.GenuineProducts)
	}
	if stats.PlaceholderURLs != stats.Products {
		t.Errorf("every seeded row must carry a placeholder URL: %d of %d",
			stats.PlaceholderURLs, stats.Products)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	cfg, st := testSetup(t)
	ctx := context.Background()

	first, err := New(cfg, st, testLogger).Run(ctx)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	second, err := New(cfg, st, testLogger).Run(ctx)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}

	if second.Created != 0 {
		t.Errorf("re-seed created %d new products, want 0", second.Created)
	}
	if second.Updated != first.Products {
		t.Errorf("re-seed should update all %d products, updated %d", first.Products, second.Updated)
	}
}

func TestSeedThenPurgeLeavesNothing(t *testing.T) {
	cfg, st := testSetup(t)
	ctx := context.Background()

	res, err := New(cfg, st, testLogger).Run(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	purged, err := st.PurgeSynthetic(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if int(purged) != res.Products {
		t.Errorf("purged %d, want all %d seeded products", purged, res.Products)
	}
}

// --- Generator Tests ---

func TestGeneratorDeterministic(t *testing.T) {
	gen := NewGenerator()

	a := gen.Generate("Akıllı Telefon", 5)
	b := gen.Generate("Akıllı Telefon", 5)
	if len(a) != 5 || len(b) != 5 {
		t.Fatalf("expected 5 reviews, got %d / %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("generator must be deterministic per product; review %d differs", i)
		}
	}

	other := gen.Generate("Kablosuz Kulaklık", 5)
	same := true
	for i := range a {
		if a[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different products should get different review sequences")
	}
}

func TestGeneratorIdentitiesDistinct(t *testing.T) {
	gen := NewGenerator()

	names := make([]string, 0, 50)
	for _, tpl := range productTemplates {
		names = append(names, tpl.name)
	}
	for i := 0; i < 30; i++ {
		names = append(names, fmt.Sprintf("Ürün %d", i))
	}

	for _, name := range names {
		reviews := gen.Generate(name, 20)
		if len(reviews) != 20 {
			t.Fatalf("%s: got %d reviews, want 20", name, len(reviews))
		}
		seen := map[string]bool{}
		for _, r := range reviews {
			key := r.ReviewerName + "\x00" + r.Text
			if seen[key] {
				t.Fatalf("%s: duplicate identity %q / %q", name, r.ReviewerName, r.Text)
			}
			seen[key] = true
		}
	}
}

func TestGeneratorFullPoolDistinct(t *testing.T) {
	limit := len(reviewerNames) * len(reviewLines)
	reviews := NewGenerator().Generate("Akıllı Telefon", limit+10)
	if len(reviews) != limit {
		t.Fatalf("got %d reviews, want pool size %d", len(reviews), limit)
	}
	seen := map[string]bool{}
	for _, r := range reviews {
		seen[r.ReviewerName+"\x00"+r.Text] = true
	}
	if len(seen) != limit {
		t.Errorf("only %d distinct identities in a pool of %d", len(seen), limit)
	}
}

func TestGeneratorNeedZero(t *testing.T) {
	if got := NewGenerator().Generate("x", 0); got != nil {
		t.Errorf("need 0 should return nil, got %d", len(got))
	}
}
