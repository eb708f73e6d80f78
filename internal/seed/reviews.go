package seed

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/pazarlab/tezgah/internal/types"
)

// Generator produces synthetic reviews for the backfill pass. Output is a
// pure function of the product name, so re-running backfill regenerates the
// same reviews and the identity index dedups them to zero inserts.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

var reviewerNames = []string{
	"Ahmet Y.", "Ayşe K.", "Mehmet D.", "Fatma S.", "Mustafa A.",
	"Zeynep T.", "Emre B.", "Elif Ç.", "Can Ö.", "Merve G.",
	"Burak K.", "Selin A.", "Deniz Y.", "Ece M.", "Kerem U.",
}

// reviewLine pairs a comment with the star rating its tone implies.
type reviewLine struct {
	text   string
	rating int
}

var reviewLines = []reviewLine{
	{"Harika bir ürün, çok memnun kaldım. Herkese tavsiye ederim.", 5},
	{"Kaliteli ve hızlı kargo. Mükemmel paketleme.", 5},
	{"Fiyatına göre gayet başarılı, beğendim.", 4},
	{"Güzel ürün ama kargo biraz geç geldi.", 4},
	{"İdare eder, ne iyi ne kötü.", 3},
	{"Beklediğim gibi değildi ama kullanılabilir.", 3},
	{"Kalitesi kötü, hayal kırıklığı yaşadım.", 2},
	{"Berbat bir ürün, ikinci gün bozuldu. İade ettim.", 1},
	{"Süper ürün, ikincisini de aldım. Harika.", 5},
	{"Memnun kaldım, teşekkürler.", 4},
}

// Generate returns up to need reviews for the named product.
func (g *Generator) Generate(productName string, need int) []types.CandidateReview {
	if need <= 0 {
		return nil
	}
	// The cross-product is the pool of distinct (reviewer, text) identities;
	// past it the identity index would reject everything anyway.
	limit := len(reviewerNames) * len(reviewLines)
	if need > limit {
		need = limit
	}

	h := fnv.New64a()
	h.Write([]byte(productName))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	// Walk a shuffled cross-product so every review carries a distinct
	// (reviewer, text) identity and the requested count actually lands.
	order := rng.Perm(limit)

	reviews := make([]types.CandidateReview, 0, need)
	for i := 0; i < need; i++ {
		line := reviewLines[order[i]%len(reviewLines)]
		reviewer := reviewerNames[order[i]/len(reviewLines)]
		reviews = append(reviews, types.CandidateReview{
			ReviewerName: reviewer,
			Rating:       line.rating,
			Text:         line.text,
			RawDate:      fmt.Sprintf("2026-0%d-%02d", 1+i%8, 1+i%28),
			HelpfulCount: rng.Intn(40),
		})
	}
	return reviews
}
