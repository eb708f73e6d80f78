package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a node in the two-level category tree. Roots have a nil
// ParentID; children never nest further.
type Category struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:255;not null"`
	Slug       string `gorm:"size:255;not null;uniqueIndex"`
	ParentID   *uint  `gorm:"index"`
	OrderIndex int    `gorm:"not null;default:0"`
}

func (Category) TableName() string { return "categories" }

// Product is one catalog entry. URL is the natural dedup identity when it is
// a genuine marketplace link; placeholder URLs mark seeded rows and never
// participate in identity matching.
type Product struct {
	ID            uint            `gorm:"primaryKey"`
	Name          string          `gorm:"size:500;not null;index"`
	Brand         string          `gorm:"size:255;index"`
	Price         decimal.Decimal `gorm:"type:decimal(16,2)"`
	OriginalPrice decimal.Decimal `gorm:"type:decimal(16,2)"`
	DiscountPct   decimal.Decimal `gorm:"type:decimal(5,2);default:0.00"`
	CategoryID    *uint           `gorm:"index"`
	Category      *Category       `gorm:"foreignKey:CategoryID"`
	Rating        float64
	// ReviewCount is the source site's self-reported count, refreshed on
	// every upsert. Locally stored rows are counted separately by the
	// verification queries.
	ReviewCount int
	InStock     bool   `gorm:"default:true"`
	URL         string `gorm:"size:1000;index"`
	ImageURL    string `gorm:"size:1000"`
	SiteName    string `gorm:"size:100;index"`
	Description string `gorm:"type:text"`
	// ScrapedAt is non-nil only for rows that came from a live fetch. Nil
	// marks synthetic/seeded data throughout the verification surface.
	ScrapedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	Reviews []ProductReview `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "products" }

// ProductReview is one customer comment. The composite unique index enforces
// at most one row per (product, reviewer, text) at the schema level.
type ProductReview struct {
	ID             uint   `gorm:"primaryKey"`
	ProductID      uint   `gorm:"not null;index;uniqueIndex:idx_review_identity"`
	ReviewerName   string `gorm:"size:255;uniqueIndex:idx_review_identity"`
	Rating         int
	ReviewText     string `gorm:"type:text;uniqueIndex:idx_review_identity"`
	ReviewDate     time.Time
	HelpfulCount   int
	SentimentScore float64
	Sentiment      string `gorm:"size:16"`
	ScrapedAt      *time.Time
	CreatedAt      time.Time
}

func (ProductReview) TableName() string { return "product_reviews" }
