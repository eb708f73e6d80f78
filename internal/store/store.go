// Package store owns the relational schema (categories, products,
// product_reviews) and the transactional, idempotent write operations the
// ingestion pipeline depends on.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pazarlab/tezgah/internal/config"
)

// Store is the persistence handle for one ingestion run. One handle per run,
// explicitly passed; no package-level connection state.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open opens (and migrates) the SQLite store. Migration is idempotent:
// AutoMigrate only adds missing tables, columns, and indexes.
func Open(cfg config.StoreConfig, logger *slog.Logger) (*Store, error) {
	dsn := cfg.DSN
	if !strings.Contains(dsn, "?") && !strings.HasPrefix(dsn, "file::memory:") {
		busyMillis := cfg.BusyTimeout.Milliseconds()
		if busyMillis <= 0 {
			busyMillis = 5000
		}
		dsn = fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on", dsn, busyMillis)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	if err := db.AutoMigrate(&Category{}, &Product{}, &ProductReview{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Transaction runs fn inside one database transaction. The commit-or-rollback
// happens on every exit path, including panics and cancellation.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, logger: s.logger})
	})
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// placeholderHosts are the seed/synthetic stand-in domains. URLs on these
// hosts never serve as product identity.
var placeholderHosts = []string{
	"example.com",
	"example.org",
	"example.net",
	"localhost",
	"test.com",
}

// IsPlaceholderURL reports whether a URL is a synthetic stand-in rather than
// a genuine marketplace link.
func IsPlaceholderURL(rawURL string) bool {
	u := strings.TrimSpace(strings.ToLower(rawURL))
	if u == "" {
		return true
	}
	for _, host := range placeholderHosts {
		if strings.Contains(u, host) {
			return true
		}
	}
	return false
}

// placeholderURLCondition is the SQL twin of IsPlaceholderURL, for the
// verification and purge queries.
func placeholderURLCondition() (string, []any) {
	var parts []string
	var args []any
	parts = append(parts, "url = ''")
	for _, host := range placeholderHosts {
		parts = append(parts, "url LIKE ?")
		args = append(args, "%"+host+"%")
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
