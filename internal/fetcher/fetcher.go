package fetcher

import (
	"context"
	"math/rand"
	"time"
)

// Payload is the raw result of one fetch: bytes plus transport metadata.
// The pipeline never cares how it was obtained.
type Payload struct {
	// Target is the URL or API descriptor that was fetched.
	Target string

	// Body is the raw (decompressed) response body.
	Body []byte

	StatusCode  int
	ContentType string
	Duration    time.Duration
	FetchedAt   time.Time
}

// Fetcher retrieves raw payloads for the ingestion pipeline. Implementations
// must return either a payload or an explicit error, never both.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (*Payload, error)
	Close() error
}

// RandomDelay returns a random delay around the base duration (±25%).
// Used as a courtesy pause between fetches, not as a lock.
func RandomDelay(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	jitter := float64(base) * 0.25
	return base + time.Duration(rand.Float64()*2*jitter-jitter)
}
