package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/pazarlab/tezgah/internal/config"
	"github.com/pazarlab/tezgah/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testFetcherConfig() *config.FetcherConfig {
	cfg := config.DefaultConfig().Fetcher
	cfg.RequestTimeout = 5 * time.Second
	return &cfg
}

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(testFetcherConfig(), testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// --- Fetch Tests ---

func TestFetchOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request must carry a User-Agent")
		}
		if r.Header.Get("Accept-Language") == "" {
			t.Error("request must carry Accept-Language")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	payload, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(payload.Body) != `{"products":[]}` {
		t.Errorf("body = %q", payload.Body)
	}
	if payload.StatusCode != 200 {
		t.Errorf("status = %d", payload.StatusCode)
	}
	if payload.ContentType != "application/json" {
		t.Errorf("content type = %q", payload.ContentType)
	}
}

func TestFetchGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write([]byte("compressed payload"))
		zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	payload, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(payload.Body) != "compressed payload" {
		t.Errorf("gzip not decompressed: %q", payload.Body)
	}
}

func TestFetchBrotli(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		bw.Write([]byte("brotli payload"))
		bw.Close()
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	payload, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(payload.Body) != "brotli payload" {
		t.Errorf("brotli not decompressed: %q", payload.Body)
	}
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 503")
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fe.StatusCode != 503 || !fe.Retryable {
		t.Errorf("503 must be retryable: %+v", fe)
	}
}

func TestFetchClientErrorNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != 403 || fe.Retryable {
		t.Errorf("403 must not be retryable: %+v", fe)
	}
}

func TestFetchRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !fe.Retryable || fe.RetryAfter != 30*time.Second {
		t.Errorf("429 must carry Retry-After: %+v", fe)
	}
}

func TestFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for empty body")
	}
	if !errors.Is(err, types.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestFetchBodySizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("a"), 4096))
	}))
	defer srv.Close()

	cfg := testFetcherConfig()
	cfg.MaxBodySize = 1024
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	payload, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(payload.Body) != 1024 {
		t.Errorf("body not capped: %d bytes", len(payload.Body))
	}
}

// --- Helper Tests ---

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("10"); got != 10*time.Second {
		t.Errorf("seconds form: %s", got)
	}
	if got := parseRetryAfter("900"); got != 120*time.Second {
		t.Errorf("cap not applied: %s", got)
	}
	if got := parseRetryAfter(""); got != 5*time.Second {
		t.Errorf("default back-off: %s", got)
	}
	if got := parseRetryAfter("not-a-value"); got != 5*time.Second {
		t.Errorf("garbage should fall back to default: %s", got)
	}
}

func TestUserAgentRotation(t *testing.T) {
	cfg := testFetcherConfig()
	cfg.UserAgents = []string{"ua-one", "ua-two"}
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		seen[f.nextUserAgent()] = true
	}
	if !seen["ua-one"] || !seen["ua-two"] {
		t.Errorf("rotation did not cycle both agents: %v", seen)
	}
}

func TestRandomDelayJitter(t *testing.T) {
	base := 1 * time.Second
	for i := 0; i < 50; i++ {
		d := RandomDelay(base)
		if d < 750*time.Millisecond || d > 1250*time.Millisecond {
			t.Fatalf("delay %s outside ±25%% of base", d)
		}
	}
}
