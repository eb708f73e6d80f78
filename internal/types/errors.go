package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrNoRecord      = errors.New("no usable record in raw item")
	ErrEmptyResponse = errors.New("empty response body")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrUnknownSite   = errors.New("no site profile for target")
	ErrRunCancelled  = errors.New("ingestion run cancelled")
)

// FetchError wraps errors that occur while fetching a target.
type FetchError struct {
	Target     string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After header on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.Target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.Target, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ParseError wraps errors that occur while extracting candidates from a raw payload.
type ParseError struct {
	Target string
	Site   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (site=%q): %v", e.Target, e.Site, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NormalizeError records a field that could not be converted. The record is
// still persisted with the field defaulted; this error only feeds the run summary.
type NormalizeError struct {
	Field string
	Raw   string
	Err   error
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("normalize error for field %q (raw=%q): %v", e.Field, e.Raw, e.Err)
}

func (e *NormalizeError) Unwrap() error { return e.Err }

// StoreError wraps errors from the persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (%s): %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
