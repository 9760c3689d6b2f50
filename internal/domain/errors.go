package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNetworkTimeout    = errors.New("network timeout")
	ErrNetworkFailure    = errors.New("network failure")
	ErrMalformedResponse = errors.New("malformed response")

	ErrUnknownCurrency  = errors.New("unknown currency")
	ErrInvalidRateTable = errors.New("invalid rate table")

	// ErrEmptySeries rejects a series with no capacity. It is a configuration
	// error raised at construction, never at append time.
	ErrEmptySeries   = errors.New("series capacity must be positive")
	ErrUnknownSeries = errors.New("unknown series")
)

// FetchError is returned by a PriceSource for every failed fetch.
type FetchError struct {
	Kind   error // one of ErrNetworkTimeout, ErrNetworkFailure, ErrMalformedResponse
	Status int   // HTTP status, when one was received
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%v (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// FetchOutcome labels an error for logs and metrics.
func FetchOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNetworkTimeout):
		return "timeout"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "failure"
	}
}
