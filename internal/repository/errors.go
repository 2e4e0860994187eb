package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks failures that must abort a run before any work starts.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnknownSourceType is returned when a source carries a policy outside the recognized set.
	ErrUnknownSourceType = fmt.Errorf("%w: unknown source type", ErrConfiguration)
	// ErrDuplicateKey is returned by inserts that hit a uniqueness constraint.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidStatusTransition is returned when a status write would break monotonicity.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrPersistence wraps single-record write failures.
	ErrPersistence = errors.New("persistence error")
	// ErrRender is returned when a report cannot be rendered.
	ErrRender = errors.New("render error")
	// ErrSend is returned when a notification cannot be delivered.
	ErrSend = errors.New("send error")
)

// FetchErrorKind classifies why a fetch failed.
type FetchErrorKind string

const (
	FetchErrorTimeout    FetchErrorKind = "timeout"
	FetchErrorHTTPStatus FetchErrorKind = "http_status"
	FetchErrorNetwork    FetchErrorKind = "network"
)

// FetchError is returned by a PageFetcher when a URL could not be retrieved.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchErrorHTTPStatus {
		return fmt.Sprintf("fetch %s: HTTP %d for %s", e.Kind, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch %s: %v for %s", e.Kind, e.Cause, e.URL)
}

func (e *FetchError) Unwrap() error { return e.Cause }
