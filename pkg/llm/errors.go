package llm

import (
	"errors"
	"fmt"
)

// Failure classes, usable with errors.Is.
var (
	ErrUnavailable     = errors.New("language model unavailable")
	ErrRateLimited     = errors.New("language model rate limited")
	ErrInvalidResponse = errors.New("invalid language model response")
)

// Error is a classified backend failure.
type Error struct {
	Backend string
	// Kind is one of ErrUnavailable, ErrRateLimited or ErrInvalidResponse.
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Backend, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Backend, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unavailable(backend string, err error) error {
	return &Error{Backend: backend, Kind: ErrUnavailable, Err: err}
}

func rateLimited(backend string, err error) error {
	return &Error{Backend: backend, Kind: ErrRateLimited, Err: err}
}

func invalidResponse(backend string, err error) error {
	return &Error{Backend: backend, Kind: ErrInvalidResponse, Err: err}
}

// Outcome maps an Invoke error to a short label: "ok", "unavailable",
// "rate_limited", "invalid_response" or "error".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	}
	return "error"
}
