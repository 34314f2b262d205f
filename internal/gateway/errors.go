package gateway

import (
	"fmt"
	"net/http"
	"time"
)

// Kind is the gateway's error taxonomy. Every failure a caller can see
// maps onto exactly one of these; tier failures inside the limiter and
// cache never surface here because they are recovered by fallback.
type Kind int

const (
	KindUnauthenticated Kind = iota
	KindForbidden
	KindInvalidInput
	KindNotFound
	KindRateLimited
	KindUpstream
)

// Code is the stable string carried in error envelopes.
func (k Kind) Code() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "upstream_error"
	}
}

// HTTPStatus maps the kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is the one error type handlers return to the dispatcher.
type Error struct {
	Kind       Kind
	Message    string
	Field      string        // set for invalid input
	RetryAfter time.Duration // set for rate limiting
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func errUnauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "authentication required"}
}

func errForbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "insufficient role"}
}

func errInvalidInput(field, msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg, Field: field}
}

func errNotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "unknown route"}
}

func errRateLimited(retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: "rate limit exceeded", RetryAfter: retryAfter}
}

func errUpstream(err error) *Error {
	return &Error{Kind: KindUpstream, Message: "internal error", cause: err}
}

// asError normalizes anything a handler returns into an *Error;
// untyped failures become upstream errors.
func asError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return errUpstream(err)
}
