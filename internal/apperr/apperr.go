// Package apperr gives upstream-fetch failures a small, closed taxonomy
// instead of conflating "item missing" with "upstream down".
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the error taxonomy from the resilient upstream client down
// through the reader API. It is a discriminated outcome, not a sentinel
// per error site, so callers branch on Kind rather than string-matching.
type Kind uint8

const (
	// KindUnknown covers errors that never passed through Wrap.
	KindUnknown Kind = iota

	// KindTimeout is a per-attempt deadline exceeded.
	KindTimeout

	// KindTransient is a 5xx/408/429/transport failure — retry-eligible.
	KindTransient

	// KindPermanent is a 4xx (other than 408/429) or malformed payload — not retried.
	KindPermanent

	// KindCircuitOpen means the breaker refused the call without contacting upstream.
	KindCircuitOpen

	// KindCancelled means the caller aborted (context cancellation/deadline).
	KindCancelled

	// KindServiceUnavailable is terminal: surfaced to the reader when a
	// rebuild failed and no stale snapshot exists to fall back to.
	KindServiceUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindCircuitOpen:
		return "circuit_open"
	case KindCancelled:
		return "cancelled"
	case KindServiceUnavailable:
		return "service_unavailable"
	default:
		return "unknown"
	}
}

// Error is the structured error type threaded through every component.
type Error struct {
	kind Kind
	msg  string
	op   string
	orig error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := e.msg
	if e.op != "" {
		prefix = e.op + ": " + prefix
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", prefix, e.orig)
	}
	return prefix
}

// Unwrap lets errors.Is/As see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.orig }

// Kind returns the taxonomy classification.
func (e *Error) Kind() Kind { return e.kind }

// New builds a fresh *Error with no wrapped cause.
func New(kind Kind, msg string) error { return &Error{kind: kind, msg: msg} }

// Newf is New with Printf-style formatting.
func Newf(kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrap attaches a kind and message to an existing cause.
func Wrap(orig error, kind Kind, msg string) error {
	if orig == nil {
		return nil
	}
	return &Error{kind: kind, msg: msg, orig: orig}
}

// WithOp copy-on-write attaches an operation label for logging/traces.
func WithOp(err error, op string) error {
	var e *Error
	if errors.As(err, &e) {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// KindOf extracts the Kind from any error, defaulting to KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// Retryable reports whether a Kind is transient-class per §4.1: 5xx/408/429,
// transport errors, and timeouts are retried; permanent failures are not.
func (k Kind) Retryable() bool {
	switch k {
	case KindTransient, KindTimeout:
		return true
	default:
		return false
	}
}
