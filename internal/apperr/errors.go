// Package apperr classifies request failures so handlers can map them to HTTP statuses.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	// KindUpstream covers provider failures: network, auth, quota, malformed responses.
	KindUpstream Kind = iota
	// KindInput is a client mistake such as a missing text parameter.
	KindInput
	// KindIO is a local disk failure while writing artifacts.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindIO:
		return "io"
	default:
		return "upstream"
	}
}

// Status maps a kind to the HTTP status callers observe.
func (k Kind) Status() int {
	if k == KindInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error carries a kind and a route label alongside the underlying cause.
type Error struct {
	Kind  Kind
	Label string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Label
	}
	if e.Label == "" {
		return e.Err.Error()
	}
	return e.Label + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

var ErrTextRequired = &Error{Kind: KindInput, Label: "Text is required"}

func Upstream(err error) error { return &Error{Kind: KindUpstream, Err: err} }

func IO(err error) error { return &Error{Kind: KindIO, Err: err} }

// WithLabel prefixes err with a route label, keeping the kind of any wrapped *Error.
func WithLabel(label string, err error) *Error {
	return &Error{Kind: KindOf(err), Label: label, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, defaulting to KindUpstream.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// Status returns the HTTP status for err.
func Status(err error) int {
	return KindOf(err).Status()
}
