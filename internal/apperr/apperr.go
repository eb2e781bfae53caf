// Package apperr classifies failures so the HTTP layer can map them to
// status codes without leaking raw upstream error text to clients.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUpstream
	KindValidation
)

// Error carries a failure kind, a client-safe message, and the wrapped cause.
type Error struct {
	Kind Kind
	Msg  string // safe to return to clients
	Err  error  // full detail, logs only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Upstream(msg string, err error) error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

func Validation(msg string, err error) error {
	return &Error{Kind: KindValidation, Msg: msg, Err: err}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf returns the classification of err, defaulting to KindInternal
// for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// ClientMessage returns the client-safe message for err. Unclassified
// errors get a generic message so internals never reach the wire.
func ClientMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return "internal error"
}
