package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindConnection ErrorKind = "connection_failed"
	ErrKindHTTP       ErrorKind = "http_error"
	ErrKindMalformed  ErrorKind = "malformed_response"
)

// Error describes a failed call to the analyzer backend. None of these are
// retried internally; callers surface them to the user.
type Error struct {
	Kind   ErrorKind
	Op     string
	Status int    // set for ErrKindHTTP
	Body   string // raw response body for ErrKindHTTP
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrKindHTTP:
		return fmt.Sprintf("analyzer %s: backend returned status %d: %s", e.Op, e.Status, e.Body)
	default:
		return fmt.Sprintf("analyzer %s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an analyzer error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// AsError extracts the analyzer error from err, if any.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// classify maps a transport-level failure to Timeout or ConnectionFailed.
func classify(op string, err error) *Error {
	kind := ErrKindConnection
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = ErrKindTimeout
	} else if errors.Is(err, context.DeadlineExceeded) {
		kind = ErrKindTimeout
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func httpError(op string, status int, body []byte) *Error {
	return &Error{Kind: ErrKindHTTP, Op: op, Status: status, Body: string(body)}
}

func malformed(op string, err error) *Error {
	return &Error{Kind: ErrKindMalformed, Op: op, Err: err}
}
