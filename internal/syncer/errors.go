package syncer

import (
	"errors"
	"fmt"
)

// Sentinel errors shared between the engine and its adapters. Callers should
// use [errors.Is] to match against these values.
var (
	// ErrEntityNotFound is returned by [EntityAdapter.Load] when no entity
	// with the requested id exists for the owner. Inside a batch this is an
	// expected condition and is folded into a conflict or ignored outcome,
	// never surfaced to the transport layer.
	ErrEntityNotFound = errors.New("entity was not found")
)

// BadRequestError rejects an entire batch before any mutation has happened:
// a malformed envelope, an unparsable timestamp, or a recognized operation
// missing a required field. The transport layer maps it to HTTP 400.
type BadRequestError struct {
	// Field names the offending envelope or operation field.
	Field string

	// Reason is a short human-readable description of what is wrong.
	Reason string
}

// Error implements the error interface.
func (e *BadRequestError) Error() string {
	return fmt.Sprintf("bad request: field %q: %s", e.Field, e.Reason)
}

func badRequest(field, format string, args ...any) *BadRequestError {
	return &BadRequestError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsBadRequest reports whether err is (or wraps) a *BadRequestError.
func IsBadRequest(err error) bool {
	var bre *BadRequestError
	return errors.As(err, &bre)
}
