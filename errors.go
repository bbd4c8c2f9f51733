package vecwire

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid is the sentinel for caller/input errors. Every
	// *ErrInvalidInput matches it via errors.Is.
	ErrInvalid = errors.New("invalid input")

	// ErrMalformedWire indicates decode-side wire bytes that violate the
	// producer contract (e.g. truncated sparse records). There is no safe
	// way to resynchronize mid-buffer, so decoding fails fast.
	ErrMalformedWire = errors.New("malformed wire data")
)

// ErrInvalidInput indicates invalid caller input: inconsistent rows,
// missing required fields, mismatched column lengths, malformed vector
// values. It always names the offending field or column.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidInput struct {
	Field  string
	Reason string
	cause  error
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid %q: %s", e.Field, e.Reason)
}

func (e *ErrInvalidInput) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return ErrInvalid
}

// Is reports whether target is ErrInvalid, so callers can test the error
// kind without knowing the concrete type.
func (e *ErrInvalidInput) Is(target error) bool { return target == ErrInvalid }

// NewInvalid creates an ErrInvalidInput for the given field.
func NewInvalid(field, format string, args ...any) *ErrInvalidInput {
	return &ErrInvalidInput{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// WrapInvalid creates an ErrInvalidInput caused by err.
func WrapInvalid(field string, err error) *ErrInvalidInput {
	return &ErrInvalidInput{Field: field, Reason: err.Error(), cause: err}
}
