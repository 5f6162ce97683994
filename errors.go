package bencode

import (
	"errors"
	"fmt"
)

var (
	ErrEndOfInput      = errors.New("bencode: unexpected end of input")
	ErrInvalidToken    = errors.New("bencode: invalid token")
	ErrMalformedNumber = errors.New("bencode: malformed number")
	ErrMissingArgument = errors.New("bencode: missing argument")
	ErrDepthExceeded   = errors.New("bencode: nesting depth exceeded")
	ErrUnsupported     = errors.New("bencode: unsupported type")
	ErrTypeMismatch    = errors.New("bencode: type mismatch")
)

// TokenError reports a byte that cannot begin or continue the element being
// parsed. It matches ErrInvalidToken.
type TokenError struct {
	Kind   Kind  // kind being parsed when the byte was seen
	Token  byte  // offending byte
	Offset int64 // stream offset of the offending byte
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("bencode: unexpected token %q at offset %d while reading %s", e.Token, e.Offset, e.Kind)
}

func (e *TokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// Error is the single failure type returned by the package-level entry
// points. The underlying cause is kept for errors.Is and errors.As.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "bencode: " + e.Op + " failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
