package der

import (
	"errors"
	"fmt"
)

// Sentinel errors for decode and extraction failures.
// Use errors.Is() to check for these errors through the error chain.
var (
	// ErrUnexpectedEnd indicates a tag, length or value needs more bytes
	// than remain in the input (or in the enclosing constructed element).
	ErrUnexpectedEnd = errors.New("unexpected end of input")

	// ErrMalformedBitString indicates a BIT STRING with a zero length, leaving
	// no room for the unused-bits octet, or an unused-bits count above 7.
	ErrMalformedBitString = errors.New("malformed bit string")

	// ErrUnsupportedTag indicates a tag outside the recognized set.
	ErrUnsupportedTag = errors.New("unsupported tag")

	// ErrNoKeyFound indicates that no BIT STRING or OCTET STRING is a direct
	// child of the top-level sequence.
	ErrNoKeyFound = errors.New("no key found")

	// ErrInvalidHex indicates the hex-encoded input could not be decoded.
	ErrInvalidHex = errors.New("invalid hex input")

	// ErrMaxDepth indicates constructed elements nest deeper than the limit
	// configured with WithMaxDepth.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
)

// DecodeError describes a decode failure with its position in the input.
// It supports errors.Is() and errors.As() through Unwrap.
type DecodeError struct {
	Op     string // Reader that failed: "tag", "length", "integer", "bit string", ...
	Offset int    // Absolute input offset where the failing element starts
	Tag    byte   // Offending tag, only meaningful with ErrUnsupportedTag
	Err    error  // Underlying sentinel error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrUnsupportedTag) {
		return fmt.Sprintf("der %s at offset %d: %v 0x%02x", e.Op, e.Offset, e.Err, e.Tag)
	}
	return fmt.Sprintf("der %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DecodeError) Unwrap() error { return e.Err }

func newDecodeError(op string, offset int, err error) *DecodeError {
	return &DecodeError{Op: op, Offset: offset, Err: err}
}

// UnsupportedTag reports the offending tag carried by an ErrUnsupportedTag
// failure anywhere in err's chain.
func UnsupportedTag(err error) (byte, bool) {
	var de *DecodeError
	if errors.As(err, &de) && errors.Is(de.Err, ErrUnsupportedTag) {
		return de.Tag, true
	}
	return 0, false
}
