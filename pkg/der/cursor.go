package der

import (
	"math"

	"golang.org/x/crypto/cryptobyte"
)

// cursor is a read position over a window of the input. The window is the
// whole input at top level, or the body of a constructed element. Reads
// never cross the window end and the position only moves forward.
type cursor struct {
	s     cryptobyte.String
	start int // absolute offset of the window in the input
	size  int // window length
}

func newCursor(data []byte) *cursor {
	return &cursor{s: cryptobyte.String(data), size: len(data)}
}

// offset returns the absolute input offset of the next unread byte.
func (c *cursor) offset() int { return c.start + c.size - len(c.s) }

func (c *cursor) remaining() int { return len(c.s) }

func (c *cursor) empty() bool { return c.s.Empty() }

// readTag returns the identifier octet at the cursor.
func (c *cursor) readTag() (byte, error) {
	at := c.offset()
	var tag uint8
	if !c.s.ReadUint8(&tag) {
		return 0, newDecodeError("tag", at, ErrUnexpectedEnd)
	}
	return tag, nil
}

// readLength decodes a short-form or long-form length. 0x80 followed by no
// length octets yields zero. The result is not checked against the bytes
// remaining; the caller does that when it reads the value.
func (c *cursor) readLength() (int, error) {
	at := c.offset()
	var first uint8
	if !c.s.ReadUint8(&first) {
		return 0, newDecodeError("length", at, ErrUnexpectedEnd)
	}
	if first&0x80 == 0 {
		return int(first), nil
	}

	var raw []byte
	if !c.s.ReadBytes(&raw, int(first&0x7f)) {
		return 0, newDecodeError("length", at, ErrUnexpectedEnd)
	}
	length := 0
	for _, b := range raw {
		// A length that does not fit in an int cannot fit in the input either.
		if length > math.MaxInt>>8 {
			return 0, newDecodeError("length", at, ErrUnexpectedEnd)
		}
		length = length<<8 | int(b)
	}
	return length, nil
}

// readValue returns a copy of the next n bytes.
func (c *cursor) readValue(op string, at, n int) ([]byte, error) {
	var raw []byte
	if n < 0 || !c.s.ReadBytes(&raw, n) {
		return nil, newDecodeError(op, at, ErrUnexpectedEnd)
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// window consumes the next n bytes and returns a cursor restricted to them.
func (c *cursor) window(op string, at, n int) (*cursor, error) {
	start := c.offset()
	var body []byte
	if n < 0 || !c.s.ReadBytes(&body, n) {
		return nil, newDecodeError(op, at, ErrUnexpectedEnd)
	}
	return &cursor{s: cryptobyte.String(body), start: start, size: n}, nil
}
