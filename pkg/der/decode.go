// Package der decodes the subset of DER/BER needed to unwrap raw key
// material from SubjectPublicKeyInfo and PrivateKeyInfo style structures.
//
// Supported tags are INTEGER, BIT STRING, OCTET STRING, OBJECT IDENTIFIER,
// SEQUENCE and the context-specific constructed tags [0] and [1], which are
// decoded like SEQUENCE. Every decode is a single pass over a fresh cursor:
// the OIDs met during the pass are returned with the result, so concurrent
// decodes share nothing but the read-only OID registry.
package der

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Result is the outcome of one decode pass.
type Result struct {
	// Root is the first top-level element of the input.
	Root Node

	// OIDs lists every OBJECT IDENTIFIER met, in pre-order traversal order.
	OIDs []string

	// Trailing is the number of input bytes left after Root.
	Trailing int
}

// Option configures a decode pass.
type Option func(*decoder)

// WithMaxDepth limits how deeply constructed elements may nest. The root
// element is at depth 1. Zero or a negative value means unlimited.
func WithMaxDepth(n int) Option {
	return func(d *decoder) {
		d.maxDepth = n
	}
}

// decoder holds the state of a single pass.
type decoder struct {
	maxDepth int
	depth    int
	oids     []string
}

// Decode decodes the first element of data. Bytes after that element are
// not decoded and are reported in Result.Trailing.
func Decode(data []byte, opts ...Option) (*Result, error) {
	d := &decoder{}
	for _, opt := range opts {
		opt(d)
	}

	c := newCursor(data)
	root, err := d.read(c)
	if err != nil {
		return nil, err
	}

	return &Result{
		Root:     root,
		OIDs:     d.oids,
		Trailing: c.remaining(),
	}, nil
}

// read reads one tag and dispatches to the reader for it.
func (d *decoder) read(c *cursor) (Node, error) {
	at := c.offset()
	tag, err := c.readTag()
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagInteger:
		return d.readInteger(c, at)
	case TagBitString:
		return d.readBitString(c, at)
	case TagOctetString:
		return d.readOctetString(c, at)
	case TagObjectIdentifier:
		return d.readObjectIdentifier(c, at)
	case TagSequence, TagContext0, TagContext1:
		return d.readSequence(c, at, tag)
	default:
		return nil, &DecodeError{Op: "element", Offset: at, Tag: tag, Err: ErrUnsupportedTag}
	}
}

func (d *decoder) readInteger(c *cursor, at int) (*Integer, error) {
	n, err := c.readLength()
	if err != nil {
		return nil, err
	}
	raw, err := c.readValue("integer", at, n)
	if err != nil {
		return nil, err
	}
	return &Integer{Value: new(big.Int).SetBytes(raw), Bytes: raw}, nil
}

func (d *decoder) readOctetString(c *cursor, at int) (*OctetString, error) {
	n, err := c.readLength()
	if err != nil {
		return nil, err
	}
	raw, err := c.readValue("octet string", at, n)
	if err != nil {
		return nil, err
	}
	return &OctetString{Bytes: raw}, nil
}

func (d *decoder) readBitString(c *cursor, at int) (*BitString, error) {
	n, err := c.readLength()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, newDecodeError("bit string", at, ErrMalformedBitString)
	}
	raw, err := c.readValue("bit string", at, n)
	if err != nil {
		return nil, err
	}
	if raw[0] > 7 {
		return nil, newDecodeError("bit string", at, ErrMalformedBitString)
	}
	return &BitString{UnusedBits: raw[0], Bytes: raw[1:]}, nil
}

func (d *decoder) readObjectIdentifier(c *cursor, at int) (*ObjectIdentifier, error) {
	n, err := c.readLength()
	if err != nil {
		return nil, err
	}
	raw, err := c.readValue("object identifier", at, n)
	if err != nil {
		return nil, err
	}
	dotted, ok := parseOID(raw)
	if !ok {
		return nil, newDecodeError("object identifier", at, ErrUnexpectedEnd)
	}
	d.oids = append(d.oids, dotted)
	return &ObjectIdentifier{Dotted: dotted}, nil
}

func (d *decoder) readSequence(c *cursor, at int, tag byte) (*Sequence, error) {
	if d.maxDepth > 0 && d.depth >= d.maxDepth {
		return nil, newDecodeError(strings.ToLower(TagName(tag)), at, ErrMaxDepth)
	}
	n, err := c.readLength()
	if err != nil {
		return nil, err
	}
	body, err := c.window(strings.ToLower(TagName(tag)), at, n)
	if err != nil {
		return nil, err
	}

	d.depth++
	defer func() { d.depth-- }()

	seq := &Sequence{Class: tag}
	for !body.empty() {
		child, err := d.read(body)
		if err != nil {
			return nil, err
		}
		seq.Children = append(seq.Children, child)
	}
	return seq, nil
}

// parseOID converts OID content octets to dotted-decimal form. The first
// octet holds the first two arcs as 40*x+y; every later arc is base-128 with
// the high bit marking continuation. It reports false for empty content or
// a final arc cut off mid-encoding.
func parseOID(raw []byte) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(raw[0]) / 40))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(int(raw[0]) % 40))

	var (
		arc     uint64
		wide    *big.Int // used once an arc no longer fits in 64 bits
		pending bool
	)
	for _, b := range raw[1:] {
		pending = true
		switch {
		case wide != nil:
			wide.Lsh(wide, 7).Or(wide, big.NewInt(int64(b&0x7f)))
		case arc > math.MaxUint64>>7:
			wide = new(big.Int).SetUint64(arc)
			wide.Lsh(wide, 7).Or(wide, big.NewInt(int64(b&0x7f)))
		default:
			arc = arc<<7 | uint64(b&0x7f)
		}
		if b&0x80 != 0 {
			continue
		}

		sb.WriteByte('.')
		if wide != nil {
			sb.WriteString(wide.String())
		} else {
			sb.WriteString(strconv.FormatUint(arc, 10))
		}
		arc, wide, pending = 0, nil, false
	}
	if pending {
		return "", false
	}
	return sb.String(), true
}
