package der

import (
	"fmt"
	"math/big"
)

// Tags recognized by the decoder. Only low-tag-number, single-octet
// identifiers are supported.
const (
	TagInteger          byte = 0x02
	TagBitString        byte = 0x03
	TagOctetString      byte = 0x04
	TagObjectIdentifier byte = 0x06
	TagSequence         byte = 0x30

	// Context-specific constructed [0] and [1], typically algorithm
	// parameter or optional-field wrappers. Decoded like SEQUENCE.
	TagContext0 byte = 0xA0
	TagContext1 byte = 0xA1
)

// TagName returns a short human-readable name for a tag.
func TagName(tag byte) string {
	switch tag {
	case TagInteger:
		return "INTEGER"
	case TagBitString:
		return "BIT STRING"
	case TagOctetString:
		return "OCTET STRING"
	case TagObjectIdentifier:
		return "OBJECT IDENTIFIER"
	case TagSequence:
		return "SEQUENCE"
	case TagContext0:
		return "[0]"
	case TagContext1:
		return "[1]"
	default:
		return fmt.Sprintf("tag 0x%02x", tag)
	}
}

// Node is one decoded element. The concrete type is one of *Integer,
// *OctetString, *BitString, *ObjectIdentifier or *Sequence.
//
// Nodes are built during a single decode pass and must be treated as
// immutable afterwards. Byte slices never alias the input buffer.
type Node interface {
	// Tag returns the identifier octet the node was decoded from.
	Tag() byte
	node()
}

// Integer is a decoded INTEGER. Value is the unsigned big-endian magnitude
// of the content octets; no two's-complement sign is applied. Bytes keeps
// the content octets verbatim.
type Integer struct {
	Value *big.Int
	Bytes []byte
}

// OctetString is a decoded OCTET STRING. Its payload is treated as
// private-key material during extraction.
type OctetString struct {
	Bytes []byte
}

// BitString is a decoded BIT STRING. Its payload is treated as public-key
// material during extraction.
type BitString struct {
	UnusedBits uint8
	Bytes      []byte
}

// ObjectIdentifier is a decoded OBJECT IDENTIFIER in dotted-decimal form.
type ObjectIdentifier struct {
	Dotted string
}

// Sequence is a decoded SEQUENCE, or a context-specific constructed [0]/[1]
// element decoded the same way. Class records which of the three it was.
type Sequence struct {
	Class    byte
	Children []Node
}

func (*Integer) Tag() byte          { return TagInteger }
func (*OctetString) Tag() byte      { return TagOctetString }
func (*BitString) Tag() byte        { return TagBitString }
func (*ObjectIdentifier) Tag() byte { return TagObjectIdentifier }

// Tag returns Class, or TagSequence for a zero Class.
func (s *Sequence) Tag() byte {
	if s.Class == 0 {
		return TagSequence
	}
	return s.Class
}

func (*Integer) node()          {}
func (*OctetString) node()      {}
func (*BitString) node()        {}
func (*ObjectIdentifier) node() {}
func (*Sequence) node()         {}

// String returns the dotted-decimal form.
func (o *ObjectIdentifier) String() string { return o.Dotted }
