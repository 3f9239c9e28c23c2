package der

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Element is a serializable view of a Node, used for JSON, YAML and CBOR
// output. Binary values are lowercase hex.
type Element struct {
	Type       string     `json:"type" yaml:"type" cbor:"type"`
	Tag        byte       `json:"tag" yaml:"tag" cbor:"tag"`
	Value      string     `json:"value,omitempty" yaml:"value,omitempty" cbor:"value,omitempty"`
	Length     int        `json:"length" yaml:"length" cbor:"length"`
	UnusedBits uint8      `json:"unused_bits,omitempty" yaml:"unused_bits,omitempty" cbor:"unused_bits,omitempty"`
	Algorithm  string     `json:"algorithm,omitempty" yaml:"algorithm,omitempty" cbor:"algorithm,omitempty"`
	Children   []*Element `json:"children,omitempty" yaml:"children,omitempty" cbor:"children,omitempty"`
}

// Tree converts n and its descendants to Elements.
func Tree(n Node) *Element {
	e := &Element{Type: TagName(n.Tag()), Tag: n.Tag()}
	switch v := n.(type) {
	case *Integer:
		e.Value = v.Value.String()
		e.Length = len(v.Bytes)
	case *OctetString:
		e.Value = hex.EncodeToString(v.Bytes)
		e.Length = len(v.Bytes)
	case *BitString:
		e.Value = hex.EncodeToString(v.Bytes)
		e.Length = len(v.Bytes)
		e.UnusedBits = v.UnusedBits
	case *ObjectIdentifier:
		e.Value = v.Dotted
		e.Algorithm = Classify(v.Dotted)
	case *Sequence:
		e.Length = len(v.Children)
		for _, child := range v.Children {
			e.Children = append(e.Children, Tree(child))
		}
	}
	return e
}

// Format renders n as an indented text tree, one element per line.
func Format(n Node) string {
	var sb strings.Builder
	format(&sb, Tree(n), 0)
	return sb.String()
}

func format(sb *strings.Builder, e *Element, depth int) {
	indent := strings.Repeat("  ", depth)
	switch e.Tag {
	case TagSequence, TagContext0, TagContext1:
		fmt.Fprintf(sb, "%s%s (%d elements)\n", indent, e.Type, e.Length)
		for _, child := range e.Children {
			format(sb, child, depth+1)
		}
	case TagObjectIdentifier:
		fmt.Fprintf(sb, "%s%s %s (%s)\n", indent, e.Type, e.Value, e.Algorithm)
	case TagBitString:
		fmt.Fprintf(sb, "%s%s [%d bytes, %d unused bits] %s\n", indent, e.Type, e.Length, e.UnusedBits, e.Value)
	case TagOctetString:
		fmt.Fprintf(sb, "%s%s [%d bytes] %s\n", indent, e.Type, e.Length, e.Value)
	default:
		fmt.Fprintf(sb, "%s%s %s\n", indent, e.Type, e.Value)
	}
}
