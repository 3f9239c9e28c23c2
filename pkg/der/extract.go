package der

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyKind tells whether extracted key bytes came from a BIT STRING
// (public-key-like) or an OCTET STRING (private-key-like).
type KeyKind int

const (
	KindNone KeyKind = iota
	KindPublic
	KindPrivate
)

// String returns "public", "private" or "none".
func (k KeyKind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindPrivate:
		return "private"
	default:
		return "none"
	}
}

// Key is raw key material located by ExtractKey.
type Key struct {
	Kind       KeyKind
	Bytes      []byte
	UnusedBits uint8 // BIT STRING padding, zero for private keys
}

// ExtractKey scans the direct children of root, which must be a *Sequence.
// The first BIT STRING wins; otherwise the first OCTET STRING is used.
// Nested elements are not searched.
//
// In a PKCS#8 PrivateKeyInfo (version INTEGER, AlgorithmIdentifier
// SEQUENCE, then the OCTET STRING), a private payload that is itself exactly
// one OCTET STRING element (the RFC 8410 CurvePrivateKey wrapping used by
// Ed25519 and secp256k1 blobs) is unwrapped one level. Other containers,
// such as SEC1 ECPrivateKey, return the payload as is.
func ExtractKey(root Node) (Key, error) {
	if root == nil {
		return Key{}, ErrNoKeyFound
	}
	seq, ok := root.(*Sequence)
	if !ok {
		return Key{}, fmt.Errorf("%w: top-level element is %s", ErrNoKeyFound, TagName(root.Tag()))
	}

	var private *OctetString
	for _, child := range seq.Children {
		switch n := child.(type) {
		case *BitString:
			return Key{
				Kind:       KindPublic,
				Bytes:      append([]byte(nil), n.Bytes...),
				UnusedBits: n.UnusedBits,
			}, nil
		case *OctetString:
			if private == nil {
				private = n
			}
		}
	}
	if private == nil {
		return Key{}, ErrNoKeyFound
	}
	if isPrivateKeyInfo(seq, private) {
		return Key{Kind: KindPrivate, Bytes: unwrapCurvePrivateKey(private.Bytes)}, nil
	}
	return Key{Kind: KindPrivate, Bytes: append([]byte(nil), private.Bytes...)}, nil
}

// isPrivateKeyInfo reports whether seq has the PrivateKeyInfo shape with
// private as its privateKey field.
func isPrivateKeyInfo(seq *Sequence, private *OctetString) bool {
	if len(seq.Children) < 3 {
		return false
	}
	if _, ok := seq.Children[0].(*Integer); !ok {
		return false
	}
	algID, ok := seq.Children[1].(*Sequence)
	if !ok || algID.Tag() != TagSequence {
		return false
	}
	return seq.Children[2] == Node(private)
}

// ExtractRawKey returns the payload chosen by ExtractKey.
func ExtractRawKey(root Node) ([]byte, error) {
	key, err := ExtractKey(root)
	if err != nil {
		return nil, err
	}
	return key.Bytes, nil
}

// unwrapCurvePrivateKey returns the content of b when b is exactly one
// OCTET STRING element, and a copy of b otherwise.
func unwrapCurvePrivateKey(b []byte) []byte {
	c := newCursor(b)
	if tag, err := c.readTag(); err != nil || tag != TagOctetString {
		return append([]byte(nil), b...)
	}
	n, err := c.readLength()
	if err != nil || n != c.remaining() {
		return append([]byte(nil), b...)
	}
	inner, err := c.readValue("octet string", 0, n)
	if err != nil {
		return append([]byte(nil), b...)
	}
	return inner
}

// KeyInfo summarizes a key blob.
type KeyInfo struct {
	Kind       KeyKind
	Raw        []byte
	OIDs       []string
	Algorithms []string // one label per OID, same order
	Algorithm  string   // see PrimaryAlgorithm
	Trailing   int
}

// Inspect decodes data, extracts its key and classifies its OIDs.
func Inspect(data []byte, opts ...Option) (*KeyInfo, error) {
	res, err := Decode(data, opts...)
	if err != nil {
		return nil, err
	}
	key, err := ExtractKey(res.Root)
	if err != nil {
		return nil, err
	}

	labels := ClassifyOIDs(res.OIDs)
	return &KeyInfo{
		Kind:       key.Kind,
		Raw:        key.Bytes,
		OIDs:       res.OIDs,
		Algorithms: labels,
		Algorithm:  PrimaryAlgorithm(labels),
		Trailing:   res.Trailing,
	}, nil
}

// DecodeHex decodes hex text, ignoring surrounding whitespace and an
// optional 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}

// RawKeyFromHex decodes a hex-encoded key blob and returns its raw key as
// lowercase hex.
func RawKeyFromHex(s string, opts ...Option) (string, error) {
	data, err := DecodeHex(s)
	if err != nil {
		return "", err
	}
	res, err := Decode(data, opts...)
	if err != nil {
		return "", err
	}
	raw, err := ExtractRawKey(res.Root)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
