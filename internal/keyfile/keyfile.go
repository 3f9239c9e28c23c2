// Package keyfile loads key blobs from files, stdin or request bodies.
//
// Three input forms are recognized: a PEM block, hex text and raw DER.
package keyfile

import (
	"bytes"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/remiblancher/keyder/pkg/der"
)

// DefaultMaxInputBytes bounds inputs when no limit is configured.
const DefaultMaxInputBytes = 1 << 20

// Stdin is the path that selects standard input.
const Stdin = "-"

var (
	// ErrEmpty indicates the input holds no key data.
	ErrEmpty = errors.New("empty input")

	// ErrTooLarge indicates the input exceeds the configured limit.
	ErrTooLarge = errors.New("input too large")

	// ErrInvalidPEM indicates text that starts like PEM but does not decode.
	ErrInvalidPEM = errors.New("invalid PEM block")

	// ErrUnsupportedPEM indicates a PEM block that does not carry a key.
	ErrUnsupportedPEM = errors.New("unsupported PEM block type")
)

// Format is the encoding an input was detected as.
type Format int

const (
	FormatDER Format = iota
	FormatPEM
	FormatHex
)

func (f Format) String() string {
	switch f {
	case FormatPEM:
		return "pem"
	case FormatHex:
		return "hex"
	default:
		return "der"
	}
}

// PEM block types accepted by Load.
var pemTypes = map[string]bool{
	"PUBLIC KEY":     true,
	"PRIVATE KEY":    true,
	"EC PRIVATE KEY": true,
}

// Blob is a key blob ready for der.Decode.
type Blob struct {
	DER     []byte
	Format  Format
	PEMType string // set for FormatPEM
	Source  string // file path, "-" for stdin, empty for in-memory input
}

// Load detects the form of data and returns the DER bytes it carries.
func Load(data []byte) (*Blob, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}

	if bytes.HasPrefix(trimmed, []byte("-----BEGIN ")) {
		block, _ := pem.Decode(trimmed)
		if block == nil {
			return nil, ErrInvalidPEM
		}
		if !pemTypes[block.Type] {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedPEM, block.Type)
		}
		return &Blob{DER: block.Bytes, Format: FormatPEM, PEMType: block.Type}, nil
	}

	if isHexText(trimmed) {
		b, err := der.DecodeHex(string(stripSpace(trimmed)))
		if err != nil {
			return nil, err
		}
		return &Blob{DER: b, Format: FormatHex}, nil
	}

	return &Blob{DER: append([]byte(nil), data...), Format: FormatDER}, nil
}

// LoadPEM decodes text that must be a PEM key block.
func LoadPEM(text []byte) (*Blob, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(text), []byte("-----BEGIN ")) {
		return nil, ErrInvalidPEM
	}
	return Load(text)
}

// Read loads at most maxBytes from r. A maxBytes of zero or less selects
// DefaultMaxInputBytes.
func Read(r io.Reader, maxBytes int64) (*Blob, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}
	return Load(data)
}

// ReadFile loads the blob at path, or standard input when path is "-".
func ReadFile(path string, maxBytes int64) (*Blob, error) {
	var r io.Reader = os.Stdin
	if path != Stdin {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	blob, err := Read(r, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	blob.Source = path
	return blob, nil
}

// isHexText reports whether b is hex digits and whitespace, optionally
// starting with 0x. Raw DER starting with printable hex digits is read as
// hex; such blobs do not occur for the supported key structures.
func isHexText(b []byte) bool {
	b = bytes.TrimPrefix(bytes.TrimPrefix(b, []byte("0x")), []byte("0X"))
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		case c == ' ', c == '\t', c == '\n', c == '\r':
		default:
			return false
		}
	}
	return true
}

func stripSpace(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			out = append(out, c)
		}
	}
	return out
}
