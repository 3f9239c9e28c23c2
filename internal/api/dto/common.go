// Package dto provides Data Transfer Objects for the REST API.
package dto

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/remiblancher/keyder/internal/keyfile"
	"github.com/remiblancher/keyder/pkg/der"
)

// Encodings accepted in BinaryData.
const (
	EncodingHex    = "hex"
	EncodingBase64 = "base64"
	EncodingPEM    = "pem"
)

var (
	// ErrUnsupportedEncoding indicates an unknown BinaryData encoding.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrInvalidData indicates Data does not match its Encoding.
	ErrInvalidData = errors.New("invalid binary data")
)

// BinaryData carries a DER blob in a JSON body.
type BinaryData struct {
	// Data is the encoded content.
	Data string `json:"data"`

	// Encoding is "hex" (default), "base64" or "pem".
	Encoding string `json:"encoding,omitempty"`
}

// Decode returns the DER bytes of b.
func (b *BinaryData) Decode() ([]byte, error) {
	if b == nil || b.Data == "" {
		return nil, keyfile.ErrEmpty
	}
	switch b.Encoding {
	case EncodingHex, "":
		return der.DecodeHex(b.Data)
	case EncodingBase64:
		data, err := base64.StdEncoding.DecodeString(b.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		return data, nil
	case EncodingPEM:
		blob, err := keyfile.LoadPEM([]byte(b.Data))
		if err != nil {
			return nil, err
		}
		return blob.DER, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, b.Encoding)
	}
}

// APIError represents a standardized error response.
type APIError struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details provides additional context about the error.
	Details map[string]string `json:"details,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready  bool            `json:"ready"`
	Checks map[string]bool `json:"checks,omitempty"`
}
