package dto

import "github.com/remiblancher/keyder/pkg/der"

// KeyRequest is the body of the key endpoints.
type KeyRequest struct {
	// DER is the encoded key blob.
	DER BinaryData `json:"der"`
}

// KeyRawResponse describes the raw key extracted from a blob.
type KeyRawResponse struct {
	// Raw is the key payload as lowercase hex.
	Raw string `json:"raw"`

	// Kind is "public" (BIT STRING) or "private" (OCTET STRING).
	Kind string `json:"kind"`

	// Length is the payload size in bytes.
	Length int `json:"length"`

	OIDs       []string `json:"oids"`
	Algorithms []string `json:"algorithms"`
	Algorithm  string   `json:"algorithm"`

	// Trailing counts bytes after the top-level element.
	Trailing int `json:"trailing,omitempty"`
}

// KeyCheckResponse adds the key material check outcome.
type KeyCheckResponse struct {
	KeyRawResponse

	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// DecodeRequest is the body of POST /api/v1/der/decode.
type DecodeRequest struct {
	DER BinaryData `json:"der"`
}

// DecodeResponse is the decoded element tree.
type DecodeResponse struct {
	Tree     *der.Element `json:"tree" cbor:"tree"`
	OIDs     []string     `json:"oids" cbor:"oids"`
	Trailing int          `json:"trailing,omitempty" cbor:"trailing,omitempty"`
}

// ClassifyRequest is the body of POST /api/v1/oids/classify.
type ClassifyRequest struct {
	OIDs []string `json:"oids"`
}

// ClassifyResponse holds one label per requested OID.
type ClassifyResponse struct {
	Algorithms []string `json:"algorithms"`
	Algorithm  string   `json:"algorithm"`
}
