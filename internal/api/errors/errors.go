// Package errors provides error handling and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/remiblancher/keyder/internal/api/dto"
	"github.com/remiblancher/keyder/internal/keycheck"
	"github.com/remiblancher/keyder/internal/keyfile"
	"github.com/remiblancher/keyder/pkg/der"
)

// Error codes for API responses.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
	CodeUnexpectedEnd      = "UNEXPECTED_END"
	CodeMalformedBitString = "MALFORMED_BIT_STRING"
	CodeUnsupportedTag     = "UNSUPPORTED_TAG"
	CodeMaxDepth           = "MAX_DEPTH_EXCEEDED"
	CodeNoKeyFound         = "NO_KEY_FOUND"
	CodeInvalidHex         = "INVALID_HEX"
	CodeInvalidEncoding    = "INVALID_ENCODING"
	CodeInvalidKey         = "INVALID_KEY"
	CodeUnsupportedAlg     = "UNSUPPORTED_ALGORITHM"
	CodeAuditDisabled      = "AUDIT_DISABLED"
)

// ErrAuditDisabled indicates no audit log is configured.
var ErrAuditDisabled = errors.New("audit log is not configured")

// MapError maps an internal error to an HTTP status code and APIError.
func MapError(err error) (int, *dto.APIError) {
	if err == nil {
		return http.StatusOK, nil
	}

	apiErr := &dto.APIError{Message: err.Error()}
	status := http.StatusUnprocessableEntity

	switch {
	case errors.Is(err, der.ErrUnexpectedEnd):
		apiErr.Code = CodeUnexpectedEnd
	case errors.Is(err, der.ErrMalformedBitString):
		apiErr.Code = CodeMalformedBitString
	case errors.Is(err, der.ErrUnsupportedTag):
		apiErr.Code = CodeUnsupportedTag
		if tag, ok := der.UnsupportedTag(err); ok {
			apiErr.Details = map[string]string{"tag": fmt.Sprintf("0x%02x", tag)}
		}
	case errors.Is(err, der.ErrMaxDepth):
		apiErr.Code = CodeMaxDepth
	case errors.Is(err, der.ErrNoKeyFound):
		apiErr.Code = CodeNoKeyFound
	case errors.Is(err, keycheck.ErrInvalidKey):
		apiErr.Code = CodeInvalidKey
	case errors.Is(err, keycheck.ErrUnsupportedAlgorithm):
		apiErr.Code = CodeUnsupportedAlg
	case errors.Is(err, der.ErrInvalidHex):
		status, apiErr.Code = http.StatusBadRequest, CodeInvalidHex
	case errors.Is(err, dto.ErrUnsupportedEncoding),
		errors.Is(err, dto.ErrInvalidData),
		errors.Is(err, keyfile.ErrInvalidPEM),
		errors.Is(err, keyfile.ErrUnsupportedPEM),
		errors.Is(err, keyfile.ErrEmpty):
		status, apiErr.Code = http.StatusBadRequest, CodeInvalidEncoding
	case errors.Is(err, ErrAuditDisabled):
		status, apiErr.Code = http.StatusNotFound, CodeAuditDisabled
	default:
		return http.StatusInternalServerError, &dto.APIError{
			Code:    CodeInternal,
			Message: "An internal error occurred",
		}
	}

	var de *der.DecodeError
	if errors.As(err, &de) {
		if apiErr.Details == nil {
			apiErr.Details = map[string]string{}
		}
		apiErr.Details["operation"] = de.Op
		apiErr.Details["offset"] = strconv.Itoa(de.Offset)
	}
	return status, apiErr
}

// NewBadRequest creates a bad request error.
func NewBadRequest(message string) *dto.APIError {
	return &dto.APIError{
		Code:    CodeInvalidRequest,
		Message: message,
	}
}

// NewRequestTooLarge reports a body over the configured limit.
func NewRequestTooLarge(limit int64) *dto.APIError {
	return &dto.APIError{
		Code:    CodeRequestTooLarge,
		Message: "request body too large",
		Details: map[string]string{"limit": strconv.FormatInt(limit, 10)},
	}
}
