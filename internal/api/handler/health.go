// Package handler provides HTTP handlers for the REST API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/remiblancher/keyder/internal/api/dto"
	apierrors "github.com/remiblancher/keyder/internal/api/errors"
)

// HealthHandler handles health and readiness endpoints.
type HealthHandler struct {
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready handles GET /ready. The decoder keeps no state, so the server is
// ready as soon as it serves.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.ReadyResponse{
		Ready:  true,
		Checks: map[string]bool{"server": true, "oid_registry": true},
	})
}

// decodeJSON reads the request body into v, writing the error response
// itself when it fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, apierrors.NewRequestTooLarge(tooLarge.Limit))
		return false
	}
	respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("Invalid JSON request body"))
	return false
}

// wantsCBOR reports whether the client asked for a CBOR response.
func wantsCBOR(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/cbor")
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// respondCBOR writes a CBOR response.
func respondCBOR(w http.ResponseWriter, status int, data any) {
	body, err := cbor.Marshal(data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, &dto.APIError{
			Code:    apierrors.CodeInternal,
			Message: "failed to encode response",
		})
		return
	}
	w.Header().Set("Content-Type", "application/cbor")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, apiErr *dto.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiErr)
}

// handleServiceError maps a service error to its response.
func handleServiceError(w http.ResponseWriter, err error) {
	status, apiErr := apierrors.MapError(err)
	respondError(w, status, apiErr)
}
