package handler

import (
	"net/http"

	"github.com/remiblancher/keyder/internal/api/dto"
	"github.com/remiblancher/keyder/internal/api/service"
)

// KeyHandler handles key extraction, decoding and OID classification.
type KeyHandler struct {
	service *service.KeyService
}

// NewKeyHandler creates a new KeyHandler.
func NewKeyHandler(keyService *service.KeyService) *KeyHandler {
	return &KeyHandler{service: keyService}
}

// Raw handles POST /api/v1/keys/raw
func (h *KeyHandler) Raw(w http.ResponseWriter, r *http.Request) {
	var req dto.KeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Raw(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Check handles POST /api/v1/keys/check
func (h *KeyHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req dto.KeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Check(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Decode handles POST /api/v1/der/decode. The tree is returned as CBOR
// when the request accepts application/cbor.
func (h *KeyHandler) Decode(w http.ResponseWriter, r *http.Request) {
	var req dto.DecodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Decode(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if wantsCBOR(r) {
		respondCBOR(w, http.StatusOK, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Classify handles POST /api/v1/oids/classify
func (h *KeyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req dto.ClassifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Classify(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
