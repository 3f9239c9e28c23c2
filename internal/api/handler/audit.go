package handler

import (
	"net/http"

	"github.com/remiblancher/keyder/internal/api/service"
)

// AuditHandler handles audit-related HTTP requests.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{service: auditService}
}

// Verify handles GET /api/v1/audit/verify
func (h *AuditHandler) Verify(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Verify(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
