package service

import (
	"context"

	"github.com/remiblancher/keyder/internal/api/dto"
	apierrors "github.com/remiblancher/keyder/internal/api/errors"
	"github.com/remiblancher/keyder/internal/audit"
)

// AuditService exposes audit log verification.
type AuditService struct {
	path string
}

// NewAuditService creates an AuditService for the log at path. An empty
// path means auditing is disabled.
func NewAuditService(path string) *AuditService {
	return &AuditService{path: path}
}

// Verify re-computes the hash chain of the audit log.
func (s *AuditService) Verify(_ context.Context) (*dto.AuditVerifyResponse, error) {
	if s.path == "" {
		return nil, apierrors.ErrAuditDisabled
	}

	n, err := audit.VerifyChain(s.path)
	resp := &dto.AuditVerifyResponse{Valid: err == nil, EntryCount: n}
	if err != nil {
		resp.Errors = []string{err.Error()}
	}
	return resp, nil
}
