// Package service provides business logic for the REST API.
package service

import (
	"context"
	"encoding/hex"

	"github.com/remiblancher/keyder/internal/api/dto"
	"github.com/remiblancher/keyder/internal/api/middleware"
	"github.com/remiblancher/keyder/internal/audit"
	"github.com/remiblancher/keyder/internal/keycheck"
	"github.com/remiblancher/keyder/pkg/der"
)

// serviceActor is the audit actor for API requests.
var serviceActor = audit.Actor{Type: "service", ID: "keyder-api"}

// KeyService extracts, checks and decodes key blobs for the REST API.
type KeyService struct {
	maxDepth int
}

// NewKeyService creates a KeyService. maxDepth bounds constructed nesting,
// zero meaning unlimited.
func NewKeyService(maxDepth int) *KeyService {
	return &KeyService{maxDepth: maxDepth}
}

func (s *KeyService) options() []der.Option {
	return []der.Option{der.WithMaxDepth(s.maxDepth)}
}

func auditSource(ctx context.Context, encoding string) audit.Source {
	actor := serviceActor
	if encoding == "" {
		encoding = dto.EncodingHex
	}
	return audit.Source{Actor: &actor, Path: middleware.GetRequestID(ctx), Format: encoding}
}

// inspect decodes the blob in req and records the outcome.
func (s *KeyService) inspect(ctx context.Context, data *dto.BinaryData) (*der.KeyInfo, audit.Source, error) {
	src := auditSource(ctx, data.Encoding)

	blob, err := data.Decode()
	if err != nil {
		return nil, src, err
	}
	info, err := der.Inspect(blob, s.options()...)
	if err != nil {
		if auditErr := audit.LogDecodeFailed(src, err); auditErr != nil {
			return nil, src, auditErr
		}
		return nil, src, err
	}
	return info, src, nil
}

func rawResponse(info *der.KeyInfo) dto.KeyRawResponse {
	return dto.KeyRawResponse{
		Raw:        hex.EncodeToString(info.Raw),
		Kind:       info.Kind.String(),
		Length:     len(info.Raw),
		OIDs:       nonNil(info.OIDs),
		Algorithms: nonNil(info.Algorithms),
		Algorithm:  info.Algorithm,
		Trailing:   info.Trailing,
	}
}

// Raw extracts the raw key of the blob in req.
func (s *KeyService) Raw(ctx context.Context, req *dto.KeyRequest) (*dto.KeyRawResponse, error) {
	info, src, err := s.inspect(ctx, &req.DER)
	if err != nil {
		return nil, err
	}
	if err := audit.LogKeyExtracted(src, info); err != nil {
		return nil, err
	}

	resp := rawResponse(info)
	return &resp, nil
}

// Check extracts the raw key of the blob in req and validates it. A key
// that fails validation is reported in the response, not as an error.
func (s *KeyService) Check(ctx context.Context, req *dto.KeyRequest) (*dto.KeyCheckResponse, error) {
	info, src, err := s.inspect(ctx, &req.DER)
	if err != nil {
		return nil, err
	}

	checkErr := keycheck.CheckInfo(info)
	if err := audit.LogKeyChecked(src, info, checkErr); err != nil {
		return nil, err
	}

	resp := &dto.KeyCheckResponse{KeyRawResponse: rawResponse(info), Valid: checkErr == nil}
	if checkErr != nil {
		resp.Reason = checkErr.Error()
	}
	return resp, nil
}

// Decode returns the element tree of the blob in req.
func (s *KeyService) Decode(ctx context.Context, req *dto.DecodeRequest) (*dto.DecodeResponse, error) {
	blob, err := req.DER.Decode()
	if err != nil {
		return nil, err
	}
	res, err := der.Decode(blob, s.options()...)
	if err != nil {
		if auditErr := audit.LogDecodeFailed(auditSource(ctx, req.DER.Encoding), err); auditErr != nil {
			return nil, auditErr
		}
		return nil, err
	}

	return &dto.DecodeResponse{
		Tree:     der.Tree(res.Root),
		OIDs:     nonNil(res.OIDs),
		Trailing: res.Trailing,
	}, nil
}

// Classify labels each OID in req.
func (s *KeyService) Classify(_ context.Context, req *dto.ClassifyRequest) (*dto.ClassifyResponse, error) {
	labels := der.ClassifyOIDs(req.OIDs)
	return &dto.ClassifyResponse{
		Algorithms: nonNil(labels),
		Algorithm:  der.PrimaryAlgorithm(labels),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
