// Package router provides HTTP routing configuration using Chi.
package router

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/remiblancher/keyder/internal/api/handler"
	"github.com/remiblancher/keyder/internal/api/middleware"
	"github.com/remiblancher/keyder/internal/api/service"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Config holds router configuration.
type Config struct {
	Version string

	// MaxDepth bounds DER nesting per request, zero for unlimited.
	MaxDepth int

	// MaxBodyBytes caps request bodies, zero for no cap.
	MaxBodyBytes int64

	// AuditPath is the audit log verified by /api/v1/audit/verify.
	AuditPath string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CORS)
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	healthHandler := handler.NewHealthHandler(cfg.Version)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Get("/api/openapi.yaml", serveOpenAPISpec)

	keyHandler := handler.NewKeyHandler(service.NewKeyService(cfg.MaxDepth))
	auditHandler := handler.NewAuditHandler(service.NewAuditService(cfg.AuditPath))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/keys", func(r chi.Router) {
			r.Post("/raw", keyHandler.Raw)
			r.Post("/check", keyHandler.Check)
		})
		r.Post("/der/decode", keyHandler.Decode)
		r.Post("/oids/classify", keyHandler.Classify)
		r.Get("/audit/verify", auditHandler.Verify)
	})

	return r
}

// serveOpenAPISpec serves the OpenAPI specification file.
func serveOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapiSpec)
}
