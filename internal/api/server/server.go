package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/remiblancher/keyder/internal/api/router"
)

// Server represents the HTTP server.
type Server struct {
	cfg     *Config
	version string
	out     io.Writer
}

// New creates a new Server.
func New(cfg *Config, version string) *Server {
	return &Server{cfg: cfg, version: version, out: os.Stdout}
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	return router.New(&router.Config{
		Version:      s.version,
		MaxDepth:     s.cfg.MaxDepth,
		MaxBodyBytes: s.cfg.MaxBodyBytes,
		AuditPath:    s.cfg.AuditPath,
	})
}

// Start listens on the configured address and blocks until SIGINT or
// SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down within
// ShutdownTimeout. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.printStartupInfo(ln.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		if s.cfg.TLSEnabled() {
			errChan <- srv.ServeTLS(ln, s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			errChan <- srv.Serve(ln)
		}
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Printf("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}

// printStartupInfo prints server startup information.
func (s *Server) printStartupInfo(addr string) {
	scheme := "http"
	if s.cfg.TLSEnabled() {
		scheme = "https"
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "keyder API Server")
	fmt.Fprintln(s.out, "=================")
	fmt.Fprintf(s.out, "  Version:  %s\n", s.version)
	fmt.Fprintf(s.out, "  Address:  %s://%s\n", scheme, addr)
	if s.cfg.MaxDepth > 0 {
		fmt.Fprintf(s.out, "  MaxDepth: %d\n", s.cfg.MaxDepth)
	}
	if s.cfg.AuditPath != "" {
		fmt.Fprintf(s.out, "  Audit:    %s\n", s.cfg.AuditPath)
	}
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Endpoints:")
	fmt.Fprintln(s.out, "  GET  /health                - Health check")
	fmt.Fprintln(s.out, "  GET  /ready                 - Readiness check")
	fmt.Fprintln(s.out, "  GET  /api/openapi.yaml      - OpenAPI specification")
	fmt.Fprintln(s.out, "  POST /api/v1/keys/raw       - Extract raw key")
	fmt.Fprintln(s.out, "  POST /api/v1/keys/check     - Extract and validate key")
	fmt.Fprintln(s.out, "  POST /api/v1/der/decode     - Decode element tree")
	fmt.Fprintln(s.out, "  POST /api/v1/oids/classify  - Classify OIDs")
	fmt.Fprintln(s.out, "  GET  /api/v1/audit/verify   - Verify audit chain")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Use Ctrl+C to stop")
	fmt.Fprintln(s.out)
}
