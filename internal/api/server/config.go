// Package server provides HTTP server configuration and lifecycle management.
package server

import (
	"fmt"
	"time"

	"github.com/remiblancher/keyder/internal/config"
)

// Config holds the server configuration.
type Config struct {
	Host string
	Port int

	// TLS configuration (optional)
	TLSCert string
	TLSKey  string

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Request limits
	MaxDepth     int
	MaxBodyBytes int64

	// AuditPath is the audit log exposed for verification.
	AuditPath string
}

// DefaultConfig returns a Config built from config.Default.
func DefaultConfig() *Config {
	return FromConfig(config.Default())
}

// FromConfig derives the server settings from the application config.
// The body cap leaves room for the JSON envelope around a hex or base64
// encoded blob of MaxInputBytes.
func FromConfig(c *config.Config) *Config {
	return &Config{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		TLSCert:         c.Server.TLS.Cert,
		TLSKey:          c.Server.TLS.Key,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		IdleTimeout:     c.Server.IdleTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
		MaxDepth:        c.Decoder.MaxDepth,
		MaxBodyBytes:    2*c.Decoder.MaxInputBytes + 4096,
		AuditPath:       c.Audit.Path,
	}
}

// Address returns the listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TLSEnabled reports whether both TLS files are set.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
