// Package config loads keyder settings from YAML files and KEYDER_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full keyder configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Decoder Decoder `yaml:"decoder"`
	Audit   Audit   `yaml:"audit"`
}

// Server configures the REST API listener.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	TLS TLS `yaml:"tls"`
}

// TLS holds the certificate and key paths. Both empty means plain HTTP.
type TLS struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

// Decoder bounds the work done per key blob.
type Decoder struct {
	MaxDepth      int   `yaml:"max_depth"`
	MaxInputBytes int64 `yaml:"max_input_bytes"`
}

// Audit configures the audit log. An empty Path disables it.
type Audit struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:            8443,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Decoder: Decoder{
			MaxDepth:      64,
			MaxInputBytes: 1 << 20,
		},
	}
}

// Load reads the YAML file at path over the defaults. Keys absent from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load for in-memory YAML.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Environment variables read by ApplyEnv.
const (
	EnvHost          = "KEYDER_HOST"
	EnvPort          = "KEYDER_PORT"
	EnvTLSCert       = "KEYDER_TLS_CERT"
	EnvTLSKey        = "KEYDER_TLS_KEY"
	EnvMaxDepth      = "KEYDER_MAX_DEPTH"
	EnvMaxInputBytes = "KEYDER_MAX_INPUT_BYTES"
	EnvAuditLog      = "KEYDER_AUDIT_LOG"
)

// ApplyEnv overlays set KEYDER_* variables onto c.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvHost); ok {
		c.Server.Host = v
	}
	if v, ok := os.LookupEnv(EnvTLSCert); ok {
		c.Server.TLS.Cert = v
	}
	if v, ok := os.LookupEnv(EnvTLSKey); ok {
		c.Server.TLS.Key = v
	}
	if v, ok := os.LookupEnv(EnvAuditLog); ok {
		c.Audit.Path = v
	}

	if err := envInt(EnvPort, &c.Server.Port); err != nil {
		return err
	}
	if err := envInt(EnvMaxDepth, &c.Decoder.MaxDepth); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvMaxInputBytes); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxInputBytes, err)
		}
		c.Decoder.MaxInputBytes = n
	}
	return nil
}

func envInt(name string, dst *int) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

// Validate rejects values the server or decoder cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if (c.Server.TLS.Cert == "") != (c.Server.TLS.Key == "") {
		errs = append(errs, errors.New("server.tls needs both cert and key"))
	}
	for name, d := range map[string]time.Duration{
		"read_timeout":     c.Server.ReadTimeout,
		"write_timeout":    c.Server.WriteTimeout,
		"idle_timeout":     c.Server.IdleTimeout,
		"shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("server.%s must not be negative", name))
		}
	}
	if c.Decoder.MaxDepth < 0 {
		errs = append(errs, errors.New("decoder.max_depth must not be negative"))
	}
	if c.Decoder.MaxInputBytes <= 0 {
		errs = append(errs, errors.New("decoder.max_input_bytes must be positive"))
	}
	return errors.Join(errs...)
}

// Address returns the listen address.
func (s Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
