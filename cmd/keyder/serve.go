package main

import (
	"github.com/spf13/cobra"

	"github.com/remiblancher/keyder/internal/api/server"
	"github.com/remiblancher/keyder/internal/config"
)

// Serve command flags
var (
	servePort    int
	serveHost    string
	serveTLSCert string
	serveTLSKey  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API",
	Long: `Start the keyder REST API.

Endpoints:
  GET  /health, /ready
  POST /api/v1/keys/raw       raw key of a blob
  POST /api/v1/keys/check     raw key plus key material check
  POST /api/v1/der/decode     element tree (JSON, or CBOR with Accept: application/cbor)
  POST /api/v1/oids/classify  algorithm labels for OIDs
  GET  /api/v1/audit/verify   audit log hash chain check

Environment variables:
  KEYDER_HOST, KEYDER_PORT          Listen address
  KEYDER_TLS_CERT, KEYDER_TLS_KEY   TLS certificate and key files
  KEYDER_MAX_DEPTH                  Nesting limit per blob
  KEYDER_MAX_INPUT_BYTES            Blob size limit
  KEYDER_AUDIT_LOG                  Audit log file

Examples:
  keyder serve --port 8080
  keyder serve --config keyder.yaml
  keyder serve --port 8443 --tls-cert server.crt --tls-key server.key`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: 8443)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: all interfaces)")
	serveCmd.Flags().StringVar(&serveTLSCert, "tls-cert", "", "TLS certificate file")
	serveCmd.Flags().StringVar(&serveTLSKey, "tls-key", "", "TLS private key file")
}

// applyServeFlags copies explicitly set serve flags into c. Commands
// without these flags are left untouched.
func applyServeFlags(cmd *cobra.Command, c *config.Config) error {
	if cmd != serveCmd {
		return nil
	}
	flags := cmd.Flags()
	if flags.Changed("port") {
		c.Server.Port = servePort
	}
	if flags.Changed("host") {
		c.Server.Host = serveHost
	}
	if flags.Changed("tls-cert") {
		c.Server.TLS.Cert = serveTLSCert
	}
	if flags.Changed("tls-key") {
		c.Server.TLS.Key = serveTLSKey
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	return server.New(server.FromConfig(cfg), version).Start()
}
