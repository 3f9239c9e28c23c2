// Command keyder extracts raw key material and algorithm OIDs from DER
// encoded key blobs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/remiblancher/keyder/internal/audit"
	"github.com/remiblancher/keyder/internal/config"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	configPath   string
	auditLogPath string
	maxDepth     int
)

// cfg is the effective configuration, resolved before each command runs.
var cfg = config.Default()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "keyder",
	Short: "Extract raw keys and algorithm OIDs from DER key blobs",
	Long: `keyder decodes the DER/BER structures that wrap public and private keys
(SubjectPublicKeyInfo, PKCS#8 PrivateKeyInfo, RFC 5915 EC keys) and prints
the raw key bytes they carry along with the algorithm their OIDs name.

Input is read from a file or standard input ("-") as PEM, hex text or raw DER.

Examples:
  # Raw Ed25519 seed from a PKCS#8 key
  keyder raw key.pem

  # Raw key from hex on the command line
  keyder raw --hex 302e020100300506032b657004220420...

  # Element tree as JSON
  keyder decode --format json key.der

  # Validate the key material for its algorithm
  keyder check pub.pem

  # Serve the REST API
  keyder serve --port 8443`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		resolved, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		cfg = resolved

		if cfg.Audit.Path != "" {
			if err := audit.InitFile(cfg.Audit.Path); err != nil {
				return fmt.Errorf("failed to initialize audit log: %w", err)
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return audit.Close()
	},
}

// resolveConfig layers defaults, the config file, KEYDER_* variables and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		c = loaded
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("audit-log") {
		c.Audit.Path = auditLogPath
	}
	if flags.Changed("max-depth") {
		c.Decoder.MaxDepth = maxDepth
	}
	if err := applyServeFlags(cmd, c); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "",
		"Path to audit log file (or set KEYDER_AUDIT_LOG env var)")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 64, "Maximum nesting depth of constructed elements (0 = unlimited)")

	rootCmd.AddCommand(rawCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(oidsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(auditCmd)
}
