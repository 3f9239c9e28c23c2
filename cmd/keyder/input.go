package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remiblancher/keyder/internal/audit"
	"github.com/remiblancher/keyder/internal/keyfile"
	"github.com/remiblancher/keyder/pkg/der"
)

// addInputFlags registers --hex on a command that reads a key blob.
func addInputFlags(cmd *cobra.Command, hexInput *string) {
	cmd.Flags().StringVar(hexInput, "hex", "", "Hex-encoded key blob (instead of FILE)")
}

// loadBlob reads the key blob named by args or given with --hex. With
// neither, standard input is read.
func loadBlob(cmd *cobra.Command, args []string, hexInput string) (*keyfile.Blob, error) {
	if hexInput != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--hex and FILE are mutually exclusive")
		}
		data, err := der.DecodeHex(hexInput)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > cfg.Decoder.MaxInputBytes {
			return nil, fmt.Errorf("%w: limit is %d bytes", keyfile.ErrTooLarge, cfg.Decoder.MaxInputBytes)
		}
		return &keyfile.Blob{DER: data, Format: keyfile.FormatHex, Source: "--hex"}, nil
	}

	path := keyfile.Stdin
	if len(args) > 0 {
		path = args[0]
	}
	if path == keyfile.Stdin {
		blob, err := keyfile.Read(cmd.InOrStdin(), cfg.Decoder.MaxInputBytes)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		blob.Source = keyfile.Stdin
		return blob, nil
	}
	return keyfile.ReadFile(path, cfg.Decoder.MaxInputBytes)
}

func decodeOptions() []der.Option {
	return []der.Option{der.WithMaxDepth(cfg.Decoder.MaxDepth)}
}

func auditSource(blob *keyfile.Blob) audit.Source {
	return audit.Source{Path: blob.Source, Format: blob.Format.String()}
}

// inspectBlob loads and inspects the input, auditing decode failures.
func inspectBlob(cmd *cobra.Command, args []string, hexInput string) (*keyfile.Blob, *der.KeyInfo, error) {
	blob, err := loadBlob(cmd, args, hexInput)
	if err != nil {
		return nil, nil, err
	}

	info, err := der.Inspect(blob.DER, decodeOptions()...)
	if err != nil {
		if auditErr := audit.LogDecodeFailed(auditSource(blob), err); auditErr != nil {
			return nil, nil, auditErr
		}
		return nil, nil, fmt.Errorf("%s: %w", blob.Source, err)
	}
	return blob, info, nil
}
