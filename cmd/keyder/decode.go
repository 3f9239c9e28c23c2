package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/remiblancher/keyder/internal/audit"
	"github.com/remiblancher/keyder/pkg/der"
)

var (
	decodeHex    string
	decodeFormat string
)

var decodeCmd = &cobra.Command{
	Use:   "decode [FILE|-]",
	Short: "Print the element tree of a DER blob",
	Long: `Decode a DER blob and print its element tree.

Formats:
  text  indented tree (default)
  json  tree and OIDs as JSON
  yaml  tree and OIDs as YAML
  cbor  tree and OIDs as CBOR (binary)

Examples:
  keyder decode key.pem
  keyder decode --format json --hex 302a300506032b6570032100...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	addInputFlags(decodeCmd, &decodeHex)
	decodeCmd.Flags().StringVarP(&decodeFormat, "format", "f", "text", "Output format: text, json, yaml, cbor")
}

// decodeOutput is the structured form of a decode.
type decodeOutput struct {
	Tree     *der.Element `json:"tree" yaml:"tree" cbor:"tree"`
	OIDs     []string     `json:"oids" yaml:"oids" cbor:"oids"`
	Trailing int          `json:"trailing,omitempty" yaml:"trailing,omitempty" cbor:"trailing,omitempty"`
}

func runDecode(cmd *cobra.Command, args []string) error {
	encode, err := treeEncoder(decodeFormat)
	if err != nil {
		return err
	}

	blob, err := loadBlob(cmd, args, decodeHex)
	if err != nil {
		return err
	}
	res, err := der.Decode(blob.DER, decodeOptions()...)
	if err != nil {
		if auditErr := audit.LogDecodeFailed(auditSource(blob), err); auditErr != nil {
			return auditErr
		}
		return fmt.Errorf("%s: %w", blob.Source, err)
	}

	out := cmd.OutOrStdout()
	if encode == nil {
		fmt.Fprint(out, der.Format(res.Root))
		if res.Trailing > 0 {
			fmt.Fprintf(out, "(%d trailing bytes)\n", res.Trailing)
		}
		return nil
	}

	oids := res.OIDs
	if oids == nil {
		oids = []string{}
	}
	return encode(out, decodeOutput{Tree: der.Tree(res.Root), OIDs: oids, Trailing: res.Trailing})
}

// treeEncoder returns the encoder for format, nil for text.
func treeEncoder(format string) (func(io.Writer, decodeOutput) error, error) {
	switch format {
	case "text":
		return nil, nil
	case "json":
		return func(w io.Writer, v decodeOutput) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		}, nil
	case "yaml":
		return func(w io.Writer, v decodeOutput) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(v); err != nil {
				return err
			}
			return enc.Close()
		}, nil
	case "cbor":
		return func(w io.Writer, v decodeOutput) error {
			return cbor.NewEncoder(w).Encode(v)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use text, json, yaml or cbor)", format)
	}
}
