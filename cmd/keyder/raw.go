package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remiblancher/keyder/internal/audit"
)

var rawHex string

var rawCmd = &cobra.Command{
	Use:   "raw [FILE|-]",
	Short: "Print the raw key bytes of a key blob as hex",
	Long: `Print the raw key carried by a SubjectPublicKeyInfo or PrivateKeyInfo blob.

The first BIT STRING directly inside the top-level SEQUENCE is the key; if
there is none, the first OCTET STRING is. In a PKCS#8 PrivateKeyInfo, a
private key wrapped in an inner OCTET STRING (RFC 8410) is unwrapped.

Errors:
  unexpected end of input   a tag, length or value runs past the input
  malformed bit string      a BIT STRING of length 0, or unused bits above 7
  unsupported tag           a tag outside INTEGER, BIT/OCTET STRING, OID,
                            SEQUENCE, [0] and [1]
  no key found              no BIT STRING or OCTET STRING in the top level

Examples:
  keyder raw pub.pem
  keyder raw --hex 302a300506032b6570032100...
  cat key.der | keyder raw -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRaw,
}

func init() {
	addInputFlags(rawCmd, &rawHex)
}

func runRaw(cmd *cobra.Command, args []string) error {
	blob, info, err := inspectBlob(cmd, args, rawHex)
	if err != nil {
		return err
	}
	if err := audit.LogKeyExtracted(auditSource(blob), info); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(info.Raw))
	return err
}
