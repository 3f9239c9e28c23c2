package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remiblancher/keyder/internal/audit"
	"github.com/remiblancher/keyder/internal/keycheck"
)

var checkHex string

var checkCmd = &cobra.Command{
	Use:   "check [FILE|-]",
	Short: "Validate the raw key material of a key blob",
	Long: `Extract the raw key and check it against the algorithm named by the blob's
OIDs: public keys must decode to a valid point or key, private keys must have
the right size and lie in range.

Exits non-zero when the key is invalid or its algorithm has no check.

Examples:
  keyder check pub.pem
  keyder check --hex 302e020100300506032b6570...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	addInputFlags(checkCmd, &checkHex)
}

func runCheck(cmd *cobra.Command, args []string) error {
	blob, info, err := inspectBlob(cmd, args, checkHex)
	if err != nil {
		return err
	}

	checkErr := keycheck.CheckInfo(info)
	if err := audit.LogKeyChecked(auditSource(blob), info, checkErr); err != nil {
		return err
	}
	if checkErr != nil {
		return fmt.Errorf("key check failed: %w", checkErr)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "OK %s %s key (%d bytes)\n", info.Algorithm, info.Kind, len(info.Raw))
	return err
}
