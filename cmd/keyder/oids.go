package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/remiblancher/keyder/pkg/der"
)

var oidsHex string

var oidsCmd = &cobra.Command{
	Use:   "oids [FILE|-]",
	Short: "List the OIDs of a key blob with their algorithm labels",
	Long: `List every OBJECT IDENTIFIER in a key blob, in encoding order, with the
algorithm label it maps to ("unknown" when unregistered).

Examples:
  keyder oids key.pem
  keyder oids --hex 3036301006072a8648ce3d020106052b8104000a...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOIDs,
}

func init() {
	addInputFlags(oidsCmd, &oidsHex)
}

func runOIDs(cmd *cobra.Command, args []string) error {
	blob, err := loadBlob(cmd, args, oidsHex)
	if err != nil {
		return err
	}
	res, err := der.Decode(blob.DER, decodeOptions()...)
	if err != nil {
		return fmt.Errorf("%s: %w", blob.Source, err)
	}

	labels := der.ClassifyOIDs(res.OIDs)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for i, oid := range res.OIDs {
		fmt.Fprintf(w, "%s\t%s\n", oid, labels[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "algorithm: %s\n", der.PrimaryAlgorithm(labels))
	return err
}
