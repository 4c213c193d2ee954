// Package verify handles the verify command
package verify

import (
	"io"

	"fjacquet/ledger-import/cmd/common"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the verify command
var Cmd = &cobra.Command{
	Use:   "verify",
	Short: "Dry-run a batch against the stored account",
	Long: `Classify every transaction of a batch as processable, duplicated within the
batch, already stored or unprocessable for lack of balance, and report the
projected balance. Nothing is written to the store.`,
	RunE: verifyFunc,
}

func verifyFunc(cmd *cobra.Command, args []string) error {
	userID, err := common.UserID()
	if err != nil {
		return err
	}
	c, err := common.NewContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close()
	logger := c.GetLogger()

	gen, err := common.NewGenerator(logger)
	if err != nil {
		return err
	}
	txs, err := common.LoadTransactions(cmd.Context(), c.GetService(), root.SharedFlags.Input, logger)
	if err != nil {
		return err
	}

	report, err := c.GetService().Verify(cmd.Context(), userID, txs)
	if err != nil {
		return err
	}
	logger.Info("Verification completed",
		logging.F(logging.FieldUserID, userID),
		logging.F("processable", report.Summary.Processable),
		logging.F("repeated", report.Summary.Repeated),
		logging.F("existing", report.Summary.ExistingInDB),
		logging.F("unprocessable", report.Summary.Unprocessable))

	return common.WriteOutput(root.SharedFlags.Output, func(w io.Writer) error {
		return gen.WriteVerification(w, report)
	})
}
