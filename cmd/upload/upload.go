// Package upload handles the upload command
package upload

import (
	"io"

	"fjacquet/ledger-import/cmd/common"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"github.com/spf13/cobra"
)

// SkipVerify commits every transaction of the batch without the dry run.
var SkipVerify bool

// Cmd represents the upload command
var Cmd = &cobra.Command{
	Use:   "upload",
	Short: "Commit a batch to the user's account",
	Long: `Verify a batch and commit the processable transactions in one atomic unit,
updating the account balance once. With --all every transaction is handed to
the committer, which still refuses rows that would overdraw the account.`,
	RunE: uploadFunc,
}

func init() {
	Cmd.Flags().BoolVar(&SkipVerify, "all", false, "Commit every transaction without verifying the batch first")
}

func uploadFunc(cmd *cobra.Command, args []string) error {
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
	svc := c.GetService()

	gen, err := common.NewGenerator(logger)
	if err != nil {
		return err
	}
	txs, err := common.LoadTransactions(cmd.Context(), svc, root.SharedFlags.Input, logger)
	if err != nil {
		return err
	}

	if !SkipVerify {
		report, err := svc.Verify(cmd.Context(), userID, txs)
		if err != nil {
			return err
		}
		accepted := make([]models.ParsedTransaction, 0, report.Summary.Processable)
		for _, o := range report.ByStatus(models.StatusProcessable) {
			accepted = append(accepted, o.Transaction)
		}
		if skipped := len(txs) - len(accepted); skipped > 0 {
			logger.Warn("Skipping transactions that failed verification",
				logging.F(logging.FieldCount, skipped))
		}
		txs = accepted
	}

	result, err := svc.Upload(cmd.Context(), userID, txs)
	if err != nil {
		return err
	}
	logger.Info(result.Message(),
		logging.F(logging.FieldBatchID, result.BatchID),
		logging.F(logging.FieldBalance, result.FinalBalance.StringFixed(2)))

	return common.WriteOutput(root.SharedFlags.Output, func(w io.Writer) error {
		return gen.WriteResult(w, result)
	})
}
