// Package parse handles the parse command
package parse

import (
	"io"

	"fjacquet/ledger-import/cmd/common"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse ledger files into categorized transactions",
	Long: `Parse one .ledger file, every .ledger file of a directory, or ledger text
on stdin, and write the categorized transactions as JSON or CSV. A CSV batch
can be reviewed by hand and passed back to verify or upload.`,
	RunE: parseFunc,
}

func parseFunc(cmd *cobra.Command, args []string) error {
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

	logger.Info("Parse completed", logging.F(logging.FieldCount, len(txs)))
	return common.WriteOutput(root.SharedFlags.Output, func(w io.Writer) error {
		return gen.WriteTransactions(w, txs)
	})
}
