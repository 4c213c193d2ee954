// Package categorize handles transaction categorization commands
package categorize

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/ledger-import/cmd/common"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/report"

	"github.com/spf13/cobra"
)

// Categorize command flags
var (
	Description string
	AccountHint string
	Type        string
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize a single transaction description",
	Long: `Match a transaction description, and optionally the ledger account it was
posted to, against the category catalog held by the store.`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Description, "description", "d", "", "Transaction description to categorize")
	Cmd.Flags().StringVarP(&AccountHint, "account", "a", "", "Ledger account of the posting (optional)")
	Cmd.Flags().StringVarP(&Type, "type", "t", string(models.TypeExpense), "Transaction type: income or expense")
	_ = Cmd.MarkFlagRequired("description")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	t, err := models.ParseTransactionType(Type)
	if err != nil {
		return err
	}
	if strings.TrimSpace(Description) == "" {
		return fmt.Errorf("description must not be empty")
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
	m, err := c.GetService().Matcher(cmd.Context())
	if err != nil {
		return err
	}

	result := m.Match(Description, AccountHint, t)
	category, _ := m.Catalog().Get(result.CategoryID)
	logger.Debug("Categorized description",
		logging.F(logging.FieldDescription, Description),
		logging.F(logging.FieldCategoryID, result.CategoryID),
		logging.F(logging.FieldConfidence, result.Confidence))

	return common.WriteOutput(root.SharedFlags.Output, func(w io.Writer) error {
		return gen.WriteMatch(w, report.MatchRow{
			Description:  Description,
			Type:         string(t),
			CategoryID:   result.CategoryID,
			CategoryName: category.Name,
			Confidence:   result.Confidence,
		})
	})
}
