// Package account handles the bank account commands
package account

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/ledger-import/cmd/common"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/currencyutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"github.com/spf13/cobra"
)

// Account create flags
var (
	Name     string
	Balance  string
	Currency string
)

// Cmd represents the account command
var Cmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the user's bank account",
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a bank account for the user",
	RunE:  createFunc,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the user's bank account and balance",
	RunE:  showFunc,
}

func init() {
	createCmd.Flags().StringVarP(&Name, "name", "n", "", "Account name, used in exported postings")
	createCmd.Flags().StringVarP(&Balance, "balance", "b", "0", "Opening balance")
	createCmd.Flags().StringVar(&Currency, "currency", "INR", "Currency code")
	_ = createCmd.MarkFlagRequired("name")

	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(showCmd)
}

func createFunc(cmd *cobra.Command, args []string) error {
	userID, err := common.UserID()
	if err != nil {
		return err
	}
	if strings.TrimSpace(Name) == "" {
		return fmt.Errorf("account name must not be empty")
	}
	balance, err := currencyutils.ParseAmount(Balance)
	if err != nil {
		return fmt.Errorf("invalid --balance: %w", err)
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
	account, err := c.GetStore().CreateAccount(cmd.Context(), models.Account{
		UserID:   userID,
		Name:     strings.TrimSpace(Name),
		Balance:  balance,
		Currency: strings.ToUpper(Currency),
	})
	if err != nil {
		return err
	}
	logger.Info("Created bank account",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldAccountID, account.ID))

	return common.WriteOutput(root.SharedFlags.Output, func(w io.Writer) error {
		return gen.WriteAccount(w, account)
	})
}

func showFunc(cmd *cobra.Command, args []string) error {
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
	account, err := c.GetStore().LoadAccount(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("user %d: %w", userID, err)
	}
	logger.Debug("Loaded bank account",
		logging.F(logging.FieldAccountID, account.ID),
		logging.F(logging.FieldBalance, currencyutils.FormatAmount(account.Balance, c.GetConfig().Export.CurrencySymbol)))

	return common.WriteOutput(root.SharedFlags.Output, func(w io.Writer) error {
		return gen.WriteAccount(w, account)
	})
}
