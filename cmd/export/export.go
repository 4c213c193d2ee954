// Package export handles the export command
package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"fjacquet/ledger-import/cmd/common"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/dateutils"

	"github.com/spf13/cobra"
)

// Export command flags
var (
	From string
	To   string
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored transactions as ledger text",
	Long: `Write the user's stored transactions between --from and --to (inclusive)
as ledger text, oldest first. Either bound may be omitted.`,
	RunE: exportFunc,
}

func init() {
	Cmd.Flags().StringVar(&From, "from", "", "First date to export (YYYY-MM-DD)")
	Cmd.Flags().StringVar(&To, "to", "", "Last date to export (YYYY-MM-DD)")
}

func parseBound(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := dateutils.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return t, nil
}

func exportFunc(cmd *cobra.Command, args []string) error {
	userID, err := common.UserID()
	if err != nil {
		return err
	}
	from, err := parseBound("from", From)
	if err != nil {
		return err
	}
	to, err := parseBound("to", To)
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", To, From)
	}

	c, err := common.NewContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	// an empty range must not leave an empty output file
	var buf bytes.Buffer
	if _, err := c.GetService().Export(cmd.Context(), userID, from, to, &buf); err != nil {
		return err
	}
	return common.WriteOutput(root.SharedFlags.Output, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
}
