// Package catalog handles the category catalog commands
package catalog

import (
	"fmt"
	"io"

	"fjacquet/ledger-import/cmd/common"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the catalog command
var Cmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the category catalog",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load categories from a YAML file into the store",
	Long: `Read the YAML category catalog (--input, or categorization.catalog_file,
or categories.yaml in ., config/ or database/) and save every category into
the store. Categories with the same name and type are updated in place.`,
	RunE: seedFunc,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the categories held by the store",
	RunE:  listFunc,
}

func init() {
	Cmd.AddCommand(seedCmd)
	Cmd.AddCommand(listCmd)
}

func seedFunc(cmd *cobra.Command, args []string) error {
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

	file := c.GetCatalogFile()
	if root.SharedFlags.Input != "" {
		file = store.NewCatalogFile(root.SharedFlags.Input, logger)
	}
	categories, err := file.LoadCategories(cmd.Context())
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return fmt.Errorf("no categories found in %s", file.Path)
	}

	saved, err := store.Seed(cmd.Context(), c.GetStore(), categories)
	if err != nil {
		return err
	}
	logger.Info("Seeded category catalog",
		logging.F(logging.FieldFile, file.Path),
		logging.F(logging.FieldCount, len(saved)))

	return common.WriteOutput(root.SharedFlags.Output, func(w io.Writer) error {
		return gen.WriteCategories(w, saved)
	})
}

func listFunc(cmd *cobra.Command, args []string) error {
	c, err := common.NewContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	gen, err := common.NewGenerator(c.GetLogger())
	if err != nil {
		return err
	}
	categories, err := c.GetStore().LoadCategories(cmd.Context())
	if err != nil {
		return err
	}
	return common.WriteOutput(root.SharedFlags.Output, func(w io.Writer) error {
		return gen.WriteCategories(w, categories)
	})
}
