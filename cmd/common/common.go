// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/container"
	"fjacquet/ledger-import/internal/fileutils"
	"fjacquet/ledger-import/internal/importer"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/report"
	"fjacquet/ledger-import/internal/validation"

	"github.com/spf13/cobra"
)

// CSVExtension marks a batch previously written by "parse --format csv".
const CSVExtension = ".csv"

// ErrNoUser is returned when neither --user nor import.user_id selects a user.
var ErrNoUser = errors.New("no user selected: pass --user or set import.user_id")

// NewContainer wires the application for cmd from the loaded configuration.
func NewContainer(cmd *cobra.Command) (*container.Container, error) {
	if root.Config == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return container.NewContainer(cmd.Context(), root.Config)
}

// UserID returns the selected user.
func UserID() (int64, error) {
	if root.Config == nil || root.Config.Import.UserID <= 0 {
		return 0, ErrNoUser
	}
	return root.Config.Import.UserID, nil
}

// NewGenerator returns a report generator for the --format flag.
func NewGenerator(logger logging.Logger) (*report.Generator, error) {
	format := strings.ToLower(root.SharedFlags.Format)
	if err := validation.IsValidOutputFormat(format); err != nil {
		return nil, err
	}
	return report.NewGenerator(format, logger)
}

// LoadTransactions reads the batch named by input: a .ledger file, a
// directory of .ledger files, a CSV batch or "-" for ledger text on stdin.
func LoadTransactions(ctx context.Context, svc *importer.Service, input string, logger logging.Logger) ([]models.ParsedTransaction, error) {
	if input == "" {
		return nil, fmt.Errorf("no input given: pass --input (or - for stdin)")
	}
	if input == fileutils.Stdio {
		stdin, err := fileutils.OpenInput(input)
		if err != nil {
			return nil, err
		}
		defer stdin.Close()
		return svc.Parse(ctx, stdin)
	}
	if strings.EqualFold(filepath.Ext(input), CSVExtension) {
		return readCSVBatch(input)
	}

	files, err := fileutils.ResolveInputs(input, validation.LedgerExtension)
	if err != nil {
		return nil, err
	}
	var txs []models.ParsedTransaction
	for _, file := range files {
		parsed, err := svc.ParseFile(ctx, file)
		if err != nil {
			return nil, err
		}
		logger.Info("Parsed ledger file",
			logging.F(logging.FieldFile, file),
			logging.F(logging.FieldCount, len(parsed)))
		txs = append(txs, parsed...)
	}
	return txs, nil
}

func readCSVBatch(path string) ([]models.ParsedTransaction, error) {
	f, err := fileutils.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	txs, err := report.ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return txs, nil
}

// WriteOutput opens the --output destination and hands it to write.
func WriteOutput(path string, write func(w io.Writer) error) (err error) {
	out, err := fileutils.CreateOutput(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()
	return write(out)
}
