// Package root contains the root command for the application
package root

import (
	"fjacquet/ledger-import/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input      string
	Output     string
	Format     string
	ConfigFile string
	UserID     int64
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Config is the configuration loaded before every command runs.
	Config *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "ledger-import",
		Short: "A CLI tool to import ledger-format bank statements into a categorized transaction store.",
		Long: `ledger-import parses plain-text ledger statements, categorizes every
transaction against a category catalog, dry-runs the batch against the stored
account balance and commits it atomically. Stored transactions can be exported
back to ledger text.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to ledger-import!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg, err := config.LoadConfig(SharedFlags.ConfigFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("user") {
				cfg.Import.UserID = SharedFlags.UserID
			}
			Config = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)
			return nil
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file or directory (- for stdin)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default stdout)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Format, "format", "json", "Report format: json or csv")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default config.yaml in $HOME/.ledger-import, .ledger-import or .)")
	Cmd.PersistentFlags().Int64VarP(&SharedFlags.UserID, "user", "u", 0, "User id owning the bank account (overrides import.user_id)")
}
