package root_test

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/ledger-import/cmd/root"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "ledger-import", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "import ledger-format bank statements")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
}

func TestRootCommand_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"input", "i", ""},
		{"output", "o", ""},
		{"format", "", "json"},
		{"config", "", ""},
		{"user", "u", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := root.Cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestRootCommand_PersistentPreRunLoadsConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("store:\n  driver: memory\nimport:\n  user_id: 7\n"), 0600))

	cmd := &cobra.Command{Use: "status"}
	cmd.Flags().AddFlagSet(root.Cmd.PersistentFlags())
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgFile}))

	require.NoError(t, root.Cmd.PersistentPreRunE(cmd, nil))
	require.NotNil(t, root.Config)
	assert.Equal(t, "memory", root.Config.Store.Driver)
	assert.Equal(t, int64(7), root.Config.Import.UserID)

	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgFile, "--user", "9"}))
	require.NoError(t, root.Cmd.PersistentPreRunE(cmd, nil))
	assert.Equal(t, int64(9), root.Config.Import.UserID, "--user overrides the config file")
}

func TestRootCommand_PersistentPreRunRejectsBadConfig(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("store:\n  driver: oracle\n"), 0600))

	cmd := &cobra.Command{Use: "status"}
	cmd.Flags().AddFlagSet(root.Cmd.PersistentFlags())
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgFile}))

	err := root.Cmd.PersistentPreRunE(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid store driver")
}
