package container

import (
	"context"
	"path/filepath"
	"testing"

	"fjacquet/ledger-import/internal/config"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/store"
	"fjacquet/ledger-import/internal/store/sqlite"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(driver string) *config.Config {
	cfg := &config.Config{}
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.Store.Driver = driver
	cfg.Store.ConnectAttempts = 1
	cfg.Categorization.Threshold = 0.2
	cfg.Categorization.KeyTermBonus = 0.1
	cfg.Import.Source = models.SourceImport
	cfg.Export.Width = 80
	cfg.Export.CurrencySymbol = "₹"
	return cfg
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name     string
		config   func(t *testing.T) *config.Config
		errorMsg string
	}{
		{
			name:     "nil config",
			config:   func(*testing.T) *config.Config { return nil },
			errorMsg: "configuration cannot be nil",
		},
		{
			name:     "unknown driver",
			config:   func(*testing.T) *config.Config { return testConfig("oracle") },
			errorMsg: "unknown store driver: oracle",
		},
		{
			name:   "memory driver",
			config: func(*testing.T) *config.Config { return testConfig(config.DriverMemory) },
		},
		{
			name: "sqlite driver",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(config.DriverSQLite)
				cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "data", "ledger.db")
				return cfg
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(context.Background(), tt.config(t))
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.NotNil(t, c.GetLogger())
			assert.NotNil(t, c.GetService())
			assert.NoError(t, c.Close())
		})
	}
}

func TestContainer_SelectsStore(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(config.DriverMemory))
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &store.MemoryStore{}, c.GetStore())

	cfg := testConfig(config.DriverSQLite)
	cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "ledger.db")
	sc, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer sc.Close()
	assert.IsType(t, &sqlite.Store{}, sc.GetStore())
}

func TestContainer_ConvenienceMethods(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	cfg.Categorization.CatalogFile = "custom.yaml"

	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Same(t, cfg, c.GetConfig())
	assert.Equal(t, "custom.yaml", c.GetCatalogFile().Path)
}

func TestContainer_ServiceUsesStore(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, testConfig(config.DriverMemory))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetStore().CreateAccount(ctx, models.Account{UserID: 1, Name: "HDFC", Balance: decimal.NewFromInt(100)})
	require.NoError(t, err)

	report, err := c.GetService().Verify(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "HDFC", report.AccountName)
	assert.True(t, report.ProjectedBalance.Equal(decimal.NewFromInt(100)))
}
