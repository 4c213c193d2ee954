// Package container provides dependency injection for the ledger-import
// application. It centralizes the creation and wiring of the logger, the
// configured store and the ingestion service.
package container

import (
	"context"
	"fmt"

	"fjacquet/ledger-import/internal/categorizer"
	"fjacquet/ledger-import/internal/config"
	"fjacquet/ledger-import/internal/importer"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/store"
	"fjacquet/ledger-import/internal/store/postgres"
	"fjacquet/ledger-import/internal/store/sqlite"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation: all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger  logging.Logger
	config  *config.Config
	store   store.Store
	catalog *store.CatalogFile
	service *importer.Service
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))

	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := importer.Options{
		Categorization: categorizer.Options{
			Threshold:    cfg.Categorization.Threshold,
			KeyTermBonus: cfg.Categorization.KeyTermBonus,
		},
		Source:         cfg.Import.Source,
		ExportWidth:    cfg.Export.Width,
		CurrencySymbol: cfg.Export.CurrencySymbol,
	}

	logger.Debug("Container initialized successfully",
		logging.F(logging.FieldDriver, cfg.Store.Driver))

	return &Container{
		logger:  logger,
		config:  cfg,
		store:   s,
		catalog: store.NewCatalogFile(cfg.Categorization.CatalogFile, logger),
		service: importer.NewService(s, opts, logger),
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.Store.SQLite.Path, logger)
	case config.DriverPostgres:
		pg := cfg.Store.Postgres
		return postgres.New(ctx, postgres.Config{
			URL:             pg.URL,
			Host:            pg.Host,
			Port:            pg.Port,
			Database:        pg.Database,
			User:            pg.User,
			Password:        pg.Password,
			SSLMode:         pg.SSLMode,
			MaxPoolSize:     pg.MaxPoolSize,
			ConnectAttempts: cfg.Store.ConnectAttempts,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the configured store.
func (c *Container) GetStore() store.Store {
	return c.store
}

// GetCatalogFile returns the YAML catalog used to seed the store.
func (c *Container) GetCatalogFile() *store.CatalogFile {
	return c.catalog
}

// GetService returns the ingestion service.
func (c *Container) GetService() *importer.Service {
	return c.service
}

// Close releases the store.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
