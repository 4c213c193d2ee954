package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultCatalogFile is the catalog file name looked up when none is configured.
const DefaultCatalogFile = "categories.yaml"

// CatalogFile reads and writes the YAML category catalog.
type CatalogFile struct {
	Path   string
	logger logging.Logger
}

// NewCatalogFile creates a catalog file handle. An empty path means DefaultCatalogFile.
func NewCatalogFile(path string, logger logging.Logger) *CatalogFile {
	if path == "" {
		path = DefaultCatalogFile
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &CatalogFile{Path: path, logger: logger}
}

// FindConfigFile looks for filename in standard locations
func (f *CatalogFile) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		configPath := filepath.Join(homeDir, ".config", "ledger-import", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadCategories loads and validates the catalog. A missing file yields an
// empty catalog, not an error.
func (f *CatalogFile) LoadCategories(_ context.Context) ([]models.Category, error) {
	filePath, err := f.FindConfigFile(f.Path)
	if err != nil {
		f.logger.Warn("Categories file not found", logging.F(logging.FieldFile, f.Path))
		return []models.Category{}, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	categories, err := decodeCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing categories file %s: %w", filePath, err)
	}
	if err := ValidateCategories(categories); err != nil {
		return nil, fmt.Errorf("invalid categories file %s: %w", filePath, err)
	}

	f.logger.Debug("Loaded categories",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(categories)))
	return models.NewCatalog(categories).Categories(), nil
}

// decodeCatalog accepts both "categories: [...]" and a bare list.
func decodeCatalog(data []byte) ([]models.Category, error) {
	var cfg models.CategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err == nil && len(cfg.Categories) > 0 {
		return cfg.Categories, nil
	}

	var categories []models.Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SaveCategories writes the catalog, creating parent directories as needed.
func (f *CatalogFile) SaveCategories(categories []models.Category) error {
	filePath, err := f.FindConfigFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		filePath = f.Path
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(models.CategoriesConfig{Categories: models.NewCatalog(categories).Categories()})
	if err != nil {
		return fmt.Errorf("error marshaling categories: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing categories: %w", err)
	}

	f.logger.Debug("Saved categories",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(categories)))
	return nil
}

// ValidateCategories checks names, types and id uniqueness.
func ValidateCategories(categories []models.Category) error {
	seenIDs := make(map[int64]bool)
	seenNames := make(map[string]bool)
	for i, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("category #%d has no name", i+1)
		}
		if _, err := models.ParseTransactionType(string(c.Type)); err != nil {
			return fmt.Errorf("category %q: %w", c.Name, err)
		}
		if c.ID < 0 {
			return fmt.Errorf("category %q has a negative id", c.Name)
		}
		if c.ID != 0 {
			if seenIDs[c.ID] {
				return fmt.Errorf("duplicate category id %d", c.ID)
			}
			seenIDs[c.ID] = true
		}
		key := strings.ToLower(string(c.Type)) + "/" + strings.ToLower(strings.TrimSpace(c.Name))
		if seenNames[key] {
			return fmt.Errorf("duplicate %s category %q", c.Type, c.Name)
		}
		seenNames[key] = true
	}
	return nil
}

// Seed saves every category into s and returns the stored rows.
func Seed(ctx context.Context, s Store, categories []models.Category) ([]models.Category, error) {
	if err := ValidateCategories(categories); err != nil {
		return nil, err
	}
	saved := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		stored, err := s.SaveCategory(ctx, c)
		if err != nil {
			return saved, fmt.Errorf("failed to save category %q: %w", c.Name, err)
		}
		saved = append(saved, stored)
	}
	return saved, nil
}
