// Package config provides shared configuration loading for the query tool.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tailscale/hujson"

	"asdb_search/search"
)

// DefaultPath is where the tool looks for its configuration.
const DefaultPath = "asdbq.json"

// SearchConfig holds the settings used for new searches.
type SearchConfig struct {
	Type       string `json:"type" validate:"required"`
	ReturnType string `json:"return_type" validate:"oneof=json csv fasta fastas"`
	Paginate   int    `json:"paginate" validate:"gt=0"`
}

// Config represents the complete tool configuration.
type Config struct {
	Search SearchConfig `json:"search"`
	// CategoriesFile is the category vocabulary used to check queries.
	// Empty disables checking.
	CategoriesFile string `json:"categories_file"`
}

// HasCategories returns true if a category vocabulary is configured.
func (c *Config) HasCategories() bool {
	return c.CategoriesFile != ""
}

// NewSession creates a search session using the configured settings.
func (c *Config) NewSession() *search.Session {
	s := search.NewSession()
	s.Search = c.Search.Type
	s.ReturnType = c.Search.ReturnType
	s.Paginate = c.Search.Paginate
	return s
}

var validate = validator.New()

// Validate checks the configuration values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: failed %q check (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

// Global configuration instance
var (
	globalConfig *Config
	configMutex  sync.RWMutex
)

func defaults() *Config {
	return &Config{
		Search: SearchConfig{
			Type:       search.DefaultSearch,
			ReturnType: search.DefaultReturnType,
			Paginate:   search.DefaultPaginate,
		},
	}
}

// Load reads and parses the configuration file.
// Supports JSON with comments (//, /* */) and trailing commas.
// Settings missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// Sanitize JSON: strip comments and trailing commas
	data, err = standardizeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg := defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	// Store as global config
	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return cfg, nil
}

// standardizeJSON strips comments and trailing commas from JSON.
func standardizeJSON(b []byte) ([]byte, error) {
	ast, err := hujson.Parse(b)
	if err != nil {
		return nil, err
	}
	ast.Standardize()
	return ast.Pack(), nil
}

// Get returns the currently loaded global configuration.
func Get() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// Default returns a default configuration for when no config file exists.
// It also stores the default as the global configuration.
func Default() *Config {
	cfg := defaults()

	// Store as global config
	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return cfg
}
