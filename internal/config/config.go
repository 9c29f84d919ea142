package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the cvq configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the cvq configuration directory
const ConfigDirName = ".cvq"

// Config holds all cvq configuration
type Config struct {
	Reports   ReportsConfig   `yaml:"reports"`
	Inventory InventoryConfig `yaml:"inventory"`
	Cache     CacheConfig     `yaml:"cache"`
	Output    OutputConfig    `yaml:"output"`
}

// ReportsConfig names the report files inside a coverage run directory
type ReportsConfig struct {
	Hierarchy string `yaml:"hierarchy"`
	Inventory string `yaml:"inventory"`
	Detail    string `yaml:"detail"`
}

// InventoryConfig holds module-inventory parsing knobs
type InventoryConfig struct {
	// CountTolerance is how far the header's declared module count may
	// diverge from the parsed count before a warning is recorded.
	CountTolerance int `yaml:"count_tolerance"`
}

// CacheConfig controls the persisted section-index cache
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .cvq/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .cvq directory by walking up from startDir.
// Returns the path to the .cvq directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .cvq directory if it doesn't exist.
// Returns the path to the .cvq directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	for _, f := range []struct{ key, name string }{
		{cfg.Reports.Hierarchy, "reports.hierarchy"},
		{cfg.Reports.Inventory, "reports.inventory"},
		{cfg.Reports.Detail, "reports.detail"},
	} {
		if f.key == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, f.name)
		}
		if filepath.Base(f.key) != f.key {
			return fmt.Errorf("%w: %s must be a bare file name, got %q",
				ErrInvalidConfig, f.name, f.key)
		}
	}

	if cfg.Inventory.CountTolerance < 0 {
		return fmt.Errorf("%w: count_tolerance must be non-negative, got %d",
			ErrInvalidConfig, cfg.Inventory.CountTolerance)
	}

	if !IsValidFormat(cfg.Output.DefaultFormat) {
		return fmt.Errorf("%w: default_format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.DefaultFormat)
	}

	return nil
}

// SaveDefault writes the default configuration to .cvq/config.yaml in workDir.
// Creates the .cvq directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# cvq configuration\n# Report file names are resolved inside the coverage run directory.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
