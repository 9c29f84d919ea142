package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Reports: ReportsConfig{
			Hierarchy: "hierarchy.txt",
			Inventory: "modlist.txt",
			Detail:    "modinfo.txt",
		},
		Inventory: InventoryConfig{
			CountTolerance: 0,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Reports = mergeReportsConfig(loaded.Reports, defaults.Reports)

	// CountTolerance: zero is a meaningful value, keep loaded as-is
	result.Inventory = loaded.Inventory

	// Enabled: yaml unmarshals a missing bool as false, so a bare config
	// cannot distinguish "unset" from "off" and the default wins; turning
	// the cache off per-run is the --no-cache flag's job
	result.Cache.Enabled = loaded.Cache.Enabled || defaults.Cache.Enabled

	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)

	return result
}

func mergeReportsConfig(loaded, defaults ReportsConfig) ReportsConfig {
	result := ReportsConfig{}

	if loaded.Hierarchy != "" {
		result.Hierarchy = loaded.Hierarchy
	} else {
		result.Hierarchy = defaults.Hierarchy
	}

	if loaded.Inventory != "" {
		result.Inventory = loaded.Inventory
	} else {
		result.Inventory = defaults.Inventory
	}

	if loaded.Detail != "" {
		result.Detail = loaded.Detail
	} else {
		result.Detail = defaults.Detail
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	if loaded.DefaultFormat != "" {
		result.DefaultFormat = loaded.DefaultFormat
	} else {
		result.DefaultFormat = defaults.DefaultFormat
	}

	return result
}

// ValidFormats lists the valid values for output format
var ValidFormats = []string{"text", "yaml", "json"}

// IsValidFormat checks if the given format value is valid
func IsValidFormat(format string) bool {
	for _, valid := range ValidFormats {
		if format == valid {
			return true
		}
	}
	return false
}
