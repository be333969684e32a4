package config

import "github.com/hargabyte/ctx/internal/budget"

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Languages:   []string{},
			Exclude:     []string{},
			MaxFileSize: 1 << 20,
		},
		Context: ContextConfig{
			Budget:     2000,
			Estimator:  budget.EstimatorChars,
			MaxFiles:   5,
			MaxSymbols: 20,
		},
		Activity: ActivityConfig{
			WindowCommits:   20,
			CochangeCommits: 200,
		},
		Cache: CacheConfig{
			Persist: false,
			Path:    ConfigDirName,
		},
		Output: OutputConfig{
			Format: "yaml",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Scan:     mergeScanConfig(loaded.Scan, defaults.Scan),
		Context:  mergeContextConfig(loaded.Context, defaults.Context),
		Activity: mergeActivityConfig(loaded.Activity, defaults.Activity),
		Cache:    mergeCacheConfig(loaded.Cache, defaults.Cache),
		Output: OutputConfig{
			Format: orString(loaded.Output.Format, defaults.Output.Format),
		},
		Log: LogConfig{
			Level: orString(loaded.Log.Level, defaults.Log.Level),
			File:  orString(loaded.Log.File, defaults.Log.File),
		},
	}
}

func mergeScanConfig(loaded, defaults ScanConfig) ScanConfig {
	result := ScanConfig{
		Workers:     orInt(loaded.Workers, defaults.Workers),
		MaxFileSize: defaults.MaxFileSize,
		// Booleans can't distinguish unset from false; both defaults are false.
		NoAutoExclude: loaded.NoAutoExclude,
	}
	if loaded.MaxFileSize != 0 {
		result.MaxFileSize = loaded.MaxFileSize
	}

	if len(loaded.Languages) > 0 {
		result.Languages = loaded.Languages
	} else {
		result.Languages = defaults.Languages
	}

	if len(loaded.Exclude) > 0 {
		result.Exclude = loaded.Exclude
	} else {
		result.Exclude = defaults.Exclude
	}
	return result
}

func mergeContextConfig(loaded, defaults ContextConfig) ContextConfig {
	return ContextConfig{
		Budget:     orInt(loaded.Budget, defaults.Budget),
		Estimator:  orString(loaded.Estimator, defaults.Estimator),
		MaxFiles:   orInt(loaded.MaxFiles, defaults.MaxFiles),
		MaxSymbols: orInt(loaded.MaxSymbols, defaults.MaxSymbols),
	}
}

func mergeActivityConfig(loaded, defaults ActivityConfig) ActivityConfig {
	return ActivityConfig{
		WindowCommits:   orInt(loaded.WindowCommits, defaults.WindowCommits),
		CochangeCommits: orInt(loaded.CochangeCommits, defaults.CochangeCommits),
	}
}

func mergeCacheConfig(loaded, defaults CacheConfig) CacheConfig {
	return CacheConfig{
		Persist: loaded.Persist || defaults.Persist,
		Path:    orString(loaded.Path, defaults.Path),
	}
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
