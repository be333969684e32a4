package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hargabyte/ctx/internal/budget"
	"github.com/hargabyte/ctx/internal/parser"
)

// ConfigFileName is the name of the ctx configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the ctx configuration directory
const ConfigDirName = ".ctx"

// Config holds all ctx configuration
type Config struct {
	Scan     ScanConfig     `yaml:"scan"`
	Context  ContextConfig  `yaml:"context"`
	Activity ActivityConfig `yaml:"activity"`
	Cache    CacheConfig    `yaml:"cache"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
}

// ScanConfig controls which files are walked and parsed
type ScanConfig struct {
	// Languages limits parsing to these languages. Empty means all.
	Languages     []string `yaml:"languages"`
	Exclude       []string `yaml:"exclude"`
	Workers       int      `yaml:"workers"`
	MaxFileSize   int64    `yaml:"max_file_size"`
	NoAutoExclude bool     `yaml:"no_auto_exclude"`
}

// ContextConfig controls prompt context assembly
type ContextConfig struct {
	Budget     int    `yaml:"budget"`
	Estimator  string `yaml:"estimator"`
	MaxFiles   int    `yaml:"max_files"`
	MaxSymbols int    `yaml:"max_symbols"`
}

// ActivityConfig controls how much git history is read
type ActivityConfig struct {
	WindowCommits   int `yaml:"window_commits"`
	CochangeCommits int `yaml:"cochange_commits"`
}

// CacheConfig controls the persistent summary store
type CacheConfig struct {
	Persist bool `yaml:"persist"`
	// Path is the store directory, relative to the project root.
	Path string `yaml:"path"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	Format string `yaml:"format"`
}

// LogConfig controls diagnostics on stderr
type LogConfig struct {
	Level string `yaml:"level"`
	// File, when set, receives the log instead of stderr.
	File string `yaml:"file"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .ctx/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
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
		return nil, fmt.Errorf("%w: parsing config file: %v", ErrInvalidConfig, err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir locates the .ctx directory by walking up from startDir.
// Returns the path to the .ctx directory if found.
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

// EnsureConfigDir creates the .ctx directory if it doesn't exist.
// Returns the path to the .ctx directory.
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
// Returns an error wrapping ErrInvalidConfig if validation fails.
func Validate(cfg *Config) error {
	for _, name := range cfg.Scan.Languages {
		if parser.ParseLanguage(name) == parser.None {
			return fmt.Errorf("%w: unknown language %q in scan.languages", ErrInvalidConfig, name)
		}
	}
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, cfg.Scan.Workers)
	}
	if cfg.Scan.MaxFileSize < 0 {
		return fmt.Errorf("%w: max_file_size must be non-negative, got %d", ErrInvalidConfig, cfg.Scan.MaxFileSize)
	}

	if cfg.Context.Budget <= 0 {
		return fmt.Errorf("%w: budget must be positive, got %d", ErrInvalidConfig, cfg.Context.Budget)
	}
	if _, err := budget.ParseEstimator(cfg.Context.Estimator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.Context.MaxFiles < 0 || cfg.Context.MaxSymbols < 0 {
		return fmt.Errorf("%w: max_files and max_symbols must be non-negative", ErrInvalidConfig)
	}

	if cfg.Activity.WindowCommits < 0 || cfg.Activity.CochangeCommits < 0 {
		return fmt.Errorf("%w: commit windows must be non-negative", ErrInvalidConfig)
	}

	if !slices.Contains(ValidFormats, strings.ToLower(cfg.Output.Format)) {
		return fmt.Errorf("%w: format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.Format)
	}
	if !IsValidLogLevel(cfg.Log.Level) {
		return fmt.Errorf("%w: log level must be one of %v, got %q",
			ErrInvalidConfig, ValidLogLevels, cfg.Log.Level)
	}
	return nil
}

// SaveDefault writes the default configuration to .ctx/config.yaml in workDir.
// Creates the .ctx directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# ctx configuration\n# Values left out fall back to the built-in defaults.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return configPath, nil
}

// Languages converts the configured language names.
func (c *Config) Languages() []parser.Language {
	var out []parser.Language
	for _, name := range c.Scan.Languages {
		if lang := parser.ParseLanguage(name); lang != parser.None {
			out = append(out, lang)
		}
	}
	return out
}

// CacheDir resolves the summary store directory against root.
func (c *Config) CacheDir(root string) string {
	if filepath.IsAbs(c.Cache.Path) {
		return c.Cache.Path
	}
	return filepath.Join(root, c.Cache.Path)
}

// ValidLogLevels lists the accepted log.level values
var ValidLogLevels = []string{"debug", "info", "warn", "error", "silent", "off", "none"}

// IsValidLogLevel checks if the given level is accepted by the logger
func IsValidLogLevel(level string) bool {
	return slices.Contains(ValidLogLevels, strings.ToLower(strings.TrimSpace(level)))
}

// ValidFormats lists the accepted output formats
var ValidFormats = []string{"yaml", "json", "text"}
