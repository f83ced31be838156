// Package config loads fzsearch CLI configuration from YAML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "github.com/momingse/fzsearch/internal/errors"
	"github.com/momingse/fzsearch/internal/logging"
	"github.com/momingse/fzsearch/pkg/fzsearch"
)

// CurrentVersion is the schema version written by WriteYAML.
const CurrentVersion = 1

// Config file names looked up in a directory, in order.
var fileNames = []string{".fzsearch.yaml", ".fzsearch.yml"}

// Environment variables that override file values.
const (
	EnvMaxResults    = "FZSEARCH_MAX_RESULTS"
	EnvDropoutRate   = "FZSEARCH_DROPOUT_RATE"
	EnvLevelPenalty  = "FZSEARCH_LEVEL_PENALTY"
	EnvCaseSensitive = "FZSEARCH_CASE_SENSITIVE"
	EnvKeys          = "FZSEARCH_KEYS"
	EnvLogLevel      = "FZSEARCH_LOG_LEVEL"
)

// Config represents the complete fzsearch configuration.
type Config struct {
	Version int              `yaml:"version" json:"version"`
	Search  fzsearch.Options `yaml:"search" json:"search"`
	Logging logging.Config   `yaml:"logging" json:"logging"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-" json:"source,omitempty"`
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Search:  fzsearch.DefaultOptions(),
		Logging: logging.DefaultConfig(),
	}
}

// GetUserConfigPath returns the path to the user configuration file:
// $XDG_CONFIG_HOME/fzsearch/config.yaml or ~/.config/fzsearch/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fzsearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "fzsearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "fzsearch", "config.yaml")
}

// Load loads configuration for dir. Precedence, lowest first:
//  1. Defaults
//  2. User config (GetUserConfigPath)
//  3. .fzsearch.yaml or .fzsearch.yml in dir
//  4. FZSEARCH_* environment variables
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			if err := cfg.loadYAML(path); err != nil {
				return nil, err
			}
			break
		}
	}

	return cfg.finish()
}

// LoadFile loads configuration from an explicit path on top of the
// defaults, then applies the environment.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	return cfg.finish()
}

func (c *Config) finish() (*Config, error) {
	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadYAML decodes path over the current values. Fields missing from the
// file keep what they had, so an explicit false or 0 still overrides.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ferrors.New(ferrors.ErrCodeFileNotFound,
				fmt.Sprintf("config file %s not found", path), err).
				WithDetail("path", path)
		}
		return ferrors.New(ferrors.ErrCodeFileRead,
			fmt.Sprintf("failed to read config file %s", path), err).
			WithDetail("path", path)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return ferrors.New(ferrors.ErrCodeConfigParse,
			fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path).
			WithSuggestion("run 'fzsearch config init' to write a valid file")
	}
	c.Source = path
	return nil
}

// applyEnvOverrides applies FZSEARCH_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvMaxResults); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return envError(EnvMaxResults, v, err)
		}
		c.Search.MaxResults = n
	}
	if v := os.Getenv(EnvDropoutRate); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return envError(EnvDropoutRate, v, err)
		}
		c.Search.DropoutRate = f
	}
	if v := os.Getenv(EnvLevelPenalty); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return envError(EnvLevelPenalty, v, err)
		}
		c.Search.LevelPenalty = f
	}
	if v := os.Getenv(EnvCaseSensitive); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return envError(EnvCaseSensitive, v, err)
		}
		c.Search.CaseSensitive = b
	}
	if v := os.Getenv(EnvKeys); v != "" {
		c.Search.Keys = splitList(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func envError(name, value string, cause error) error {
	return ferrors.ConfigError(fmt.Sprintf("invalid value for %s", name), cause).
		WithDetail("variable", name).
		WithDetail("value", value)
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Version > CurrentVersion {
		return ferrors.ConfigError(fmt.Sprintf("unsupported config version %d", c.Version), nil).
			WithDetail("max_version", strconv.Itoa(CurrentVersion))
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return ferrors.ConfigError("logging: "+err.Error(), err)
	}
	return nil
}

// EngineOptions converts the search block into engine options.
func (c *Config) EngineOptions() []fzsearch.Option {
	return []fzsearch.Option{fzsearch.WithOptions(c.Search)}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ProjectConfigPath returns the path `config init` writes in dir.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, fileNames[0])
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
