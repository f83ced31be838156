package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momingse/fzsearch/configs"
	ferrors "github.com/momingse/fzsearch/internal/errors"
	"github.com/momingse/fzsearch/pkg/fzsearch"
)

// isolate points the user config at an empty directory and clears every
// FZSEARCH_* variable for the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, name := range []string{EnvMaxResults, EnvDropoutRate, EnvLevelPenalty, EnvCaseSensitive, EnvKeys, EnvLogLevel} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// ===== Defaults =====

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, fzsearch.DefaultOptions(), cfg.Search)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFiles_ReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, 0.8, cfg.Search.DropoutRate)
	assert.True(t, cfg.Search.CaseSensitive)
	assert.Empty(t, cfg.Source)
}

// ===== Files =====

func TestLoad_ProjectFile_OverridesDefaults(t *testing.T) {
	// Given: a project file setting a subset of fields, including an explicit false
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".fzsearch.yaml"), `
search:
  keys: [title, author.name]
  max_results: 3
  case_sensitive: false
logging:
  level: debug
  sync: true
`)

	// When: loading the directory
	cfg, err := Load(dir)

	// Then: set fields change, the rest keep their defaults
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "author.name"}, cfg.Search.Keys)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.False(t, cfg.Search.CaseSensitive)
	assert.Equal(t, 0.8, cfg.Search.DropoutRate)
	assert.Equal(t, 1.0, cfg.Search.LevelPenalty)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Sync)
	assert.Equal(t, filepath.Join(dir, ".fzsearch.yaml"), cfg.Source)
}

func TestLoad_YmlFallback(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".fzsearch.yml"), "search:\n  max_results: 7\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Search.MaxResults)
}

func TestLoad_YamlTakesPrecedenceOverYml(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".fzsearch.yaml"), "search:\n  max_results: 4\n")
	writeFile(t, filepath.Join(dir, ".fzsearch.yml"), "search:\n  max_results: 9\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Search.MaxResults)
}

func TestLoad_UserConfigUnderProjectConfig(t *testing.T) {
	// Given: a user config and a project config touching different fields
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, "fzsearch", "config.yaml"), "search:\n  level_penalty: 0.5\n  max_results: 2\n")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".fzsearch.yaml"), "search:\n  max_results: 5\n")

	// When
	cfg, err := Load(dir)

	// Then: the project wins where both set a field
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Search.LevelPenalty)
	assert.Equal(t, 5, cfg.Search.MaxResults)
}

func TestLoad_MalformedYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".fzsearch.yaml"), "search: [unclosed\n")

	_, err := Load(dir)

	require.Error(t, err)
	assert.Equal(t, ferrors.ErrCodeConfigParse, ferrors.GetCode(err))
}

func TestLoad_OutOfRangeValue(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".fzsearch.yaml"), "search:\n  dropout_rate: 1.5\n")

	_, err := Load(dir)

	require.Error(t, err)
	assert.True(t, errors.Is(err, fzsearch.ErrInvalidOption))
	assert.Contains(t, err.Error(), "dropout_rate")
}

func TestLoadFile_MissingFile(t *testing.T) {
	isolate(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Equal(t, ferrors.ErrCodeFileNotFound, ferrors.GetCode(err))
}

func TestLoadFile_ExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "search:\n  show_score: true\n")

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.True(t, cfg.Search.ShowScore)
	assert.Equal(t, path, cfg.Source)
}

// ===== Environment =====

func TestLoad_EnvOverridesFile(t *testing.T) {
	// Given: a file and environment disagreeing
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".fzsearch.yaml"), "search:\n  max_results: 3\n  keys: [title]\n")
	t.Setenv(EnvMaxResults, "20")
	t.Setenv(EnvDropoutRate, "0.5")
	t.Setenv(EnvLevelPenalty, "0.25")
	t.Setenv(EnvCaseSensitive, "false")
	t.Setenv(EnvKeys, "name, author.name ,")
	t.Setenv(EnvLogLevel, "error")

	// When
	cfg, err := Load(dir)

	// Then: the environment wins
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Search.MaxResults)
	assert.Equal(t, 0.5, cfg.Search.DropoutRate)
	assert.Equal(t, 0.25, cfg.Search.LevelPenalty)
	assert.False(t, cfg.Search.CaseSensitive)
	assert.Equal(t, []string{"name", "author.name"}, cfg.Search.Keys)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_UnparsableEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvMaxResults, "many")

	_, err := Load(t.TempDir())

	require.Error(t, err)
	assert.Equal(t, ferrors.ErrCodeConfigInvalid, ferrors.GetCode(err))
	assert.Contains(t, err.Error(), EnvMaxResults)
}

// ===== Validate =====

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"negative max results", func(c *Config) { c.Search.MaxResults = -1 }, ferrors.ErrCodeInvalidOption},
		{"zero level penalty", func(c *Config) { c.Search.LevelPenalty = 0 }, ferrors.ErrCodeInvalidOption},
		{"empty key segment", func(c *Config) { c.Search.Keys = []string{"author..name"} }, ferrors.ErrCodeInvalidKey},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, ferrors.ErrCodeConfigInvalid},
		{"future version", func(c *Config) { c.Version = CurrentVersion + 1 }, ferrors.ErrCodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Equal(t, tt.code, ferrors.GetCode(err))
		})
	}
}

// ===== EngineOptions / WriteYAML =====

func TestEngineOptions_DriveEngine(t *testing.T) {
	// Given: a config limiting results and restricting keys
	cfg := NewConfig()
	cfg.Search.Keys = []string{"name"}
	cfg.Search.MaxResults = 1

	// When: building an engine from it
	engine, err := fzsearch.New([]any{
		map[string]any{"name": "zzz", "note": "react"},
		map[string]any{"name": "react", "note": "zzz"},
	}, cfg.EngineOptions()...)
	require.NoError(t, err)

	// Then: only the name field is matched and one result comes back
	results := engine.Search("react")
	require.Len(t, results, 1)
	assert.Equal(t, "react", results[0].Record.(map[string]any)["name"])
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	isolate(t)
	cfg := NewConfig()
	cfg.Search.Keys = []string{"title"}
	cfg.Search.DropoutRate = 0.6
	path := filepath.Join(t.TempDir(), "nested", "fzsearch.yaml")

	require.NoError(t, cfg.WriteYAML(path))
	loaded, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, cfg.Search.Keys, loaded.Search.Keys)
	assert.Equal(t, 0.6, loaded.Search.DropoutRate)
	assert.Equal(t, cfg.Logging, loaded.Logging)
}

func TestProjectConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join("proj", ".fzsearch.yaml"), ProjectConfigPath("proj"))
}

func TestTemplate_MatchesDefaults(t *testing.T) {
	// Given: the template written by config init
	isolate(t)
	path := filepath.Join(t.TempDir(), ".fzsearch.yaml")
	writeFile(t, path, configs.ConfigTemplate)

	// When
	cfg, err := LoadFile(path)

	// Then: it documents the defaults without changing them
	require.NoError(t, err)
	defaults := NewConfig()
	assert.Empty(t, cfg.Search.Keys)
	cfg.Search.Keys = nil
	assert.Equal(t, defaults.Search, cfg.Search)
	assert.Equal(t, defaults.Logging, cfg.Logging)
}
