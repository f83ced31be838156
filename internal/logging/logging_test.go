package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== Config =====

func TestDefaultConfig_WarnTextOnStderr(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Empty(t, cfg.FilePath)
	assert.True(t, cfg.WriteToStderr)
	assert.False(t, cfg.Sync)
	assert.NoError(t, cfg.Validate())
}

func TestDebugConfig_LowersLevel(t *testing.T) {
	assert.Equal(t, "debug", DebugConfig().Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown level", func(c *Config) { c.Level = "loud" }, "unknown log level"},
		{"unknown format", func(c *Config) { c.Format = "xml" }, "unknown log format"},
		{"zero size with file", func(c *Config) { c.FilePath = "x.log"; c.MaxSizeMB = 0 }, "invalid rotation"},
		{"zero files with file", func(c *Config) { c.FilePath = "x.log"; c.MaxFiles = 0 }, "invalid rotation"},
		{"json format", func(c *Config) { c.Format = "JSON" }, ""},
		{"warning alias", func(c *Config) { c.Level = "warning" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ===== Levels =====

func TestLevelFromString(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, LevelFromString(in), "level %q", in)
	}
}

// ===== Setup =====

func TestSetup_TextToStderr(t *testing.T) {
	// Given: the default config and a captured stderr
	var buf bytes.Buffer
	cfg := DefaultConfig()

	// When: logging below and at the threshold
	logger, cleanup, err := SetupWithWriter(cfg, &buf)
	require.NoError(t, err)
	defer cleanup()
	logger.Info("hidden")
	logger.Warn("shown", slog.String("query", "react"))

	// Then: only the warning is written, in text form
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "query=react")
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := DebugConfig()
	cfg.Format = FormatJSON

	logger, cleanup, err := SetupWithWriter(cfg, &buf)
	require.NoError(t, err)
	defer cleanup()
	logger.Debug("search_complete", slog.Int("results", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "search_complete", entry["msg"])
	assert.Equal(t, float64(3), entry["results"])
}

func TestSetup_FileAndStderr(t *testing.T) {
	// Given: a file path in a directory that does not exist yet
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "fzsearch.log")
	cfg := DefaultConfig()
	cfg.FilePath = path

	// When: a warning is logged
	logger, cleanup, err := SetupWithWriter(cfg, &buf)
	require.NoError(t, err)
	logger.Warn("dataset_loaded")
	cleanup()

	// Then: both sinks received it
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dataset_loaded")
	assert.Contains(t, buf.String(), "dataset_loaded")
}

func TestSetup_FileOnly(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "fzsearch.log")
	cfg := DefaultConfig()
	cfg.FilePath = path
	cfg.WriteToStderr = false

	logger, cleanup, err := SetupWithWriter(cfg, &buf)
	require.NoError(t, err)
	logger.Error("boom")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
	assert.Empty(t, buf.String())
}

func TestSetup_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "chatty"

	logger, cleanup, err := Setup(cfg)

	require.Error(t, err)
	assert.Nil(t, logger)
	assert.Nil(t, cleanup)
}

func TestDiscard_DropsEverything(t *testing.T) {
	logger := Discard()

	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}

// ===== RotatingWriter =====

func fileConfig(path string, maxFiles int) Config {
	cfg := DefaultConfig()
	cfg.FilePath = path
	cfg.MaxSizeMB = 1
	cfg.MaxFiles = maxFiles
	return cfg
}

func TestRotatingWriter_RotatesPastMaxSize(t *testing.T) {
	// Given: a writer with a tiny limit
	path := filepath.Join(t.TempDir(), "fzsearch.log")
	w, err := NewRotatingWriter(fileConfig(path, 2))
	require.NoError(t, err)
	w.limit = 16

	// When: writing more than the limit several times
	for _, line := range []string{"aaaaaaaaaaaa\n", "bbbbbbbbbbbb\n", "cccccccccccc\n", "dddddddddddd\n"} {
		_, err := w.Write([]byte(line))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	// Then: the newest line is current, older ones rotated, oldest dropped
	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dddddddddddd\n", string(current))

	first, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, "cccccccccccc\n", string(first))

	second, err := os.ReadFile(path + ".2")
	require.NoError(t, err)
	assert.Equal(t, "bbbbbbbbbbbb\n", string(second))

	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))
}

func TestRotatingWriter_AppendsAcrossRuns(t *testing.T) {
	// Given: a log file left by an earlier run
	path := filepath.Join(t.TempDir(), "fzsearch.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	// When: the next run opens it and logs a line
	w, err := NewRotatingWriter(fileConfig(path, 1))
	require.NoError(t, err)
	_, err = w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Then: both runs share the file
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
	assert.Equal(t, int64(8), w.size)
}

func TestNewRotatingWriter_RotatesFullFileOnOpen(t *testing.T) {
	// Given: an earlier run filled the file to its limit
	path := filepath.Join(t.TempDir(), "fzsearch.log")
	full := bytes.Repeat([]byte("x"), 1<<20)
	require.NoError(t, os.WriteFile(path, full, 0o644))

	// When: the next run opens it
	w, err := NewRotatingWriter(fileConfig(path, 3))
	require.NoError(t, err)
	_, err = w.Write([]byte("fresh\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Then: the full file moved aside before anything was written
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(data))

	info, err := os.Stat(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, int64(len(full)), info.Size())
}

func TestNewRotatingWriter_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nested", "fzsearch.log")

	w, err := NewRotatingWriter(fileConfig(path, 1))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.FileExists(t, path)
}

func TestRotatingWriter_SyncFollowsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fzsearch.log")

	plain, err := NewRotatingWriter(fileConfig(path, 1))
	require.NoError(t, err)
	defer plain.Close()
	assert.False(t, plain.sync)

	cfg := fileConfig(path, 1)
	cfg.Sync = true
	synced, err := NewRotatingWriter(cfg)
	require.NoError(t, err)
	defer synced.Close()
	assert.True(t, synced.sync)

	_, err = synced.Write([]byte("flushed\n"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "flushed")
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	w, err := NewRotatingWriter(fileConfig(filepath.Join(t.TempDir(), "fzsearch.log"), 1))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late\n"))

	assert.ErrorIs(t, err, os.ErrClosed)
	assert.NoError(t, w.Close())
}
