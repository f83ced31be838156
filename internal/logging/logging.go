package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level"`
	// Format selects the handler: "text" or "json".
	Format string `yaml:"format" json:"format"`
	// FilePath enables file logging when non-empty.
	FilePath string `yaml:"file" json:"file,omitempty"`
	// MaxSizeMB is the maximum size in MB before rotation.
	MaxSizeMB int `yaml:"max_size_mb" json:"max_size_mb"`
	// MaxFiles is the maximum number of rotated files to keep.
	MaxFiles int `yaml:"max_files" json:"max_files"`
	// WriteToStderr also writes to stderr when a file is configured.
	WriteToStderr bool `yaml:"stderr" json:"stderr"`
	// Sync fsyncs the log file after every record.
	Sync bool `yaml:"sync" json:"sync"`
}

// DefaultConfig returns the configuration used when nothing is set:
// warnings and errors as text on stderr.
func DefaultConfig() Config {
	return Config{
		Level:         "warn",
		Format:        FormatText,
		MaxSizeMB:     10,
		MaxFiles:      3,
		WriteToStderr: true,
	}
}

// DebugConfig returns configuration for --debug.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// Validate reports unknown levels or formats.
func (c Config) Validate() error {
	if _, ok := lookupLevel(c.Level); !ok {
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "", FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	if c.FilePath != "" && (c.MaxSizeMB <= 0 || c.MaxFiles < 1) {
		return fmt.Errorf("invalid rotation settings: max_size_mb=%d max_files=%d", c.MaxSizeMB, c.MaxFiles)
	}
	return nil
}

// Setup builds a logger from cfg and returns it with a cleanup function
// that flushes and closes the log file, if any.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	return SetupWithWriter(cfg, os.Stderr)
}

// SetupWithWriter is Setup with stderr replaced by w.
func SetupWithWriter(cfg Config, w io.Writer) (*slog.Logger, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var output io.Writer = w
	cleanup := func() {}

	if cfg.FilePath != "" {
		writer, err := NewRotatingWriter(cfg)
		if err != nil {
			return nil, nil, err
		}
		output = writer
		if cfg.WriteToStderr {
			output = io.MultiWriter(writer, w)
		}
		cleanup = func() { _ = writer.Close() }
	}

	return slog.New(newHandler(output, cfg)), cleanup, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.ToLower(cfg.Format) == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
	l, _ := lookupLevel(level)
	return l
}

func lookupLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// LevelFromString converts string level to slog.Level. Unknown names
// map to info.
func LevelFromString(level string) slog.Level {
	return parseLevel(level)
}
