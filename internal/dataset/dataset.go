// Package dataset reads record collections from files for the fzsearch
// command.
//
// JSON and YAML files must hold a list at the top level. Objects are
// decoded into record.Object so fields keep the order they have in the
// file, which is the order the decomposer visits them in. Any other file is
// read as plain text with one record per non-empty line.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ferrors "github.com/momingse/fzsearch/internal/errors"
)

// Format names a dataset encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// maxLineSize bounds a single line of a text dataset.
const maxLineSize = 1 << 20

// ParseFormat parses a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "text", "txt", "lines":
		return FormatText, nil
	default:
		return "", ferrors.New(ferrors.ErrCodeInvalidOption,
			fmt.Sprintf("unknown dataset format %q", s), nil).
			WithSuggestion("use json, yaml or text")
	}
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Load reads the dataset at path, choosing the format by extension.
func Load(path string) ([]any, error) {
	return load(path, FormatFromPath(path))
}

// LoadAs reads the dataset at path in the named format.
func LoadAs(path, format string) ([]any, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return load(path, f)
}

func load(path string, format Format) ([]any, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.New(ferrors.ErrCodeFileNotFound,
				fmt.Sprintf("dataset %s not found", path), err).
				WithDetail("path", path)
		}
		return nil, ferrors.New(ferrors.ErrCodeFileRead,
			fmt.Sprintf("failed to open dataset %s", path), err).
			WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()

	records, err := Decode(f, format)
	if err != nil {
		var fe *ferrors.Error
		if errors.As(err, &fe) {
			_ = fe.WithDetail("path", path)
		}
		return nil, err
	}
	return records, nil
}

// Decode reads records from r in the given format.
func Decode(r io.Reader, format Format) ([]any, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatYAML:
		return decodeYAML(r)
	default:
		return decodeLines(r)
	}
}

func decodeLines(r io.Reader) ([]any, error) {
	records := []any{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, ferrors.New(ferrors.ErrCodeFileRead, "failed to read text dataset", err)
	}
	return records, nil
}

func invalidDataset(msg string, cause error) *ferrors.Error {
	return ferrors.New(ferrors.ErrCodeInvalidDataset, msg, cause)
}

func notAList(got string) error {
	return invalidDataset(fmt.Sprintf("dataset must be a list of records, got %s", got), nil).
		WithSuggestion("wrap the records in a top-level list")
}
