package output

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ferrors "github.com/momingse/fzsearch/internal/errors"
	"github.com/momingse/fzsearch/pkg/fzsearch"
)

// Format selects how results are printed.
type Format string

// Supported result formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", ferrors.New(ferrors.ErrCodeInvalidOption,
			fmt.Sprintf("unknown output format %q", s), nil).
			WithDetail("option", "format").
			WithSuggestion("use text or json")
	}
}

// SearchOutput is the JSON shape of one search.
type SearchOutput struct {
	Query   string       `json:"query"`
	Count   int          `json:"count"`
	Results []ResultJSON `json:"results"`
}

// ResultJSON is one ranked record in JSON output.
type ResultJSON struct {
	Rank   int      `json:"rank"`
	Score  *float64 `json:"score,omitempty"`
	Record any      `json:"record"`
}

// NewSearchOutput converts engine results for JSON output.
func NewSearchOutput(query string, results []fzsearch.Result) SearchOutput {
	out := SearchOutput{
		Query:   query,
		Count:   len(results),
		Results: make([]ResultJSON, len(results)),
	}
	for i, r := range results {
		out.Results[i] = ResultJSON{Rank: i + 1, Record: r.Record}
		if r.Scored {
			score := r.Score
			out.Results[i].Score = &score
		}
	}
	return out
}

// Results prints the results of one search in the given format.
func (w *Writer) Results(query string, results []fzsearch.Result, format Format) error {
	if format == FormatJSON {
		return w.JSON(NewSearchOutput(query, results))
	}

	if len(results) == 0 {
		_, err := fmt.Fprintln(w.out, w.styles.Dim.Render("no matches"))
		return err
	}

	width := len(strconv.Itoa(len(results)))
	for i, r := range results {
		line := w.styles.Rank.Render(fmt.Sprintf("%*d.", width, i+1)) + " " +
			w.styles.Record.Render(RenderRecord(r.Record))
		if r.Scored {
			line += "  " + w.styles.Score.Render("("+FormatScore(r.Score)+")")
		}
		if _, err := fmt.Fprintln(w.out, line); err != nil {
			return err
		}
	}
	return nil
}

// JSON writes v as indented JSON.
func (w *Writer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// RenderRecord renders a record on one line: text as is, anything else as
// compact JSON.
func RenderRecord(rec any) string {
	if s, ok := rec.(string); ok {
		return s
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Sprint(rec)
	}
	return string(data)
}

// FormatScore prints a score without trailing zeros.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
