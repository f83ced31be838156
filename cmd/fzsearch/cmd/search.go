package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/momingse/fzsearch/internal/dataset"
	ferrors "github.com/momingse/fzsearch/internal/errors"
	"github.com/momingse/fzsearch/internal/output"
	"github.com/momingse/fzsearch/internal/telemetry"
	"github.com/momingse/fzsearch/pkg/fzsearch"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	data         string
	dataFormat   string
	keys         []string
	limit        int
	showScore    bool
	levelPenalty float64
	dropoutRate  float64
	ignoreCase   bool
	parallel     int
	format       string
	interactive  bool
	watch        bool
	stats        bool
}

func newSearchCmd(state *rootState) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search records in a data file",
		Long: `Search the records of a data file and print the best matches,
best first.

JSON and YAML files must contain a list of records; each record is a string
or an object. Any other file is read one record per line. Use --data - to read
records from stdin.

Scores are costs: lower is better, and 0 means nothing matched.`,
		Example: `  fzsearch search --data books.json "pragmatic programer"
  fzsearch search --data books.json --keys title,author.name tolkien
  fzsearch search --data words.txt --limit 3 --show-score recieve
  fzsearch search --data books.yaml --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if query == "" && !opts.interactive {
				return ferrors.ValidationError("a query is required unless --interactive is set", nil).
					WithSuggestion("fzsearch search --data FILE <query>")
			}
			return runSearch(cmd.Context(), cmd, state, query, opts)
		},
	}

	addDataFlags(cmd, &opts)
	addEngineFlags(cmd, &opts)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "Read further queries from stdin, one per line")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the data file when it changes (with --interactive)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print search statistics to stderr when done")

	return cmd
}

// addDataFlags registers the flags that choose the records.
func addDataFlags(cmd *cobra.Command, opts *searchOptions) {
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "Data file with the records to search (- for stdin)")
	cmd.Flags().StringVar(&opts.dataFormat, "data-format", "", "Data format: json, yaml, text (default: from file extension)")
	_ = cmd.MarkFlagRequired("data")
}

// addEngineFlags registers the flags engineOptions reads.
func addEngineFlags(cmd *cobra.Command, opts *searchOptions) {
	cmd.Flags().StringSliceVarP(&opts.keys, "keys", "k", nil, "Dotted field paths to match (repeatable or comma-separated)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().BoolVarP(&opts.showScore, "show-score", "s", false, "Print each result's score")
	cmd.Flags().Float64Var(&opts.levelPenalty, "level-penalty", 1, "Weight per nesting level of a field")
	cmd.Flags().Float64Var(&opts.dropoutRate, "dropout-rate", 0.8, "Keep results within this fraction of the best score")
	cmd.Flags().BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "Match letters regardless of case")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 0, "Goroutines used to score records")
}

// engineOptions overlays the flags the user set on the configured options.
func engineOptions(cmd *cobra.Command, base fzsearch.Options, opts searchOptions) fzsearch.Options {
	flags := cmd.Flags()
	if flags.Changed("keys") {
		base.Keys = opts.keys
	}
	if flags.Changed("limit") {
		base.MaxResults = opts.limit
	}
	if flags.Changed("show-score") {
		base.ShowScore = opts.showScore
	}
	if flags.Changed("level-penalty") {
		base.LevelPenalty = opts.levelPenalty
	}
	if flags.Changed("dropout-rate") {
		base.DropoutRate = opts.dropoutRate
	}
	if flags.Changed("ignore-case") {
		base.CaseSensitive = !opts.ignoreCase
	}
	if flags.Changed("parallel") {
		base.Parallelism = opts.parallel
	}
	return base
}

func loadRecords(cmd *cobra.Command, opts searchOptions) ([]any, error) {
	if opts.data == "-" {
		format := dataset.FormatText
		if opts.dataFormat != "" {
			f, err := dataset.ParseFormat(opts.dataFormat)
			if err != nil {
				return nil, err
			}
			format = f
		}
		return dataset.Decode(cmd.InOrStdin(), format)
	}
	if opts.dataFormat == "" {
		return dataset.Load(opts.data)
	}
	return dataset.LoadAs(opts.data, opts.dataFormat)
}

// buildEngine loads the configuration and the records and creates the engine.
func buildEngine(cmd *cobra.Command, state *rootState, opts searchOptions, extra ...fzsearch.Option) (*fzsearch.Engine, error) {
	cfg, err := state.config()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := loadRecords(cmd, opts)
	if err != nil {
		return nil, err
	}
	state.logger.Debug("dataset_loaded",
		slog.String("path", opts.data),
		slog.Int("records", len(records)),
		slog.Duration("elapsed", time.Since(start)))

	engineOpts := append([]fzsearch.Option{
		fzsearch.WithOptions(engineOptions(cmd, cfg.Search, opts)),
		fzsearch.WithLogger(state.logger),
	}, extra...)
	return fzsearch.New(records, engineOpts...)
}

func runSearch(ctx context.Context, cmd *cobra.Command, state *rootState, query string, opts searchOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.interactive && opts.data == "-" {
		return ferrors.ValidationError("--interactive reads queries from stdin, so --data cannot be -", nil)
	}
	if opts.watch && !opts.interactive {
		return ferrors.ValidationError("--watch needs --interactive", nil).
			WithSuggestion("use 'fzsearch pick --watch' for a live picker")
	}

	metrics := telemetry.New()
	engine, err := buildEngine(cmd, state, opts, fzsearch.WithObserver(metrics))
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())

	if query != "" {
		if err := out.Results(query, engine.Search(query), format); err != nil {
			return err
		}
	}

	if opts.interactive {
		if opts.watch {
			stop, err := watchDataset(ctx, state.logger, opts, engine, func(n int) {
				output.New(cmd.ErrOrStderr()).Statusf("", "reloaded %d records", n)
			})
			if err != nil {
				return err
			}
			defer stop()
		}
		if err := runInteractive(ctx, cmd.InOrStdin(), out, engine, metrics, format); err != nil {
			return err
		}
	}

	if opts.stats {
		return output.New(cmd.ErrOrStderr()).Stats(metrics.Snapshot(), output.FormatText)
	}
	return nil
}

// runInteractive answers one query per input line until EOF or ":quit".
// The prompt is shown only when in is a terminal.
func runInteractive(ctx context.Context, in io.Reader, out *output.Writer, engine *fzsearch.Engine, metrics *telemetry.Metrics, format output.Format) error {
	prompt := output.IsInteractive(in)
	scanner := bufio.NewScanner(in)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if prompt {
			_, _ = fmt.Fprint(out.Out(), "> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case ":q", ":quit", ":exit":
			return nil
		case ":stats":
			if err := out.Stats(metrics.Snapshot(), format); err != nil {
				return err
			}
			continue
		}

		if err := out.Results(line, engine.Search(line), format); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return ferrors.New(ferrors.ErrCodeFileRead, "failed to read queries", err)
	}
	return nil
}
