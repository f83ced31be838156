package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	ferrors "github.com/momingse/fzsearch/internal/errors"
	"github.com/momingse/fzsearch/internal/output"
	"github.com/momingse/fzsearch/internal/ui"
)

func newPickCmd(state *rootState) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "pick [query...]",
		Short: "Choose a record in a full-screen picker",
		Long: `Open a full-screen picker over the records of a data file. The list
is re-ranked on every keystroke; Enter prints the highlighted record to
stdout, Esc exits without printing.

The picker draws on stderr, so the choice can be captured:

  title=$(fzsearch pick --data titles.txt)

With --data - the records are read from stdin and keys from the terminal.`,
		Example: `  fzsearch pick --data books.json --keys title,author.name
  ls | fzsearch pick --data -
  fzsearch pick --data books.yaml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPick(cmd, state, strings.Join(args, " "), opts)
		},
	}

	addDataFlags(cmd, &opts)
	addEngineFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the data file when it changes")

	return cmd
}

func runPick(cmd *cobra.Command, state *rootState, query string, opts searchOptions) error {
	if !output.IsTTY(cmd.ErrOrStderr()) {
		return ferrors.ValidationError("pick needs a terminal on stderr", nil).
			WithSuggestion("use 'fzsearch search --interactive' when not on a terminal")
	}
	if opts.watch && opts.data == "-" {
		return ferrors.ValidationError("--watch needs a data file, not -", nil)
	}

	engine, err := buildEngine(cmd, state, opts)
	if err != nil {
		return err
	}

	picker, err := ui.New(ui.Config{
		Searcher: engine,
		Query:    query,
		Input:    cmd.InOrStdin(),
		InputTTY: opts.data == "-",
		Output:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	if opts.watch {
		stop, err := watchDataset(cmd.Context(), state.logger, opts, engine, picker.Reloaded)
		if err != nil {
			return err
		}
		defer stop()
	}

	result, ok, err := picker.Run(cmd.Context())
	if err != nil || !ok {
		return err
	}

	line := output.RenderRecord(result.Record)
	if result.Scored {
		line += "\t" + output.FormatScore(result.Score)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), line)
	return err
}
