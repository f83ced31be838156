// Package ui provides the full-screen picker: a query line that re-ranks the
// records on every keystroke, and a result list to choose from.
package ui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/momingse/fzsearch/internal/output"
	"github.com/momingse/fzsearch/pkg/fzsearch"
)

// Searcher is what the picker queries. *fzsearch.Engine satisfies it.
type Searcher interface {
	Search(query string) []fzsearch.Result
	Len() int
}

// Config configures a Picker.
type Config struct {
	// Searcher answers the queries.
	Searcher Searcher

	// Query is the initial query.
	Query string

	// Input is where keys are read from. Defaults to stdin.
	Input io.Reader

	// InputTTY reads keys from the controlling terminal instead of Input,
	// for when stdin carries the records.
	InputTTY bool

	// Output is the terminal the picker draws on. It must be a TTY.
	Output io.Writer

	// NoColor disables styling.
	NoColor bool
}

// Picker runs the picker program.
type Picker struct {
	program *tea.Program
	model   *model
}

// New creates a picker. Returns an error if Output is not a terminal.
func New(cfg Config) (*Picker, error) {
	if !output.IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}
	if cfg.Searcher == nil {
		return nil, fmt.Errorf("no searcher")
	}

	m := newModel(cfg.Searcher, cfg.Query, output.GetStyles(cfg.NoColor || output.DetectNoColor()))

	opts := []tea.ProgramOption{tea.WithOutput(cfg.Output), tea.WithAltScreen()}
	switch {
	case cfg.InputTTY:
		opts = append(opts, tea.WithInputTTY())
	case cfg.Input != nil:
		opts = append(opts, tea.WithInput(cfg.Input))
	}

	return &Picker{program: tea.NewProgram(m, opts...), model: m}, nil
}

// Run shows the picker until the user chooses a result, gives up, or ctx is
// done. ok is false unless a result was chosen.
func (p *Picker) Run(ctx context.Context) (result fzsearch.Result, ok bool, err error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.program.Quit()
		case <-done:
		}
	}()

	final, err := p.program.Run()
	if err != nil {
		return fzsearch.Result{}, false, fmt.Errorf("picker: %w", err)
	}
	m, _ := final.(*model)
	if m == nil || !m.chosen {
		return fzsearch.Result{}, false, nil
	}
	return m.selected, true, nil
}

// Reloaded tells a running picker that the searcher's records changed, so the
// current query is searched again.
func (p *Picker) Reloaded(records int) {
	p.program.Send(reloadedMsg{records: records})
}
