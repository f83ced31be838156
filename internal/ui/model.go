package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/momingse/fzsearch/internal/output"
	"github.com/momingse/fzsearch/pkg/fzsearch"
)

const defaultListHeight = 10

// Message types for bubbletea
type resultsMsg struct {
	query   string
	results []fzsearch.Result
	total   int
	latency time.Duration
}

type reloadedMsg struct {
	records int
}

// model is the bubbletea model for the picker.
type model struct {
	searcher Searcher
	input    textinput.Model
	spinner  spinner.Model
	styles   output.Styles

	// pending is the query whose results are awaited; results for any
	// other query are stale.
	pending   string
	searching bool
	results   []fzsearch.Result
	total     int
	latency   time.Duration
	notice    string

	cursor int
	offset int
	width  int
	height int

	quitting bool
	chosen   bool
	selected fzsearch.Result
}

func newModel(s Searcher, query string, styles output.Styles) *model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "type to search"
	in.PromptStyle = styles.Header
	in.SetValue(query)
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Header

	return &model{
		searcher: s,
		input:    in,
		spinner:  sp,
		styles:   styles,
		pending:  query,
		width:    80,
	}
}

// search runs query in the background.
func (m *model) search(query string) tea.Cmd {
	s := m.searcher
	return func() tea.Msg {
		return runSearch(s, query)
	}
}

func runSearch(s Searcher, query string) resultsMsg {
	start := time.Now()
	results := s.Search(query)
	return resultsMsg{
		query:   query,
		results: results,
		total:   s.Len(),
		latency: time.Since(start),
	}
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	m.searching = true
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.search(m.pending),
	)
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if len(m.results) > 0 {
				m.chosen = true
				m.selected = m.results[m.cursor]
			}
			m.quitting = true
			return m, tea.Quit
		case "up", "ctrl+p":
			m.move(-1)
			return m, nil
		case "down", "ctrl+n":
			m.move(1)
			return m, nil
		case "pgup":
			m.move(-m.listHeight())
			return m, nil
		case "pgdown":
			m.move(m.listHeight())
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if q := m.input.Value(); q != m.pending {
			m.pending = q
			m.searching = true
			return m, tea.Batch(cmd, m.search(q))
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-lipgloss.Width(m.input.Prompt)-1, 1)
		m.move(0)
		return m, nil

	case resultsMsg:
		if msg.query != m.pending {
			return m, nil
		}
		m.searching = false
		m.results = msg.results
		m.total = msg.total
		m.latency = msg.latency
		m.cursor, m.offset = 0, 0
		return m, nil

	case reloadedMsg:
		m.notice = fmt.Sprintf("reloaded %d records", msg.records)
		m.searching = true
		return m, m.search(m.pending)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// listHeight is the number of result rows that fit below the query and
// status lines.
func (m *model) listHeight() int {
	if m.height <= 0 {
		return defaultListHeight
	}
	return max(m.height-2, 1)
}

// move shifts the cursor by delta and scrolls to keep it visible.
func (m *model) move(delta int) {
	if len(m.results) == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.results)-1)

	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

// View implements tea.Model.
func (m *model) View() string {
	if m.quitting {
		return ""
	}

	lines := []string{m.input.View(), m.renderStatus()}

	if len(m.results) == 0 && !m.searching {
		lines = append(lines, m.styles.Dim.Render("  no matches"))
	}

	end := min(m.offset+m.listHeight(), len(m.results))
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(i))
	}

	return strings.Join(lines, "\n")
}

func (m *model) renderStatus() string {
	var b strings.Builder
	if m.searching {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
	} else {
		b.WriteString("  ")
	}
	fmt.Fprintf(&b, "%d/%d", len(m.results), m.total)
	if !m.searching && m.latency > 0 {
		fmt.Fprintf(&b, "  %s", m.latency.Round(time.Microsecond))
	}
	if m.notice != "" {
		b.WriteString("  ")
		b.WriteString(m.notice)
	}
	return m.styles.Label.Render(b.String())
}

func (m *model) renderRow(i int) string {
	r := m.results[i]
	text := output.RenderRecord(r.Record)
	if r.Scored {
		text += "  (" + output.FormatScore(r.Score) + ")"
	}
	text = truncate(text, m.width-2)

	if i == m.cursor {
		return m.styles.Rank.Render("▸ " + text)
	}
	return "  " + m.styles.Record.Render(text)
}

// truncate shortens s to at most width runes, ending in an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
