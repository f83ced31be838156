package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momingse/fzsearch/internal/output"
	"github.com/momingse/fzsearch/pkg/fzsearch"
)

var titles = []any{
	"Algorithm of Searching Agentsz",
	"Debounce and Throttle",
	"React Hooks",
	"Persisting State in React",
	"Deep Copy and Shadow Copy in Javascript",
	"Common React Mistakes",
}

func newEngine(t *testing.T, opts ...fzsearch.Option) *fzsearch.Engine {
	t.Helper()
	e, err := fzsearch.New(titles, opts...)
	require.NoError(t, err)
	return e
}

// settle applies the search a query change started, as the program would.
func settle(m *model) {
	m.Update(runSearch(m.searcher, m.pending))
}

func typeText(m *model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	settle(m)
}

func key(m *model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func TestNew_RejectsNonTTY(t *testing.T) {
	// Given: a non-TTY buffer
	buf := &bytes.Buffer{}

	// When: creating a picker
	p, err := New(Config{Searcher: newEngine(t), Output: buf})

	// Then: returns error
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestModel_InitialQuerySearches(t *testing.T) {
	// Given: a model with an initial query
	m := newModel(newEngine(t), "React", output.NoColorStyles())

	// When: the program starts
	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.True(t, m.searching)
	settle(m)

	// Then: the results are listed with the first one highlighted
	assert.False(t, m.searching)
	require.Len(t, m.results, 3)
	view := m.View()
	assert.Contains(t, view, "▸ React Hooks")
	assert.Contains(t, view, "  Persisting State in React")
	assert.Contains(t, view, "3/6")
}

func TestModel_TypingReRanks(t *testing.T) {
	m := newModel(newEngine(t), "", output.NoColorStyles())
	m.Init()
	settle(m)

	typeText(m, "React Hooks")

	assert.Equal(t, "React Hooks", m.pending)
	require.NotEmpty(t, m.results)
	assert.Equal(t, "React Hooks", m.results[0].Record)
}

func TestModel_IgnoresStaleResults(t *testing.T) {
	// Given: results for "React" while the user has typed further
	m := newModel(newEngine(t), "React", output.NoColorStyles())
	stale := runSearch(m.searcher, "React")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" Hooks")})

	// When: the stale results arrive
	m.Update(stale)

	// Then: they are dropped
	assert.True(t, m.searching)
	assert.Empty(t, m.results)
}

func TestModel_CursorMovement(t *testing.T) {
	m := newModel(newEngine(t), "React", output.NoColorStyles())
	settle(m)

	key(m, tea.KeyDown)
	key(m, tea.KeyDown)
	key(m, tea.KeyDown)
	assert.Equal(t, 2, m.cursor, "cursor stops at the last result")
	assert.Contains(t, m.View(), "▸ Common React Mistakes")

	key(m, tea.KeyUp)
	assert.Equal(t, 1, m.cursor)

	key(m, tea.KeyPgUp)
	assert.Equal(t, 0, m.cursor)
}

func TestModel_ScrollsToKeepCursorVisible(t *testing.T) {
	// Given: a terminal with room for two rows
	m := newModel(newEngine(t), "React", output.NoColorStyles())
	settle(m)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 4})

	// When: moving past the last visible row
	key(m, tea.KeyDown)
	key(m, tea.KeyDown)

	// Then: the list scrolls
	assert.Equal(t, 1, m.offset)
	view := m.View()
	assert.NotContains(t, view, "React Hooks")
	assert.Contains(t, view, "▸ Common React Mistakes")
}

func TestModel_EnterChoosesHighlighted(t *testing.T) {
	m := newModel(newEngine(t), "React", output.NoColorStyles())
	settle(m)
	key(m, tea.KeyDown)

	cmd := key(m, tea.KeyEnter)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.chosen)
	assert.Equal(t, "Persisting State in React", m.selected.Record)
	assert.Empty(t, m.View())
}

func TestModel_EscapeChoosesNothing(t *testing.T) {
	m := newModel(newEngine(t), "React", output.NoColorStyles())
	settle(m)

	cmd := key(m, tea.KeyEsc)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.chosen)
}

func TestModel_NoMatches(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.SetMaxResults(0))
	m := newModel(e, "React", output.NoColorStyles())
	settle(m)

	assert.Contains(t, m.View(), "no matches")

	cmd := key(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.False(t, m.chosen)
}

func TestModel_ShowsScores(t *testing.T) {
	m := newModel(newEngine(t, fzsearch.WithShowScore(true)), "React", output.NoColorStyles())
	settle(m)

	assert.Contains(t, m.View(), "▸ React Hooks  (-50)")
}

func TestModel_ReloadSearchesAgain(t *testing.T) {
	// Given: a settled search
	e := newEngine(t)
	m := newModel(e, "React", output.NoColorStyles())
	settle(m)
	require.Len(t, m.results, 3)

	// When: the records change and the picker is told
	require.NoError(t, e.SetRecords([]any{"React", "Vue"}))
	_, cmd := m.Update(reloadedMsg{records: 2})
	require.NotNil(t, cmd)
	m.Update(cmd())

	// Then: the same query is answered from the new records
	require.Len(t, m.results, 1)
	assert.Equal(t, "React", m.results[0].Record)
	assert.Contains(t, m.View(), "reloaded 2 records")
	assert.Contains(t, m.View(), "1/2")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "React", truncate("React", 10))
	assert.Equal(t, "Rea…", truncate("React Hooks", 4))
	assert.Equal(t, "…", truncate("React", 1))
	assert.Equal(t, "", truncate("React", 0))
	assert.Equal(t, "héll…", truncate("héllo wörld", 5))
	assert.True(t, strings.HasSuffix(truncate(strings.Repeat("x", 100), 20), "…"))
}
