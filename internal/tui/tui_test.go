package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/huangsam/gazeplot/core/engine"
	"github.com/huangsam/gazeplot/core/extract"
	"github.com/huangsam/gazeplot/core/nav"
	"github.com/huangsam/gazeplot/core/store"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/internal/fixture"
	"github.com/huangsam/gazeplot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	model := extract.Parse(fixture.Dataset(), fixture.Metrics, extract.Options{
		Columns:      contract.DefaultColumns(),
		DetailMarker: schema.DefaultDetailMarker,
		Palette:      schema.CanonicalColors,
	})
	s, err := store.Build(context.Background(), model, store.Options{Engine: engine.DefaultOptions(), Workers: 2})
	require.NoError(t, err)
	m := nav.New(s, nav.Options{Feeling: "Happy", X: fixture.Count, Y: fixture.Duration, Sizing: engine.DefaultOptions()})
	return NewModel(m, "Survey")
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestOverviewToDetailAndBack(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, schema.OverviewView, m.State().Kind)
	assert.Contains(t, m.View(), "Reds")
	assert.Contains(t, m.View(), "Yellows")

	m = press(t, m, enter)
	assert.Equal(t, schema.DetailView, m.State().Kind)
	assert.Equal(t, schema.GroupName("Reds"), m.State().Group)
	assert.Contains(t, m.View(), nav.CenterLabel)

	m = press(t, m, esc)
	assert.Equal(t, schema.OverviewView, m.State().Kind)
	assert.Empty(t, m.State().Group)

	m = press(t, m, down, enter)
	assert.Equal(t, schema.GroupName("Yellows"), m.State().Group)
}

func TestCycleKeys(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, runes("f"))
	assert.Equal(t, schema.FeelingID("Calm"), m.State().Feeling)
	m = press(t, m, runes("f"))
	assert.Equal(t, schema.FeelingID("Happy"), m.State().Feeling)

	m = press(t, m, runes("x"))
	assert.Equal(t, fixture.Duration, m.State().X)
	m = press(t, m, runes("X"), runes("X"))
	assert.Equal(t, fixture.Fixations, m.State().X)

	m = press(t, m, runes("y"))
	assert.Equal(t, fixture.Fixations, m.State().Y)
}

func TestChangesLeaveDetail(t *testing.T) {
	m := press(t, newTestModel(t), enter, runes("y"))
	assert.Equal(t, schema.OverviewView, m.State().Kind)
	assert.Equal(t, fixture.Fixations, m.State().Y)
}

func TestInvalidKeysKeepState(t *testing.T) {
	m := newTestModel(t)
	before := m.State()

	m = press(t, m, esc)
	assert.Equal(t, before, m.State())
	assert.NoError(t, m.err)

	m = press(t, m, enter, enter)
	assert.Equal(t, schema.DetailView, m.State().Kind)
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestNoDataView(t *testing.T) {
	m := newTestModel(t)
	m.view = schema.View{Title: "Calm", X: fixture.Count, Y: fixture.Count, NoData: schema.NoDataMessage}
	out := m.View()
	assert.Contains(t, out, schema.NoDataMessage)
	assert.NotContains(t, out, "Reds")
}

func TestCycle(t *testing.T) {
	values := []string{"a", "b", "c"}
	assert.Equal(t, "b", cycle(values, "a", true))
	assert.Equal(t, "a", cycle(values, "c", true))
	assert.Equal(t, "c", cycle(values, "a", false))
	assert.Equal(t, "a", cycle(values, "z", true))
	assert.Equal(t, "z", cycle(nil, "z", true))
}
