// Package tui is an interactive terminal explorer over the navigation machine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/huangsam/gazeplot/core/nav"
	"github.com/huangsam/gazeplot/schema"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	axisStyle   = lipgloss.NewStyle().Faint(true)
	noDataStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Padding(1, 2)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	centerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(nav.CenterColor))
)

// item is one row of the list: a group in the overview or a point in the detail view.
type item struct {
	marker schema.Marker
}

func (i item) Title() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(i.marker.Color)).Render("●") + " " + i.marker.Name
}

func (i item) Description() string {
	return fmt.Sprintf("x=%.2f  y=%.2f  clicks=%d  size=%d", i.marker.X, i.marker.Y, i.marker.Clicks, i.marker.Size)
}

func (i item) FilterValue() string { return i.marker.Name }

// Model is the bubbletea model of the explorer.
type Model struct {
	machine *nav.Machine
	title   string
	keys    keyMap
	help    help.Model
	list    list.Model
	view    schema.View
	err     error
}

// NewModel wraps a machine for interactive use.
func NewModel(m *nav.Machine, title string) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	model := Model{machine: m, title: title, keys: defaultKeys(), help: help.New(), list: l}
	model.refresh()
	return model
}

// Run starts the explorer and blocks until the user quits or ctx is done.
func Run(ctx context.Context, m *nav.Machine, title string) error {
	p := tea.NewProgram(NewModel(m, title), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("explorer failed: %w", err)
	}
	return nil
}

// State exposes the machine position, mostly for tests.
func (m Model) State() nav.State {
	return m.machine.State()
}

// refresh re-renders the machine state into the list.
func (m *Model) refresh() {
	m.view = m.machine.View()
	items := make([]list.Item, 0, len(m.view.Markers))
	for _, mk := range m.view.Markers {
		items = append(items, item{marker: mk})
	}
	m.list.SetItems(items)
	m.list.ResetSelected()
}

func (m *Model) apply(err error) {
	m.err = err
	if err == nil {
		m.refresh()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, max(1, msg.Height-6))
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		st := m.machine.State()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Open):
			if st.Kind != schema.OverviewView {
				return m, nil
			}
			if sel, ok := m.list.SelectedItem().(item); ok {
				m.apply(m.machine.SelectGroup(schema.GroupName(sel.marker.Name)))
			}
			return m, nil
		case key.Matches(msg, m.keys.Back):
			if st.Kind == schema.DetailView {
				m.apply(m.machine.Back())
			}
			return m, nil
		case key.Matches(msg, m.keys.NextFeeling, m.keys.PrevFeeling):
			f := cycle(m.machine.Feelings(), st.Feeling, key.Matches(msg, m.keys.NextFeeling))
			m.apply(m.machine.SetFeeling(f))
			return m, nil
		case key.Matches(msg, m.keys.NextX, m.keys.PrevX):
			x := cycle(m.machine.Metrics(), st.X, key.Matches(msg, m.keys.NextX))
			m.apply(m.machine.SetX(x))
			return m, nil
		case key.Matches(msg, m.keys.NextY, m.keys.PrevY):
			y := cycle(m.machine.Metrics(), st.Y, key.Matches(msg, m.keys.NextY))
			m.apply(m.machine.SetY(y))
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title) + "\n")
	}
	b.WriteString(titleStyle.Render(m.view.Title) + "\n")
	b.WriteString(axisStyle.Render(fmt.Sprintf("x: %s  y: %s", m.view.X, m.view.Y)) + "\n")

	if !m.view.HasData() {
		b.WriteString(noDataStyle.Render(m.view.NoData) + "\n")
	} else {
		b.WriteString(m.list.View() + "\n")
	}
	if c := m.view.Center; c != nil {
		b.WriteString(centerStyle.Render(fmt.Sprintf("★ %s at (%.2f, %.2f), %d clicks", c.Label, c.X, c.Y, c.Clicks)) + "\n")
	}
	if len(m.view.Legend) > 0 {
		parts := make([]string, 0, len(m.view.Legend))
		for _, e := range m.view.Legend {
			parts = append(parts, fmt.Sprintf("%s=%d", e.Label, e.Size))
		}
		b.WriteString(axisStyle.Render("Legend: "+strings.Join(parts, " ")) + "\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.short()))
	return b.String()
}

// cycle returns the neighbour of cur in values, wrapping at both ends.
func cycle[T comparable](values []T, cur T, forward bool) T {
	if len(values) == 0 {
		return cur
	}
	i := slices.Index(values, cur)
	switch {
	case i < 0:
		return values[0]
	case forward:
		return values[(i+1)%len(values)]
	default:
		return values[(i-1+len(values))%len(values)]
	}
}
