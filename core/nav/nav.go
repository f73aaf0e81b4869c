// Package nav is the two-level overview/detail navigation over a built store.
package nav

import (
	"errors"
	"fmt"
	"slices"

	"github.com/huangsam/gazeplot/core/engine"
	"github.com/huangsam/gazeplot/schema"
)

// ErrInvalidEvent is returned for events that do not apply to the current state.
var ErrInvalidEvent = errors.New("invalid event")

// Source is the read-only lookup the machine navigates.
type Source interface {
	Get(f schema.FeelingID, x, y schema.MetricID) (schema.Combination, bool)
	Feelings() []schema.FeelingID
	Metrics() []schema.MetricID
	HasFeeling(f schema.FeelingID) bool
	HasMetric(m schema.MetricID) bool
}

// State is the position of the machine. Group is set only in DetailView.
type State struct {
	Kind    schema.ViewKind  `json:"kind"`
	Feeling schema.FeelingID `json:"feeling"`
	X       schema.MetricID  `json:"x"`
	Y       schema.MetricID  `json:"y"`
	Group   schema.GroupName `json:"group,omitempty"`
}

// EventKind names a user action.
type EventKind string

// User actions.
const (
	SelectGroup EventKind = "select_group"
	Back        EventKind = "back"
	SetFeeling  EventKind = "set_feeling"
	SetX        EventKind = "set_x"
	SetY        EventKind = "set_y"
)

// Event is one user action. Value carries the group, feeling or metric.
type Event struct {
	Kind  EventKind
	Value string
}

// Options choose the initial state and the sizes used by the legend.
type Options struct {
	Feeling schema.FeelingID // empty selects the first feeling
	X       schema.MetricID
	Y       schema.MetricID
	Sizing  engine.Options
}

// DefaultOptions starts on the first feeling with the stock default axes.
func DefaultOptions() Options {
	return Options{X: schema.DefaultXMetric, Y: schema.DefaultYMetric, Sizing: engine.DefaultOptions()}
}

// Initial returns the starting overview. Requested keys missing from src fall
// back to the first feeling, the first metric for x and the second (or first) for y.
func Initial(src Source, opts Options) State {
	s := State{Kind: schema.OverviewView, Feeling: opts.Feeling, X: opts.X, Y: opts.Y}
	if feelings := src.Feelings(); !src.HasFeeling(s.Feeling) && len(feelings) > 0 {
		s.Feeling = feelings[0]
	}
	metrics := src.Metrics()
	if !src.HasMetric(s.X) && len(metrics) > 0 {
		s.X = metrics[0]
	}
	if !src.HasMetric(s.Y) && len(metrics) > 0 {
		s.Y = metrics[min(1, len(metrics)-1)]
	}
	return s
}

// Reduce applies e to s. On error the returned state is s unchanged.
func Reduce(src Source, s State, e Event) (State, error) {
	switch e.Kind {
	case SelectGroup:
		if s.Kind != schema.OverviewView {
			return s, fmt.Errorf("%w: select %q outside the overview", ErrInvalidEvent, e.Value)
		}
		comb, _ := src.Get(s.Feeling, s.X, s.Y)
		if _, ok := comb.Group(schema.GroupName(e.Value)); !ok {
			return s, fmt.Errorf("%w: group %q is not shown", ErrInvalidEvent, e.Value)
		}
		next := s
		next.Kind, next.Group = schema.DetailView, schema.GroupName(e.Value)
		return next, nil

	case Back:
		if s.Kind != schema.DetailView {
			return s, fmt.Errorf("%w: back from the overview", ErrInvalidEvent)
		}
		next := s
		next.Kind, next.Group = schema.OverviewView, ""
		return next, nil

	case SetFeeling:
		if !src.HasFeeling(schema.FeelingID(e.Value)) {
			return s, fmt.Errorf("%w: unknown feeling %q", ErrInvalidEvent, e.Value)
		}
		return State{Kind: schema.OverviewView, Feeling: schema.FeelingID(e.Value), X: s.X, Y: s.Y}, nil

	case SetX, SetY:
		m := schema.MetricID(e.Value)
		if !src.HasMetric(m) {
			return s, fmt.Errorf("%w: unknown metric %q", ErrInvalidEvent, e.Value)
		}
		next := State{Kind: schema.OverviewView, Feeling: s.Feeling, X: s.X, Y: s.Y}
		if e.Kind == SetX {
			next.X = m
		} else {
			next.Y = m
		}
		return next, nil
	}
	return s, fmt.Errorf("%w: unknown event kind %q", ErrInvalidEvent, e.Kind)
}

// Machine holds the current state over a source. It is not safe for concurrent use.
type Machine struct {
	src   Source
	opts  Options
	state State
}

// New starts a machine in its initial overview.
func New(src Source, opts Options) *Machine {
	return &Machine{src: src, opts: opts, state: Initial(src, opts)}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Dispatch applies e, leaving the state unchanged when it is invalid.
func (m *Machine) Dispatch(e Event) error {
	next, err := Reduce(m.src, m.state, e)
	if err != nil {
		return err
	}
	m.state = next
	return nil
}

// SelectGroup drills into a group of the overview.
func (m *Machine) SelectGroup(g schema.GroupName) error {
	return m.Dispatch(Event{Kind: SelectGroup, Value: string(g)})
}

// Back returns from the detail view to the overview it came from.
func (m *Machine) Back() error {
	return m.Dispatch(Event{Kind: Back})
}

// SetFeeling switches to another feeling's overview.
func (m *Machine) SetFeeling(f schema.FeelingID) error {
	return m.Dispatch(Event{Kind: SetFeeling, Value: string(f)})
}

// SetX changes the x metric.
func (m *Machine) SetX(x schema.MetricID) error {
	return m.Dispatch(Event{Kind: SetX, Value: string(x)})
}

// SetY changes the y metric.
func (m *Machine) SetY(y schema.MetricID) error {
	return m.Dispatch(Event{Kind: SetY, Value: string(y)})
}

// Groups returns the groups shown in the current overview, in display order.
func (m *Machine) Groups() []schema.GroupName {
	comb, _ := m.src.Get(m.state.Feeling, m.state.X, m.state.Y)
	return comb.GroupNames()
}

// Feelings returns the selectable feelings.
func (m *Machine) Feelings() []schema.FeelingID {
	return slices.Clone(m.src.Feelings())
}

// Metrics returns the selectable metrics.
func (m *Machine) Metrics() []schema.MetricID {
	return slices.Clone(m.src.Metrics())
}

// View renders the current state.
func (m *Machine) View() schema.View {
	return Render(m.src, m.state, m.opts.Sizing)
}
