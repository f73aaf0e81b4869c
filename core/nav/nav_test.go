package nav

import (
	"context"
	"testing"

	"github.com/huangsam/gazeplot/core/engine"
	"github.com/huangsam/gazeplot/core/extract"
	"github.com/huangsam/gazeplot/core/store"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/internal/fixture"
	"github.com/huangsam/gazeplot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fixtureStore(t require.TestingT) *store.Store {
	model := extract.Parse(fixture.Dataset(), fixture.Metrics, extract.Options{
		Columns:      contract.DefaultColumns(),
		DetailMarker: schema.DefaultDetailMarker,
		Palette:      schema.CanonicalColors,
	})
	s, err := store.Build(context.Background(), model, store.Options{Engine: engine.DefaultOptions(), Workers: 2})
	require.NoError(t, err)
	return s
}

func TestInitial(t *testing.T) {
	s := fixtureStore(t)

	st := Initial(s, DefaultOptions())
	assert.Equal(t, State{Kind: schema.OverviewView, Feeling: "Happy", X: fixture.Count, Y: fixture.Duration}, st,
		"stock defaults are not in the catalog")

	st = Initial(s, Options{Feeling: "Calm", X: fixture.Fixations, Y: fixture.Count})
	assert.Equal(t, State{Kind: schema.OverviewView, Feeling: "Calm", X: fixture.Fixations, Y: fixture.Count}, st)
}

func TestScenario(t *testing.T) {
	m := New(fixtureStore(t), Options{Feeling: "Happy", X: fixture.Count, Y: fixture.Duration, Sizing: engine.DefaultOptions()})

	overview := m.View()
	assert.Equal(t, "Duration vs Count for Happy", overview.Title)
	require.Len(t, overview.Markers, 2)
	assert.Equal(t, "Reds", overview.Markers[0].Name)
	assert.Equal(t, 120, overview.Markers[0].Size)
	assert.Equal(t, "#EDCCD5", overview.Markers[0].Color)
	assert.Equal(t, "12", overview.Markers[0].Label)
	assert.Greater(t, overview.Markers[0].Size, overview.Markers[1].Size)
	assert.Nil(t, overview.Center)
	assert.Empty(t, overview.Legend)
	assert.Equal(t, []schema.GroupName{"Reds", "Yellows"}, m.Groups())

	require.NoError(t, m.SelectGroup("Reds"))
	assert.Equal(t, State{Kind: schema.DetailView, Feeling: "Happy", X: fixture.Count, Y: fixture.Duration, Group: "Reds"}, m.State())

	detail := m.View()
	assert.Equal(t, "Reds Details (2 points) - Happy", detail.Title)
	names := make([]string, len(detail.Markers))
	for i, mk := range detail.Markers {
		names[i] = mk.Name
	}
	assert.Equal(t, []string{"R1", "R2"}, names)
	require.NotNil(t, detail.Center)
	assert.Equal(t, CenterColor, detail.Center.Color)
	assert.Equal(t, 12.0, detail.Center.X)
	assert.Equal(t, 300.0, detail.Center.Y)
	require.NotEmpty(t, detail.Legend)
	assert.Equal(t, 12, detail.Legend[len(detail.Legend)-1].Clicks)

	require.NoError(t, m.Back())
	assert.Equal(t, overview, m.View())
}

func TestInvalidEvents(t *testing.T) {
	m := New(fixtureStore(t), Options{X: fixture.Count, Y: fixture.Duration})
	start := m.State()

	assert.ErrorIs(t, m.Back(), ErrInvalidEvent)
	assert.ErrorIs(t, m.SelectGroup("Blues"), ErrInvalidEvent, "Blues is not part of Happy")
	assert.ErrorIs(t, m.SetFeeling("Angry"), ErrInvalidEvent)
	assert.ErrorIs(t, m.SetX("Click Ratio"), ErrInvalidEvent)
	assert.ErrorIs(t, m.Dispatch(Event{Kind: "zoom"}), ErrInvalidEvent)
	assert.Equal(t, start, m.State())

	require.NoError(t, m.SelectGroup("Yellows"))
	assert.ErrorIs(t, m.SelectGroup("Reds"), ErrInvalidEvent)
	assert.Equal(t, schema.GroupName("Yellows"), m.State().Group)
}

func TestChangesLeaveDetail(t *testing.T) {
	m := New(fixtureStore(t), Options{X: fixture.Count, Y: fixture.Duration})
	require.NoError(t, m.SelectGroup("Reds"))

	require.NoError(t, m.SetY(fixture.Fixations))
	assert.Equal(t, State{Kind: schema.OverviewView, Feeling: "Happy", X: fixture.Count, Y: fixture.Fixations}, m.State())

	require.NoError(t, m.SelectGroup("Reds"))
	require.NoError(t, m.SetFeeling("Calm"))
	assert.Equal(t, schema.OverviewView, m.State().Kind)
	assert.Equal(t, schema.FeelingID("Calm"), m.State().Feeling)
	assert.Empty(t, m.State().Group)
}

func TestRenderNoData(t *testing.T) {
	s := fixtureStore(t)
	v := Render(s, State{Kind: schema.OverviewView, Feeling: "Happy", X: "Missing", Y: "Missing"}, engine.DefaultOptions())
	assert.Equal(t, schema.NoDataMessage, v.NoData)
	assert.NotNil(t, v.Markers)
	assert.False(t, v.HasData())

	v = Render(s, State{Kind: schema.DetailView, Feeling: "Happy", X: fixture.Count, Y: fixture.Duration, Group: "Blues"}, engine.DefaultOptions())
	assert.Equal(t, schema.NoDataMessage, v.NoData)
}

func TestLegend(t *testing.T) {
	sizing := engine.DefaultOptions()
	tests := []struct {
		name      string
		maxClicks int
		clicks    []int
	}{
		{"no clicks", 0, []int{0}},
		{"few clicks", 3, []int{0, 1, 2, 3}},
		{"many clicks", 12, []int{0, 3, 6, 9, 12}},
		{"five clicks", 5, []int{0, 1, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			legend := Legend(tt.maxClicks, sizing)
			got := make([]int, len(legend))
			for i, e := range legend {
				got[i] = e.Clicks
				assert.Equal(t, sizing.PointSize(e.Clicks), e.Size)
			}
			assert.Equal(t, tt.clicks, got)
		})
	}
	assert.Equal(t, "1 click", Legend(1, sizing)[1].Label)
	assert.Equal(t, "0 clicks", Legend(1, sizing)[0].Label)
}

func TestNavigationProperties(t *testing.T) {
	s := fixtureStore(t)
	feelings := s.Feelings()
	metrics := s.Metrics()

	rapid.Check(t, func(t *rapid.T) {
		m := New(s, Options{X: fixture.Count, Y: fixture.Duration, Sizing: engine.DefaultOptions()})
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for range steps {
			before := m.State()
			beforeView := m.View()

			var e Event
			switch rapid.IntRange(0, 4).Draw(t, "kind") {
			case 0:
				groups := append(m.Groups(), "Nope")
				e = Event{Kind: SelectGroup, Value: string(rapid.SampledFrom(groups).Draw(t, "group"))}
			case 1:
				e = Event{Kind: Back}
			case 2:
				e = Event{Kind: SetFeeling, Value: string(rapid.SampledFrom(feelings).Draw(t, "feeling"))}
			case 3:
				e = Event{Kind: SetX, Value: string(rapid.SampledFrom(metrics).Draw(t, "x"))}
			default:
				e = Event{Kind: SetY, Value: string(rapid.SampledFrom(metrics).Draw(t, "y"))}
			}

			if err := m.Dispatch(e); err != nil {
				if m.State() != before {
					t.Fatalf("rejected %v changed the state", e)
				}
				continue
			}

			st := m.State()
			if st.Kind == schema.DetailView {
				if _, ok := s.Get(st.Feeling, st.X, st.Y); !ok {
					t.Fatalf("detail on unknown key %v", st)
				}
				if e.Kind == SelectGroup {
					if err := m.Back(); err != nil {
						t.Fatal(err)
					}
					if m.State() != before || m.View().Title != beforeView.Title || len(m.View().Markers) != len(beforeView.Markers) {
						t.Fatalf("back did not restore %v", before)
					}
					if err := m.SelectGroup(st.Group); err != nil {
						t.Fatal(err)
					}
				}
			} else if st.Group != "" {
				t.Fatalf("overview with a group: %v", st)
			}
		}
	})
}
