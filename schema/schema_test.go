package schema

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCombination() Combination {
	return Combination{
		Groups: []GroupEntry{
			{Name: "Yellows", Result: GroupResult{
				CenterX: 1.5, CenterY: 2,
				Color:        "#FFEEC4",
				DetailX:      []float64{1},
				DetailY:      []float64{2},
				DetailColor:  []string{"#CCCCCC"},
				DetailSize:   []int{40},
				DetailChoice: []int{3},
				DetailNames:  []string{"Y1"},
				MarkerSize:   30,
				Choice:       3,
			}},
			{Name: "Reds", Result: GroupResult{
				CenterX: 0.25, CenterY: 7,
				Color:        "#EDCCD5",
				DetailX:      []float64{0.1, 0.4},
				DetailY:      []float64{6, 8},
				DetailColor:  []string{"#AA0000", "#CCCCCC"},
				DetailSize:   []int{130, 10},
				DetailChoice: []int{12, 0},
				DetailNames:  []string{"R1", "R2"},
				MarkerSize:   120,
				Choice:       12,
			}},
		},
		MaxClicks: 12,
	}
}

func TestCombinationJSON(t *testing.T) {
	t.Run("empty sentinel", func(t *testing.T) {
		data, err := json.Marshal(Combination{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{},"max_clicks":0}`, string(data))

		var back Combination
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, back.IsEmpty())
		assert.Equal(t, 0, back.MaxClicks)
	})

	t.Run("keeps group order", func(t *testing.T) {
		c := sampleCombination()
		data, err := json.Marshal(c)
		require.NoError(t, err)
		assert.Less(t, strings.Index(string(data), `"Yellows"`), strings.Index(string(data), `"Reds"`))

		var back Combination
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, c, back)
	})

	t.Run("null data decodes as empty", func(t *testing.T) {
		var back Combination
		require.NoError(t, json.Unmarshal([]byte(`{"data":null,"max_clicks":0}`), &back))
		assert.True(t, back.IsEmpty())
	})

	t.Run("rejects non-object data", func(t *testing.T) {
		var back Combination
		assert.Error(t, json.Unmarshal([]byte(`{"data":[1,2],"max_clicks":0}`), &back))
	})
}

func TestCombinationLookup(t *testing.T) {
	c := sampleCombination()
	assert.Equal(t, []GroupName{"Yellows", "Reds"}, c.GroupNames())

	reds, ok := c.Group("Reds")
	require.True(t, ok)
	assert.Equal(t, 2, reds.Len())

	_, ok = c.Group("Blues")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	reports := []CombinationReport{
		{Feeling: "Happy", X: "a", Y: "a", Groups: []GroupOutcome{{Group: "Reds", Points: 2}}},
		{Feeling: "Happy", X: "a", Y: "b", Reason: SkipEmptyCombination, FallbackY: true, Groups: []GroupOutcome{
			{Group: "Reds", Reason: SkipMissingCenter},
			{Group: "Blues", Reason: SkipEmptyIntersection},
		}},
		{Feeling: "Happy", X: "b", Y: "a", Reason: SkipCombinationError, Error: "boom"},
	}

	s := Summarize(1, 2, reports)
	assert.Equal(t, 3, s.Combinations)
	assert.Equal(t, 1, s.EmptyCombinations)
	assert.Equal(t, 1, s.FailedCombos)
	assert.Equal(t, 1, s.FallbackCombos)
	assert.Equal(t, map[string]int{"missing_center": 1, "empty_intersection": 1}, s.DroppedGroups)
}
