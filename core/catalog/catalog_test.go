package catalog

import (
	"testing"

	"github.com/huangsam/gazeplot/internal/loader"
	"github.com/huangsam/gazeplot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEligible(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"Dwell time (fixation, ms)", true},
		{"Respondent count (fixation dwells)", true},
		{"Click Ratio", false},
		{"ratio", false},
		{"Ratio of dwells", false},
		{"Duration", true},
		{"Ratios", true},
		{"Operation count", true},
		{"Index", false},
		{"Level 2", false},
		{"Unnamed: 3", false},
		{"Choice count", false},
		{"Share (%)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Eligible(tt.name))
		})
	}
}

func TestEligibleNeverAcceptsRatioWord(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.StringMatching(`[A-Za-z ]{0,8}`).Draw(t, "prefix")
		suffix := rapid.StringMatching(`[A-Za-z ]{0,8}`).Draw(t, "suffix")
		name := prefix + " Ratio " + suffix
		if Eligible(name) {
			t.Fatalf("%q should not be eligible", name)
		}
	})
}

func aggregateTable(t *testing.T) *loader.Table {
	t.Helper()
	tbl, err := loader.NewTable("groups.csv",
		[]string{"Feeling", "Group", "Count", "Click Ratio", "Label", "Duration", "Choice total", ""},
		[][]string{
			{"Happy", "Reds", "4", "0.1", "x", "100", "3", "0"},
			{"Happy", "Yellows", "2", "0.2", "y", "50", "1", "1"},
			{"Calm", "Reds", "6", "0.3", "z", "NA", "2", "2"},
		})
	require.NoError(t, err)
	return tbl
}

func TestDiscover(t *testing.T) {
	tbl := aggregateTable(t)
	metrics := Discover(tbl, []int{0, 1}, "Feeling", "Group")
	assert.Equal(t, []schema.MetricID{"Count", "Duration"}, metrics)
}

func TestDiscoverEmpty(t *testing.T) {
	tbl := aggregateTable(t)
	assert.Empty(t, Discover(tbl, nil))
	assert.Empty(t, Discover(nil, []int{0}))

	text, err := loader.NewTable("t", []string{"Feeling", "Group"}, [][]string{{"Happy", "Reds"}})
	require.NoError(t, err)
	assert.Empty(t, Discover(text, []int{0}))
}

func TestSummarize(t *testing.T) {
	tbl := aggregateTable(t)
	points, err := loader.NewTable("points.csv", []string{"Parent Label", "Duration"}, [][]string{{"P2d_Happy_Reds", "10"}})
	require.NoError(t, err)

	out := Summarize(tbl, points, []schema.MetricID{"Count", "Duration", "Missing"})
	require.Len(t, out, 3)

	assert.Equal(t, 3, out[0].Count)
	assert.InDelta(t, 4.0, out[0].Mean, 1e-9)
	assert.InDelta(t, 2.0, out[0].StdDev, 1e-9)
	assert.Equal(t, 2.0, out[0].Min)
	assert.Equal(t, 6.0, out[0].Max)
	assert.False(t, out[0].Points)

	assert.Equal(t, 2, out[1].Count, "missing cells are skipped")
	assert.InDelta(t, 75.0, out[1].Mean, 1e-9)
	assert.True(t, out[1].Points)

	assert.Equal(t, 0, out[2].Count)
	assert.Equal(t, 0.0, out[2].Mean)
}
