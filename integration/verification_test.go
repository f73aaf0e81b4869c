//go:build integration

// Package integration contains end-to-end tests of the gazeplot binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/huangsam/gazeplot/internal/fixture"
	"github.com/huangsam/gazeplot/internal/parquet"
	"github.com/huangsam/gazeplot/schema"
	parquetgo "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var embeddedStore = regexp.MustCompile(`(?m)^const lookupStore = (.*);$`)

// TestBuildArtifact checks that the page embeds the same combinations the view command prints.
func TestBuildArtifact(t *testing.T) {
	dir, flags := survey(t)
	page := filepath.Join(dir, "viz.html")

	run(t, dir, append([]string{"build", "--cache-backend", "none", "--out", page}, flags...)...)

	data, err := os.ReadFile(page)
	require.NoError(t, err)
	m := embeddedStore.FindSubmatch(data)
	require.Len(t, m, 2, "page embeds the lookup store")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(m[1], &doc))
	assert.Contains(t, doc, "Happy")
	assert.Contains(t, doc, "Calm")

	out := run(t, dir, append([]string{"view", "--cache-backend", "none", "--feeling", "Happy", "--output", "json"}, flags...)...)
	var view schema.View
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, schema.OverviewView, view.Kind)
	require.Len(t, view.Markers, 2)
	assert.Equal(t, "Reds", view.Markers[0].Name)
	assert.Equal(t, 120, view.Markers[0].Size)
}

// TestExportMatchesStore checks the Parquet export row count against the detail views.
func TestExportMatchesStore(t *testing.T) {
	dir, flags := survey(t)
	path := filepath.Join(dir, "points.parquet")

	run(t, dir, append([]string{"export", "--cache-backend", "none", "--out", path}, flags...)...)

	rows, err := parquetgo.ReadFile[parquet.PointRow](path)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	seen := make(map[string]bool)
	for _, r := range rows {
		seen[r.Feeling] = true
	}
	assert.True(t, seen["Happy"])
	assert.True(t, seen["Calm"])
}

// TestSnapshotFormats renders both snapshot formats through the binary.
func TestSnapshotFormats(t *testing.T) {
	dir, flags := survey(t)
	for _, format := range []string{"html", "png"} {
		path := filepath.Join(dir, "snap."+format)
		run(t, dir, append([]string{"snapshot", "--cache-backend", "none", "--feeling", "Happy", "--group", "Reds",
			"--format", format, "--out", path}, flags...)...)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

// TestMetricsCatalog checks the catalog order against the fixture.
func TestMetricsCatalog(t *testing.T) {
	dir, flags := survey(t)
	out := run(t, dir, append([]string{"metrics", "--cache-backend", "none", "--output", "json"}, flags...)...)

	var got struct {
		Metrics []schema.MetricID `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, fixture.Metrics, got.Metrics)
}
