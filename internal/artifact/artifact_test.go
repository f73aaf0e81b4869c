package artifact

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
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

func fixtureStore(t *testing.T) *store.Store {
	t.Helper()
	model := extract.Parse(fixture.Dataset(), fixture.Metrics, extract.Options{
		Columns:      contract.DefaultColumns(),
		DetailMarker: schema.DefaultDetailMarker,
		Palette:      schema.CanonicalColors,
	})
	s, err := store.Build(context.Background(), model, store.Options{Engine: engine.DefaultOptions(), Workers: 2})
	require.NoError(t, err)
	return s
}

func testOptions(s *store.Store) Options {
	return Options{
		Title:       "Eye <Tracking>",
		Initial:     nav.Initial(s, nav.Options{X: fixture.Count, Y: fixture.Duration}),
		Sizing:      engine.DefaultOptions(),
		RunID:       "run-42",
		Fingerprint: "feedbeef",
		Generated:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

var storeLine = regexp.MustCompile(`(?m)^const lookupStore = (.*);$`)

func TestRenderEmbedsStore(t *testing.T) {
	s := fixtureStore(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s, testOptions(s)))
	html := buf.String()

	match := storeLine.FindStringSubmatch(html)
	require.NotNil(t, match, "store script line")

	back, err := store.Decode([]byte(match[1]))
	require.NoError(t, err)
	assert.Equal(t, s.Feelings(), back.Feelings())
	assert.Equal(t, s.Metrics(), back.Metrics())
	want, _ := s.Get("Happy", fixture.Count, fixture.Duration)
	got, ok := back.Get("Happy", fixture.Count, fixture.Duration)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRenderPage(t *testing.T) {
	s := fixtureStore(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s, testOptions(s)))
	html := buf.String()

	assert.Contains(t, html, "<title>Eye &lt;Tracking&gt;</title>")
	assert.Contains(t, html, EChartsURL)
	assert.Contains(t, html, `const feelings = ["Happy","Calm"];`)
	assert.Contains(t, html, `"kind":"overview"`)
	assert.Contains(t, html, `const noDataText = "No data available for this metric combination";`)
	assert.Contains(t, html, `content="run-42"`)
	assert.Contains(t, html, "generated 2026-01-02T03:04:05Z")
	assert.Contains(t, html, "2 feelings, 3 metrics")
}

func TestScriptJSONCannotCloseScript(t *testing.T) {
	js, err := scriptJSON(map[string]string{"name": "</script><b>"})
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(string(js)), "</script")

	var back map[string]string
	require.NoError(t, json.Unmarshal([]byte(js), &back))
	assert.Equal(t, "</script><b>", back["name"])
}

func TestRenderIsDeterministic(t *testing.T) {
	s := fixtureStore(t)
	opts := testOptions(s)
	var a, b bytes.Buffer
	require.NoError(t, Render(&a, s, opts))
	require.NoError(t, Render(&b, fixtureStore(t), opts))
	assert.Equal(t, a.String(), b.String())
}

func TestWriteFile(t *testing.T) {
	s := fixtureStore(t)
	path := filepath.Join(t.TempDir(), contract.DefaultArtifactFile)
	require.NoError(t, WriteFile(path, s, testOptions(s)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))

	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "missing", "x.html"), s, testOptions(s)))
}
