package mcp

import (
	"context"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/huangsam/gazeplot/core/engine"
	"github.com/huangsam/gazeplot/core/extract"
	"github.com/huangsam/gazeplot/core/store"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/internal/fixture"
	"github.com/huangsam/gazeplot/schema"
	"github.com/mark3labs/mcp-go/mcp"
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

func testHandler(t *testing.T, loads *int) *toolHandler {
	s := fixtureStore(t)
	return &toolHandler{
		baseCfg: &contract.Config{DefaultX: fixture.Count, DefaultY: fixture.Duration},
		load: func(context.Context) (*store.Store, error) {
			*loads++
			return s, nil
		},
	}
}

func call(t *testing.T, h *toolHandler, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := newServer(h).GetTool(name)
	require.NotNil(t, tool, "tool %s should exist", name)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "tool failures are reported in the result")
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestListTools(t *testing.T) {
	var loads int
	h := testHandler(t, &loads)

	res := call(t, h, "list_feelings", nil)
	require.False(t, res.IsError)
	var feelings []string
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &feelings))
	assert.Equal(t, []string{"Happy", "Calm"}, feelings)

	res = call(t, h, "list_metrics", nil)
	require.False(t, res.IsError)
	var metrics []string
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &metrics))
	assert.Equal(t, []string{"Count", "Duration", "Fixations"}, metrics)

	assert.Equal(t, 1, loads, "store is loaded once")
}

func TestGetCombination(t *testing.T) {
	var loads int
	h := testHandler(t, &loads)

	t.Run("known keys", func(t *testing.T) {
		res := call(t, h, "get_combination", map[string]any{"feeling": "Happy", "x": "Count", "y": "Duration"})
		require.False(t, res.IsError, text(t, res))
		var comb schema.Combination
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &comb))
		assert.Equal(t, []schema.GroupName{"Reds", "Yellows"}, comb.GroupNames())
	})

	t.Run("unknown metric", func(t *testing.T) {
		res := call(t, h, "get_combination", map[string]any{"feeling": "Happy", "x": "Count", "y": "Pupil"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(t, res), "Pupil")
	})

	t.Run("missing argument", func(t *testing.T) {
		res := call(t, h, "get_combination", map[string]any{"feeling": "Happy"})
		assert.True(t, res.IsError)
	})
}

func TestGetView(t *testing.T) {
	var loads int
	h := testHandler(t, &loads)

	t.Run("overview", func(t *testing.T) {
		res := call(t, h, "get_view", map[string]any{"feeling": "Happy"})
		require.False(t, res.IsError, text(t, res))
		var view schema.View
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &view))
		assert.Equal(t, schema.OverviewView, view.Kind)
		assert.Len(t, view.Markers, 2)
	})

	t.Run("detail", func(t *testing.T) {
		res := call(t, h, "get_view", map[string]any{"feeling": "Happy", "group": "Reds"})
		require.False(t, res.IsError, text(t, res))
		var view schema.View
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &view))
		assert.Equal(t, schema.DetailView, view.Kind)
		require.NotNil(t, view.Center)
		assert.Equal(t, "Reds", view.Center.Name)
	})

	t.Run("unknown group", func(t *testing.T) {
		res := call(t, h, "get_view", map[string]any{"feeling": "Calm", "group": "Yellows"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(t, res), "invalid view")
	})
}

func TestLoadFailureIsRetried(t *testing.T) {
	s := fixtureStore(t)
	attempts := 0
	h := &toolHandler{
		baseCfg: &contract.Config{},
		load: func(context.Context) (*store.Store, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("inputs missing")
			}
			return s, nil
		},
	}

	res := call(t, h, "list_feelings", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "inputs missing")

	res = call(t, h, "list_feelings", nil)
	assert.False(t, res.IsError)
	assert.Equal(t, 2, attempts)
}

func TestNewMCPServerRegistersTools(t *testing.T) {
	s := NewMCPServer(&contract.Config{}, nil)
	for _, name := range []string{"list_feelings", "list_metrics", "get_combination", "get_view"} {
		assert.NotNil(t, s.GetTool(name), name)
	}
}
