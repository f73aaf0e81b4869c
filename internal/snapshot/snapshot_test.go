package snapshot

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/gazeplot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overview() schema.View {
	return schema.View{
		Kind: schema.OverviewView, Feeling: "Happy", X: "count", Y: "duration",
		Title: "Happy",
		Markers: []schema.Marker{
			{Name: "Reds", X: 1, Y: 2, Size: 120, Color: "#EDCCD5", Label: "12", Clicks: 12},
			{Name: "Yellows", X: 3, Y: 1, Size: 30, Color: "#FFEEC4", Label: "3", Clicks: 3},
		},
		Legend: []schema.LegendEntry{{Clicks: 3, Size: 30, Label: "3"}, {Clicks: 12, Size: 120, Label: "12"}},
	}
}

func detail() schema.View {
	return schema.View{
		Kind: schema.DetailView, Feeling: "Happy", X: "count", Y: "duration", Group: "Reds",
		Title: "Happy: Reds",
		Markers: []schema.Marker{
			{Name: "R1", X: 0.5, Y: 1, Size: 130, Color: "#AA0000", Clicks: 12},
			{Name: "R2", X: 1.5, Y: 3, Size: 10, Color: "#CCCCCC"},
			{Name: "R3", X: 1, Y: 2, Size: 10, Color: "#CCCCCC"},
		},
		Center: &schema.Marker{Name: "Reds", X: 1, Y: 2, Size: 20, Color: "#FFD700", Label: "Group center", Clicks: 12},
	}
}

func TestParseHex(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0xED, G: 0xCC, B: 0xD5, A: 255}, parseHex("#EDCCD5"))
	assert.Equal(t, color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 255}, parseHex("red"))
	assert.Equal(t, color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 255}, parseHex("#GGGGGG"))
}

func TestMarkerDiameter(t *testing.T) {
	assert.InDelta(t, 30.0, markerDiameter(100), 1e-9)
	assert.InDelta(t, 4.0, markerDiameter(0), 1e-9)
	assert.Less(t, markerDiameter(10), markerDiameter(130))
}

func TestColorRuns(t *testing.T) {
	colors, runs := colorRuns(detail().Markers)
	assert.Equal(t, []string{"#AA0000", "#CCCCCC"}, colors)
	assert.Len(t, runs["#CCCCCC"], 2)
	assert.Equal(t, "R1", runs["#AA0000"][0].Name)
}

func TestSubtitle(t *testing.T) {
	assert.Equal(t, "x: count, y: duration | sizes: 3, 12", subtitle(overview()))

	empty := schema.View{X: "count", Y: "count", NoData: schema.NoDataMessage}
	assert.Contains(t, subtitle(empty), schema.NoDataMessage)
}

func TestWriteHTML(t *testing.T) {
	t.Run("overview", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteHTML(&buf, overview()))
		out := buf.String()
		assert.Contains(t, out, "echarts")
		assert.Contains(t, out, "Reds")
		assert.Contains(t, out, "Yellows")
		assert.Contains(t, out, "#EDCCD5")
	})

	t.Run("detail", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteHTML(&buf, detail()))
		out := buf.String()
		assert.Contains(t, out, "Group center")
		assert.Contains(t, out, "#FFD700")
		assert.Contains(t, out, "R2")
	})

	t.Run("no data", func(t *testing.T) {
		var buf bytes.Buffer
		view := schema.View{Kind: schema.OverviewView, Title: "Calm", X: "a", Y: "b", NoData: schema.NoDataMessage}
		require.NoError(t, WriteHTML(&buf, view))
		assert.Contains(t, buf.String(), "Calm")
	})
}

func TestWritePNG(t *testing.T) {
	for name, view := range map[string]schema.View{
		"overview": overview(),
		"detail":   detail(),
		"no data":  {Kind: schema.OverviewView, Title: "Calm", X: "a", Y: "b", NoData: schema.NoDataMessage},
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WritePNG(&buf, view))
			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Positive(t, img.Bounds().Dx())
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "view.html")
	require.NoError(t, WriteFile(htmlPath, schema.HTMLSnapshot, overview()))
	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")

	pngPath := filepath.Join(dir, "view.png")
	require.NoError(t, WriteFile(pngPath, schema.PNGSnapshot, detail()))
	data, err = os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])

	badPath := filepath.Join(dir, "view.svg")
	assert.Error(t, WriteFile(badPath, "svg", overview()))
	_, err = os.Stat(badPath)
	assert.True(t, os.IsNotExist(err))
}
