// Package snapshot renders one navigation view as a static chart: an HTML page
// through go-echarts or a PNG image through gonum/plot.
package snapshot

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/gazeplot/schema"
)

// WriteFile renders view into path in the given format.
func WriteFile(path string, format schema.SnapshotFormat, view schema.View) error {
	var buf bytes.Buffer
	var err error
	switch format {
	case schema.HTMLSnapshot, "":
		err = WriteHTML(&buf, view)
	case schema.PNGSnapshot:
		err = WritePNG(&buf, view)
	default:
		err = fmt.Errorf("unsupported snapshot format %q", format)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// subtitle names the axes and what the view is missing, if anything.
func subtitle(view schema.View) string {
	parts := []string{fmt.Sprintf("x: %s, y: %s", view.X, view.Y)}
	if !view.HasData() {
		parts = append(parts, schema.NoDataMessage)
	}
	if len(view.Legend) > 0 {
		var legend []string
		for _, e := range view.Legend {
			legend = append(legend, e.Label)
		}
		parts = append(parts, "sizes: "+strings.Join(legend, ", "))
	}
	return strings.Join(parts, " | ")
}

// markerDiameter compresses marker sizes with a square root so that large
// click counts stay on the canvas.
func markerDiameter(size int) float64 {
	return math.Max(4, math.Sqrt(float64(size))*3)
}

// parseHex reads #RRGGBB, falling back to the default shade.
func parseHex(hex string) color.RGBA {
	if len(hex) == 7 && hex[0] == '#' {
		if v, err := strconv.ParseUint(hex[1:], 16, 32); err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
		}
	}
	if hex != schema.DefaultShadeColor {
		return parseHex(schema.DefaultShadeColor)
	}
	return color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 255}
}

// colorRuns splits markers into runs of equal color, keeping first-seen color order.
func colorRuns(markers []schema.Marker) (colors []string, runs map[string][]schema.Marker) {
	runs = make(map[string][]schema.Marker)
	for _, m := range markers {
		if _, ok := runs[m.Color]; !ok {
			colors = append(colors, m.Color)
		}
		runs[m.Color] = append(runs[m.Color], m)
	}
	return colors, runs
}
