package snapshot

import (
	"fmt"
	"io"
	"math"

	"github.com/huangsam/gazeplot/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Image size of PNG snapshots.
const (
	pngWidth  = 10 * vg.Inch
	pngHeight = 7 * vg.Inch
)

// starGlyph draws a filled five-pointed star.
type starGlyph struct{}

// DrawGlyph implements draw.GlyphDrawer.
func (starGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	c.SetColor(sty.Color)
	var p vg.Path
	for i := range 10 {
		r := sty.Radius
		if i%2 == 1 {
			r = sty.Radius * 0.45
		}
		a := math.Pi/2 + float64(i)*math.Pi/5
		q := vg.Point{X: pt.X + r*vg.Length(math.Cos(a)), Y: pt.Y + r*vg.Length(math.Sin(a))}
		if i == 0 {
			p.Move(q)
		} else {
			p.Line(q)
		}
	}
	p.Close()
	c.Fill(p)
}

// WritePNG renders view as a gonum/plot scatter image.
func WritePNG(w io.Writer, view schema.View) error {
	p := plot.New()
	p.Title.Text = view.Title + "\n" + subtitle(view)
	p.X.Label.Text = string(view.X)
	p.Y.Label.Text = string(view.Y)
	p.BackgroundColor = parseHex("#FFFFFF")
	p.Add(plotter.NewGrid())

	if view.HasData() {
		markers := view.Markers
		xys := make(plotter.XYs, len(markers))
		labels := make([]string, len(markers))
		for i, m := range markers {
			xys[i] = plotter.XY{X: m.X, Y: m.Y}
			labels[i] = m.Name
			if view.Kind == schema.OverviewView && m.Label != "" {
				labels[i] = fmt.Sprintf("%s (%s)", m.Name, m.Label)
			}
		}

		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("failed to plot markers: %w", err)
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{
				Color:  parseHex(markers[i].Color),
				Radius: vg.Points(markerDiameter(markers[i].Size) / 2),
				Shape:  draw.CircleGlyph{},
			}
		}
		p.Add(sc)

		names, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return fmt.Errorf("failed to label markers: %w", err)
		}
		p.Add(names)
	}

	if c := view.Center; c != nil {
		star, err := plotter.NewScatter(plotter.XYs{{X: c.X, Y: c.Y}})
		if err != nil {
			return fmt.Errorf("failed to plot group center: %w", err)
		}
		star.GlyphStyle = draw.GlyphStyle{Color: parseHex(c.Color), Radius: vg.Points(float64(c.Size) / 2), Shape: starGlyph{}}
		p.Add(star)
		p.Legend.Add(c.Label, star)
	}

	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to render PNG snapshot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write PNG snapshot: %w", err)
	}
	return nil
}
