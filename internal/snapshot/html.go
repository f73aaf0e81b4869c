package snapshot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/gazeplot/schema"
)

// starSymbol is the echarts path drawn for the highlighted group center.
const starSymbol = "path://M50 0 L61 35 L98 35 L68 57 L79 91 L50 70 L21 91 L32 57 L2 35 L39 35 Z"

func scatterPoint(m schema.Marker) opts.ScatterData {
	return opts.ScatterData{
		Name:       m.Name,
		Value:      []interface{}{m.X, m.Y, m.Clicks},
		SymbolSize: int(markerDiameter(m.Size)),
	}
}

// WriteHTML renders view as a go-echarts scatter page.
func WriteHTML(w io.Writer, view schema.View) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: view.Title, Width: "1000px", Height: "650px"}),
		charts.WithTitleOpts(opts.Title{Title: view.Title, Subtitle: subtitle(view)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: string(view.X), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: string(view.Y), NameLocation: "middle", NameGap: 40}),
	)

	if view.Kind == schema.DetailView {
		colors, runs := colorRuns(view.Markers)
		for _, c := range colors {
			data := make([]opts.ScatterData, 0, len(runs[c]))
			for _, m := range runs[c] {
				data = append(data, scatterPoint(m))
			}
			scatter.AddSeries(fmt.Sprintf("%s %s", view.Group, c), data,
				charts.WithItemStyleOpts(opts.ItemStyle{Color: c, BorderColor: "#DBDBDB"}))
		}
		if center := view.Center; center != nil {
			scatter.AddSeries(center.Label, []opts.ScatterData{{
				Name:       center.Name,
				Value:      []interface{}{center.X, center.Y, center.Clicks},
				Symbol:     starSymbol,
				SymbolSize: center.Size,
			}}, charts.WithItemStyleOpts(opts.ItemStyle{Color: center.Color, BorderColor: "#000000"}))
		}
	} else {
		for _, m := range view.Markers {
			scatter.AddSeries(m.Name, []opts.ScatterData{scatterPoint(m)},
				charts.WithItemStyleOpts(opts.ItemStyle{Color: m.Color, BorderColor: "#DBDBDB"}))
		}
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render HTML snapshot: %w", err)
	}
	return nil
}
