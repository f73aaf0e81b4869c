package nav

import (
	"fmt"
	"strconv"

	"github.com/huangsam/gazeplot/core/engine"
	"github.com/huangsam/gazeplot/schema"
)

// Center marker drawn over the detail view.
const (
	CenterColor = "#FFD700"
	CenterSize  = 20
	CenterLabel = "Group center"
)

// legendSteps is the largest number of legend entries.
const legendSteps = 5

// Render turns a state into a view. It only reads combinations already in src.
func Render(src Source, s State, sizing engine.Options) schema.View {
	comb, _ := src.Get(s.Feeling, s.X, s.Y)
	v := schema.View{
		Kind:    s.Kind,
		Feeling: s.Feeling,
		X:       s.X,
		Y:       s.Y,
		Markers: []schema.Marker{},
	}

	if s.Kind == schema.DetailView {
		v.Group = s.Group
		g, ok := comb.Group(s.Group)
		if !ok {
			v.Title = fmt.Sprintf("%s Details (0 points) - %s", s.Group, s.Feeling)
			v.NoData = schema.NoDataMessage
			return v
		}
		v.Title = fmt.Sprintf("%s Details (%d points) - %s", s.Group, g.Len(), s.Feeling)
		for i := range g.DetailNames {
			v.Markers = append(v.Markers, schema.Marker{
				Name:   g.DetailNames[i],
				X:      g.DetailX[i],
				Y:      g.DetailY[i],
				Size:   g.DetailSize[i],
				Color:  g.DetailColor[i],
				Label:  g.DetailNames[i],
				Clicks: g.DetailChoice[i],
			})
		}
		v.Center = &schema.Marker{
			Name:   string(s.Group),
			X:      g.CenterX,
			Y:      g.CenterY,
			Size:   CenterSize,
			Color:  CenterColor,
			Label:  CenterLabel,
			Clicks: g.Choice,
		}
		v.Legend = Legend(comb.MaxClicks, sizing)
		return v
	}

	v.Title = fmt.Sprintf("%s vs %s for %s", s.Y, s.X, s.Feeling)
	if comb.IsEmpty() {
		v.NoData = schema.NoDataMessage
		return v
	}
	for _, entry := range comb.Groups {
		g := entry.Result
		v.Markers = append(v.Markers, schema.Marker{
			Name:   string(entry.Name),
			X:      g.CenterX,
			Y:      g.CenterY,
			Size:   g.MarkerSize,
			Color:  g.Color,
			Label:  strconv.Itoa(g.Choice),
			Clicks: g.Choice,
		})
	}
	return v
}

// Legend lists representative click counts from 0 to maxClicks with their point sizes.
func Legend(maxClicks int, sizing engine.Options) []schema.LegendEntry {
	var counts []int
	if maxClicks < legendSteps {
		for c := 0; c <= maxClicks; c++ {
			counts = append(counts, c)
		}
	} else {
		for i := range legendSteps {
			c := (maxClicks*i + (legendSteps-1)/2) / (legendSteps - 1)
			if len(counts) == 0 || counts[len(counts)-1] != c {
				counts = append(counts, c)
			}
		}
	}

	entries := make([]schema.LegendEntry, len(counts))
	for i, c := range counts {
		label := fmt.Sprintf("%d clicks", c)
		if c == 1 {
			label = "1 click"
		}
		entries[i] = schema.LegendEntry{Clicks: c, Size: sizing.PointSize(c), Label: label}
	}
	return entries
}
