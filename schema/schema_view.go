package schema

// Marker is one rendered scatter point.
type Marker struct {
	Name   string  `json:"name" yaml:"name"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Size   int     `json:"size" yaml:"size"`
	Color  string  `json:"color" yaml:"color"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty"`
	Clicks int     `json:"clicks" yaml:"clicks"`
}

// LegendEntry maps a click count to the marker size used to draw it.
type LegendEntry struct {
	Clicks int    `json:"clicks" yaml:"clicks"`
	Size   int    `json:"size" yaml:"size"`
	Label  string `json:"label" yaml:"label"`
}

// View is a renderer-agnostic description of what the navigation machine shows.
type View struct {
	Kind    ViewKind      `json:"kind" yaml:"kind"`
	Feeling FeelingID     `json:"feeling" yaml:"feeling"`
	X       MetricID      `json:"x" yaml:"x"`
	Y       MetricID      `json:"y" yaml:"y"`
	Group   GroupName     `json:"group,omitempty" yaml:"group,omitempty"`
	Title   string        `json:"title" yaml:"title"`
	Markers []Marker      `json:"markers" yaml:"markers"`
	Center  *Marker       `json:"center,omitempty" yaml:"center,omitempty"` // highlighted group center in detail view
	NoData  string        `json:"no_data,omitempty" yaml:"no_data,omitempty"`
	Legend  []LegendEntry `json:"legend,omitempty" yaml:"legend,omitempty"`
}

// HasData reports whether the view has anything to plot.
func (v View) HasData() bool {
	return v.NoData == "" && len(v.Markers) > 0
}
