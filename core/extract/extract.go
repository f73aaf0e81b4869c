// Package extract parses the input tables once into typed feelings, groups and points.
package extract

import (
	"math"
	"strings"

	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/internal/loader"
	"github.com/huangsam/gazeplot/schema"
)

// Point is one respondent observation inside a group.
type Point struct {
	ID     string
	Clicks int
	Shade  string
	Values []float64 // indexed like Model.Metrics, NaN when missing
}

// Group is a color family within a feeling.
type Group struct {
	Name   schema.GroupName
	Color  string    // empty when no color is configured for the group
	Center []float64 // indexed like Model.Metrics, NaN when missing
	Points []Point
}

// Feeling owns the groups parsed for one feeling.
type Feeling struct {
	ID     schema.FeelingID
	Groups []Group
}

// Model is the parsed working set shared read-only by every combination.
type Model struct {
	Metrics     []schema.MetricID
	PointMetric []bool // whether the point table tracks the metric
	Feelings    []Feeling
}

// FeelingIDs returns the feelings in first-seen order.
func (m *Model) FeelingIDs() []schema.FeelingID {
	ids := make([]schema.FeelingID, len(m.Feelings))
	for i, f := range m.Feelings {
		ids[i] = f.ID
	}
	return ids
}

// MetricIndex returns the position of a metric in the catalog.
func (m *Model) MetricIndex(id schema.MetricID) (int, bool) {
	for i, metric := range m.Metrics {
		if metric == id {
			return i, true
		}
	}
	return -1, false
}

// Options control how labels are matched and colored.
type Options struct {
	Columns      contract.Columns
	DetailMarker string
	Palette      map[schema.GroupName]string
}

// color returns the configured color of a group. Config keys may arrive
// lowercased, so an exact match is preferred over a case-insensitive one.
func (o Options) color(name schema.GroupName) string {
	if c, ok := o.Palette[name]; ok {
		return c
	}
	for k, c := range o.Palette {
		if strings.EqualFold(string(k), string(name)) {
			return c
		}
	}
	return ""
}

// OptionsFromConfig picks the extraction settings out of the runtime config.
func OptionsFromConfig(cfg *contract.Config) Options {
	return Options{Columns: cfg.Columns, DetailMarker: cfg.DetailMarker, Palette: cfg.Palette}
}

// Feelings returns the distinct feelings of the aggregate table in first-seen
// order along with the row numbers of each feeling.
func Feelings(groups *loader.Table, feelingColumn string) ([]schema.FeelingID, map[schema.FeelingID][]int) {
	col, ok := groups.Column(feelingColumn)
	if !ok {
		return nil, nil
	}
	var order []schema.FeelingID
	rows := make(map[schema.FeelingID][]int)
	for i := range col.Len() {
		f := schema.FeelingID(col.String(i))
		if f == "" {
			continue
		}
		if _, seen := rows[f]; !seen {
			order = append(order, f)
		}
		rows[f] = append(rows[f], i)
	}
	return order, rows
}

// Parse builds the model for the given metric catalog.
func Parse(ds *loader.Dataset, metrics []schema.MetricID, opts Options) *Model {
	cols := opts.Columns
	model := &Model{Metrics: metrics, PointMetric: make([]bool, len(metrics))}

	pointCols := make([]*loader.Column, len(metrics))
	groupCols := make([]*loader.Column, len(metrics))
	for i, m := range metrics {
		if c, ok := ds.Points.Column(string(m)); ok {
			pointCols[i] = c
			model.PointMetric[i] = true
		}
		groupCols[i], _ = ds.Groups.Column(string(m))
	}

	shades := shadeIndex(ds.Palette, cols)
	parent, _ := ds.Points.Column(cols.Parent)
	label, _ := ds.Points.Column(cols.Label)
	groupName, _ := ds.Groups.Column(cols.Group)

	order, feelingRows := Feelings(ds.Groups, cols.Feeling)
	for _, id := range order {
		feeling := Feeling{ID: id}
		clicks := clickCounts(ds.Choices, cols, id)

		known := make(map[schema.GroupName]struct{})
		for _, row := range feelingRows[id] {
			name := schema.GroupName(groupName.String(row))
			if name == "" {
				continue
			}
			if _, dup := known[name]; dup {
				continue
			}
			known[name] = struct{}{}
			feeling.Groups = append(feeling.Groups, Group{
				Name:   name,
				Color:  opts.color(name),
				Center: rowValues(groupCols, row),
			})
		}

		names := make([]string, len(feeling.Groups))
		for i, g := range feeling.Groups {
			names[i] = string(g.Name)
		}
		seen := make([]map[string]struct{}, len(feeling.Groups))
		for i := range seen {
			seen[i] = make(map[string]struct{})
		}

		for row := range parent.Len() {
			pl := parent.String(row)
			if !strings.Contains(pl, opts.DetailMarker) || !strings.Contains(pl, string(id)) {
				continue
			}
			gi := matchGroup(pl, names)
			if gi < 0 {
				continue
			}
			pid := pointID(label.String(row))
			if _, dup := seen[gi][pid]; dup {
				continue
			}
			seen[gi][pid] = struct{}{}

			shade, ok := shades[pid]
			if !ok {
				shade = schema.DefaultShadeColor
			}
			feeling.Groups[gi].Points = append(feeling.Groups[gi].Points, Point{
				ID:     pid,
				Clicks: clicks[pid],
				Shade:  shade,
				Values: rowValues(pointCols, row),
			})
		}
		model.Feelings = append(model.Feelings, feeling)
	}
	return model
}

// matchGroup returns the index of the longest group name contained in label.
// Ties go to the earlier group; -1 when none matches.
func matchGroup(label string, names []string) int {
	best := -1
	for i, n := range names {
		if n == "" || !strings.Contains(label, n) {
			continue
		}
		if best < 0 || len(n) > len(names[best]) {
			best = i
		}
	}
	return best
}

// pointID is the last "_" separated token of a point label.
func pointID(label string) string {
	if i := strings.LastIndex(label, "_"); i >= 0 {
		return label[i+1:]
	}
	return label
}

func rowValues(cols []*loader.Column, row int) []float64 {
	values := make([]float64, len(cols))
	for i, c := range cols {
		values[i] = math.NaN()
		if c == nil {
			continue
		}
		if v, ok := c.Float(row); ok {
			values[i] = v
		}
	}
	return values
}

// clickCounts counts the choice rows of one feeling per point name.
func clickCounts(choices *loader.Table, cols contract.Columns, feeling schema.FeelingID) map[string]int {
	counts := make(map[string]int)
	name, ok := choices.Column(cols.ChoiceName)
	if !ok {
		return counts
	}
	word, ok := choices.Column(cols.ChoiceFeeling)
	if !ok {
		return counts
	}
	for i := range name.Len() {
		if schema.FeelingID(word.String(i)) != feeling {
			continue
		}
		if n := name.String(i); n != "" {
			counts[n]++
		}
	}
	return counts
}

// shadeIndex maps point ids to their palette shade, first row wins.
func shadeIndex(palette *loader.Table, cols contract.Columns) map[string]string {
	shades := make(map[string]string)
	if palette == nil {
		return shades
	}
	name, ok := palette.Column(cols.PaletteName)
	if !ok {
		return shades
	}
	hex, ok := palette.Column(cols.PaletteHex)
	if !ok {
		return shades
	}
	for i := range name.Len() {
		n, h := name.String(i), hex.String(i)
		if n == "" || h == "" {
			continue
		}
		if _, exists := shades[n]; !exists {
			shades[n] = h
		}
	}
	return shades
}
