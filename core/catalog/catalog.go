// Package catalog discovers the metrics that can be put on either axis.
package catalog

import (
	"regexp"
	"strings"

	"github.com/huangsam/gazeplot/internal/loader"
	"github.com/huangsam/gazeplot/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// excludedPatterns mark structural or identifier columns.
var excludedPatterns = []string{"index", "level", "unnamed", "choice", "%"}

var ratioPattern = regexp.MustCompile(`\bratio\b`)

// Eligible reports whether a numeric column name may be used as a metric.
func Eligible(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range excludedPatterns {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return !ratioPattern.MatchString(lower)
}

// Discover returns the eligible numeric columns of t in column order.
// rows are the sample records, usually those of the first feeling; with no
// sample rows the catalog is empty. Columns named in skip are never metrics.
func Discover(t *loader.Table, rows []int, skip ...string) []schema.MetricID {
	if t == nil || len(rows) == 0 {
		return nil
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipped[s] = struct{}{}
	}

	var metrics []schema.MetricID
	for _, col := range t.Columns() {
		if _, ok := skipped[col.Name]; ok {
			continue
		}
		if col.Numeric && Eligible(col.Name) {
			metrics = append(metrics, schema.MetricID(col.Name))
		}
	}
	return metrics
}

// Summarize reports the spread of each metric over every row of the aggregate table.
// Points is set for metrics that the point table also carries.
func Summarize(groups, points *loader.Table, metrics []schema.MetricID) []schema.MetricSummary {
	out := make([]schema.MetricSummary, 0, len(metrics))
	for _, m := range metrics {
		s := schema.MetricSummary{Metric: m}
		if points != nil {
			if pc, ok := points.Column(string(m)); ok && pc.Numeric {
				s.Points = true
			}
		}

		col, ok := groups.Column(string(m))
		if !ok {
			out = append(out, s)
			continue
		}
		values := make([]float64, 0, col.Len())
		for i := range col.Len() {
			if v, ok := col.Float(i); ok {
				values = append(values, v)
			}
		}
		s.Count = len(values)
		if s.Count > 0 {
			s.Mean = stat.Mean(values, nil)
			s.Min = floats.Min(values)
			s.Max = floats.Max(values)
		}
		if s.Count > 1 {
			s.StdDev = stat.StdDev(values, nil)
		}
		out = append(out, s)
	}
	return out
}
