// Package engine computes the group-keyed result of one (feeling, x, y) combination.
package engine

import (
	"fmt"
	"math"

	"github.com/huangsam/gazeplot/core/extract"
	"github.com/huangsam/gazeplot/schema"
)

type (
	// Report records how one combination was computed.
	Report = schema.CombinationReport

	// Outcome records what happened to one group of a combination.
	Outcome = schema.GroupOutcome
)

// Options hold the sizing constants.
type Options struct {
	Scale         int // multiplier applied to click counts
	MinMarkerSize int // group marker size when the group has no clicks
}

// DefaultOptions returns the stock sizing constants.
func DefaultOptions() Options {
	return Options{Scale: schema.DefaultScale, MinMarkerSize: schema.DefaultMinMarkerSize}
}

// PointSize is the display size of a point with the given number of clicks.
func (o Options) PointSize(clicks int) int {
	return (clicks + 1) * o.Scale
}

// MarkerSize is the display size of a group whose points total the given clicks.
func (o Options) MarkerSize(total int) int {
	if total > 0 {
		return total * o.Scale
	}
	return o.MinMarkerSize
}

// Compute builds the result for feeling fi of the model with metrics xi and yi.
// It never fails: groups that cannot contribute are dropped and recorded in the
// report, and a combination with no surviving group is the empty sentinel.
func Compute(m *extract.Model, fi, xi, yi int, opts Options) (comb schema.Combination, rep Report) {
	defer func() {
		if r := recover(); r != nil {
			comb = schema.Combination{}
			rep.Reason = schema.SkipCombinationError
			rep.Error = fmt.Sprint(r)
		}
	}()

	feeling := &m.Feelings[fi]
	rep = Report{
		Feeling:   feeling.ID,
		X:         m.Metrics[xi],
		Y:         m.Metrics[yi],
		FallbackX: !m.PointMetric[xi],
		FallbackY: !m.PointMetric[yi],
		Groups:    make([]Outcome, 0, len(feeling.Groups)),
	}

	for i := range feeling.Groups {
		result, maxClicks, outcome := computeGroup(&feeling.Groups[i], xi, yi, m.PointMetric, opts)
		rep.Groups = append(rep.Groups, outcome)
		if !outcome.Kept() {
			continue
		}
		comb.Groups = append(comb.Groups, schema.GroupEntry{Name: feeling.Groups[i].Name, Result: result})
		comb.MaxClicks = max(comb.MaxClicks, maxClicks)
	}

	if comb.IsEmpty() {
		comb = schema.Combination{}
		rep.Reason = schema.SkipEmptyCombination
	}
	return comb, rep
}

// computeGroup derives one group's result and the largest click count among its points.
func computeGroup(g *extract.Group, xi, yi int, pointMetric []bool, opts Options) (res schema.GroupResult, maxClicks int, out Outcome) {
	out = Outcome{Group: g.Name}
	defer func() {
		if r := recover(); r != nil {
			res, maxClicks = schema.GroupResult{}, 0
			out.Reason = schema.SkipGroupError
			out.Error = fmt.Sprint(r)
			out.Points = 0
		}
	}()

	cx, cy := g.Center[xi], g.Center[yi]
	if missing(cx) || missing(cy) {
		out.Reason = schema.SkipMissingCenter
		return res, 0, out
	}
	if g.Color == "" {
		out.Reason = schema.SkipGroupError
		out.Error = fmt.Sprintf("no color configured for group %s", g.Name)
		return res, 0, out
	}

	res = schema.GroupResult{CenterX: cx, CenterY: cy, Color: g.Color}
	total := 0
	for _, p := range g.Points {
		x, okX := axisValue(p, xi, cx, pointMetric[xi])
		y, okY := axisValue(p, yi, cy, pointMetric[yi])
		if !okX || !okY {
			continue
		}
		res.DetailX = append(res.DetailX, x)
		res.DetailY = append(res.DetailY, y)
		res.DetailColor = append(res.DetailColor, p.Shade)
		res.DetailSize = append(res.DetailSize, opts.PointSize(p.Clicks))
		res.DetailChoice = append(res.DetailChoice, p.Clicks)
		res.DetailNames = append(res.DetailNames, p.ID)
		total += p.Clicks
		maxClicks = max(maxClicks, p.Clicks)
	}

	if res.Len() == 0 {
		out.Reason = schema.SkipEmptyIntersection
		return schema.GroupResult{}, 0, out
	}
	res.MarkerSize = opts.MarkerSize(total)
	res.Choice = total
	out.Points = res.Len()
	return res, maxClicks, out
}

// axisValue is the point's own value when the metric is tracked per point,
// otherwise the group center repeated for every point.
func axisValue(p extract.Point, metric int, center float64, perPoint bool) (float64, bool) {
	if !perPoint {
		return center, true
	}
	v := p.Values[metric]
	return v, !missing(v)
}

func missing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
