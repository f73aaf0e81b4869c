package schema

// GroupOutcome records what happened to one group in one combination.
type GroupOutcome struct {
	Group  GroupName  `json:"group" yaml:"group"`
	Reason SkipReason `json:"reason,omitempty" yaml:"reason,omitempty"` // empty when the group produced data
	Points int        `json:"points" yaml:"points"`
	Error  string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Kept reports whether the group contributed data.
func (o GroupOutcome) Kept() bool {
	return o.Reason == SkipNone
}

// CombinationReport records how one (feeling, x, y) triple was computed.
// FallbackX and FallbackY are set when a metric was missing at point level
// and the group center was repeated across the group's points instead.
type CombinationReport struct {
	Feeling   FeelingID      `json:"feeling" yaml:"feeling"`
	X         MetricID       `json:"x" yaml:"x"`
	Y         MetricID       `json:"y" yaml:"y"`
	Reason    SkipReason     `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error     string         `json:"error,omitempty" yaml:"error,omitempty"`
	FallbackX bool           `json:"fallback_x,omitempty" yaml:"fallback_x,omitempty"`
	FallbackY bool           `json:"fallback_y,omitempty" yaml:"fallback_y,omitempty"`
	Groups    []GroupOutcome `json:"groups" yaml:"groups"`
}

// Dropped returns the outcomes of groups that contributed nothing.
func (r CombinationReport) Dropped() []GroupOutcome {
	var out []GroupOutcome
	for _, g := range r.Groups {
		if !g.Kept() {
			out = append(out, g)
		}
	}
	return out
}

// BuildSummary aggregates a build report.
type BuildSummary struct {
	Feelings          int            `json:"feelings" yaml:"feelings"`
	Metrics           int            `json:"metrics" yaml:"metrics"`
	Combinations      int            `json:"combinations" yaml:"combinations"`
	EmptyCombinations int            `json:"empty_combinations" yaml:"empty_combinations"`
	FailedCombos      int            `json:"failed_combinations" yaml:"failed_combinations"`
	FallbackCombos    int            `json:"fallback_combinations" yaml:"fallback_combinations"`
	DroppedGroups     map[string]int `json:"dropped_groups" yaml:"dropped_groups"` // keyed by SkipReason
}

// Summarize folds per-combination reports into a BuildSummary.
func Summarize(feelings, metrics int, reports []CombinationReport) BuildSummary {
	s := BuildSummary{
		Feelings:      feelings,
		Metrics:       metrics,
		Combinations:  len(reports),
		DroppedGroups: make(map[string]int),
	}
	for _, r := range reports {
		switch r.Reason {
		case SkipEmptyCombination:
			s.EmptyCombinations++
		case SkipCombinationError:
			s.FailedCombos++
		}
		if r.FallbackX || r.FallbackY {
			s.FallbackCombos++
		}
		for _, g := range r.Dropped() {
			s.DroppedGroups[string(g.Reason)]++
		}
	}
	return s
}

// BuildOutput is what a build reports once the lookup store is ready.
type BuildOutput struct {
	RunID       string              `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Fingerprint string              `json:"fingerprint" yaml:"fingerprint"`
	CacheHit    bool                `json:"cache_hit" yaml:"cache_hit"`
	Artifact    string              `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	DurationMs  int64               `json:"duration_ms" yaml:"duration_ms"`
	Summary     BuildSummary        `json:"summary" yaml:"summary"`
	Reports     []CombinationReport `json:"reports,omitempty" yaml:"reports,omitempty"` // set with --report
}
