// Package store holds every precomputed combination in a write-once arena.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/huangsam/gazeplot/core/engine"
	"github.com/huangsam/gazeplot/core/extract"
	"github.com/huangsam/gazeplot/schema"
)

// ErrUnknownKey is returned by Lookup when a feeling or metric is not in the store.
var ErrUnknownKey = errors.New("unknown key")

// Store maps (feeling, x, y) to its combination. Slot (f*M+x)*M+y holds the
// combination of feeling f with metrics x and y. A Store is never mutated
// after Build or Decode returns it, so concurrent readers need no locking.
type Store struct {
	feelings []schema.FeelingID
	metrics  []schema.MetricID
	fIndex   map[schema.FeelingID]int
	mIndex   map[schema.MetricID]int
	results  []schema.Combination
	reports  []schema.CombinationReport
}

// Options control a build.
type Options struct {
	Engine   engine.Options
	Workers  int
	Progress func(done, total int) // called from a single goroutine, may be nil
}

func newStore(feelings []schema.FeelingID, metrics []schema.MetricID) *Store {
	s := &Store{
		feelings: feelings,
		metrics:  metrics,
		fIndex:   make(map[schema.FeelingID]int, len(feelings)),
		mIndex:   make(map[schema.MetricID]int, len(metrics)),
	}
	for i, f := range feelings {
		s.fIndex[f] = i
	}
	for i, m := range metrics {
		s.mIndex[m] = i
	}
	n := len(feelings) * len(metrics) * len(metrics)
	s.results = make([]schema.Combination, n)
	return s
}

func (s *Store) slot(fi, xi, yi int) int {
	m := len(s.metrics)
	return (fi*m+xi)*m + yi
}

func (s *Store) coords(slot int) (fi, xi, yi int) {
	m := len(s.metrics)
	return slot / (m * m), (slot / m) % m, slot % m
}

// Build computes every (feeling, x, y) combination of the model with a pool of
// workers. Each worker writes only its own slots. Nothing is returned when ctx
// is cancelled before the build completes.
func Build(ctx context.Context, model *extract.Model, opts Options) (*Store, error) {
	s := newStore(model.FeelingIDs(), model.Metrics)
	total := len(s.results)
	s.reports = make([]schema.CombinationReport, total)
	if total == 0 {
		return s, nil
	}

	slotCh := make(chan int, total)
	doneCh := make(chan struct{}, total)
	progressDone := make(chan struct{})
	var wg sync.WaitGroup

	go func() {
		defer close(progressDone)
		done := 0
		for range doneCh {
			done++
			if opts.Progress != nil {
				opts.Progress(done, total)
			}
		}
	}()

	for range max(opts.Workers, 1) {
		wg.Go(func() {
			for slot := range slotCh {
				if ctx.Err() != nil {
					continue
				}
				fi, xi, yi := s.coords(slot)
				s.results[slot], s.reports[slot] = engine.Compute(model, fi, xi, yi, opts.Engine)
				doneCh <- struct{}{}
			}
		})
	}

	for slot := range total {
		slotCh <- slot
	}
	close(slotCh)

	wg.Wait()
	close(doneCh)
	<-progressDone

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build cancelled: %w", err)
	}
	return s, nil
}

// Feelings returns the feelings in store order.
func (s *Store) Feelings() []schema.FeelingID {
	return s.feelings
}

// Metrics returns the metric catalog in store order.
func (s *Store) Metrics() []schema.MetricID {
	return s.metrics
}

// Len returns the number of combinations, |feelings| * |metrics|^2.
func (s *Store) Len() int {
	return len(s.results)
}

// HasFeeling reports whether f is a known feeling.
func (s *Store) HasFeeling(f schema.FeelingID) bool {
	_, ok := s.fIndex[f]
	return ok
}

// HasMetric reports whether m is in the catalog.
func (s *Store) HasMetric(m schema.MetricID) bool {
	_, ok := s.mIndex[m]
	return ok
}

// Get returns the combination for (f, x, y).
func (s *Store) Get(f schema.FeelingID, x, y schema.MetricID) (schema.Combination, bool) {
	fi, okF := s.fIndex[f]
	xi, okX := s.mIndex[x]
	yi, okY := s.mIndex[y]
	if !okF || !okX || !okY {
		return schema.Combination{}, false
	}
	return s.results[s.slot(fi, xi, yi)], true
}

// Lookup is Get for untyped keys, naming the first unknown key in its error.
func (s *Store) Lookup(feeling, x, y string) (schema.Combination, error) {
	if !s.HasFeeling(schema.FeelingID(feeling)) {
		return schema.Combination{}, fmt.Errorf("feeling %q: %w", feeling, ErrUnknownKey)
	}
	for _, m := range []string{x, y} {
		if !s.HasMetric(schema.MetricID(m)) {
			return schema.Combination{}, fmt.Errorf("metric %q: %w", m, ErrUnknownKey)
		}
	}
	c, _ := s.Get(schema.FeelingID(feeling), schema.MetricID(x), schema.MetricID(y))
	return c, nil
}

// Range calls fn for every combination in store order until fn returns false.
func (s *Store) Range(fn func(f schema.FeelingID, x, y schema.MetricID, c schema.Combination) bool) {
	for slot, c := range s.results {
		fi, xi, yi := s.coords(slot)
		if !fn(s.feelings[fi], s.metrics[xi], s.metrics[yi], c) {
			return
		}
	}
}

// Report returns the per-combination build reports in store order. It is nil
// for a store decoded without reports.
func (s *Store) Report() []schema.CombinationReport {
	return s.reports
}

// Summary folds the build reports.
func (s *Store) Summary() schema.BuildSummary {
	return schema.Summarize(len(s.feelings), len(s.metrics), s.reports)
}
