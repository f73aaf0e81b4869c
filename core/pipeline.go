package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/gazeplot/core/catalog"
	"github.com/huangsam/gazeplot/core/engine"
	"github.com/huangsam/gazeplot/core/extract"
	"github.com/huangsam/gazeplot/core/store"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/internal/loader"
	"github.com/huangsam/gazeplot/schema"
)

// BuildPipeline produces the lookup store using a builder pattern. Steps run in
// order; once a store is restored from the cache the remaining compute steps are no-ops.
type BuildPipeline struct {
	ctx         context.Context
	cfg         *contract.Config
	mgr         contract.CacheManager
	start       time.Time
	fingerprint string
	cacheKey    string
	runID       string
	dataset     *loader.Dataset
	metrics     []schema.MetricID
	model       *extract.Model
	store       *store.Store
	cacheHit    bool
}

// NewBuildPipeline creates a new pipeline for one build.
func NewBuildPipeline(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) *BuildPipeline {
	return &BuildPipeline{ctx: ctx, cfg: cfg, mgr: mgr, start: time.Now()}
}

// engineOptions picks the sizing constants out of the config.
func engineOptions(cfg *contract.Config) engine.Options {
	opts := engine.DefaultOptions()
	if cfg.Scale > 0 {
		opts.Scale = cfg.Scale
	}
	if cfg.MinMarkerSize > 0 {
		opts.MinMarkerSize = cfg.MinMarkerSize
	}
	return opts
}

func (b *BuildPipeline) buildStore() contract.CacheStore {
	if b.mgr == nil {
		return nil
	}
	return b.mgr.GetBuildStore()
}

func (b *BuildPipeline) runStore() contract.RunStore {
	if b.mgr == nil {
		return nil
	}
	return b.mgr.GetRunStore()
}

// Fingerprint hashes the inputs and settings. Unreadable inputs abort the build here.
func (b *BuildPipeline) Fingerprint() (*BuildPipeline, error) {
	fp, err := loader.Fingerprint(b.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint inputs: %w", err)
	}
	b.fingerprint = fp
	b.cacheKey = generateCacheKey(fp)
	return b, nil
}

// BeginRun records the start of the build in the run store, if one is configured.
func (b *BuildPipeline) BeginRun() *BuildPipeline {
	runs := b.runStore()
	if runs == nil {
		return b
	}
	configParams := map[string]any{
		"groups_file":     b.cfg.GroupsFile,
		"points_file":     b.cfg.PointsFile,
		"choices_file":    b.cfg.ChoicesFile,
		"palette_file":    b.cfg.PaletteFile,
		"detail_marker":   b.cfg.DetailMarker,
		"scale":           b.cfg.Scale,
		"min_marker_size": b.cfg.MinMarkerSize,
		"workers":         b.cfg.Workers,
	}
	runID, err := runs.BeginRun(b.start, b.fingerprint, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return b
	}
	b.runID = runID
	return b
}

// RestoreFromCache looks the fingerprint up in the build cache.
func (b *BuildPipeline) RestoreFromCache() *BuildPipeline {
	cache := b.buildStore()
	if cache == nil {
		return b
	}
	if s := checkCacheHit(cache, b.cacheKey); s != nil {
		b.store = s
		b.cacheHit = true
		b.metrics = s.Metrics()
	}
	return b
}

// Load reads the input tables.
func (b *BuildPipeline) Load() (*BuildPipeline, error) {
	if b.store != nil {
		return b, nil
	}
	if !shouldSuppressHeader(b.ctx) {
		contract.LogInfo("Loading %s, %s and %s", b.cfg.GroupsFile, b.cfg.PointsFile, b.cfg.ChoicesFile)
	}
	ds, err := loader.LoadDataset(b.ctx, b.cfg)
	if err != nil {
		return nil, err
	}
	b.dataset = ds
	return b, nil
}

// Catalog discovers the metrics from the first feeling's aggregate rows.
func (b *BuildPipeline) Catalog() *BuildPipeline {
	if b.store != nil {
		return b
	}
	b.metrics = discoverMetrics(b.dataset, b.cfg.Columns)
	return b
}

// Parse turns the tables into the typed model shared by every combination.
func (b *BuildPipeline) Parse() *BuildPipeline {
	if b.store != nil {
		return b
	}
	b.model = extract.Parse(b.dataset, b.metrics, extract.OptionsFromConfig(b.cfg))
	return b
}

// Compute fills the lookup store with every combination.
func (b *BuildPipeline) Compute() (*BuildPipeline, error) {
	if b.store != nil {
		return b, nil
	}
	quiet := shouldSuppressHeader(b.ctx)
	if !quiet {
		n := len(b.model.Feelings) * len(b.metrics) * len(b.metrics)
		contract.LogInfo("Computing %d combinations (%d feelings, %d metrics) with %d workers",
			n, len(b.model.Feelings), len(b.metrics), b.cfg.Workers)
	}

	step := max(b.cfg.ProgressStep, 1)
	s, err := store.Build(b.ctx, b.model, store.Options{
		Engine:  engineOptions(b.cfg),
		Workers: b.cfg.Workers,
		Progress: func(done, total int) {
			if !quiet && (done%step == 0 || done == total) {
				contract.LogInfo("Computed %d/%d combinations", done, total)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	b.store = s
	return b, nil
}

// Persist writes a freshly computed store to the build cache.
func (b *BuildPipeline) Persist() *BuildPipeline {
	cache := b.buildStore()
	if cache == nil || b.cacheHit || b.store == nil {
		return b
	}
	storeInCache(cache, b.cacheKey, b.store)
	return b
}

// EndRun completes the run record.
func (b *BuildPipeline) EndRun() *BuildPipeline {
	runs := b.runStore()
	if runs == nil || b.runID == "" {
		return b
	}
	var summary schema.BuildSummary
	if b.store != nil {
		summary = b.store.Summary()
	}
	if err := runs.EndRun(b.runID, time.Now(), b.cacheHit, summary); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
	return b
}

// Store returns the built store.
func (b *BuildPipeline) Store() *store.Store {
	return b.store
}

// Output describes the build for the writers.
func (b *BuildPipeline) Output() schema.BuildOutput {
	out := schema.BuildOutput{
		RunID:       b.runID,
		Fingerprint: b.fingerprint,
		CacheHit:    b.cacheHit,
		DurationMs:  time.Since(b.start).Milliseconds(),
		Summary:     b.store.Summary(),
	}
	if b.cfg.Report {
		out.Reports = b.store.Report()
	}
	return out
}

// discoverMetrics runs the catalog over the first feeling of the aggregate table.
func discoverMetrics(ds *loader.Dataset, cols contract.Columns) []schema.MetricID {
	feelings, rows := extract.Feelings(ds.Groups, cols.Feeling)
	if len(feelings) == 0 {
		return nil
	}
	return catalog.Discover(ds.Groups, rows[feelings[0]], cols.Feeling, cols.Group)
}

// runBuildPipeline executes every step and returns the finished pipeline.
func runBuildPipeline(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*BuildPipeline, error) {
	b, err := NewBuildPipeline(ctx, cfg, mgr).Fingerprint()
	if err != nil {
		return nil, err
	}
	b = b.BeginRun().RestoreFromCache()
	if _, err = b.Load(); err != nil {
		b.EndRun()
		return nil, err
	}
	if _, err = b.Catalog().Parse().Compute(); err != nil {
		b.EndRun()
		return nil, err
	}
	return b.Persist().EndRun(), nil
}
