// Package core runs the build pipeline and the commands that read its lookup store.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/gazeplot/core/catalog"
	"github.com/huangsam/gazeplot/core/nav"
	"github.com/huangsam/gazeplot/core/store"
	"github.com/huangsam/gazeplot/internal/artifact"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/internal/loader"
	"github.com/huangsam/gazeplot/internal/outwriter"
	"github.com/huangsam/gazeplot/internal/parquet"
	"github.com/huangsam/gazeplot/internal/snapshot"
	"github.com/huangsam/gazeplot/internal/tui"
	"github.com/huangsam/gazeplot/schema"
)

// LoadStore builds the lookup store, or restores it from the build cache.
func LoadStore(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*store.Store, schema.BuildOutput, error) {
	b, err := runBuildPipeline(ctx, cfg, mgr)
	if err != nil {
		return nil, schema.BuildOutput{}, err
	}
	return b.Store(), b.Output(), nil
}

// ExecuteBuild builds the store, writes the HTML artifact and prints the build summary.
// With cfg.Watch it keeps rebuilding whenever an input file changes until ctx is done.
func ExecuteBuild(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.Watch {
		return watchInputs(ctx, cfg, func(ctx context.Context) error {
			return buildOnce(ctx, cfg, mgr)
		})
	}
	return buildOnce(ctx, cfg, mgr)
}

func buildOnce(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	s, out, err := LoadStore(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	out.Artifact = cfg.OutPath(contract.DefaultArtifactFile)
	if err := artifact.WriteFile(out.Artifact, s, artifactOptions(cfg, s, out)); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return outwriter.NewOutWriter().WriteBuild(out, cfg, time.Since(start))
}

func artifactOptions(cfg *contract.Config, s *store.Store, out schema.BuildOutput) artifact.Options {
	return artifact.Options{
		Title:       cfg.Title,
		Initial:     nav.Initial(s, navOptions(cfg)),
		Sizing:      engineOptions(cfg),
		RunID:       out.RunID,
		Fingerprint: out.Fingerprint,
		Generated:   time.Now().UTC(),
	}
}

// ExecuteMetrics prints the metric catalog, with per-metric summaries when requested.
func ExecuteMetrics(ctx context.Context, cfg *contract.Config) error {
	ds, err := loader.LoadDataset(ctx, cfg)
	if err != nil {
		return err
	}
	metrics := discoverMetrics(ds, cfg.Columns)
	var summaries []schema.MetricSummary
	if cfg.Summary {
		summaries = catalog.Summarize(ds.Groups, ds.Points, metrics)
	}
	return outwriter.NewOutWriter().WriteMetrics(metrics, summaries, cfg)
}

// navOptions starts navigation on the configured feeling and default axes.
func navOptions(cfg *contract.Config) nav.Options {
	return nav.Options{Feeling: cfg.Feeling, X: cfg.DefaultX, Y: cfg.DefaultY, Sizing: engineOptions(cfg)}
}

// SelectView drives a fresh machine to the configured feeling, axes and group.
// Unknown keys are reported instead of silently falling back.
func SelectView(s *store.Store, cfg *contract.Config) (*nav.Machine, error) {
	m := nav.New(s, navOptions(cfg))
	if cfg.Feeling != "" {
		if err := m.SetFeeling(cfg.Feeling); err != nil {
			return nil, err
		}
	}
	if cfg.ViewX != "" {
		if err := m.SetX(cfg.ViewX); err != nil {
			return nil, err
		}
	}
	if cfg.ViewY != "" {
		if err := m.SetY(cfg.ViewY); err != nil {
			return nil, err
		}
	}
	if cfg.Group != "" {
		if err := m.SelectGroup(cfg.Group); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ExecuteView prints one rendered view of the store.
func ExecuteView(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	s, _, err := LoadStore(WithSuppressHeader(ctx), cfg, mgr)
	if err != nil {
		return err
	}
	m, err := SelectView(s, cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteView(m.View(), cfg)
}

// ExecuteSnapshot renders one view to a static HTML chart or a PNG image.
func ExecuteSnapshot(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	s, _, err := LoadStore(WithSuppressHeader(ctx), cfg, mgr)
	if err != nil {
		return err
	}
	m, err := SelectView(s, cfg)
	if err != nil {
		return err
	}
	path := cfg.OutPath(fmt.Sprintf("%s.%s", contract.DefaultSnapshotBase, cfg.SnapshotFormat))
	if err := snapshot.WriteFile(path, cfg.SnapshotFormat, m.View()); err != nil {
		return err
	}
	contract.LogInfo("Wrote %s snapshot to %s", cfg.SnapshotFormat, path)
	return nil
}

// ExecuteExport writes every point of every combination to a Parquet file.
func ExecuteExport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	s, _, err := LoadStore(WithSuppressHeader(ctx), cfg, mgr)
	if err != nil {
		return err
	}
	path := cfg.OutPath(contract.DefaultExportFile)
	rows, err := exportPoints(path, s)
	if err != nil {
		return err
	}
	contract.LogInfo("Exported %d points from %d combinations to %s", rows, s.Len(), path)
	return nil
}

func exportPoints(path string, s *store.Store) (int, error) {
	pw, err := parquet.NewPointWriter(path)
	if err != nil {
		return 0, err
	}
	var addErr error
	s.Range(func(f schema.FeelingID, x, y schema.MetricID, c schema.Combination) bool {
		addErr = pw.Add(f, x, y, c)
		return addErr == nil
	})
	if addErr != nil {
		_ = pw.Close()
		return 0, addErr
	}
	if err := pw.Close(); err != nil {
		return 0, err
	}
	return pw.Rows(), nil
}

// ExecuteExplore opens the terminal explorer on the store.
func ExecuteExplore(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	s, _, err := LoadStore(WithSuppressHeader(ctx), cfg, mgr)
	if err != nil {
		return err
	}
	m, err := SelectView(s, cfg)
	if err != nil {
		return err
	}
	return tui.Run(ctx, m, cfg.Title)
}
