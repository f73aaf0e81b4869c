// Package outwriter renders catalogs, build results, views and store status in
// text, CSV, JSON, YAML and Parquet.
package outwriter

import (
	"time"

	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/schema"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteMetrics prints the metric catalog, with summaries when they are given.
func (ow *OutWriter) WriteMetrics(metrics []schema.MetricID, summaries []schema.MetricSummary, cfg *contract.Config) error {
	return PrintMetrics(metrics, summaries, cfg)
}

// WriteBuild prints the outcome of a build.
func (ow *OutWriter) WriteBuild(out schema.BuildOutput, cfg *contract.Config, duration time.Duration) error {
	return PrintBuild(out, cfg, duration)
}

// WriteView prints a rendered navigation view.
func (ow *OutWriter) WriteView(view schema.View, cfg *contract.Config) error {
	return PrintView(view, cfg)
}

// WriteCacheStatus prints the build cache status.
func (ow *OutWriter) WriteCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	return PrintCacheStatus(status, cfg)
}

// WriteRunStatus prints the run store status.
func (ow *OutWriter) WriteRunStatus(status schema.RunStatus, cfg *contract.Config) error {
	return PrintRunStatus(status, cfg)
}

// WriteRuns prints the run history.
func (ow *OutWriter) WriteRuns(runs []schema.BuildRunRecord, cfg *contract.Config) error {
	return PrintRuns(runs, cfg)
}
