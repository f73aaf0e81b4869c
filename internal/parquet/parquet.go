// Package parquet exports lookup store points, metric summaries and build runs
// as Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/gazeplot/schema"
	"github.com/parquet-go/parquet-go"
)

// PointRow is one point of one group in one (feeling, x, y) combination.
// Points of the same group repeat the group columns.
type PointRow struct {
	Feeling    string  `parquet:"feeling,dict,snappy"`
	X          string  `parquet:"x_metric,dict,snappy"`
	Y          string  `parquet:"y_metric,dict,snappy"`
	Group      string  `parquet:"group,dict,snappy"`
	GroupColor string  `parquet:"group_color,dict,snappy"`
	CenterX    float64 `parquet:"center_x,snappy"`
	CenterY    float64 `parquet:"center_y,snappy"`
	MarkerSize int32   `parquet:"marker_size,snappy"`
	Choice     int32   `parquet:"group_choice,snappy"`
	Point      string  `parquet:"point,snappy"`
	XValue     float64 `parquet:"x_value,snappy"`
	YValue     float64 `parquet:"y_value,snappy"`
	Size       int32   `parquet:"size,snappy"`
	Clicks     int32   `parquet:"clicks,snappy"`
	Color      string  `parquet:"color,dict,snappy"`
}

// MetricSummary is one row of the metric catalog with its spread.
type MetricSummary struct {
	Metric     string  `parquet:"metric,snappy"`
	Count      int32   `parquet:"count,snappy"`
	Mean       float64 `parquet:"mean,snappy"`
	StdDev     float64 `parquet:"stddev,snappy"`
	Min        float64 `parquet:"min,snappy"`
	Max        float64 `parquet:"max,snappy"`
	PointLevel bool    `parquet:"point_level,snappy"`
}

// BuildRun mirrors a row of the gazeplot_build_runs table.
type BuildRun struct {
	RunID             string     `parquet:"run_id,snappy"`
	StartTime         time.Time  `parquet:"start_time,snappy"`
	EndTime           *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs     *int64     `parquet:"run_duration_ms,optional,snappy"`
	Fingerprint       string     `parquet:"fingerprint,snappy"`
	CacheHit          bool       `parquet:"cache_hit,snappy"`
	Feelings          int32      `parquet:"feelings,snappy"`
	Metrics           int32      `parquet:"metrics,snappy"`
	Combinations      int32      `parquet:"combinations,snappy"`
	EmptyCombinations int32      `parquet:"empty_combinations,snappy"`
	DroppedGroups     int32      `parquet:"dropped_groups,snappy"`
	ConfigParams      *string    `parquet:"config_params,optional,snappy"`
}

// PointRows flattens one combination. The empty sentinel yields no rows.
func PointRows(f schema.FeelingID, x, y schema.MetricID, c schema.Combination) []PointRow {
	var rows []PointRow
	for _, g := range c.Groups {
		r := g.Result
		for i := range r.DetailNames {
			rows = append(rows, PointRow{
				Feeling:    string(f),
				X:          string(x),
				Y:          string(y),
				Group:      string(g.Name),
				GroupColor: r.Color,
				CenterX:    r.CenterX,
				CenterY:    r.CenterY,
				MarkerSize: int32(r.MarkerSize),
				Choice:     int32(r.Choice),
				Point:      r.DetailNames[i],
				XValue:     r.DetailX[i],
				YValue:     r.DetailY[i],
				Size:       int32(r.DetailSize[i]),
				Clicks:     int32(r.DetailChoice[i]),
				Color:      r.DetailColor[i],
			})
		}
	}
	return rows
}

// MetricSummaries converts catalog summaries to rows.
func MetricSummaries(summaries []schema.MetricSummary) []MetricSummary {
	rows := make([]MetricSummary, len(summaries))
	for i, s := range summaries {
		rows[i] = MetricSummary{
			Metric:     string(s.Metric),
			Count:      int32(s.Count),
			Mean:       s.Mean,
			StdDev:     s.StdDev,
			Min:        s.Min,
			Max:        s.Max,
			PointLevel: s.Points,
		}
	}
	return rows
}

// BuildRuns converts run history records to rows.
func BuildRuns(records []schema.BuildRunRecord) []BuildRun {
	rows := make([]BuildRun, len(records))
	for i, r := range records {
		rows[i] = BuildRun{
			RunID:             r.RunID,
			StartTime:         r.StartTime,
			EndTime:           r.EndTime,
			RunDurationMs:     r.RunDurationMs,
			Fingerprint:       r.Fingerprint,
			CacheHit:          r.CacheHit,
			Feelings:          int32(r.Feelings),
			Metrics:           int32(r.Metrics),
			Combinations:      int32(r.Combinations),
			EmptyCombinations: int32(r.EmptyCombinations),
			DroppedGroups:     int32(r.DroppedGroups),
			ConfigParams:      r.ConfigParams,
		}
	}
	return rows
}

// Write encodes rows to w. The schema is derived from the struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](outputPath string, rows []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// PointWriter streams point rows into one file, one combination at a time.
type PointWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[PointRow]
	rows   int
}

// NewPointWriter creates outputPath for streaming point rows.
func NewPointWriter(outputPath string) (*PointWriter, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &PointWriter{file: file, writer: parquet.NewGenericWriter[PointRow](file)}, nil
}

// Add appends the points of one combination.
func (pw *PointWriter) Add(f schema.FeelingID, x, y schema.MetricID, c schema.Combination) error {
	rows := PointRows(f, x, y, c)
	if len(rows) == 0 {
		return nil
	}
	n, err := pw.writer.Write(rows)
	pw.rows += n
	if err != nil {
		return fmt.Errorf("failed to write points of %s/%s/%s: %w", f, x, y, err)
	}
	return nil
}

// Rows returns how many rows were written so far.
func (pw *PointWriter) Rows() int {
	return pw.rows
}

// Close flushes the footer and closes the file.
func (pw *PointWriter) Close() error {
	if err := pw.writer.Close(); err != nil {
		_ = pw.file.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return pw.file.Close()
}
