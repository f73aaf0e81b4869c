package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/internal/parquet"
	"github.com/huangsam/gazeplot/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// metricsRenderModel is the catalog as it is printed. Summaries are nil unless requested.
type metricsRenderModel struct {
	Metrics   []schema.MetricID      `json:"metrics" yaml:"metrics"`
	Summaries []schema.MetricSummary `json:"summaries,omitempty" yaml:"summaries,omitempty"`
}

// PrintMetrics outputs the metric catalog, dispatching based on the output format configured.
func PrintMetrics(metrics []schema.MetricID, summaries []schema.MetricSummary, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		if summaries == nil {
			summaries = make([]schema.MetricSummary, len(metrics))
			for i, m := range metrics {
				summaries[i] = schema.MetricSummary{Metric: m}
			}
		}
		return writeParquetFile(cfg.OutputFile, parquet.MetricSummaries(summaries))
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteMetrics(w, metrics, summaries, cfg)
	}, fmt.Sprintf("Wrote %s", cfg.Output))
}

// WriteMetrics renders the metric catalog to w.
func WriteMetrics(w io.Writer, metrics []schema.MetricID, summaries []schema.MetricSummary, cfg *contract.Config) error {
	model := metricsRenderModel{Metrics: metrics, Summaries: summaries}
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeJSON(w, model)
	case schema.YAMLOut:
		err = writeYAML(w, model)
	case schema.CSVOut:
		err = writeMetricsCSV(w, model, fmtFloat, intFmt)
	default:
		err = writeMetricsTable(w, model, cfg, fmtFloat, intFmt)
	}
	if err != nil {
		return fmt.Errorf("error writing metrics output: %w", err)
	}
	return nil
}

func writeMetricsCSV(w io.Writer, model metricsRenderModel, fmtFloat func(float64) string, intFmt string) error {
	if model.Summaries == nil {
		return writeCSVWithHeader(w, []string{"index", "metric"}, func(cw *csv.Writer) error {
			for i, m := range model.Metrics {
				if err := cw.Write([]string{strconv.Itoa(i + 1), string(m)}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	header := []string{"metric", "count", "mean", "stddev", "min", "max", "point_level"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range model.Summaries {
			row := []string{
				string(s.Metric),
				fmt.Sprintf(intFmt, s.Count),
				fmtFloat(s.Mean),
				fmtFloat(s.StdDev),
				fmtFloat(s.Min),
				fmtFloat(s.Max),
				strconv.FormatBool(s.Points),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeMetricsTable(w io.Writer, model metricsRenderModel, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	// Count, mean, stddev, min, max and the point flag take roughly 70 columns
	labelWidth := getMaxLabelWidth(cfg, 70)

	var data [][]string
	if model.Summaries == nil {
		table.Header([]string{"#", "Metric"})
		for i, m := range model.Metrics {
			data = append(data, []string{strconv.Itoa(i + 1), contract.TruncateLabel(string(m), getMaxLabelWidth(cfg, 10))})
		}
	} else {
		table.Header([]string{"Metric", "Count", "Mean", "StdDev", "Min", "Max", "Points"})
		for _, s := range model.Summaries {
			points := "no"
			if s.Points {
				points = "yes"
			}
			data = append(data, []string{
				contract.TruncateLabel(string(s.Metric), labelWidth),
				fmt.Sprintf(intFmt, s.Count),
				fmtFloat(s.Mean),
				fmtFloat(s.StdDev),
				fmtFloat(s.Min),
				fmtFloat(s.Max),
				points,
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d metrics, %d combinations per feeling\n", len(model.Metrics), len(model.Metrics)*len(model.Metrics))
	return err
}
