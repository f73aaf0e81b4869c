package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintBuild outputs the outcome of a build, dispatching based on the output format configured.
func PrintBuild(out schema.BuildOutput, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.ParquetOut {
		return fmt.Errorf("parquet output is not available for build; use the export command")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteBuild(w, out, cfg, duration)
	}, fmt.Sprintf("Wrote %s", cfg.Output))
}

// WriteBuild renders a build outcome to w.
func WriteBuild(w io.Writer, out schema.BuildOutput, cfg *contract.Config, duration time.Duration) error {
	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeJSON(w, out)
	case schema.YAMLOut:
		err = writeYAML(w, out)
	case schema.CSVOut:
		err = writeBuildCSV(w, out)
	default:
		err = writeBuildText(w, out, cfg, duration)
	}
	if err != nil {
		return fmt.Errorf("error writing build output: %w", err)
	}
	return nil
}

// degraded reports whether a combination lost anything worth listing.
func degraded(r schema.CombinationReport) bool {
	return r.Reason != schema.SkipNone || r.FallbackX || r.FallbackY || len(r.Dropped()) > 0
}

// droppedSummary renders dropped groups as "Reds:missing_center|Blues:group_error".
func droppedSummary(r schema.CombinationReport) string {
	var parts []string
	for _, g := range r.Dropped() {
		parts = append(parts, fmt.Sprintf("%s:%s", g.Group, g.Reason))
	}
	return strings.Join(parts, "|")
}

func fallbackSummary(r schema.CombinationReport) string {
	switch {
	case r.FallbackX && r.FallbackY:
		return "x,y"
	case r.FallbackX:
		return "x"
	case r.FallbackY:
		return "y"
	}
	return ""
}

// writeBuildCSV writes one row per combination report, or the summary counts when
// no report was requested.
func writeBuildCSV(w io.Writer, out schema.BuildOutput) error {
	if out.Reports == nil {
		header := []string{"run_id", "fingerprint", "cache_hit", "feelings", "metrics", "combinations", "empty_combinations", "failed_combinations", "fallback_combinations"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			s := out.Summary
			return cw.Write([]string{
				out.RunID,
				out.Fingerprint,
				strconv.FormatBool(out.CacheHit),
				strconv.Itoa(s.Feelings),
				strconv.Itoa(s.Metrics),
				strconv.Itoa(s.Combinations),
				strconv.Itoa(s.EmptyCombinations),
				strconv.Itoa(s.FailedCombos),
				strconv.Itoa(s.FallbackCombos),
			})
		})
	}

	header := []string{"feeling", "x", "y", "reason", "fallback", "kept_groups", "dropped_groups", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range out.Reports {
			row := []string{
				string(r.Feeling),
				string(r.X),
				string(r.Y),
				string(r.Reason),
				fallbackSummary(r),
				strconv.Itoa(len(r.Groups) - len(r.Dropped())),
				droppedSummary(r),
				r.Error,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeBuildText(w io.Writer, out schema.BuildOutput, cfg *contract.Config, duration time.Duration) error {
	s := out.Summary
	source := "computed"
	if out.CacheHit {
		source = color.GreenString("cache hit")
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Feelings", "Metrics", "Combinations", "Empty", "Failed", "Fallback"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk([][]string{{
		strconv.Itoa(s.Feelings),
		strconv.Itoa(s.Metrics),
		strconv.Itoa(s.Combinations),
		strconv.Itoa(s.EmptyCombinations),
		strconv.Itoa(s.FailedCombos),
		strconv.Itoa(s.FallbackCombos),
	}}); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(s.DroppedGroups) > 0 {
		var parts []string
		for _, reason := range slices.Sorted(maps.Keys(s.DroppedGroups)) {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, s.DroppedGroups[reason]))
		}
		_, _ = fmt.Fprintf(w, "Dropped groups: %s\n", strings.Join(parts, ", "))
	}

	if out.Reports != nil {
		if err := writeReportTable(w, out.Reports, cfg); err != nil {
			return err
		}
	}

	if out.Artifact != "" {
		_, _ = fmt.Fprintf(w, "Artifact: %s\n", out.Artifact)
	}
	if out.RunID != "" {
		_, _ = fmt.Fprintf(w, "Run: %s\n", out.RunID)
	}
	_, err := fmt.Fprintf(w, "Build %s in %v with %d workers. Cache backend: %s\n", source, duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// writeReportTable lists only the combinations that degraded.
func writeReportTable(w io.Writer, reports []schema.CombinationReport, cfg *contract.Config) error {
	var data [][]string
	labelWidth := getMaxLabelWidth(cfg, 60) / 2
	for _, r := range reports {
		if !degraded(r) {
			continue
		}
		reason := string(r.Reason)
		if r.Error != "" {
			reason = fmt.Sprintf("%s (%s)", reason, r.Error)
		}
		data = append(data, []string{
			string(r.Feeling),
			contract.TruncateLabel(string(r.X), max(labelWidth, 8)),
			contract.TruncateLabel(string(r.Y), max(labelWidth, 8)),
			reason,
			fallbackSummary(r),
			strings.ReplaceAll(droppedSummary(r), "|", " "),
		})
	}
	if len(data) == 0 {
		_, err := fmt.Fprintln(w, "Every combination kept all of its groups")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Feeling", "X", "Y", "Reason", "Fallback", "Dropped"})
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d combinations degraded\n", len(data), len(reports))
	return err
}
