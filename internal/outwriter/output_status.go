package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/internal/iocache"
	"github.com/huangsam/gazeplot/internal/parquet"
	"github.com/huangsam/gazeplot/schema"
	"github.com/olekukonko/tablewriter"
)

const runTimeLayout = "2006-01-02 15:04:05"

// PrintCacheStatus outputs the build cache status.
func PrintCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	return writeStatus(status, cfg, func(w io.Writer) { iocache.PrintCacheStatus(w, status) })
}

// PrintRunStatus outputs the run store status.
func PrintRunStatus(status schema.RunStatus, cfg *contract.Config) error {
	return writeStatus(status, cfg, func(w io.Writer) { iocache.PrintRunStatus(w, status) })
}

// writeStatus handles the encoded modes and falls back to the plain listing.
func writeStatus(status any, cfg *contract.Config, plain func(io.Writer)) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		switch cfg.Output {
		case schema.JSONOut:
			return writeJSON(w, status)
		case schema.YAMLOut:
			return writeYAML(w, status)
		default:
			plain(w)
			return nil
		}
	}, "Wrote status")
}

// PrintRuns outputs the run history, dispatching based on the output format configured.
func PrintRuns(runs []schema.BuildRunRecord, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		return writeParquetFile(cfg.OutputFile, parquet.BuildRuns(runs))
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRuns(w, runs, cfg)
	}, fmt.Sprintf("Wrote %s", cfg.Output))
}

// WriteRuns renders the run history to w.
func WriteRuns(w io.Writer, runs []schema.BuildRunRecord, cfg *contract.Config) error {
	if runs == nil {
		runs = []schema.BuildRunRecord{}
	}
	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeJSON(w, runs)
	case schema.YAMLOut:
		err = writeYAML(w, runs)
	case schema.CSVOut:
		err = writeRunsCSV(w, runs)
	default:
		err = writeRunsTable(w, runs)
	}
	if err != nil {
		return fmt.Errorf("error writing runs output: %w", err)
	}
	return nil
}

func runDuration(r schema.BuildRunRecord) string {
	if r.RunDurationMs == nil {
		return "running"
	}
	return (time.Duration(*r.RunDurationMs) * time.Millisecond).String()
}

func writeRunsCSV(w io.Writer, runs []schema.BuildRunRecord) error {
	header := []string{"run_id", "start_time", "duration_ms", "fingerprint", "cache_hit", "feelings", "metrics", "combinations", "empty_combinations", "dropped_groups"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range runs {
			duration := ""
			if r.RunDurationMs != nil {
				duration = strconv.FormatInt(*r.RunDurationMs, 10)
			}
			row := []string{
				r.RunID,
				r.StartTime.UTC().Format(time.RFC3339),
				duration,
				r.Fingerprint,
				strconv.FormatBool(r.CacheHit),
				strconv.Itoa(r.Feelings),
				strconv.Itoa(r.Metrics),
				strconv.Itoa(r.Combinations),
				strconv.Itoa(r.EmptyCombinations),
				strconv.Itoa(r.DroppedGroups),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRunsTable(w io.Writer, runs []schema.BuildRunRecord) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "Started", "Duration", "Cache", "Combinations", "Empty", "Dropped"})

	var data [][]string
	for _, r := range runs {
		cache := "miss"
		if r.CacheHit {
			cache = "hit"
		}
		data = append(data, []string{
			r.RunID,
			r.StartTime.Local().Format(runTimeLayout),
			runDuration(r),
			cache,
			strconv.Itoa(r.Combinations),
			strconv.Itoa(r.EmptyCombinations),
			strconv.Itoa(r.DroppedGroups),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d runs\n", len(runs))
	return err
}
