// Package main provides a performance benchmarking tool for the gazeplot CLI.
// It generates synthetic surveys of increasing size, then times `gazeplot build`
// on each of them without a cache and with a SQLite cache (first run cold, the
// rest warm), and writes a CSV summary.
//
// Prerequisites:
// - gazeplot binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic surveys are generated
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Survey      string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// Survey describes the shape of one synthetic survey.
type Survey struct {
	Name           string
	Feelings       int
	Groups         int
	Metrics        int
	PointsPerGroup int
	Clicks         int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Surveys     []Survey
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Surveys: []Survey{
			{Name: "small", Feelings: 4, Groups: 6, Metrics: 6, PointsPerGroup: 10, Clicks: 500},
			{Name: "medium", Feelings: 10, Groups: 12, Metrics: 12, PointsPerGroup: 25, Clicks: 5000},
			{Name: "large", Feelings: 20, Groups: 20, Metrics: 25, PointsPerGroup: 50, Clicks: 50000},
		},
	}

	if _, err := exec.LookPath("gazeplot"); err != nil {
		fmt.Printf("Prerequisites check failed: gazeplot binary not found in PATH\n")
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("gazeplot", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}

	var results []BenchmarkResult
	for _, s := range config.Surveys {
		dir := filepath.Join(config.WorkDir, s.Name)
		if err := generateSurvey(dir, s); err != nil {
			fmt.Printf("Failed to generate survey %s: %v\n", s.Name, err)
			os.Exit(1)
		}
		results = append(results, runBenchmarkSuite(config, s.Name, dir))
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

// generateSurvey writes the three input tables of s into dir.
func generateSurvey(dir string, s Survey) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	groupsHeader := []string{"Feeling", "Group"}
	pointsHeader := []string{"Parent Label", "Label_modified"}
	for m := range s.Metrics {
		groupsHeader = append(groupsHeader, fmt.Sprintf("Metric %02d", m))
		pointsHeader = append(pointsHeader, fmt.Sprintf("Metric %02d", m))
	}

	var groups, points, choices [][]string
	for f := range s.Feelings {
		feeling := fmt.Sprintf("Feeling%02d", f)
		for g := range s.Groups {
			group := fmt.Sprintf("Group%02d", g)
			row := []string{feeling, group}
			for m := range s.Metrics {
				row = append(row, fmt.Sprintf("%d", (f*7+g*13+m*31)%997))
			}
			groups = append(groups, row)

			for p := range s.PointsPerGroup {
				pt := []string{fmt.Sprintf("P2d_%s_%s", feeling, group), fmt.Sprintf("img_G%02dP%03d", g, p)}
				for m := range s.Metrics {
					pt = append(pt, fmt.Sprintf("%d", (f*11+g*17+p*3+m*5)%499))
				}
				points = append(points, pt)
			}
		}
	}
	for c := range s.Clicks {
		choices = append(choices, []string{
			fmt.Sprintf("G%02dP%03d", c%s.Groups, c%s.PointsPerGroup),
			fmt.Sprintf("Feeling%02d", c%s.Feelings),
		})
	}

	tables := map[string][][]string{
		"groups.csv":  append([][]string{groupsHeader}, groups...),
		"points.csv":  append([][]string{pointsHeader}, points...),
		"choices.csv": append([][]string{{"OA Name", "Word_EmotionOrBenefit"}}, choices...),
	}
	for name, records := range tables {
		if err := writeCSV(filepath.Join(dir, name), records); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return file.Close()
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one survey
func runBenchmarkSuite(config BenchmarkConfig, name, dir string) BenchmarkResult {
	fmt.Printf("Benchmarking %s\n", name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dir, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}
	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{Survey: name, NoCacheTime: noCacheAvg, ColdTime: coldTimeStr, WarmTime: warmAvg}
}

// runBenchmark executes gazeplot build multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dir, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"build",
		"--groups-file", "groups.csv",
		"--points-file", "points.csv",
		"--choices-file", "choices.csv",
		"--out", "viz.html",
		"--cache-backend", cacheBackend,
		"--workers", fmt.Sprintf("%d", config.Workers),
		"--color", "no",
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("gazeplot", args...)
		cmd.Dir = dir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Build ") &&
		strings.Contains(outputStr, "with") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("gazeplot_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"survey", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Survey, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Survey, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
