package schema

import "time"

// CacheStatus represents the status of the build cache.
type CacheStatus struct {
	Backend         string    `json:"backend" yaml:"backend"`
	Connected       bool      `json:"connected" yaml:"connected"`
	TotalEntries    int       `json:"total_entries" yaml:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time" yaml:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time" yaml:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes" yaml:"table_size_bytes"`
}

// RunStatus represents the status of the run history store.
type RunStatus struct {
	Backend           string    `json:"backend" yaml:"backend"`
	Connected         bool      `json:"connected" yaml:"connected"`
	TotalRuns         int       `json:"total_runs" yaml:"total_runs"`
	LastRunID         string    `json:"last_run_id" yaml:"last_run_id"`
	LastRunTime       time.Time `json:"last_run_time" yaml:"last_run_time"`
	OldestRunTime     time.Time `json:"oldest_run_time" yaml:"oldest_run_time"`
	TotalCombinations int64     `json:"total_combinations" yaml:"total_combinations"`
}

// BuildRunRecord represents a row from the gazeplot_build_runs table.
type BuildRunRecord struct {
	RunID             string     `json:"run_id" yaml:"run_id"`
	StartTime         time.Time  `json:"start_time" yaml:"start_time"`
	EndTime           *time.Time `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	RunDurationMs     *int64     `json:"run_duration_ms,omitempty" yaml:"run_duration_ms,omitempty"`
	Fingerprint       string     `json:"fingerprint" yaml:"fingerprint"`
	CacheHit          bool       `json:"cache_hit" yaml:"cache_hit"`
	Feelings          int        `json:"feelings" yaml:"feelings"`
	Metrics           int        `json:"metrics" yaml:"metrics"`
	Combinations      int        `json:"combinations" yaml:"combinations"`
	EmptyCombinations int        `json:"empty_combinations" yaml:"empty_combinations"`
	DroppedGroups     int        `json:"dropped_groups" yaml:"dropped_groups"`
	ConfigParams      *string    `json:"config_params,omitempty" yaml:"config_params,omitempty"`
}

// MetricSummary describes the spread of one metric over all groups.
type MetricSummary struct {
	Metric MetricID `json:"metric" yaml:"metric"`
	Count  int      `json:"count" yaml:"count"`
	Mean   float64  `json:"mean" yaml:"mean"`
	StdDev float64  `json:"stddev" yaml:"stddev"`
	Min    float64  `json:"min" yaml:"min"`
	Max    float64  `json:"max" yaml:"max"`
	Points bool     `json:"point_level" yaml:"point_level"` // tracked per point as well as per group
}
