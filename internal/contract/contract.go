// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/gazeplot/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetBuildStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking build runs.
type RunStore interface {
	// BeginRun records a new build run and returns its unique ID
	BeginRun(startTime time.Time, fingerprint string, configParams map[string]any) (string, error)

	// EndRun updates the build run with completion data
	EndRun(runID string, endTime time.Time, cacheHit bool, summary schema.BuildSummary) error

	// ListRuns returns every recorded run, oldest first
	ListRuns() ([]schema.BuildRunRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// Close closes the underlying connection
	Close() error
}
