package iocache

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/gazeplot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals lets a test run InitStores again.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseCaching()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite cache and runs", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		runsPath := filepath.Join(dir, "runs.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, runsPath))
		assert.NotNil(t, Manager.GetBuildStore())
		assert.NotNil(t, Manager.GetRunStore())
		assert.FileExists(t, cachePath)
		assert.FileExists(t, runsPath)
	})

	t.Run("idempotent", func(t *testing.T) {
		resetGlobals(t)
		path := filepath.Join(t.TempDir(), "cache.db")
		for range 3 {
			assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		}
		CloseCaching()
		CloseCaching()
	})

	t.Run("runs disabled", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
		assert.NotNil(t, Manager.GetBuildStore())
		assert.Nil(t, Manager.GetRunStore())
	})

	t.Run("unsupported backend", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores("oracle", "", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize build cache")
	})
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"simple", "gazeplot_build_cache", false},
		{"leading underscore", "_cache", false},
		{"mixed case with digits", "Cache_2", false},
		{"empty", "", true},
		{"leading digit", "2cache", true},
		{"dash", "build-cache", true},
		{"dot", "db.cache", true},
		{"injection", "cache; DROP TABLE runs; --", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
}

func TestQueryBuilders(t *testing.T) {
	t.Run("placeholder", func(t *testing.T) {
		assert.Equal(t, "?", (&CacheStoreImpl{backend: schema.SQLiteBackend}).getPlaceholder())
		assert.Equal(t, "?", (&CacheStoreImpl{backend: schema.MySQLBackend}).getPlaceholder())
		assert.Equal(t, "$1", (&CacheStoreImpl{backend: schema.PostgreSQLBackend}).getPlaceholder())
	})

	t.Run("upsert", func(t *testing.T) {
		cases := map[schema.DatabaseBackend]string{
			schema.SQLiteBackend:     "INSERT OR REPLACE",
			schema.MySQLBackend:      "ON DUPLICATE KEY UPDATE",
			schema.PostgreSQLBackend: "ON CONFLICT (cache_key) DO UPDATE",
		}
		for backend, want := range cases {
			cs := &CacheStoreImpl{tableName: "c", backend: backend}
			assert.Contains(t, cs.getUpsertQuery(), want, backend)
		}
	})

	t.Run("create table", func(t *testing.T) {
		assert.Contains(t, getCreateTableQuery("c", schema.SQLiteBackend), "cache_value BLOB")
		assert.Contains(t, getCreateTableQuery("c", schema.MySQLBackend), "cache_value LONGBLOB")
		assert.Contains(t, getCreateTableQuery("c", schema.PostgreSQLBackend), "cache_value BYTEA")
	})
}

func TestSQLiteCacheStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(buildCacheTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalEntries)

	now := time.Now().Unix()
	require.NoError(t, store.Set("k1", []byte(`{"a":1}`), 1, now-10))
	require.NoError(t, store.Set("k2", []byte(`{"b":2}`), 1, now))
	require.NoError(t, store.Set("k1", []byte(`{"a":3}`), 2, now-5))

	value, version, ts, err := store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, `{"a":3}`, string(value))
	assert.Equal(t, 2, version)
	assert.Equal(t, now-5, ts)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, now, status.LastEntryTime.Unix())
	assert.Equal(t, now-5, status.OldestEntryTime.Unix())
	assert.Positive(t, status.TableSizeBytes)
}

func TestNoneCacheStore(t *testing.T) {
	store, err := NewCacheStore(buildCacheTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, "")
	assert.Error(t, err)

	_, err = NewCacheStore(buildCacheTable, "oracle", "")
	assert.Error(t, err)
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(buildCacheTable, schema.SQLiteBackend, path)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
		assert.NoFileExists(t, path)

		// Clearing twice is fine.
		assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, ClearCache("oracle", "", ""))
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	mgr := &CacheStoreManager{build: &CacheStoreImpl{backend: schema.NoneBackend}}
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			assert.NotNil(t, mgr.GetBuildStore())
			assert.Nil(t, mgr.GetRunStore())
		})
	}
	wg.Wait()
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	got, err := parseTime(want.Format(time.RFC3339Nano))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = parseTime([]byte("2026-03-01 12:30:00.000000"))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = parseTime(want)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = parseTime("yesterday")
	assert.Error(t, err)
	_, err = parseTime(42)
	assert.Error(t, err)
}
