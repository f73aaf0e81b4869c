package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/schema"
)

// buildCacheTable is the name of the table for the build cache.
const buildCacheTable = "gazeplot_build_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the build cache and the run store.
// An empty backend leaves the corresponding store unset.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var buildStore contract.CacheStore
		if cacheBackend != "" {
			buildStore, err = NewCacheStore(buildCacheTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize build cache: %w", err)
				return
			}
		}

		var runStore contract.RunStore
		if runsBackend != "" {
			runStore, err = NewRunStore(runsBackend, runsConnStr)
			if err != nil {
				if buildStore != nil {
					_ = buildStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize run store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.build = buildStore
		Manager.runs = runStore
	})

	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.build != nil {
			_ = Manager.build.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearCache removes every cached build for the backend.
// SQLite deletes the database file; MySQL and PostgreSQL drop the table.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, buildCacheTable)
}

// ClearRuns removes the run history for the backend.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	if err := clearBackend(backend, dbFilePath, connStr, buildRunsTable); err != nil {
		return err
	}
	if backend == schema.MySQLBackend || backend == schema.PostgreSQLBackend {
		// Drop the migration bookkeeping too so `runs migrate` starts over.
		return clearBackend(backend, dbFilePath, connStr, "schema_migrations")
	}
	return nil
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr, tableName string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		driverName, _ := driverFor(backend)
		return clearSQLTable(driverName, connStr, quoteTableName(tableName, backend))

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, quotedTableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}
	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTableName)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", quotedTableName, err)
	}
	return nil
}
