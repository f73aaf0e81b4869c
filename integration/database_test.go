//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/huangsam/gazeplot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// exerciseBackend runs the cache and run history commands against one database.
// Cache and runs share the database but use their own tables, so the two
// connection strings only differ in a harmless parameter.
func exerciseBackend(t *testing.T, backend, cacheConn, runsConn string) {
	t.Setenv("GAZEPLOT_CACHE_BACKEND", backend)
	t.Setenv("GAZEPLOT_CACHE_DB_CONNECT", cacheConn)
	t.Setenv("GAZEPLOT_RUNS_BACKEND", backend)
	t.Setenv("GAZEPLOT_RUNS_DB_CONNECT", runsConn)

	dir, flags := survey(t)

	run(t, dir, "cache", "clear")
	run(t, dir, "runs", "clear")
	run(t, dir, "runs", "migrate")

	first := run(t, dir, append([]string{"build", "--output", "json"}, flags...)...)
	var out1 schema.BuildOutput
	require.NoError(t, json.Unmarshal([]byte(first), &out1))
	assert.False(t, out1.CacheHit)
	assert.NotEmpty(t, out1.RunID)

	second := run(t, dir, append([]string{"build", "--output", "json"}, flags...)...)
	var out2 schema.BuildOutput
	require.NoError(t, json.Unmarshal([]byte(second), &out2))
	assert.True(t, out2.CacheHit, "unchanged inputs restore the cached store")
	assert.Equal(t, out1.Fingerprint, out2.Fingerprint)
	assert.Equal(t, out1.Summary, out2.Summary)

	var cacheStatus schema.CacheStatus
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "cache", "status", "--output", "json")), &cacheStatus))
	assert.True(t, cacheStatus.Connected)
	assert.Equal(t, 1, cacheStatus.TotalEntries)

	var runs []schema.BuildRunRecord
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "runs", "list", "--output", "json")), &runs))
	require.Len(t, runs, 2)
	assert.False(t, runs[0].CacheHit)
	assert.True(t, runs[1].CacheHit)
	assert.Equal(t, out1.Summary.Combinations, runs[1].Combinations)

	var runStatus schema.RunStatus
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "runs", "status", "--output", "json")), &runStatus))
	assert.Equal(t, 2, runStatus.TotalRuns)
	assert.Equal(t, runs[1].RunID, runStatus.LastRunID)
}

func startContainer(t *testing.T, req testcontainers.ContainerRequest) (string, string) {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, req.ExposedPorts[0])
	require.NoError(t, err)
	return host, port.Port()
}

// TestBuildWithMySQL tests the gazeplot CLI with a MySQL backend.
func TestBuildWithMySQL(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "gazeplot",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	})

	base := fmt.Sprintf("root:secret123@tcp(%s:%s)/gazeplot?parseTime=true", host, port)
	exerciseBackend(t, "mysql", base, base+"&loc=UTC")
}

// TestBuildWithPostgres tests the gazeplot CLI with a PostgreSQL backend.
func TestBuildWithPostgres(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	})

	base := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port)
	exerciseBackend(t, "postgresql", base+" sslmode=disable", base+" sslmode=disable application_name=gazeplot")
}
