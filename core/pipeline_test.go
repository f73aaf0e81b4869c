package core

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/huangsam/gazeplot/core/engine"
	"github.com/huangsam/gazeplot/core/extract"
	"github.com/huangsam/gazeplot/core/store"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/internal/fixture"
	"github.com/huangsam/gazeplot/internal/iocache"
	"github.com/huangsam/gazeplot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixtureStore(t *testing.T) *store.Store {
	t.Helper()
	model := extract.Parse(fixture.Dataset(), fixture.Metrics, extract.Options{
		Columns:      contract.DefaultColumns(),
		DetailMarker: schema.DefaultDetailMarker,
		Palette:      schema.CanonicalColors,
	})
	s, err := store.Build(context.Background(), model, store.Options{Engine: engine.DefaultOptions(), Workers: 2})
	require.NoError(t, err)
	return s
}

func fixtureConfig(t *testing.T) *contract.Config {
	t.Helper()
	cfg, err := fixture.WriteCSV(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestEngineOptions(t *testing.T) {
	assert.Equal(t, engine.DefaultOptions(), engineOptions(&contract.Config{}))

	opts := engineOptions(&contract.Config{Scale: 5, MinMarkerSize: 2})
	assert.Equal(t, 5, opts.Scale)
	assert.Equal(t, 2, opts.MinMarkerSize)
}

func TestLoadStoreWithoutManager(t *testing.T) {
	cfg := fixtureConfig(t)

	s, out, err := LoadStore(WithSuppressHeader(context.Background()), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, fixture.Metrics, s.Metrics())
	assert.Equal(t, []schema.FeelingID{"Happy", "Calm"}, s.Feelings())
	assert.Equal(t, 2*3*3, s.Len())

	assert.False(t, out.CacheHit)
	assert.Empty(t, out.RunID)
	assert.NotEmpty(t, out.Fingerprint)
	assert.Equal(t, s.Len(), out.Summary.Combinations)
	assert.Nil(t, out.Reports)

	cfg.Report = true
	_, out, err = LoadStore(WithSuppressHeader(context.Background()), cfg, nil)
	require.NoError(t, err)
	assert.Len(t, out.Reports, s.Len())
}

func TestLoadStoreMissingInput(t *testing.T) {
	cfg := fixtureConfig(t)
	require.NoError(t, os.Remove(cfg.PointsFile))

	_, _, err := LoadStore(WithSuppressHeader(context.Background()), cfg, nil)
	assert.Error(t, err)
}

func TestLoadStoreUsesCacheAndRuns(t *testing.T) {
	cfg := fixtureConfig(t)
	ctx := WithSuppressHeader(context.Background())

	var saved []byte
	cache := &iocache.MockCacheStore{}
	cache.On("Get", mock.Anything).Return(nil, 0, int64(0), errors.New("miss")).Once()
	cache.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]byte) }).
		Return(nil).Once()

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return("run-1", nil).Once()
	runs.On("EndRun", "run-1", mock.Anything, false, mock.Anything).Return(nil).Once()

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetBuildStore").Return(cache)
	mgr.On("GetRunStore").Return(runs)

	built, out, err := LoadStore(ctx, cfg, mgr)
	require.NoError(t, err)
	assert.False(t, out.CacheHit)
	assert.Equal(t, "run-1", out.RunID)
	require.NotEmpty(t, saved)

	cache.On("Get", generateCacheKey(out.Fingerprint)).Return(saved, currentCacheVersion, time.Now().Unix(), nil).Once()
	runs.On("BeginRun", mock.Anything, out.Fingerprint, mock.Anything).Return("run-2", nil).Once()
	runs.On("EndRun", "run-2", mock.Anything, true, mock.Anything).Return(nil).Once()

	restored, out2, err := LoadStore(ctx, cfg, mgr)
	require.NoError(t, err)
	assert.True(t, out2.CacheHit)
	assert.Equal(t, out.Fingerprint, out2.Fingerprint)

	a, err := built.MarshalJSON()
	require.NoError(t, err)
	b, err := restored.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	cache.AssertExpectations(t)
	runs.AssertExpectations(t)
}

func TestRunTrackingFailureIsNotFatal(t *testing.T) {
	cfg := fixtureConfig(t)

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("db down"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetBuildStore").Return(nil)
	mgr.On("GetRunStore").Return(runs)

	_, out, err := LoadStore(WithSuppressHeader(context.Background()), cfg, mgr)
	require.NoError(t, err)
	assert.Empty(t, out.RunID)
	runs.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFailedBuildClosesRun(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Columns.ChoiceName = "Picked"

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return("run-1", nil)
	runs.On("EndRun", "run-1", mock.Anything, false, schema.BuildSummary{}).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetBuildStore").Return(nil)
	mgr.On("GetRunStore").Return(runs)

	_, _, err := LoadStore(WithSuppressHeader(context.Background()), cfg, mgr)
	require.Error(t, err)
	runs.AssertExpectations(t)
}

func TestFingerprintChangesWithInputs(t *testing.T) {
	cfg := fixtureConfig(t)

	b, err := NewBuildPipeline(context.Background(), cfg, nil).Fingerprint()
	require.NoError(t, err)
	before := b.fingerprint

	f, err := os.OpenFile(cfg.ChoicesFile, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("R1,Happy\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	b, err = NewBuildPipeline(context.Background(), cfg, nil).Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, before, b.fingerprint)
	assert.Equal(t, generateCacheKey(b.fingerprint), b.cacheKey)
}

func TestDiscoverMetrics(t *testing.T) {
	cols := contract.DefaultColumns()
	assert.Equal(t, fixture.Metrics, discoverMetrics(fixture.Dataset(), cols))
}
