package core

import (
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/huangsam/gazeplot/internal/iocache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGenerateCacheKey(t *testing.T) {
	a := generateCacheKey("abc")
	assert.Len(t, a, 64)
	assert.Equal(t, a, generateCacheKey("abc"))
	assert.NotEqual(t, a, generateCacheKey("abd"))
}

func TestCacheRoundTrip(t *testing.T) {
	s := fixtureStore(t)
	want, err := s.MarshalJSON()
	require.NoError(t, err)

	var saved []byte
	cache := &iocache.MockCacheStore{}
	cache.On("Set", "key", mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]byte) }).
		Return(nil)
	storeInCache(cache, "key", s)
	require.NotEmpty(t, saved)

	var env cacheEnvelope
	require.NoError(t, json.Unmarshal(saved, &env))
	assert.JSONEq(t, string(want), string(env.Store))

	fresh := &iocache.MockCacheStore{}
	fresh.On("Get", "key").Return(saved, currentCacheVersion, time.Now().Unix(), nil)
	hit := checkCacheHit(fresh, "key")
	require.NotNil(t, hit)

	got, err := hit.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, want, got, "a cache hit decodes to the bytes that were built")
	assert.Equal(t, s.Report(), hit.Report())
	cache.AssertExpectations(t)
}

func TestCheckCacheHitRejects(t *testing.T) {
	s := fixtureStore(t)
	doc, err := s.MarshalJSON()
	require.NoError(t, err)
	data, err := json.Marshal(cacheEnvelope{Store: doc})
	require.NoError(t, err)
	now := time.Now().Unix()

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
	}{
		{"miss", nil, 0, 0, errors.New("not found")},
		{"old version", data, currentCacheVersion + 1, now, nil},
		{"stale", data, currentCacheVersion, time.Now().Add(-maxCacheAge - time.Hour).Unix(), nil},
		{"corrupt envelope", []byte("{"), currentCacheVersion, now, nil},
		{"corrupt store", []byte(`{"store":{"feelings":1}}`), currentCacheVersion, now, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &iocache.MockCacheStore{}
			cache.On("Get", "key").Return(tt.data, tt.version, tt.ts, tt.err)
			assert.Nil(t, checkCacheHit(cache, "key"))
		})
	}
}

func TestStoreInCacheFailureIsNotFatal(t *testing.T) {
	cache := &iocache.MockCacheStore{}
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
	assert.NotPanics(t, func() { storeInCache(cache, "key", fixtureStore(t)) })
	cache.AssertNumberOfCalls(t, "Set", 1)
}
