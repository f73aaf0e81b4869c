package core

import (
	"crypto/sha256"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/huangsam/gazeplot/core/store"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/schema"
)

// currentCacheVersion defines the version of the cached store layout
const currentCacheVersion = 1

// maxCacheAge is how long a cached store is trusted.
const maxCacheAge = 7 * 24 * time.Hour

// cacheEnvelope is what the build cache holds for one fingerprint. The store
// document is kept verbatim so a hit decodes to the exact bytes that were built.
type cacheEnvelope struct {
	Store   json.RawMessage            `json:"store"`
	Reports []schema.CombinationReport `json:"reports"`
}

// generateCacheKey derives the cache key of a store from the input fingerprint.
func generateCacheKey(fingerprint string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte("store:"+fingerprint)))
}

// checkCacheHit returns the cached store for key, or nil on a miss.
func checkCacheHit(cache contract.CacheStore, key string) *store.Store {
	data, version, ts, err := cache.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > maxCacheAge {
		return nil
	}

	var env cacheEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	s, err := store.Restore(env.Store, env.Reports)
	if err != nil {
		return nil
	}
	return s
}

// storeInCache writes s under key. Failures only cost a future rebuild.
func storeInCache(cache contract.CacheStore, key string, s *store.Store) {
	doc, err := s.MarshalJSON()
	if err != nil {
		contract.LogWarn("Failed to encode store for the cache", err)
		return
	}
	data, err := json.Marshal(cacheEnvelope{Store: doc, Reports: s.Report()})
	if err != nil {
		contract.LogWarn("Failed to encode cache entry", err)
		return
	}
	if err := cache.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to write build cache", err)
	}
}
