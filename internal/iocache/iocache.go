// Package iocache persists built lookup stores and the history of build runs.
package iocache

import (
	"sync"

	"github.com/huangsam/gazeplot/internal/contract"
)

// CacheStoreManager manages the build cache and the run store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	build        contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetBuildStore returns the CacheStore holding serialized lookup stores.
func (mgr *CacheStoreManager) GetBuildStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.build
}

// GetRunStore returns the RunStore, or nil when run tracking is disabled.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
