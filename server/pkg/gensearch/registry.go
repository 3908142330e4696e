// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// managerRegistry is a touch-ordered map of widgetId -> *SearchManager,
// backed by linkedhashmap so LRU eviction and diagnostic snapshots walk
// managers in a stable, meaningful order instead of re-sorting a plain map's
// keys by LastUsed on every cleanup pass.
type managerRegistry struct {
	lock *sync.Mutex
	m    *linkedhashmap.Map
}

func newManagerRegistry() *managerRegistry {
	return &managerRegistry{lock: &sync.Mutex{}, m: linkedhashmap.New()}
}

func (r *managerRegistry) Get(widgetId string) *SearchManager {
	r.lock.Lock()
	defer r.lock.Unlock()
	val, found := r.m.Get(widgetId)
	if !found {
		return nil
	}
	return val.(*SearchManager)
}

// GetOrCreate returns the existing manager for widgetId, touching its
// position to the end of iteration order, or creates and registers a new
// one via makeFn.
func (r *managerRegistry) GetOrCreate(widgetId string, makeFn func() *SearchManager) (manager *SearchManager, created bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if val, found := r.m.Get(widgetId); found {
		r.m.Remove(widgetId)
		r.m.Put(widgetId, val)
		return val.(*SearchManager), false
	}
	manager = makeFn()
	r.m.Put(widgetId, manager)
	return manager, true
}

// Touch moves widgetId to the end of iteration order without creating it.
func (r *managerRegistry) Touch(widgetId string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if val, found := r.m.Get(widgetId); found {
		r.m.Remove(widgetId)
		r.m.Put(widgetId, val)
	}
}

func (r *managerRegistry) Delete(widgetId string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.m.Remove(widgetId)
}

func (r *managerRegistry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.m.Size()
}

// Snapshot returns every registered manager, least-recently-touched first.
func (r *managerRegistry) Snapshot() []*SearchManager {
	r.lock.Lock()
	defer r.lock.Unlock()
	values := r.m.Values()
	managers := make([]*SearchManager, 0, len(values))
	for _, v := range values {
		managers = append(managers, v.(*SearchManager))
	}
	return managers
}

// Keys returns the widget ids currently registered, in touch order.
func (r *managerRegistry) Keys() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	rawKeys := r.m.Keys()
	keys := make([]string, 0, len(rawKeys))
	for _, k := range rawKeys {
		keys = append(keys, k.(string))
	}
	return keys
}
