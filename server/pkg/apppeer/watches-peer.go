// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package apppeer

import (
	"sync"

	"github.com/tracewell/tracewell/pkg/ds"
)

// WatchesPeer holds the latest sample for every watch seen for an app run,
// keyed by watch name. The wire protocol a real collector would use to
// deliver these samples (delta-compressed "same as last time" encoding) is
// an ingestion concern and out of scope here.
type WatchesPeer struct {
	lock    sync.RWMutex
	byName  map[string]ds.WatchSample
}

func MakeWatchesPeer() *WatchesPeer {
	return &WatchesPeer{byName: make(map[string]ds.WatchSample)}
}

// ProcessWatchValues records the latest sample for each watch given.
func (wp *WatchesPeer) ProcessWatchValues(samples []ds.WatchSample) {
	wp.lock.Lock()
	defer wp.lock.Unlock()
	for _, sample := range samples {
		wp.byName[sample.Name] = sample
	}
}

// GetAll returns every watch's latest sample currently held.
func (wp *WatchesPeer) GetAll() []ds.WatchSample {
	wp.lock.RLock()
	defer wp.lock.RUnlock()
	rtn := make([]ds.WatchSample, 0, len(wp.byName))
	for _, sample := range wp.byName {
		rtn = append(rtn, sample)
	}
	return rtn
}

func (wp *WatchesPeer) Count() int {
	wp.lock.RLock()
	defer wp.lock.RUnlock()
	return len(wp.byName)
}
