// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package apppeer

import (
	"sync"

	"github.com/tracewell/tracewell/pkg/ds"
)

// GoRoutinePeer holds the most recent snapshot of each goroutine seen for an
// app run, keyed by goroutine id. Parsing a stack-trace dump into these
// records is an ingestion concern and out of scope here; this store only
// holds whatever records it's given.
type GoRoutinePeer struct {
	lock   sync.RWMutex
	byGoId map[int64]ds.GoRoutineStack
}

func MakeGoRoutinePeer() *GoRoutinePeer {
	return &GoRoutinePeer{byGoId: make(map[int64]ds.GoRoutineStack)}
}

// ProcessGoroutineStacks replaces the snapshot with the given set of stacks,
// mirroring how a fresh goroutine dump supersedes the previous one.
func (gp *GoRoutinePeer) ProcessGoroutineStacks(stacks []ds.GoRoutineStack) {
	gp.lock.Lock()
	defer gp.lock.Unlock()
	byGoId := make(map[int64]ds.GoRoutineStack, len(stacks))
	for _, stack := range stacks {
		byGoId[stack.GoId] = stack
	}
	gp.byGoId = byGoId
}

// GetAll returns every goroutine record currently held.
func (gp *GoRoutinePeer) GetAll() []ds.GoRoutineStack {
	gp.lock.RLock()
	defer gp.lock.RUnlock()
	rtn := make([]ds.GoRoutineStack, 0, len(gp.byGoId))
	for _, stack := range gp.byGoId {
		rtn = append(rtn, stack)
	}
	return rtn
}

func (gp *GoRoutinePeer) Count() int {
	gp.lock.RLock()
	defer gp.lock.RUnlock()
	return len(gp.byGoId)
}
