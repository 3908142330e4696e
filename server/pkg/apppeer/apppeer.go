// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

// Package apppeer holds the per-app-run record stores the search core reads
// from: a bounded log line ring, a goroutine snapshot store, and a watch
// sample store. It is the concrete side of gensearch.LinePeer.
package apppeer

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/tracewell/tracewell/pkg/ds"
	"github.com/tracewell/tracewell/pkg/utilds"
	"github.com/tracewell/tracewell/server/pkg/gensearch"
)

// Application status constants
const (
	AppStatusRunning      = "running"
	AppStatusDone         = "done"
	AppStatusDisconnected = "disconnected"
)

const (
	MaxAppRunPeers = 8
	PruneInterval  = 15 * time.Second
)

// AppRunPeer is the record store for one observed program run: its log
// lines, goroutine snapshots, and watch samples, plus the set of search
// managers currently subscribed to its log stream.
type AppRunPeer struct {
	AppRunId    string
	AppName     string
	Status      string
	LastModTime int64
	refCount    int
	refLock     sync.Mutex

	Logs         *LogLinePeer
	GoRoutines   *GoRoutinePeer
	Watches      *WatchesPeer
}

var appRunPeers = utilds.MakeSyncMap[string, *AppRunPeer]()

func init() {
	go func() {
		for {
			time.Sleep(PruneInterval)
			numPruned := PruneAppRunPeers()
			if numPruned > 0 {
				log.Printf("periodic pruning removed %d app run peers", numPruned)
			}
		}
	}()
}

// GetAppRunPeer returns the existing peer for appRunId, creating one if
// needed. If incRefCount is true, the peer's reference count (held by every
// live connection for this app run) is incremented.
func GetAppRunPeer(appRunId string, incRefCount bool) *AppRunPeer {
	peer, _ := appRunPeers.GetOrCreate(appRunId, func() *AppRunPeer {
		return &AppRunPeer{
			AppRunId:    appRunId,
			Logs:        MakeLogLinePeer(),
			GoRoutines:  MakeGoRoutinePeer(),
			Watches:     MakeWatchesPeer(),
			Status:      AppStatusRunning,
			LastModTime: time.Now().UnixMilli(),
		}
	})
	if incRefCount {
		peer.refLock.Lock()
		defer peer.refLock.Unlock()
		peer.refCount++
	}
	return peer
}

// Release decrements the reference counter; once it reaches zero the peer
// is marked disconnected (but its records are retained until pruned).
func (p *AppRunPeer) Release() {
	p.refLock.Lock()
	defer p.refLock.Unlock()
	p.refCount--
	if p.refCount > 0 {
		return
	}
	if p.Status != AppStatusDone {
		p.Status = AppStatusDisconnected
		p.LastModTime = time.Now().UnixMilli()
	}
}

func (p *AppRunPeer) GetRefCount() int {
	p.refLock.Lock()
	defer p.refLock.Unlock()
	return p.refCount
}

// GetLogLines satisfies gensearch.LinePeer by delegating to the log
// line store.
func (p *AppRunPeer) GetLogLines() ([]ds.LogLine, int) {
	return p.Logs.GetLogLines()
}

func (p *AppRunPeer) RegisterSearchManager(manager gensearch.LineConsumer) {
	p.Logs.RegisterSearchManager(manager)
}

func (p *AppRunPeer) UnregisterSearchManager(manager gensearch.LineConsumer) {
	p.Logs.UnregisterSearchManager(manager)
}

// AddLogLine appends a new log record and fans it out to subscribed search
// managers. There is no wire ingestion protocol in scope here; callers
// (a demo data generator, tests) hand records to the peer directly.
func (p *AppRunPeer) AddLogLine(line ds.LogLine) {
	p.LastModTime = time.Now().UnixMilli()
	p.Logs.ProcessLogLine(line)
}

func (p *AppRunPeer) AddGoRoutineStacks(stacks []ds.GoRoutineStack) {
	p.LastModTime = time.Now().UnixMilli()
	p.GoRoutines.ProcessGoroutineStacks(stacks)
}

func (p *AppRunPeer) AddWatchSamples(samples []ds.WatchSample) {
	p.LastModTime = time.Now().UnixMilli()
	p.Watches.ProcessWatchValues(samples)
}

func (p *AppRunPeer) MarkDone() {
	p.Status = AppStatusDone
	p.LastModTime = time.Now().UnixMilli()
}

// GetAllAppRunPeers returns every registered peer.
func GetAllAppRunPeers() []*AppRunPeer {
	keys := appRunPeers.Keys()
	peers := make([]*AppRunPeer, 0, len(keys))
	for _, key := range keys {
		if peer, exists := appRunPeers.GetEx(key); exists {
			peers = append(peers, peer)
		}
	}
	return peers
}

// PruneAppRunPeers evicts the oldest disconnected/done peers (with no
// active references) once the peer count exceeds MaxAppRunPeers.
func PruneAppRunPeers() int {
	allPeers := GetAllAppRunPeers()
	if len(allPeers) <= MaxAppRunPeers {
		return 0
	}
	sort.Slice(allPeers, func(i, j int) bool {
		return allPeers[i].LastModTime < allPeers[j].LastModTime
	})
	numPruned := 0
	for _, peer := range allPeers {
		if len(allPeers)-numPruned <= MaxAppRunPeers {
			break
		}
		if peer.Status == AppStatusRunning {
			continue
		}
		if peer.GetRefCount() > 0 {
			continue
		}
		appRunPeers.Delete(peer.AppRunId)
		numPruned++
	}
	return numPruned
}
