// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package apppeer

import (
	"testing"
	"time"

	"github.com/tracewell/tracewell/pkg/ds"
)

func TestGetAppRunPeerCreatesAndReuses(t *testing.T) {
	id := "run-create-reuse"
	peer := GetAppRunPeer(id, false)
	if peer.AppRunId != id {
		t.Fatalf("AppRunId = %q, want %q", peer.AppRunId, id)
	}
	if peer.Status != AppStatusRunning {
		t.Errorf("new peer status = %q, want %q", peer.Status, AppStatusRunning)
	}
	again := GetAppRunPeer(id, false)
	if peer != again {
		t.Errorf("expected GetAppRunPeer to return the same peer for an existing app run id")
	}
}

func TestAppRunPeerRefCounting(t *testing.T) {
	peer := GetAppRunPeer("run-refcount", true)
	if peer.GetRefCount() != 1 {
		t.Fatalf("RefCount after first acquire = %d, want 1", peer.GetRefCount())
	}
	GetAppRunPeer("run-refcount", true)
	if peer.GetRefCount() != 2 {
		t.Fatalf("RefCount after second acquire = %d, want 2", peer.GetRefCount())
	}
	peer.Release()
	if peer.GetRefCount() != 1 {
		t.Errorf("RefCount after one release = %d, want 1", peer.GetRefCount())
	}
	if peer.Status != AppStatusRunning {
		t.Errorf("status should stay running while refcount > 0, got %q", peer.Status)
	}
	peer.Release()
	if peer.GetRefCount() != 0 {
		t.Errorf("RefCount after final release = %d, want 0", peer.GetRefCount())
	}
	if peer.Status != AppStatusDisconnected {
		t.Errorf("status after refcount reaches 0 = %q, want %q", peer.Status, AppStatusDisconnected)
	}
}

func TestAppRunPeerReleaseDoesNotOverrideDone(t *testing.T) {
	peer := GetAppRunPeer("run-done", true)
	peer.MarkDone()
	peer.Release()
	if peer.Status != AppStatusDone {
		t.Errorf("Release should not override an already-done status, got %q", peer.Status)
	}
}

func TestAddLogLineAssignsSequentialLineNumbers(t *testing.T) {
	peer := GetAppRunPeer("run-loglines", false)
	peer.AddLogLine(ds.LogLine{Msg: "first"})
	peer.AddLogLine(ds.LogLine{Msg: "second"})

	lines, total := peer.GetLogLines()
	if total < 2 || len(lines) < 2 {
		t.Fatalf("expected at least 2 log lines, got lines=%d total=%d", len(lines), total)
	}
	last := lines[len(lines)-1]
	prev := lines[len(lines)-2]
	if last.LineNum != prev.LineNum+1 {
		t.Errorf("expected sequential line numbers, got %d then %d", prev.LineNum, last.LineNum)
	}
}

func TestAddLogLineNormalizesLineEndings(t *testing.T) {
	peer := GetAppRunPeer("run-normalize", false)
	peer.AddLogLine(ds.LogLine{Msg: "no newline"})
	lines, _ := peer.GetLogLines()
	got := lines[len(lines)-1].Msg
	if got != "no newline\n" {
		t.Errorf("AddLogLine did not append a trailing newline, got %q", got)
	}
}

type recordingSearchManager struct {
	lines []ds.LogLine
}

func (r *recordingSearchManager) ProcessNewLine(line ds.LogLine) {
	r.lines = append(r.lines, line)
}

func TestRegisterAndUnregisterSearchManager(t *testing.T) {
	peer := GetAppRunPeer("run-searchmgr", false)
	mgr := &recordingSearchManager{}
	peer.RegisterSearchManager(mgr)

	peer.AddLogLine(ds.LogLine{Msg: "hello"})
	if len(mgr.lines) != 1 {
		t.Fatalf("expected registered manager to be notified once, got %d notifications", len(mgr.lines))
	}

	peer.UnregisterSearchManager(mgr)
	peer.AddLogLine(ds.LogLine{Msg: "world"})
	if len(mgr.lines) != 1 {
		t.Errorf("expected no further notifications after unregistering, got %d", len(mgr.lines))
	}
}

func TestAddGoRoutineStacksReplacesSnapshot(t *testing.T) {
	peer := GetAppRunPeer("run-goroutines", false)
	peer.AddGoRoutineStacks([]ds.GoRoutineStack{{GoId: 1, Name: "a"}, {GoId: 2, Name: "b"}})
	if peer.GoRoutines.Count() != 2 {
		t.Fatalf("expected 2 goroutines after first snapshot, got %d", peer.GoRoutines.Count())
	}
	peer.AddGoRoutineStacks([]ds.GoRoutineStack{{GoId: 3, Name: "c"}})
	if peer.GoRoutines.Count() != 1 {
		t.Errorf("expected a fresh snapshot to replace the old one, got %d entries", peer.GoRoutines.Count())
	}
	all := peer.GoRoutines.GetAll()
	if len(all) != 1 || all[0].GoId != 3 {
		t.Errorf("unexpected goroutine snapshot contents: %+v", all)
	}
}

func TestAddWatchSamplesKeepsLatestByName(t *testing.T) {
	peer := GetAppRunPeer("run-watches", false)
	peer.AddWatchSamples([]ds.WatchSample{{Name: "depth", StrVal: "1"}})
	peer.AddWatchSamples([]ds.WatchSample{{Name: "depth", StrVal: "2"}})
	if peer.Watches.Count() != 1 {
		t.Fatalf("expected a single watch entry for repeated name, got %d", peer.Watches.Count())
	}
	all := peer.Watches.GetAll()
	if all[0].StrVal != "2" {
		t.Errorf("expected the latest sample to win, got StrVal=%q", all[0].StrVal)
	}
}

func TestPruneAppRunPeersEvictsOldestDisconnected(t *testing.T) {
	prefix := "run-prune-"
	var created []*AppRunPeer
	for i := 0; i < MaxAppRunPeers+2; i++ {
		peer := GetAppRunPeer(prefix+string(rune('a'+i)), true)
		peer.Release() // drop refcount to 0 so it is eligible for pruning
		peer.LastModTime = time.Now().Add(time.Duration(i) * time.Millisecond).UnixMilli()
		created = append(created, peer)
	}

	numPruned := PruneAppRunPeers()
	if numPruned == 0 {
		t.Fatalf("expected PruneAppRunPeers to evict at least one peer over the %d limit", MaxAppRunPeers)
	}

	remaining := GetAllAppRunPeers()
	for _, peer := range remaining {
		if peer == created[0] {
			t.Errorf("expected the oldest disconnected peer to be pruned first")
		}
	}
}
