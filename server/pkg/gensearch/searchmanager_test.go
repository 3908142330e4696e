// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"context"
	"testing"

	"github.com/tracewell/tracewell/pkg/ds"
	"github.com/tracewell/tracewell/server/pkg/rpctypes"
)

// fakePeer is a minimal LinePeer backed by an in-memory slice, standing
// in for apppeer.AppRunPeer without importing it (apppeer imports gensearch,
// so the reverse import would cycle).
type fakePeer struct {
	lines []ds.LogLine
	mgrs  []LineConsumer
}

func (p *fakePeer) GetLogLines() ([]ds.LogLine, int) {
	return p.lines, len(p.lines)
}

func (p *fakePeer) RegisterSearchManager(m LineConsumer) {
	p.mgrs = append(p.mgrs, m)
}

func (p *fakePeer) UnregisterSearchManager(m LineConsumer) {
	for i, existing := range p.mgrs {
		if existing == m {
			p.mgrs = append(p.mgrs[:i], p.mgrs[i+1:]...)
			return
		}
	}
}

func (p *fakePeer) addLine(msg string) ds.LogLine {
	line := ds.LogLine{LineNum: int64(len(p.lines) + 1), Msg: msg}
	p.lines = append(p.lines, line)
	return line
}

func TestMakeSearchManagerRegistersWithPeer(t *testing.T) {
	peer := &fakePeer{}
	mgr := MakeSearchManager("widget-1", "apprun-1", peer)
	if len(peer.mgrs) != 1 {
		t.Fatalf("expected MakeSearchManager to register itself with the peer, got %d registrations", len(peer.mgrs))
	}
	if mgr.WidgetId != "widget-1" || mgr.AppRunId != "apprun-1" {
		t.Errorf("unexpected manager identity: %+v", mgr)
	}
}

func TestSearchManagerSearchLogsFiltersAndPages(t *testing.T) {
	peer := &fakePeer{}
	peer.addLine("alpha line")
	peer.addLine("beta line")
	peer.addLine("alpha again")

	mgr := MakeSearchManager("widget-2", "apprun-2", peer)
	defer DropManager("widget-2")

	result, err := mgr.SearchLogs(context.Background(), rpctypes.SearchRequestData{
		WidgetId:     "widget-2",
		SearchTerm:   "alpha",
		PageSize:     10,
		RequestPages: []int{0},
	})
	if err != nil {
		t.Fatalf("SearchLogs returned error: %v", err)
	}
	if result.FilteredCount != 2 {
		t.Errorf("FilteredCount = %d, want 2", result.FilteredCount)
	}
	if result.SearchedCount != 3 {
		t.Errorf("SearchedCount = %d, want 3", result.SearchedCount)
	}
	if len(result.Pages) != 1 || len(result.Pages[0].Lines) != 2 {
		t.Fatalf("unexpected pages: %+v", result.Pages)
	}
}

func TestSearchManagerSearchLogsCachesUnchangedQuery(t *testing.T) {
	peer := &fakePeer{}
	peer.addLine("one")

	mgr := MakeSearchManager("widget-3", "apprun-3", peer)
	defer DropManager("widget-3")

	req := rpctypes.SearchRequestData{WidgetId: "widget-3", SearchTerm: "one", PageSize: 10, RequestPages: []int{0}}
	if _, err := mgr.SearchLogs(context.Background(), req); err != nil {
		t.Fatalf("first SearchLogs returned error: %v", err)
	}
	firstStats := mgr.Stats

	peer.addLine("two")
	if _, err := mgr.SearchLogs(context.Background(), req); err != nil {
		t.Fatalf("second SearchLogs returned error: %v", err)
	}
	if mgr.Stats != firstStats {
		t.Errorf("expected identical search term to reuse the cached result without re-scanning, got different stats: %+v vs %+v", mgr.Stats, firstStats)
	}
}

func TestSearchManagerProcessNewLineStreaming(t *testing.T) {
	peer := &fakePeer{}
	mgr := MakeSearchManager("widget-4", "apprun-4", peer)
	defer DropManager("widget-4")

	if _, err := mgr.SearchLogs(context.Background(), rpctypes.SearchRequestData{
		WidgetId: "widget-4", SearchTerm: "keep", PageSize: 10, RequestPages: []int{0}, Streaming: true,
	}); err != nil {
		t.Fatalf("SearchLogs returned error: %v", err)
	}

	mgr.ProcessNewLine(ds.LogLine{LineNum: 1, Msg: "drop this"})
	mgr.ProcessNewLine(ds.LogLine{LineNum: 2, Msg: "please keep this"})

	if len(mgr.CachedResult) != 1 {
		t.Fatalf("expected ProcessNewLine to append only matching lines, got %d", len(mgr.CachedResult))
	}
	if mgr.CachedResult[0].LineNum != 2 {
		t.Errorf("expected the matching line (2) to be cached, got line %d", mgr.CachedResult[0].LineNum)
	}
}

func TestGetOrCreateManagerReusesExisting(t *testing.T) {
	peer := &fakePeer{}
	first := GetOrCreateManager("widget-5", "apprun-5", peer)
	defer DropManager("widget-5")
	second := GetOrCreateManager("widget-5", "apprun-5", peer)
	if first != second {
		t.Errorf("expected GetOrCreateManager to return the same manager for an existing widget id")
	}
	if GetManager("widget-5") != first {
		t.Errorf("GetManager did not return the registered manager")
	}
	DropManager("widget-5")
	if GetManager("widget-5") != nil {
		t.Errorf("expected DropManager to remove the manager from the registry")
	}
}
