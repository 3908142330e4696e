// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"testing"

	"github.com/tracewell/tracewell/pkg/ds"
)

func TestMarkManagerUpdateAndClear(t *testing.T) {
	mm := MakeMarkManager()
	if mm.GetNumMarks() != 0 {
		t.Fatalf("new MarkManager should start empty, got %d marks", mm.GetNumMarks())
	}

	mm.UpdateMarkedLines(map[int64]bool{1: true, 2: true, 3: true})
	if mm.GetNumMarks() != 3 {
		t.Fatalf("expected 3 marks after update, got %d", mm.GetNumMarks())
	}

	mm.UpdateMarkedLines(map[int64]bool{2: false})
	if mm.GetNumMarks() != 2 {
		t.Fatalf("expected 2 marks after unmarking line 2, got %d", mm.GetNumMarks())
	}
	ids := mm.GetMarkedIds()
	if ids[2] {
		t.Errorf("line 2 should no longer be marked")
	}
	if !ids[1] || !ids[3] {
		t.Errorf("expected lines 1 and 3 to remain marked, got %v", ids)
	}

	mm.ClearMarks()
	if mm.GetNumMarks() != 0 {
		t.Errorf("expected ClearMarks to remove all marks, got %d remaining", mm.GetNumMarks())
	}
}

func TestMarkManagerGetMarkedIdsIsACopy(t *testing.T) {
	mm := MakeMarkManager()
	mm.UpdateMarkedLines(map[int64]bool{5: true})
	copy1 := mm.GetMarkedIds()
	copy1[6] = true
	if mm.GetNumMarks() != 1 {
		t.Errorf("mutating a copy returned by GetMarkedIds should not affect the manager, got %d marks", mm.GetNumMarks())
	}
}

func TestMarkManagerGetMarkedLogLines(t *testing.T) {
	mm := MakeMarkManager()
	allLogs := []ds.LogLine{
		{LineNum: 1, Msg: "first"},
		{LineNum: 2, Msg: "second"},
		{LineNum: 3, Msg: "third"},
	}

	if got := mm.GetMarkedLogLines(allLogs); got != nil {
		t.Fatalf("expected nil with no marks, got %v", got)
	}

	mm.UpdateMarkedLines(map[int64]bool{1: true, 3: true})
	got := mm.GetMarkedLogLines(allLogs)
	if len(got) != 2 {
		t.Fatalf("expected 2 marked lines, got %d", len(got))
	}
	if got[0].LineNum != 1 || got[1].LineNum != 3 {
		t.Errorf("expected marked lines 1 and 3 in order, got %+v", got)
	}
}
