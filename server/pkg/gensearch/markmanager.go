// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"sync"

	"github.com/tracewell/tracewell/pkg/ds"
)

// MarkManager tracks which record ids a widget's user has starred, so the
// "#marked" matcher (markedMatcher, in matcher_constant.go) can consult them
// during a search without the widget having to thread mark state through
// every query by hand. A zero-value MarkManager is not ready to use; call
// MakeMarkManager.
type MarkManager struct {
	mu    sync.Mutex
	marks map[int64]bool
}

// MakeMarkManager returns an empty, ready-to-use MarkManager.
func MakeMarkManager() *MarkManager {
	return &MarkManager{marks: make(map[int64]bool)}
}

// ClearMarks removes every mark.
func (m *MarkManager) ClearMarks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks = make(map[int64]bool)
}

// GetNumMarks reports how many ids are currently marked.
func (m *MarkManager) GetNumMarks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.marks)
}

// GetMarkedIds returns a snapshot of the marked-id set. The returned map is
// a copy; mutating it has no effect on the manager.
func (m *MarkManager) GetMarkedIds() map[int64]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make(map[int64]bool, len(m.marks))
	for id, marked := range m.marks {
		snapshot[id] = marked
	}
	return snapshot
}

// UpdateMarkedLines applies a batch of mark/unmark toggles. A true value
// marks the id; false unmarks (and removes) it, keeping the underlying map
// from growing unbounded as a widget's user marks and unmarks lines over a
// long session.
func (m *MarkManager) UpdateMarkedLines(updates map[int64]bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, marked := range updates {
		if marked {
			m.marks[id] = true
		} else {
			delete(m.marks, id)
		}
	}
}

// GetMarkedLogLines filters allLogs down to the lines whose LineNum is
// currently marked, preserving input order.
func (m *MarkManager) GetMarkedLogLines(allLogs []ds.LogLine) []ds.LogLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.marks) == 0 {
		return nil
	}
	var marked []ds.LogLine
	for _, line := range allLogs {
		if m.marks[line.LineNum] {
			marked = append(marked, line)
		}
	}
	return marked
}
