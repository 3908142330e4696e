// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

import "strings"

// lowerCache memoizes the lowercased form of src into *cache, so a field
// that's folded once per Match call against the same record doesn't redo
// the strings.ToLower work on every subsequent call. Shared by all three
// SearchObject implementations (log lines, goroutine stacks, watch
// samples), which otherwise each repeated this caching dance per field.
func lowerCache(src string, cache *string) string {
	if *cache == "" && src != "" {
		*cache = strings.ToLower(src)
	}
	return *cache
}
