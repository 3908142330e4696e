// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package utilfn

import (
	"cmp"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

func GetHomeDir() string {
	homeVar, err := os.UserHomeDir()
	if err != nil {
		return "/"
	}
	return homeVar
}

func ExpandHomeDir(pathStr string) string {
	if pathStr != "~" && !strings.HasPrefix(pathStr, "~/") && (!strings.HasPrefix(pathStr, `~\`) || runtime.GOOS != "windows") {
		return filepath.Clean(pathStr)
	}
	homeDir := GetHomeDir()
	if pathStr == "~" {
		return homeDir
	}
	expandedPath := filepath.Clean(filepath.Join(homeDir, pathStr[2:]))
	return expandedPath
}

func DrainChan[T any](ch chan T) {
	for range ch {
	}
}

func ReUnmarshal(out any, in any) error {
	barr, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(barr, out)
}

func GetOrderedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func BoundValue[T cmp.Ordered](val, minVal, maxVal T) T {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// Same tag shape as SimpleTagRegexStr below, preceded by start of input or whitespace.
var tagRegex = regexp.MustCompile(`(?:^|\s)(#[a-zA-Z][a-zA-Z0-9:_.-]+)`)

// SimpleTagRegexStr is the source pattern for a single inline tag (no anchors),
// used by the search parser to validate tag literals. ParseTags uses tagRegex
// above, which spells out the same pattern.
const SimpleTagRegexStr = `#[a-zA-Z][a-zA-Z0-9:_.-]+`

// ParseTags extracts lowercased "#tag" occurrences from free text (used to
// derive a log line's tag set from its message on first request).
func ParseTags(input string) []string {
	if !strings.Contains(input, "#") {
		return nil
	}
	matches := tagRegex.FindAllStringSubmatch(input, -1)
	if len(matches) == 0 {
		return nil
	}

	tags := make([]string, len(matches))
	for i, match := range matches {
		tags[i] = strings.ToLower(match[1][1:])
	}
	return tags
}

// SafeSubstring returns query[start:end] clamped to query's bounds, so that
// callers building UI error-highlight spans from untrusted parser offsets
// never panic on an off-by-one or a span computed against a different string.
func SafeSubstring(query string, start int, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(query) {
		end = len(query)
	}
	if start >= end {
		return ""
	}
	return query[start:end]
}
