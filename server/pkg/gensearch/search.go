// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

// Package gensearch compiles a parsed search-box query into a matcher tree
// that can be evaluated, field by field, against any of the three record
// kinds this project searches: log lines, goroutine snapshots, and watch
// samples. A single Searcher implementation per operator (matcher_bool.go,
// matcher_constant.go, matcher_text.go, matcher_field.go) is generic over
// "something with a GetField/GetTags/GetId" rather than hard-wired to log
// lines, which is what lets one query syntax drive search across all three
// record kinds.
package gensearch

import (
	"github.com/tracewell/tracewell/server/pkg/rpctypes"
	"github.com/tracewell/tracewell/server/pkg/searchparser"
)

// Search type identifiers. The leaf types come straight from the tokenizer
// (searchparser); and/all are resolved during compilation and never appear
// in a parsed token.
const (
	SearchTypeExact      = searchparser.SearchTypeExact
	SearchTypeExactCase  = searchparser.SearchTypeExactCase
	SearchTypeRegexp     = searchparser.SearchTypeRegexp
	SearchTypeRegexpCase = searchparser.SearchTypeRegexpCase
	SearchTypeFzf        = searchparser.SearchTypeFzf
	SearchTypeFzfCase    = searchparser.SearchTypeFzfCase
	SearchTypeNot        = searchparser.SearchTypeNot
	SearchTypeTag        = searchparser.SearchTypeTag
	SearchTypeUserQuery  = searchparser.SearchTypeUserQuery
	SearchTypeMarked     = searchparser.SearchTypeMarked
	SearchTypeNumeric    = searchparser.SearchTypeNumeric

	SearchTypeAnd         = "and"
	SearchTypeOr          = "or"
	SearchTypeAll         = "all"
	SearchTypeColorFilter = searchparser.SearchTypeColorFilter
)

// FieldMod_ToLower tells a SearchObject.GetField call to return the
// pre-lowercased cache of a field rather than its original casing.
const (
	FieldMod_ToLower = 1
)

// SearchContext carries the per-search state a matcher needs beyond the
// record it's being tested against: which ids are currently marked (for
// "#marked") and which searcher a "#userquery" token should delegate to.
type SearchContext struct {
	MarkedLines map[int64]bool
	UserQuery   Searcher
}

// SearchObject is the generic view a matcher needs of a record, whatever
// its underlying kind (log line, goroutine snapshot, watch sample).
// fieldMods is a bitmask of FieldMod_* flags.
type SearchObject interface {
	GetField(fieldName string, fieldMods int) string
	GetTags() []string
	GetId() int64
}

// Searcher is a compiled node in the matcher tree: something that can be
// asked whether a given record matches.
type Searcher interface {
	Match(sctx *SearchContext, obj SearchObject) bool
	GetType() string
}

// GetSearcher parses searchTerm and compiles it into a Searcher, treating
// an empty or fully-invalid query as "match everything" rather than an
// error.
func GetSearcher(searchTerm string) (Searcher, error) {
	searcher, _, err := compile(searchTerm)
	return searcher, err
}

// GetSearcherWithErrors is GetSearcher plus the parse-error spans found
// along the way, so a caller that wants to underline bad syntax in the UI
// doesn't have to reparse the term itself.
func GetSearcherWithErrors(searchTerm string) (Searcher, []rpctypes.SearchErrorSpan, error) {
	searcher, node, err := compile(searchTerm)
	return searcher, ExtractErrorSpans(node), err
}

func compile(searchTerm string) (Searcher, *searchparser.Node, error) {
	node := searchparser.NewParser(searchTerm).Parse()
	searcher, err := MakeSearcherFromNode(node)
	if err != nil {
		return nil, node, err
	}
	if searcher == nil {
		searcher = MakeAllSearcher()
	}
	return searcher, node, nil
}
