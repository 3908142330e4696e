// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

// constantMatcher always reports the same verdict regardless of the object
// being tested. Two distinct search types resolve to this shape: a bare
// empty query ("match everything") and a color:NAME(...) wrapper (the
// color tag only tints matching rows elsewhere; it never filters).
type constantMatcher struct {
	searchType string
}

// MakeAllSearcher returns a matcher that accepts every object.
func MakeAllSearcher() Searcher {
	return &constantMatcher{searchType: SearchTypeAll}
}

// MakeColorFilterSearcher returns a matcher that accepts every object; the
// color name attached to the AST node is read separately by
// ExtractColorFilters for row tinting.
func MakeColorFilterSearcher() Searcher {
	return &constantMatcher{searchType: SearchTypeColorFilter}
}

func (c *constantMatcher) Match(sctx *SearchContext, obj SearchObject) bool {
	return true
}

func (c *constantMatcher) GetType() string {
	return c.searchType
}

// markedMatcher accepts an object only if its id is present in the
// SearchContext's mark set (populated by the widget's MarkManager).
type markedMatcher struct{}

// MakeMarkedSearcher returns a matcher for the "#marked" token.
func MakeMarkedSearcher() Searcher {
	return &markedMatcher{}
}

func (m *markedMatcher) Match(sctx *SearchContext, obj SearchObject) bool {
	return sctx.MarkedLines[obj.GetId()]
}

func (m *markedMatcher) GetType() string {
	return SearchTypeMarked
}

// userQueryMatcher defers to whatever searcher the caller installed on
// SearchContext.UserQuery, letting a system-generated query embed a
// "#userquery" placeholder without re-parsing the user's raw text or
// risking a circular compile.
type userQueryMatcher struct{}

// MakeUserQuerySearcher returns a matcher for the "#userquery" token.
func MakeUserQuerySearcher() Searcher {
	return &userQueryMatcher{}
}

func (u *userQueryMatcher) Match(sctx *SearchContext, obj SearchObject) bool {
	if sctx.UserQuery == nil {
		return true
	}
	return sctx.UserQuery.Match(sctx, obj)
}

func (u *userQueryMatcher) GetType() string {
	return SearchTypeUserQuery
}
