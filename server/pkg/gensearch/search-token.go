// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"github.com/tracewell/tracewell/server/pkg/rpctypes"
	"github.com/tracewell/tracewell/server/pkg/searchparser"
)

// ExtractErrorSpans walks the parsed AST and collects every error node's
// position and message, so the query box can underline the offending
// characters instead of just rejecting the whole search term.
func ExtractErrorSpans(node *searchparser.Node) []rpctypes.SearchErrorSpan {
	if node == nil {
		return nil
	}
	var spans []rpctypes.SearchErrorSpan
	if node.Type == searchparser.NodeTypeError {
		spans = append(spans, rpctypes.SearchErrorSpan{
			Start:        node.Position.Start,
			End:          node.Position.End,
			ErrorMessage: node.ErrorMessage,
		})
	}
	for _, child := range node.Children {
		spans = append(spans, ExtractErrorSpans(child)...)
	}
	return spans
}

// ColorFilterPair is one color:NAME(...) literal found while walking the
// AST, paired with a compiled matcher for its inner expression.
type ColorFilterPair struct {
	Color   string
	Matcher Searcher
}

// ExtractColorFilters walks the AST in source order and returns every
// color-filter literal's color name and compiled inner matcher. Color
// filters never affect the overall match result (see constantMatcher);
// callers use the returned matchers purely to tint matching rows.
func ExtractColorFilters(node *searchparser.Node) []ColorFilterPair {
	if node == nil {
		return nil
	}
	var pairs []ColorFilterPair
	if node.Type == searchparser.NodeTypeSearch && node.SearchType == SearchTypeColorFilter && len(node.Children) > 0 {
		if inner, err := MakeSearcherFromNode(node.Children[0]); err == nil && inner != nil {
			pairs = append(pairs, ColorFilterPair{Color: node.Color, Matcher: inner})
		}
	}
	for _, child := range node.Children {
		pairs = append(pairs, ExtractColorFilters(child)...)
	}
	return pairs
}

// MakeSearcherFromNode compiles one AST node (and, transitively, its
// subtree) into a Searcher. AND/OR nodes collapse away entirely when they
// end up with zero or one live children, so a query that parses down to a
// single leaf doesn't pay for an extra combinator wrapper.
func MakeSearcherFromNode(node *searchparser.Node) (Searcher, error) {
	if node == nil {
		return nil, nil
	}

	switch node.Type {
	case searchparser.NodeTypeSearch:
		leaf, err := compileLeaf(node)
		if err != nil {
			return nil, err
		}
		if leaf == nil {
			return nil, nil
		}
		if node.IsNot {
			return MakeNotSearcher(leaf), nil
		}
		return leaf, nil

	case searchparser.NodeTypeError:
		// Error nodes carry no matching semantics; ExtractErrorSpans is
		// what surfaces them to the caller.
		return nil, nil

	case searchparser.NodeTypeAnd:
		return collapseJoin(node.Children, MakeAndSearcher)

	case searchparser.NodeTypeOr:
		return collapseJoin(node.Children, MakeOrSearcher)

	default:
		return nil, nil
	}
}

// collapseJoin compiles every child and, if more than one produced a live
// matcher, wraps them with join. A single surviving child is returned bare
// and zero surviving children yields (nil, nil) — both AND and OR share
// this collapsing rule, only the combinator constructor differs.
func collapseJoin(nodes []*searchparser.Node, join func([]Searcher) Searcher) (Searcher, error) {
	var compiled []Searcher
	for _, child := range nodes {
		m, err := MakeSearcherFromNode(child)
		if err != nil {
			return nil, err
		}
		if m != nil {
			compiled = append(compiled, m)
		}
	}
	switch len(compiled) {
	case 0:
		return nil, nil
	case 1:
		return compiled[0], nil
	default:
		return join(compiled), nil
	}
}

// specialLeafTypes are leaf search types resolved from context rather than
// node.SearchTerm, so they bypass the term-keyed switch in compileLeaf.
var specialLeafTypes = map[string]func() Searcher{
	SearchTypeMarked:    MakeMarkedSearcher,
	SearchTypeUserQuery: MakeUserQuerySearcher,
}

// compileLeaf compiles a single non-boolean AST node into a matcher.
func compileLeaf(node *searchparser.Node) (Searcher, error) {
	if make, ok := specialLeafTypes[node.SearchType]; ok {
		return make(), nil
	}
	if node.SearchTerm == "" {
		return MakeAllSearcher(), nil
	}

	switch node.SearchType {
	case SearchTypeExact:
		return MakeExactSearcher(node.Field, node.SearchTerm, false), nil
	case SearchTypeExactCase:
		return MakeExactSearcher(node.Field, node.SearchTerm, true), nil
	case SearchTypeRegexp:
		return MakeRegexpSearcher(node.Field, node.SearchTerm, false)
	case SearchTypeRegexpCase:
		return MakeRegexpSearcher(node.Field, node.SearchTerm, true)
	case SearchTypeFzf:
		return MakeFzfSearcher(node.Field, node.SearchTerm, false)
	case SearchTypeFzfCase:
		return MakeFzfSearcher(node.Field, node.SearchTerm, true)
	case SearchTypeTag:
		return MakeTagSearcher(node.Field, node.SearchTerm), nil
	case SearchTypeNumeric:
		return MakeNumericSearcher(node.Field, node.SearchTerm, node.Op)
	case SearchTypeColorFilter:
		return MakeColorFilterSearcher(), nil
	default:
		// Unrecognized search types fall back to a plain case-insensitive
		// substring match rather than failing the whole query.
		return MakeExactSearcher(node.Field, node.SearchTerm, false), nil
	}
}
