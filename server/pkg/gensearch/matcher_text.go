// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// fieldText resolves the field value a text matcher should test against,
// asking for the pre-lowercased cache when the match is case-insensitive.
// All three text matchers below (substring, regexp, fuzzy) need this same
// resolution, so it lives in one place instead of three copies.
func fieldText(obj SearchObject, field string, caseSensitive bool) string {
	if caseSensitive {
		return obj.GetField(field, 0)
	}
	return obj.GetField(field, FieldMod_ToLower)
}

// substringMatcher reports whether a field contains a literal term.
type substringMatcher struct {
	field         string
	term          string
	caseSensitive bool
}

// MakeExactSearcher builds a literal substring matcher. When caseSensitive
// is false the term is folded to lowercase up front so Match never has to
// redo it per call.
func MakeExactSearcher(field string, term string, caseSensitive bool) Searcher {
	if !caseSensitive {
		term = strings.ToLower(term)
	}
	return &substringMatcher{field: field, term: term, caseSensitive: caseSensitive}
}

func (s *substringMatcher) Match(sctx *SearchContext, obj SearchObject) bool {
	return strings.Contains(fieldText(obj, s.field, s.caseSensitive), s.term)
}

func (s *substringMatcher) GetType() string {
	if s.caseSensitive {
		return SearchTypeExactCase
	}
	return SearchTypeExact
}

// regexpMatcher reports whether a field matches a compiled pattern.
type regexpMatcher struct {
	field         string
	source        string
	compiled      *regexp.Regexp
	caseSensitive bool
}

// MakeRegexpSearcher compiles term as a regular expression. Case-insensitive
// matching uses the "(?i)" inline flag rather than lowercasing the field
// text, since lowercasing can change what a character class like [A-Z]
// matches.
func MakeRegexpSearcher(field string, term string, caseSensitive bool) (Searcher, error) {
	pattern := term
	if !caseSensitive {
		pattern = "(?i)" + term
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression: %w", err)
	}
	return &regexpMatcher{field: field, source: term, compiled: compiled, caseSensitive: caseSensitive}, nil
}

func (r *regexpMatcher) Match(sctx *SearchContext, obj SearchObject) bool {
	return r.compiled.MatchString(obj.GetField(r.field, 0))
}

func (r *regexpMatcher) GetType() string {
	if r.caseSensitive {
		return SearchTypeRegexpCase
	}
	return SearchTypeRegexp
}

// fuzzyMatcher scores a field against a pattern using fzf's ranking
// algorithm, matching if any non-contiguous subsequence scores above zero.
type fuzzyMatcher struct {
	field         string
	pattern       []rune
	slab          *util.Slab
	caseSensitive bool
}

// MakeFzfSearcher builds a fuzzy matcher. Each matcher gets its own slab
// (fzf's scratch allocator) since slabs aren't safe to share across
// concurrent Match calls.
func MakeFzfSearcher(field string, term string, caseSensitive bool) (Searcher, error) {
	if !caseSensitive {
		term = strings.ToLower(term)
	}
	return &fuzzyMatcher{
		field:         field,
		pattern:       []rune(term),
		slab:          util.MakeSlab(64, 4096),
		caseSensitive: caseSensitive,
	}, nil
}

func (f *fuzzyMatcher) Match(sctx *SearchContext, obj SearchObject) bool {
	chars := util.ToChars([]byte(fieldText(obj, f.field, f.caseSensitive)))
	result, _ := algo.FuzzyMatchV2(f.caseSensitive, true, true, &chars, f.pattern, true, f.slab)
	return result.Score > 0
}

func (f *fuzzyMatcher) GetType() string {
	if f.caseSensitive {
		return SearchTypeFzfCase
	}
	return SearchTypeFzf
}
