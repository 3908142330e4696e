// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"strings"

	"github.com/tracewell/tracewell/pkg/ds"
)

// watchSearchObject adapts a single ds.WatchSample into a SearchObject.
// A watch's value can come rendered three different ways (string, JSON,
// Go-syntax dump); val/combined both fold the non-empty ones together so a
// query against the bare field (or no field at all) sees whichever
// renderings the sample actually has.
type watchSearchObject struct {
	watchNum int64
	name     string
	val      string
	str      string
	json     string
	goFmt    string
	tags     []string
	kind     string

	nameLower  string
	valLower   string
	strLower   string
	jsonLower  string
	goFmtLower string
	kindLower  string
	combined   string
	combLower  string
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

// WatchSampleToSearchObject adapts a watch sample for the matcher tree.
func WatchSampleToSearchObject(watch ds.WatchSample) SearchObject {
	return &watchSearchObject{
		watchNum: watch.WatchNum,
		name:     watch.Name,
		val:      joinNonEmpty(watch.StrVal, watch.JsonVal, watch.GoFmtVal),
		str:      watch.StrVal,
		json:     watch.JsonVal,
		goFmt:    watch.GoFmtVal,
		tags:     watch.Tags,
		kind:     watch.Type,
	}
}

func (o *watchSearchObject) GetId() int64 {
	return o.watchNum
}

func (o *watchSearchObject) GetTags() []string {
	return o.tags
}

func (o *watchSearchObject) GetField(fieldName string, fieldMods int) string {
	lower := fieldMods&FieldMod_ToLower != 0
	switch fieldName {
	case "name":
		if lower {
			return lowerCache(o.name, &o.nameLower)
		}
		return o.name
	case "val":
		if lower {
			return lowerCache(o.val, &o.valLower)
		}
		return o.val
	case "str":
		if lower {
			return lowerCache(o.str, &o.strLower)
		}
		return o.str
	case "json":
		if lower {
			return lowerCache(o.json, &o.jsonLower)
		}
		return o.json
	case "gofmt":
		if lower {
			return lowerCache(o.goFmt, &o.goFmtLower)
		}
		return o.goFmt
	case "type":
		if lower {
			return lowerCache(o.kind, &o.kindLower)
		}
		return o.kind
	case "":
		if o.combined == "" {
			o.combined = joinNonEmpty(o.name, o.kind, o.val, o.str, o.json, o.goFmt)
		}
		if lower {
			return lowerCache(o.combined, &o.combLower)
		}
		return o.combined
	default:
		return ""
	}
}
