// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"strconv"

	"github.com/tracewell/tracewell/pkg/ds"
)

// goRoutineSearchObject adapts a single ds.GoRoutineStack into a
// SearchObject, so the same query syntax and matcher tree that searches log
// lines can also search a goroutine dump.
type goRoutineSearchObject struct {
	goId  int64
	name  string
	tags  []string
	stack string
	state string

	goIdStr     string
	nameLower   string
	stackLower  string
	stateLower  string
	combined    string
	combLower   string
}

// GoRoutineStackToSearchObject adapts a goroutine stack for the matcher tree.
func GoRoutineStackToSearchObject(gr ds.GoRoutineStack) SearchObject {
	return &goRoutineSearchObject{
		goId:  gr.GoId,
		name:  gr.Name,
		tags:  gr.Tags,
		stack: gr.StackTrace,
		state: gr.State,
	}
}

func (o *goRoutineSearchObject) GetId() int64 {
	return o.goId
}

func (o *goRoutineSearchObject) GetTags() []string {
	return o.tags
}

func (o *goRoutineSearchObject) GetField(fieldName string, fieldMods int) string {
	lower := fieldMods&FieldMod_ToLower != 0
	switch fieldName {
	case "goid":
		if o.goIdStr == "" {
			o.goIdStr = strconv.FormatInt(o.goId, 10)
		}
		return o.goIdStr
	case "name":
		if lower {
			return lowerCache(o.name, &o.nameLower)
		}
		return o.name
	case "stack":
		if lower {
			return lowerCache(o.stack, &o.stackLower)
		}
		return o.stack
	case "state":
		if lower {
			return lowerCache(o.state, &o.stateLower)
		}
		return o.state
	case "":
		// Name, state, and stack trace combined, one per line, so a bare
		// query with no field prefix searches across all three at once.
		if o.combined == "" {
			o.combined = o.name + "\n" + o.state + "\n" + o.stack
		}
		if lower {
			return lowerCache(o.combined, &o.combLower)
		}
		return o.combined
	default:
		return ""
	}
}
