// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"strconv"

	"github.com/tracewell/tracewell/pkg/ds"
	"github.com/tracewell/tracewell/pkg/utilfn"
)

// logSearchObject adapts a single ds.LogLine into a SearchObject. Derived
// values (lowercased text, the stringified line number, parsed tags) are
// computed once per instance and cached, since a widget searches the same
// line repeatedly as the query text changes keystroke by keystroke.
type logSearchObject struct {
	msg     string
	source  string
	lineNum int64

	msgLower    string
	sourceLower string
	lineNumStr  string
	tags        []string
	tagsParsed  bool
}

// LogLineToSearchObject adapts a log line for the matcher tree.
func LogLineToSearchObject(line ds.LogLine) SearchObject {
	return &logSearchObject{
		msg:     line.Msg,
		source:  line.Source,
		lineNum: line.LineNum,
	}
}

func (o *logSearchObject) GetId() int64 {
	return o.lineNum
}

func (o *logSearchObject) GetTags() []string {
	if !o.tagsParsed {
		o.tags = utilfn.ParseTags(o.msg)
		o.tagsParsed = true
	}
	return o.tags
}

func (o *logSearchObject) GetField(fieldName string, fieldMods int) string {
	lower := fieldMods&FieldMod_ToLower != 0
	switch fieldName {
	case "", "msg", "line":
		if lower {
			return lowerCache(o.msg, &o.msgLower)
		}
		return o.msg
	case "source":
		if lower {
			return lowerCache(o.source, &o.sourceLower)
		}
		return o.source
	case "linenum":
		if o.lineNumStr == "" {
			o.lineNumStr = strconv.FormatInt(o.lineNum, 10)
		}
		return o.lineNumStr
	default:
		return ""
	}
}
