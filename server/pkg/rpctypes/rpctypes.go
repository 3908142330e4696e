// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

// Package rpctypes defines the wire payloads exchanged between a client and
// the search core over the RPC transport: search requests/results, marked
// line administration, and widget lifecycle.
package rpctypes

import (
	"context"

	"github.com/tracewell/tracewell/pkg/ds"
)

const (
	Command_Message              = "message"
	Command_LogSearchRequest     = "logsearchrequest"
	Command_LogWidgetAdmin       = "logwidgetadmin"
	Command_LogStreamUpdate      = "logstreamupdate"
	Command_LogUpdateMarkedLines = "logupdatemarkedlines"
	Command_LogGetMarkedLines    = "loggetmarkedlines"
)

// FullRpcInterface is the search-core's RPC surface. A concrete
// implementation is registered per connection by the transport layer.
type FullRpcInterface interface {
	MessageCommand(ctx context.Context, data CommandMessageData) error

	LogSearchRequestCommand(ctx context.Context, data SearchRequestData) (SearchResultData, error)
	LogWidgetAdminCommand(ctx context.Context, data LogWidgetAdminData) error
	LogStreamUpdateCommand(ctx context.Context, data StreamUpdateData) error
	LogUpdateMarkedLinesCommand(ctx context.Context, data MarkedLinesData) error
	LogGetMarkedLinesCommand(ctx context.Context, data MarkedLinesRequestData) (MarkedLinesResultData, error)
}

type CommandMessageData struct {
	Message string `json:"message"`
}

// ServerCommandMeta is the discriminator the frontend uses to decode an
// incoming command envelope.
type ServerCommandMeta struct {
	CommandType string `json:"commandtype"`
}

// SearchRequestData asks a widget's SearchManager to (re)run a search and
// return one or more pages of the filtered result.
type SearchRequestData struct {
	WidgetId     string `json:"widgetid"`
	AppRunId     string `json:"apprunid"`
	SearchTerm   string `json:"searchterm"`
	SystemQuery  string `json:"systemquery,omitempty"`
	PageSize     int    `json:"pagesize"`
	RequestPages []int  `json:"requestpages"`
	Streaming    bool   `json:"streaming"`
}

// PageData is one page of filtered log lines, addressed by logical page
// number (negative indices count from the end, see SearchManager.SearchLogs).
type PageData struct {
	PageNum int          `json:"pagenum"`
	Lines   []ds.LogLine `json:"lines"`
}

// SearchErrorSpan locates a parse error within the original search term so
// the UI can underline it.
type SearchErrorSpan struct {
	Start        int    `json:"start"`
	End          int    `json:"end"`
	ErrorMessage string `json:"errormessage"`
}

type SearchResultData struct {
	FilteredCount int               `json:"filteredcount"`
	SearchedCount int               `json:"searchedcount"`
	TotalCount    int               `json:"totalcount"`
	MaxCount      int               `json:"maxcount"`
	Pages         []PageData        `json:"pages"`
	ErrorSpans    []SearchErrorSpan `json:"errorspans,omitempty"`
}

// StreamUpdateData is pushed, fire-and-forget, to a streaming widget's
// subscriber whenever a newly ingested line matches its active search.
type StreamUpdateData struct {
	WidgetId      string       `json:"widgetid"`
	FilteredCount int          `json:"filteredcount"`
	SearchedCount int          `json:"searchedcount"`
	TotalCount    int          `json:"totalcount"`
	TrimmedLines  int          `json:"trimmedlines"`
	Offset        int          `json:"offset"`
	Lines         []ds.LogLine `json:"lines"`
}

// DropRequestData asks the registry to evict a widget's SearchManager,
// e.g. when its UI panel is closed.
type DropRequestData struct {
	WidgetId string `json:"widgetid"`
}

// LogWidgetAdminData covers widget lifecycle actions that aren't a search:
// dropping a manager, or marking it to be kept alive across reconnects.
type LogWidgetAdminData struct {
	WidgetId  string `json:"widgetid"`
	Drop      bool   `json:"drop,omitempty"`
	KeepAlive bool   `json:"keepalive,omitempty"`
}

// MarkedLinesData adds or clears marked-line state for a widget.
type MarkedLinesData struct {
	WidgetId    string          `json:"widgetid"`
	MarkedLines map[string]bool `json:"markedlines"`
	Clear       bool            `json:"clear,omitempty"`
}

type MarkedLinesRequestData struct {
	WidgetId string `json:"widgetid"`
}

type MarkedLinesResultData struct {
	Lines []ds.LogLine `json:"lines"`
}
