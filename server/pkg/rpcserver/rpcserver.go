// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

// Package rpcserver implements the search core's rpctypes.FullRpcInterface:
// the handlers a connection's *rpc.RpcClient dispatches inbound commands to.
package rpcserver

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/tracewell/tracewell/server/pkg/apppeer"
	"github.com/tracewell/tracewell/server/pkg/gensearch"
	"github.com/tracewell/tracewell/server/pkg/rpctypes"
)

type RpcServerImpl struct{}

func (*RpcServerImpl) MessageCommand(ctx context.Context, data rpctypes.CommandMessageData) error {
	log.Printf("[rpc] message: %s\n", data.Message)
	return nil
}

// LogSearchRequestCommand (re)runs a widget's search and returns the
// requested pages, creating the widget's SearchManager on first use.
func (*RpcServerImpl) LogSearchRequestCommand(ctx context.Context, data rpctypes.SearchRequestData) (rpctypes.SearchResultData, error) {
	peer := apppeer.GetAppRunPeer(data.AppRunId, false)
	manager := gensearch.GetOrCreateManager(data.WidgetId, data.AppRunId, peer)
	return manager.SearchLogs(ctx, data)
}

// LogWidgetAdminCommand handles widget lifecycle actions that aren't a
// search: recording the requesting connection's route, dropping the
// manager, or keeping it alive across a reconnect.
func (*RpcServerImpl) LogWidgetAdminCommand(ctx context.Context, data rpctypes.LogWidgetAdminData) error {
	manager := gensearch.GetManager(data.WidgetId)
	if manager == nil {
		return nil
	}
	manager.SetRpcSource(ctx)
	if data.Drop {
		gensearch.DropManager(data.WidgetId)
	} else if data.KeepAlive {
		manager.UpdateLastUsed()
	}
	return nil
}

// LogStreamUpdateCommand exists only so the fire-and-forget push the search
// manager sends a widget's subscriber (see
// gensearch.SearchManager.ProcessNewLine) has a command name to dispatch on;
// the server never needs to act on it inbound.
func (*RpcServerImpl) LogStreamUpdateCommand(ctx context.Context, data rpctypes.StreamUpdateData) error {
	return nil
}

func (*RpcServerImpl) LogUpdateMarkedLinesCommand(ctx context.Context, data rpctypes.MarkedLinesData) error {
	markManager := gensearch.GetMarkManager(data.WidgetId)
	if markManager == nil {
		return fmt.Errorf("widget not found: %s", data.WidgetId)
	}
	if data.Clear {
		markManager.ClearMarks()
		return nil
	}
	markedLines := make(map[int64]bool)
	for lineNumStr, isMarked := range data.MarkedLines {
		lineNum, err := strconv.ParseInt(lineNumStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid line number: %s", lineNumStr)
		}
		markedLines[lineNum] = isMarked
	}
	markManager.UpdateMarkedLines(markedLines)
	return nil
}

func (*RpcServerImpl) LogGetMarkedLinesCommand(ctx context.Context, data rpctypes.MarkedLinesRequestData) (rpctypes.MarkedLinesResultData, error) {
	manager := gensearch.GetManager(data.WidgetId)
	if manager == nil {
		return rpctypes.MarkedLinesResultData{}, fmt.Errorf("widget not found: %s", data.WidgetId)
	}
	markedLines, err := manager.GetMarkedLogLines()
	if err != nil {
		return rpctypes.MarkedLinesResultData{}, err
	}
	return rpctypes.MarkedLinesResultData{Lines: markedLines}, nil
}
