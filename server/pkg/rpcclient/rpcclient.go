// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

// Generated Code. DO NOT EDIT.

package rpcclient

import (
	"github.com/tracewell/tracewell/server/pkg/rpc"
	"github.com/tracewell/tracewell/server/pkg/rpctypes"
)

// command "message", rpctypes.MessageCommand
func MessageCommand(w *rpc.RpcClient, data rpctypes.CommandMessageData, opts *rpc.RpcOpts) error {
	_, err := SendRpcRequestCallHelper[any](w, rpctypes.Command_Message, data, opts)
	return err
}

// command "logsearchrequest", rpctypes.LogSearchRequestCommand
func LogSearchRequestCommand(w *rpc.RpcClient, data rpctypes.SearchRequestData, opts *rpc.RpcOpts) (rpctypes.SearchResultData, error) {
	resp, err := SendRpcRequestCallHelper[rpctypes.SearchResultData](w, rpctypes.Command_LogSearchRequest, data, opts)
	return resp, err
}

// command "logwidgetadmin", rpctypes.LogWidgetAdminCommand
func LogWidgetAdminCommand(w *rpc.RpcClient, data rpctypes.LogWidgetAdminData, opts *rpc.RpcOpts) error {
	_, err := SendRpcRequestCallHelper[any](w, rpctypes.Command_LogWidgetAdmin, data, opts)
	return err
}

// command "logstreamupdate", rpctypes.LogStreamUpdateCommand
func LogStreamUpdateCommand(w *rpc.RpcClient, data rpctypes.StreamUpdateData, opts *rpc.RpcOpts) error {
	_, err := SendRpcRequestCallHelper[any](w, rpctypes.Command_LogStreamUpdate, data, opts)
	return err
}

// command "logupdatemarkedlines", rpctypes.LogUpdateMarkedLinesCommand
func LogUpdateMarkedLinesCommand(w *rpc.RpcClient, data rpctypes.MarkedLinesData, opts *rpc.RpcOpts) error {
	_, err := SendRpcRequestCallHelper[any](w, rpctypes.Command_LogUpdateMarkedLines, data, opts)
	return err
}

// command "loggetmarkedlines", rpctypes.LogGetMarkedLinesCommand
func LogGetMarkedLinesCommand(w *rpc.RpcClient, data rpctypes.MarkedLinesRequestData, opts *rpc.RpcOpts) (rpctypes.MarkedLinesResultData, error) {
	resp, err := SendRpcRequestCallHelper[rpctypes.MarkedLinesResultData](w, rpctypes.Command_LogGetMarkedLines, data, opts)
	return resp, err
}
