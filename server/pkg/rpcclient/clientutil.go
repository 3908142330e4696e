// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package rpcclient

import (
	"errors"
	"sync"

	"github.com/tracewell/tracewell/pkg/utilfn"
	"github.com/tracewell/tracewell/server/pkg/rpc"
)

var (
	bareClient     *rpc.RpcClient
	bareClientOnce sync.Once
)

// GetBareClient returns the server's own RpcClient, used for
// server-initiated sends (stream updates) that aren't a response to an
// inbound request. Its output is pumped through the default router so a
// message's Route field reaches the right websocket connection.
func GetBareClient() *rpc.RpcClient {
	bareClientOnce.Do(func() {
		bareClient = rpc.MakeRpcClient(nil, nil, nil, rpc.BareClientRoute)
		go rpc.GetDefaultRouter().PumpOutput(bareClient)
	})
	return bareClient
}

func SendRpcRequestCallHelper[T any](w *rpc.RpcClient, command string, data interface{}, opts *rpc.RpcOpts) (T, error) {
	if opts == nil {
		opts = &rpc.RpcOpts{}
	}
	var respData T
	if w == nil {
		return respData, errors.New("nil RpcClient passed to rpcclient")
	}
	if opts.NoResponse {
		err := w.SendCommand(command, data, opts)
		if err != nil {
			return respData, err
		}
		return respData, nil
	}
	resp, err := w.SendRpcRequest(command, data, opts)
	if err != nil {
		return respData, err
	}
	err = utilfn.ReUnmarshal(&respData, resp)
	if err != nil {
		return respData, err
	}
	return respData, nil
}
