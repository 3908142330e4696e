// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

// Package rpc is the message-envelope transport the search core speaks over:
// a bidirectional byte-channel pair carrying JSON RpcMessage packets, request
// correlation by reqid/resid, and per-request cancellation/timeout.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tracewell/tracewell/pkg/panichandler"
	"github.com/tracewell/tracewell/pkg/utilfn"
	"github.com/tracewell/tracewell/server/pkg/rpctypes"
)

const DefaultTimeoutMs = 5000
const RespChSize = 32
const CtxDoneChSize = 10
const DefaultInputChSize = 32
const DefaultOutputChSize = 32

// AbstractRpcClient lets callers that don't hold a concrete *RpcClient still
// push/pull raw wire bytes (e.g. a websocket relay).
type AbstractRpcClient interface {
	SendRpcMessage(msg []byte)
	RecvRpcMessage() ([]byte, bool) // blocking
}

// RpcClient pumps RpcMessage envelopes between InputCh/OutputCh, dispatching
// inbound commands to ServerImpl and correlating outbound requests to their
// eventual response by reqid.
type RpcClient struct {
	Lock               *sync.Mutex
	InputCh            chan []byte
	OutputCh           chan []byte
	CtxDoneCh          chan string // for context cancellation, value is resid
	AuthToken          string
	RpcMap             map[string]*rpcData
	ServerImpl         rpctypes.FullRpcInterface
	ResponseHandlerMap map[string]*RpcResponseHandler // reqid => handler
	Debug              bool
	DebugName          string
	ServerDone         bool
}

type RpcOpts struct {
	Timeout        int64  `json:"timeout,omitempty"`
	NoResponse     bool   `json:"noresponse,omitempty"`
	Route          string `json:"route,omitempty"`
	StreamCancelFn func() `json:"-"` // output parameter, set by the handler
}

type rpcContextKey struct{}
type rpcRespHandlerContextKey struct{}

func withRpcClientContext(ctx context.Context, rpcClient *RpcClient) context.Context {
	return context.WithValue(ctx, rpcContextKey{}, rpcClient)
}

func withRespHandler(ctx context.Context, handler *RpcResponseHandler) context.Context {
	return context.WithValue(ctx, rpcRespHandlerContextKey{}, handler)
}

func GetRpcClientFromContext(ctx context.Context) *RpcClient {
	rtn := ctx.Value(rpcContextKey{})
	if rtn == nil {
		return nil
	}
	return rtn.(*RpcClient)
}

func GetRpcSourceFromContext(ctx context.Context) string {
	rtn := ctx.Value(rpcRespHandlerContextKey{})
	if rtn == nil {
		return ""
	}
	return rtn.(*RpcResponseHandler).GetSource()
}

func GetIsCanceledFromContext(ctx context.Context) bool {
	rtn := ctx.Value(rpcRespHandlerContextKey{})
	if rtn == nil {
		return false
	}
	return rtn.(*RpcResponseHandler).IsCanceled()
}

func GetRpcResponseHandlerFromContext(ctx context.Context) *RpcResponseHandler {
	rtn := ctx.Value(rpcRespHandlerContextKey{})
	if rtn == nil {
		return nil
	}
	return rtn.(*RpcResponseHandler)
}

func (w *RpcClient) SendRpcMessage(msg []byte) {
	w.InputCh <- msg
}

func (w *RpcClient) RecvRpcMessage() ([]byte, bool) {
	msg, more := <-w.OutputCh
	return msg, more
}

// RpcMessage is the wire envelope. Exactly one of {command, reqid, resid,
// cancel} identifies the packet's shape; Validate enforces that.
type RpcMessage struct {
	Command   string `json:"command,omitempty"`
	ReqId     string `json:"reqid,omitempty"`
	ResId     string `json:"resid,omitempty"`
	Timeout   int64  `json:"timeout,omitempty"`
	Route     string `json:"route,omitempty"`
	AuthToken string `json:"authtoken,omitempty"`
	Source    string `json:"source,omitempty"`
	Cont      bool   `json:"cont,omitempty"`
	Cancel    bool   `json:"cancel,omitempty"`
	Error     string `json:"error,omitempty"`
	DataType  string `json:"datatype,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func (r *RpcMessage) IsRpcRequest() bool {
	return r.Command != "" || r.ReqId != ""
}

func (r *RpcMessage) Validate() error {
	if r.ReqId != "" && r.ResId != "" {
		return fmt.Errorf("request packets may not have both reqid and resid set")
	}
	if r.Cancel {
		if r.Command != "" {
			return fmt.Errorf("cancel packets may not have command set")
		}
		if r.ReqId == "" && r.ResId == "" {
			return fmt.Errorf("cancel packets must have reqid or resid set")
		}
		if r.Data != nil {
			return fmt.Errorf("cancel packets may not have data set")
		}
		return nil
	}
	if r.Command != "" {
		if r.ResId != "" {
			return fmt.Errorf("command packets may not have resid set")
		}
		if r.Error != "" {
			return fmt.Errorf("command packets may not have error set")
		}
		if r.DataType != "" {
			return fmt.Errorf("command packets may not have datatype set")
		}
		return nil
	}
	if r.ReqId != "" {
		if r.ResId == "" {
			return fmt.Errorf("request packets must have resid set")
		}
		if r.Timeout != 0 {
			return fmt.Errorf("non-command request packets may not have timeout set")
		}
		return nil
	}
	if r.ResId != "" {
		if r.Command != "" {
			return fmt.Errorf("response packets may not have command set")
		}
		if r.ReqId == "" {
			return fmt.Errorf("response packets must have reqid set")
		}
		if r.Timeout != 0 {
			return fmt.Errorf("response packets may not have timeout set")
		}
		return nil
	}
	return fmt.Errorf("invalid packet: must have command, reqid, or resid set")
}

type rpcData struct {
	Command string
	Route   string
	ResCh   chan *RpcMessage
	Handler *RpcRequestHandler
}

// MakeRpcClient wires a client around an existing byte-channel pair (or
// allocates default-sized ones) and starts its dispatch loop. OutputCh is
// closed once inputCh is closed/drained.
func MakeRpcClient(inputCh chan []byte, outputCh chan []byte, serverImpl rpctypes.FullRpcInterface, debugName string) *RpcClient {
	if inputCh == nil {
		inputCh = make(chan []byte, DefaultInputChSize)
	}
	if outputCh == nil {
		outputCh = make(chan []byte, DefaultOutputChSize)
	}
	rtn := &RpcClient{
		Lock:               &sync.Mutex{},
		DebugName:          debugName,
		InputCh:            inputCh,
		OutputCh:           outputCh,
		CtxDoneCh:          make(chan string, CtxDoneChSize),
		RpcMap:             make(map[string]*rpcData),
		ServerImpl:         serverImpl,
		ResponseHandlerMap: make(map[string]*RpcResponseHandler),
	}
	go rtn.runServer()
	return rtn
}

func (w *RpcClient) SetAuthToken(token string) {
	w.AuthToken = token
}

func (w *RpcClient) GetAuthToken() string {
	return w.AuthToken
}

func (w *RpcClient) SetServerImpl(serverImpl rpctypes.FullRpcInterface) {
	w.Lock.Lock()
	defer w.Lock.Unlock()
	w.ServerImpl = serverImpl
}

func (w *RpcClient) registerResponseHandler(reqId string, handler *RpcResponseHandler) {
	w.Lock.Lock()
	defer w.Lock.Unlock()
	w.ResponseHandlerMap[reqId] = handler
}

func (w *RpcClient) unregisterResponseHandler(reqId string) {
	w.Lock.Lock()
	defer w.Lock.Unlock()
	delete(w.ResponseHandlerMap, reqId)
}

func (w *RpcClient) cancelRequest(reqId string) {
	if reqId == "" {
		return
	}
	w.Lock.Lock()
	defer w.Lock.Unlock()
	handler := w.ResponseHandlerMap[reqId]
	if handler != nil {
		handler.canceled.Store(true)
	}
}

func (w *RpcClient) handleRequest(req *RpcMessage) {
	timeoutMs := req.Timeout
	if timeoutMs <= 0 {
		timeoutMs = DefaultTimeoutMs
	}
	ctx, cancelFn := context.WithTimeout(context.Background(), time.Duration(timeoutMs)*time.Millisecond)
	ctx = withRpcClientContext(ctx, w)
	respHandler := &RpcResponseHandler{
		w:               w,
		ctx:             ctx,
		reqId:           req.ReqId,
		command:         req.Command,
		commandData:     req.Data,
		source:          req.Source,
		done:            &atomic.Bool{},
		canceled:        &atomic.Bool{},
		contextCancelFn: &atomic.Pointer[context.CancelFunc]{},
	}
	respHandler.contextCancelFn.Store(&cancelFn)
	respHandler.ctx = withRespHandler(respHandler.ctx, respHandler)
	w.registerResponseHandler(req.ReqId, respHandler)
	defer func() {
		panicErr := panichandler.PanicHandler("handleRequest", recover())
		if panicErr != nil {
			respHandler.SendResponseError(panicErr)
		}
		cancelFn()
		respHandler.Finalize()
	}()
	dispatchCommand(respHandler)
}

// dispatchCommand routes one inbound command to the matching
// rpctypes.FullRpcInterface method. Unlike the teacher's reflection-based
// serverImplAdapter (which supported an arbitrary, runtime-registered
// server-impl shape), this switches directly over the fixed, narrow command
// set the search core actually serves.
func dispatchCommand(respHandler *RpcResponseHandler) {
	impl := respHandler.w.ServerImpl
	if impl == nil {
		respHandler.SendResponseError(fmt.Errorf("no server implementation registered"))
		return
	}
	ctx := respHandler.ctx
	switch respHandler.command {
	case rpctypes.Command_Message:
		var data rpctypes.CommandMessageData
		if err := utilfn.ReUnmarshal(&data, respHandler.commandData); err != nil {
			respHandler.SendResponseError(err)
			return
		}
		err := impl.MessageCommand(ctx, data)
		sendDispatchResult(respHandler, nil, err)
	case rpctypes.Command_LogSearchRequest:
		var data rpctypes.SearchRequestData
		if err := utilfn.ReUnmarshal(&data, respHandler.commandData); err != nil {
			respHandler.SendResponseError(err)
			return
		}
		result, err := impl.LogSearchRequestCommand(ctx, data)
		sendDispatchResult(respHandler, result, err)
	case rpctypes.Command_LogWidgetAdmin:
		var data rpctypes.LogWidgetAdminData
		if err := utilfn.ReUnmarshal(&data, respHandler.commandData); err != nil {
			respHandler.SendResponseError(err)
			return
		}
		err := impl.LogWidgetAdminCommand(ctx, data)
		sendDispatchResult(respHandler, nil, err)
	case rpctypes.Command_LogStreamUpdate:
		var data rpctypes.StreamUpdateData
		if err := utilfn.ReUnmarshal(&data, respHandler.commandData); err != nil {
			respHandler.SendResponseError(err)
			return
		}
		err := impl.LogStreamUpdateCommand(ctx, data)
		sendDispatchResult(respHandler, nil, err)
	case rpctypes.Command_LogUpdateMarkedLines:
		var data rpctypes.MarkedLinesData
		if err := utilfn.ReUnmarshal(&data, respHandler.commandData); err != nil {
			respHandler.SendResponseError(err)
			return
		}
		err := impl.LogUpdateMarkedLinesCommand(ctx, data)
		sendDispatchResult(respHandler, nil, err)
	case rpctypes.Command_LogGetMarkedLines:
		var data rpctypes.MarkedLinesRequestData
		if err := utilfn.ReUnmarshal(&data, respHandler.commandData); err != nil {
			respHandler.SendResponseError(err)
			return
		}
		result, err := impl.LogGetMarkedLinesCommand(ctx, data)
		sendDispatchResult(respHandler, result, err)
	default:
		respHandler.SendResponseError(fmt.Errorf("unknown rpc command %q", respHandler.command))
	}
}

func sendDispatchResult(respHandler *RpcResponseHandler, data any, err error) {
	if err != nil {
		respHandler.SendResponseError(err)
		return
	}
	_ = respHandler.SendResponse(data, true)
}

func (w *RpcClient) runServer() {
	defer func() {
		panichandler.PanicHandler("rpc.runServer", recover())
		close(w.OutputCh)
		w.setServerDone()
	}()
outer:
	for {
		var msgBytes []byte
		var inputChMore bool
		var resIdTimeout string

		select {
		case msgBytes, inputChMore = <-w.InputCh:
			if !inputChMore {
				break outer
			}
			if w.Debug {
				log.Printf("[%s] received message: %s\n", w.DebugName, string(msgBytes))
			}
		case resIdTimeout = <-w.CtxDoneCh:
			if w.Debug {
				log.Printf("[%s] received request timeout: %s\n", w.DebugName, resIdTimeout)
			}
			w.unregisterRpc(resIdTimeout, fmt.Errorf("EC-TIME: timeout waiting for response"))
			continue
		}

		var msg RpcMessage
		err := json.Unmarshal(msgBytes, &msg)
		if err != nil {
			log.Printf("[%s] rpcclient received bad message: %v\n", w.DebugName, err)
			continue
		}
		if msg.Cancel {
			if msg.ReqId != "" {
				w.cancelRequest(msg.ReqId)
			}
			continue
		}
		if msg.IsRpcRequest() {
			go func() {
				defer func() {
					panichandler.PanicHandler("handleRequest:goroutine", recover())
				}()
				w.handleRequest(&msg)
			}()
		} else {
			w.sendRespWithBlockMessage(msg)
			if !msg.Cont {
				w.unregisterRpc(msg.ResId, nil)
			}
		}
	}
}

func (w *RpcClient) getResponseCh(resId string) (chan *RpcMessage, *rpcData) {
	if resId == "" {
		return nil, nil
	}
	w.Lock.Lock()
	defer w.Lock.Unlock()
	rd := w.RpcMap[resId]
	if rd == nil {
		return nil, nil
	}
	return rd.ResCh, rd
}

func (w *RpcClient) registerRpc(handler *RpcRequestHandler, command string, route string, reqId string) chan *RpcMessage {
	w.Lock.Lock()
	defer w.Lock.Unlock()
	rpcCh := make(chan *RpcMessage, RespChSize)
	w.RpcMap[reqId] = &rpcData{
		Handler: handler,
		Command: command,
		Route:   route,
		ResCh:   rpcCh,
	}
	go func() {
		defer func() {
			panichandler.PanicHandler("registerRpc:timeout", recover())
		}()
		<-handler.ctx.Done()
		w.retrySendTimeout(reqId)
	}()
	return rpcCh
}

func (w *RpcClient) unregisterRpc(reqId string, err error) {
	w.Lock.Lock()
	defer w.Lock.Unlock()
	rd := w.RpcMap[reqId]
	if rd == nil {
		return
	}
	if err != nil {
		errResp := &RpcMessage{
			ResId: reqId,
			Error: err.Error(),
		}
		select {
		case rd.ResCh <- errResp:
		default:
		}
	}
	delete(w.RpcMap, reqId)
	close(rd.ResCh)
	rd.Handler.callContextCancelFn()
}

// SendCommand sends a fire-and-forget command: no response is expected.
func (w *RpcClient) SendCommand(command string, data any, opts *RpcOpts) error {
	var optsCopy RpcOpts
	if opts != nil {
		optsCopy = *opts
	}
	optsCopy.NoResponse = true
	optsCopy.Timeout = 0
	handler, err := w.SendComplexRequest(command, data, &optsCopy)
	if err != nil {
		return err
	}
	handler.finalize()
	return nil
}

// SendRpcRequest sends a command and blocks for its single response.
func (w *RpcClient) SendRpcRequest(command string, data any, opts *RpcOpts) (any, error) {
	var optsCopy RpcOpts
	if opts != nil {
		optsCopy = *opts
	}
	optsCopy.NoResponse = false
	handler, err := w.SendComplexRequest(command, data, &optsCopy)
	if err != nil {
		return nil, err
	}
	defer handler.finalize()
	return handler.NextResponse()
}

func (w *RpcClient) SendComplexRequest(command string, data any, opts *RpcOpts) (rtnHandler *RpcRequestHandler, rtnErr error) {
	if w.IsServerDone() {
		return nil, errors.New("server is no longer running, cannot send new requests")
	}
	if opts == nil {
		opts = &RpcOpts{}
	}
	timeoutMs := opts.Timeout
	if timeoutMs <= 0 {
		timeoutMs = DefaultTimeoutMs
	}
	defer func() {
		panichandler.PanicHandler("SendComplexRequest", recover())
	}()
	if command == "" {
		return nil, fmt.Errorf("command cannot be empty")
	}
	handler := &RpcRequestHandler{
		w:           w,
		ctxCancelFn: &atomic.Pointer[context.CancelFunc]{},
	}
	var cancelFn context.CancelFunc
	handler.ctx, cancelFn = context.WithTimeout(context.Background(), time.Duration(timeoutMs)*time.Millisecond)
	handler.ctxCancelFn.Store(&cancelFn)
	if !opts.NoResponse {
		handler.reqId = uuid.New().String()
	}
	req := &RpcMessage{
		Command:   command,
		ReqId:     handler.reqId,
		Data:      data,
		Timeout:   timeoutMs,
		Route:     opts.Route,
		AuthToken: w.GetAuthToken(),
	}
	barr, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	handler.respCh = w.registerRpc(handler, command, opts.Route, handler.reqId)
	w.OutputCh <- barr
	return handler, nil
}

func (w *RpcClient) IsServerDone() bool {
	w.Lock.Lock()
	defer w.Lock.Unlock()
	return w.ServerDone
}

func (w *RpcClient) setServerDone() {
	w.Lock.Lock()
	defer w.Lock.Unlock()
	w.ServerDone = true
	close(w.CtxDoneCh)
	go utilfn.DrainChan(w.InputCh)
}

func (w *RpcClient) retrySendTimeout(resId string) {
	done := func() bool {
		w.Lock.Lock()
		defer w.Lock.Unlock()
		if w.ServerDone {
			return true
		}
		select {
		case w.CtxDoneCh <- resId:
			return true
		default:
			return false
		}
	}
	for {
		if done() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// sendRespWithBlockMessage delivers a response packet to its waiting
// request, tolerating a full channel for up to a second before giving up
// and failing the request outright.
func (w *RpcClient) sendRespWithBlockMessage(msg RpcMessage) {
	respCh, rd := w.getResponseCh(msg.ResId)
	if respCh == nil {
		return
	}
	select {
	case respCh <- &msg:
		return
	default:
	}
	log.Printf("[%s] blocking on response command:%s route:%s resid:%s\n", w.DebugName, rd.Command, rd.Route, msg.ResId)
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	select {
	case respCh <- &msg:
		return
	case <-ctx.Done():
	}
	log.Printf("[%s] failed to clear response channel (waited 1s), will fail RPC command:%s route:%s resid:%s\n", w.DebugName, rd.Command, rd.Route, msg.ResId)
	w.unregisterRpc(msg.ResId, nil)
}

// RpcRequestHandler tracks one outbound (client-initiated) request awaiting
// its response(s).
type RpcRequestHandler struct {
	w           *RpcClient
	ctx         context.Context
	ctxCancelFn *atomic.Pointer[context.CancelFunc]
	reqId       string
	respCh      chan *RpcMessage
	cachedResp  *RpcMessage
}

func (handler *RpcRequestHandler) Context() context.Context {
	return handler.ctx
}

func (handler *RpcRequestHandler) SendCancel() {
	defer func() {
		panichandler.PanicHandler("SendCancel", recover())
	}()
	msg := &RpcMessage{
		Cancel:    true,
		ReqId:     handler.reqId,
		AuthToken: handler.w.GetAuthToken(),
	}
	barr, _ := json.Marshal(msg)
	handler.w.OutputCh <- barr
	handler.finalize()
}

func (handler *RpcRequestHandler) ResponseDone() bool {
	if handler.cachedResp != nil {
		return false
	}
	select {
	case msg, more := <-handler.respCh:
		if !more {
			return true
		}
		handler.cachedResp = msg
		return false
	default:
		return false
	}
}

func (handler *RpcRequestHandler) NextResponse() (any, error) {
	var resp *RpcMessage
	if handler.cachedResp != nil {
		resp = handler.cachedResp
		handler.cachedResp = nil
	} else {
		resp = <-handler.respCh
	}
	if resp == nil {
		return nil, errors.New("response channel closed")
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return resp.Data, nil
}

func (handler *RpcRequestHandler) finalize() {
	handler.callContextCancelFn()
	if handler.reqId != "" {
		handler.w.unregisterRpc(handler.reqId, nil)
	}
}

func (handler *RpcRequestHandler) callContextCancelFn() {
	cancelFnPtr := handler.ctxCancelFn.Swap(nil)
	if cancelFnPtr != nil && *cancelFnPtr != nil {
		(*cancelFnPtr)()
	}
}

// RpcResponseHandler tracks one inbound (server-side) request and carries
// the plumbing a command implementation needs to respond.
type RpcResponseHandler struct {
	w               *RpcClient
	ctx             context.Context
	contextCancelFn *atomic.Pointer[context.CancelFunc]
	reqId           string
	source          string
	command         string
	commandData     any
	canceled        *atomic.Bool
	done            *atomic.Bool
}

func (handler *RpcResponseHandler) Context() context.Context {
	return handler.ctx
}

func (handler *RpcResponseHandler) GetCommand() string {
	return handler.command
}

func (handler *RpcResponseHandler) GetCommandRawData() any {
	return handler.commandData
}

func (handler *RpcResponseHandler) GetSource() string {
	return handler.source
}

func (handler *RpcResponseHandler) NeedsResponse() bool {
	return handler.reqId != ""
}

func (handler *RpcResponseHandler) SendResponse(data any, done bool) error {
	defer func() {
		panichandler.PanicHandler("SendResponse", recover())
	}()
	if handler.reqId == "" {
		return nil
	}
	if handler.done.Load() {
		return fmt.Errorf("request already done, cannot send additional response")
	}
	if done {
		defer handler.close()
	}
	msg := &RpcMessage{
		ResId:     handler.reqId,
		Data:      data,
		Cont:      !done,
		AuthToken: handler.w.GetAuthToken(),
	}
	barr, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	handler.w.OutputCh <- barr
	return nil
}

func (handler *RpcResponseHandler) SendResponseError(err error) {
	defer func() {
		panichandler.PanicHandler("SendResponseError", recover())
	}()
	if handler.reqId == "" || handler.done.Load() {
		return
	}
	defer handler.close()
	msg := &RpcMessage{
		ResId:     handler.reqId,
		Error:     err.Error(),
		AuthToken: handler.w.GetAuthToken(),
	}
	barr, _ := json.Marshal(msg)
	handler.w.OutputCh <- barr
}

func (handler *RpcResponseHandler) IsCanceled() bool {
	return handler.canceled.Load()
}

func (handler *RpcResponseHandler) close() {
	cancelFn := handler.contextCancelFn.Load()
	if cancelFn != nil && *cancelFn != nil {
		(*cancelFn)()
		handler.contextCancelFn.Store(nil)
	}
	handler.done.Store(true)
}

// Finalize sends an empty completion response if none was sent and releases
// the handler. Safe to call more than once.
func (handler *RpcResponseHandler) Finalize() {
	if handler.reqId == "" || handler.done.Load() {
		handler.w.unregisterResponseHandler(handler.reqId)
		return
	}
	handler.SendResponse(nil, true)
	handler.close()
	handler.w.unregisterResponseHandler(handler.reqId)
}

func (handler *RpcResponseHandler) IsDone() bool {
	return handler.done.Load()
}
