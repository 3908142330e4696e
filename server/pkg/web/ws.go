// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/tracewell/tracewell/pkg/utilds"
	"github.com/tracewell/tracewell/pkg/utilfn"
	"github.com/tracewell/tracewell/server/pkg/rpc"
	"github.com/tracewell/tracewell/server/pkg/rpcserver"
)

// WSInfo describes one live WebSocket connection for diagnostics.
type WSInfo struct {
	ConnId  string `json:"connid"`
	RouteId string `json:"routeid"`
}

// GetAllWSInfo returns a snapshot of every live connection.
func GetAllWSInfo() map[string]WSInfo {
	keys := ConnMap.Keys()
	result := make(map[string]WSInfo, len(keys))
	for _, key := range keys {
		wsModel := ConnMap.Get(key)
		if wsModel != nil {
			result[key] = WSInfo{ConnId: wsModel.ConnId, RouteId: wsModel.RouteId}
		}
	}
	return result
}

const wsReadWaitTimeout = 15 * time.Second
const wsWriteWaitTimeout = 10 * time.Second
const wsPingPeriodTickTime = 10 * time.Second
const wsInitialPingTime = 1 * time.Second

const EventType_Rpc = "rpc"
const EventType_Ping = "ping"
const EventType_Pong = "pong"

var ConnMap = utilds.MakeSyncMap[string, *WebSocketModel]()

type WSEventType struct {
	Type string `json:"type"`
	Ts   int64  `json:"ts"`
	Data any    `json:"data,omitempty"`
}

type WebSocketModel struct {
	ConnId   string
	RouteId  string
	Conn     *websocket.Conn
	OutputCh chan WSEventType
}

func RunWebSocketServer(ctx context.Context, listener net.Listener) {
	gr := mux.NewRouter()
	gr.HandleFunc("/ws", HandleWs)
	server := &http.Server{
		ReadTimeout:    HttpReadTimeout,
		WriteTimeout:   HttpWriteTimeout,
		MaxHeaderBytes: HttpMaxHeaderBytes,
		Handler:        gr,
	}
	server.SetKeepAlivesEnabled(false)

	serverDone := make(chan struct{})
	go func() {
		log.Printf("[websocket] running websocket server on %s\n", listener.Addr())
		err := server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			log.Printf("[websocket] error trying to run websocket server: %v\n", err)
		}
		close(serverDone)
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down WebSocket server...\n")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("WebSocket server shutdown error: %v\n", err)
		}
		log.Printf("WebSocket server shutdown complete\n")
	case <-serverDone:
	}
}

var WebSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:   4 * 1024,
	WriteBufferSize:  32 * 1024,
	HandshakeTimeout: 1 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

func HandleWs(w http.ResponseWriter, r *http.Request) {
	err := HandleWsInternal(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func processMessage(event WSEventType, rpcCh chan []byte) {
	if event.Type == "" {
		return
	}
	if event.Type == EventType_Rpc {
		msgBytes, err := json.Marshal(event.Data)
		if err != nil {
			log.Printf("[websocket] error marshalling rpc message: %v\n", err)
			return
		}
		rpcCh <- msgBytes
		return
	}
	log.Printf("[websocket] invalid message type: %s\n", event.Type)
}

func ReadLoop(conn *websocket.Conn, outputCh chan WSEventType, closeCh chan any, connId string, rpcCh chan []byte) {
	readWait := wsReadWaitTimeout
	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(readWait))
	defer close(closeCh)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[websocket] ReadPump error (%s): %v\n", connId, err)
			break
		}
		var event WSEventType
		err = json.Unmarshal(message, &event)
		if err != nil {
			log.Printf("[websocket] error unmarshalling json: %v\n", err)
			break
		}
		conn.SetReadDeadline(time.Now().Add(readWait))
		if event.Type == EventType_Pong {
			continue
		}
		if event.Type == EventType_Ping {
			now := time.Now()
			outputCh <- WSEventType{Type: EventType_Pong, Ts: now.UnixMilli()}
			continue
		}
		go processMessage(event, rpcCh)
	}
}

func WritePing(conn *websocket.Conn) error {
	now := time.Now()
	pingMessage := map[string]interface{}{"type": EventType_Ping, "ts": now.UnixMilli()}
	jsonVal, _ := json.Marshal(pingMessage)
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWaitTimeout))
	return conn.WriteMessage(websocket.TextMessage, jsonVal)
}

func WriteLoop(conn *websocket.Conn, outputCh chan WSEventType, closeCh chan any, connId string) {
	ticker := time.NewTicker(wsInitialPingTime)
	defer ticker.Stop()
	defer func() {
		go utilfn.DrainChan(outputCh)
	}()
	initialPing := true
	for {
		select {
		case msg, ok := <-outputCh:
			if !ok {
				return
			}
			barr, err := json.Marshal(msg)
			if err != nil {
				log.Printf("[websocket] cannot marshal websocket message: %v\n", err)
				break
			}
			err = conn.WriteMessage(websocket.TextMessage, barr)
			if err != nil {
				conn.Close()
				log.Printf("[websocket] WritePump error (%s): %v\n", connId, err)
				return
			}
		case <-ticker.C:
			err := WritePing(conn)
			if err != nil {
				log.Printf("[websocket] WritePump error (%s): %v\n", connId, err)
				return
			}
			if initialPing {
				initialPing = false
				ticker.Reset(wsPingPeriodTickTime)
			}
		case <-closeCh:
			return
		}
	}
}

// HandleWsInternal upgrades the connection, wires a per-connection
// *rpc.RpcClient around it (dispatching inbound commands to
// rpcserver.RpcServerImpl, registered under routeid so the search manager's
// fire-and-forget stream pushes reach this connection), and pumps frames
// until the socket closes.
func HandleWsInternal(w http.ResponseWriter, r *http.Request) error {
	conn, err := WebSocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("WebSocket Upgrade Failed: %v", err)
	}
	defer conn.Close()

	routeId := r.URL.Query().Get("routeid")
	if routeId == "" {
		return fmt.Errorf("routeid not provided")
	}
	connId := uuid.New().String()
	outputCh := make(chan WSEventType, 100)
	closeCh := make(chan any)

	log.Printf("[websocket] new connection: connid:%s, routeid:%s\n", connId, routeId)
	wsModel := &WebSocketModel{
		ConnId:   connId,
		RouteId:  routeId,
		Conn:     conn,
		OutputCh: outputCh,
	}
	ConnMap.Set(connId, wsModel)
	defer func() {
		ConnMap.Delete(connId)
		time.Sleep(1 * time.Second)
		close(outputCh)
	}()

	rpcClient := rpc.MakeRpcClient(nil, nil, &rpcserver.RpcServerImpl{}, "ws/"+connId)
	rpc.GetDefaultRouter().RegisterRoute(routeId, rpcClient)
	defer rpc.GetDefaultRouter().UnregisterRoute(routeId)

	go func() {
		for {
			msg, more := rpcClient.RecvRpcMessage()
			if !more {
				return
			}
			outputCh <- WSEventType{Type: EventType_Rpc, Ts: time.Now().UnixMilli(), Data: json.RawMessage(msg)}
		}
	}()

	wg := &sync.WaitGroup{}
	wg.Add(2)

	go func() {
		defer wg.Done()
		ReadLoop(conn, outputCh, closeCh, connId, rpcClient.InputCh)
	}()

	go func() {
		defer wg.Done()
		WriteLoop(conn, outputCh, closeCh, connId)
	}()

	wg.Wait()
	close(rpcClient.InputCh)
	return nil
}
