// Copyright 2026 Tracewell Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/tracewell/tracewell/pkg/panichandler"
)

const BareClientRoute = "server"

// Router forwards outbound messages carrying a Route to the AbstractRpcClient
// registered for that route id. It is a single-hop version of a full
// connection switch: one process, N websocket connections, no upstream
// chaining or route announcement needed for this server's topology.
type Router struct {
	Lock     *sync.Mutex
	RouteMap map[string]AbstractRpcClient // routeid => destination client
}

var defaultRouter = &Router{
	Lock:     &sync.Mutex{},
	RouteMap: make(map[string]AbstractRpcClient),
}

func GetDefaultRouter() *Router {
	return defaultRouter
}

// RegisterRoute makes client reachable as the destination for messages whose
// Route field equals routeId (e.g. a browser tab's widget subscriber route).
func (r *Router) RegisterRoute(routeId string, client AbstractRpcClient) {
	r.Lock.Lock()
	defer r.Lock.Unlock()
	r.RouteMap[routeId] = client
}

func (r *Router) UnregisterRoute(routeId string) {
	r.Lock.Lock()
	defer r.Lock.Unlock()
	delete(r.RouteMap, routeId)
}

func (r *Router) getRoute(routeId string) AbstractRpcClient {
	r.Lock.Lock()
	defer r.Lock.Unlock()
	return r.RouteMap[routeId]
}

// PumpOutput reads every message a client writes to its OutputCh and, when
// the message carries a Route, forwards it to that route's registered
// client instead of letting it fall on the floor. Used for the shared bare
// client that server-initiated pushes (stream updates) are sent through.
func (r *Router) PumpOutput(client AbstractRpcClient) {
	defer func() {
		panichandler.PanicHandler("Router.PumpOutput", recover())
	}()
	for {
		msgBytes, more := client.RecvRpcMessage()
		if !more {
			return
		}
		var msg RpcMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			log.Printf("[router] dropping unparseable message: %v\n", err)
			continue
		}
		if msg.Route == "" {
			continue
		}
		dest := r.getRoute(msg.Route)
		if dest == nil {
			continue
		}
		dest.SendRpcMessage(msgBytes)
	}
}
