// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applog "viscore/internal/log"
)

// WebSocketTransport broadcasts analysis frames as JSON to all connected
// WebSocket clients. Broadcasts are rate limited so a fast analysis loop
// cannot flood slow clients or the network.
type WebSocketTransport struct {
	clients      map[*websocket.Conn]bool
	clientsMutex sync.Mutex
	upgrader     websocket.Upgrader
	server       *http.Server

	lastSend        time.Time
	minSendInterval time.Duration
}

// NewWebSocketTransport starts an HTTP server on the given port serving
// WebSocket upgrades on /frames, and returns the transport ready to send.
func NewWebSocketTransport(port string) *WebSocketTransport {
	t := &WebSocketTransport{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // visualizer frontends run from anywhere
			},
		},
		minSendInterval: 16 * time.Millisecond, // ~60 Hz cap
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/frames", t.handleWebSocket)
	t.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		applog.Infof("Transport: WebSocket server listening on port %s", port)
		if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
			applog.Errorf("Transport: WebSocket server error: %v", err)
		}
	}()

	return t
}

// handleWebSocket upgrades the connection, registers the client and watches
// the read side so disconnected clients are dropped from the broadcast set.
func (t *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("Transport: WebSocket upgrade error: %v", err)
		return
	}

	t.clientsMutex.Lock()
	t.clients[conn] = true
	t.clientsMutex.Unlock()

	applog.Debugf("Transport: WebSocket client connected (%s)", conn.RemoteAddr())

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				t.clientsMutex.Lock()
				delete(t.clients, conn)
				t.clientsMutex.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// Send broadcasts the payload to every connected client. Frames arriving
// faster than the minimum send interval are dropped, not queued.
func (t *WebSocketTransport) Send(p *Payload) error {
	now := time.Now()
	if now.Sub(t.lastSend) < t.minSendInterval {
		return nil
	}
	t.lastSend = now

	jsonData, err := json.Marshal(p)
	if err != nil {
		return err
	}

	t.clientsMutex.Lock()
	for client := range t.clients {
		if err := client.WriteMessage(websocket.TextMessage, jsonData); err != nil {
			client.Close()
			delete(t.clients, client)
		}
	}
	t.clientsMutex.Unlock()

	return nil
}

// Close disconnects all clients and shuts the HTTP server down.
func (t *WebSocketTransport) Close() error {
	t.clientsMutex.Lock()
	for client := range t.clients {
		client.Close()
		delete(t.clients, client)
	}
	t.clientsMutex.Unlock()

	return t.server.Close()
}

var _ Transport = (*WebSocketTransport)(nil)
