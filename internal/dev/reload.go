package dev

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadMessageType represents the type of reload message.
type ReloadMessageType string

const (
	ReloadTypeRoutes ReloadMessageType = "routes"
	ReloadTypeError  ReloadMessageType = "error"
	ReloadTypeClear  ReloadMessageType = "clear"
)

// ReloadMessage is sent to connected clients via WebSocket. Generation is a
// counter of successful passes, so a client that missed messages can tell a
// stale view from a current one.
type ReloadMessage struct {
	Type       ReloadMessageType `json:"type"`
	Generation int64             `json:"generation,omitempty"`
	Error      string            `json:"error,omitempty"`
}

const reloadWriteTimeout = 5 * time.Second

// ReloadServer manages WebSocket connections for the dev server. Connected
// clients are told when the route table is regenerated and when a pass fails.
type ReloadServer struct {
	mu         sync.Mutex
	generation int64
	clients    map[*websocket.Conn]struct{}
	upgrader   websocket.Upgrader
}

// NewReloadServer creates a new reload server.
func NewReloadServer() *ReloadServer {
	return &ReloadServer{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dev server binds to localhost; cross-origin pages may
			// still open the inspector socket.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the connection and tracks it until the client
// goes away. Clients never send anything meaningful; reads only serve to
// detect disconnects.
func (r *ReloadServer) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	r.mu.Lock()
	r.clients[conn] = struct{}{}
	r.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	r.drop(conn)
}

// NotifyRoutes tells all clients the route table was regenerated.
func (r *ReloadServer) NotifyRoutes() {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	r.announce(ReloadMessage{Type: ReloadTypeRoutes, Generation: gen})
}

// NotifyError sends a generation error to all clients.
func (r *ReloadServer) NotifyError(errMsg string) {
	r.announce(ReloadMessage{Type: ReloadTypeError, Error: errMsg})
}

// ClearError clears the error overlay on all clients.
func (r *ReloadServer) ClearError() {
	r.announce(ReloadMessage{Type: ReloadTypeClear})
}

// Generation returns the number of reload notifications sent so far.
func (r *ReloadServer) Generation() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// announce sends a message to every connected client, dropping clients whose
// writes fail.
func (r *ReloadServer) announce(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	for _, conn := range r.snapshotClients() {
		conn.SetWriteDeadline(time.Now().Add(reloadWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			r.drop(conn)
		}
	}
}

func (r *ReloadServer) snapshotClients() []*websocket.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(r.clients))
	for conn := range r.clients {
		conns = append(conns, conn)
	}
	return conns
}

func (r *ReloadServer) drop(conn *websocket.Conn) {
	r.mu.Lock()
	delete(r.clients, conn)
	r.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected clients.
func (r *ReloadServer) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close closes all client connections.
func (r *ReloadServer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for conn := range r.clients {
		conn.Close()
		delete(r.clients, conn)
	}
}

// reloadClientScript is injected into the route inspector page. It refreshes
// the view whenever the table is regenerated and shows generation errors.
const reloadClientScript = `
<script>
(function() {
    'use strict';

    var delay = 1000;

    function connect() {
        var scheme = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(scheme + '//' + location.host + '/ws');

        ws.onopen = function() {
            delay = 1000;
            hideError();
        };

        ws.onmessage = function(e) {
            var msg;
            try { msg = JSON.parse(e.data); } catch (err) { return; }
            if (msg.type === 'routes') {
                location.reload();
            } else if (msg.type === 'error') {
                showError(msg.error);
            } else if (msg.type === 'clear') {
                hideError();
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                delay = Math.min(delay * 2, 30000);
                connect();
            }, delay);
        };

        ws.onerror = function() { ws.close(); };
    }

    function showError(text) {
        hideError();
        var overlay = document.createElement('div');
        overlay.id = 'routegen-error-overlay';
        overlay.style.cssText = 'position:fixed;inset:0;background:rgba(0,0,0,0.9);color:#fff;font-family:monospace;font-size:14px;padding:20px;overflow:auto;z-index:999999;';
        var pre = document.createElement('pre');
        pre.style.cssText = 'white-space:pre-wrap;background:#1a1a1a;padding:20px;border:1px solid #333;border-radius:8px;';
        pre.textContent = text;
        overlay.appendChild(pre);
        document.body.appendChild(overlay);
    }

    function hideError() {
        var overlay = document.getElementById('routegen-error-overlay');
        if (overlay) overlay.remove();
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`
