package transport

import (
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gitlab.com/secp/services/canvas/internal/ratelimit"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Implement proper origin checking in production
	},
}

// ServeWS upgrades an HTTP request to a WebSocket session. Each connection
// gets a fresh session id; the coordinator learns about it via Connect and
// hears its events until the connection drops. limiter may be nil to
// disable connect rate limiting.
func ServeWS(hub *Hub, handler SessionHandler, limiter *ratelimit.Limiter, cursorRate float64, w http.ResponseWriter, r *http.Request) {
	if err := limiter.CheckConnect(r.Context(), clientIP(r)); err != nil {
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Transport] WebSocket upgrade error: %v", err)
		return
	}

	sessionID := uuid.New().String()
	client := NewClient(sessionID, conn, hub, handler, cursorRate)

	hub.Register(client)
	handler.Connect(sessionID)

	go client.WritePump()
	go client.ReadPump()
}

// clientIP extracts the requester's IP, preferring X-Forwarded-For when a
// proxy set it.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
