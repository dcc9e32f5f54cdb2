package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// the proxy endpoints are already fully cross-origin
		return true
	},
}

// Client - one websocket subscriber of a session's status stream
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *Client) trySend(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("⚠️ Failed to marshal status event: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		// slow client; drop the event rather than block a transition
	}
}

// HandleWebSocket - GET /ws?session=<id>: streams every status transition of
// the session as JSON. The current snapshot is sent on connect so late
// joiners start from known state.
func (m *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "Missing session parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 16),
	}

	sess := m.GetOrCreate(sessionID)
	sess.addClient(client)

	// replay: prefer the live record; fall back to a persisted snapshot when
	// the in-memory session is fresh but Redis remembers a previous run
	snap := sess.State().Snapshot()
	if snap.Status == StatusIdle && m.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		if stored, ok := m.store.Load(ctx, sessionID); ok {
			snap = stored
		}
		cancel()
	}
	client.trySend(snap)

	go client.writePump()
	go client.readPump(sess)
}

// readPump - drains control frames until the peer goes away
func (c *Client) readPump(sess *Session) {
	defer func() {
		sess.removeClient(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// writePump - pushes queued status events to the peer
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
