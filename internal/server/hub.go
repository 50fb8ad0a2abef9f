package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds any single frame write.
	writeWait = 10 * time.Second

	// pongWait is how long a socket may stay silent before it is
	// presumed dead. Must exceed pingPeriod.
	pongWait = 120 * time.Second

	// pingPeriod is the keepalive cadence.
	pingPeriod = 30 * time.Second

	// sendBuffer bounds the per-connection outbound queue. A slow
	// consumer loses broadcasts rather than stalling the table.
	sendBuffer = 64
)

// client is one player's socket. All writes go through send so the
// write pump is the only goroutine touching the connection.
type client struct {
	conn     *websocket.Conn
	send     chan []byte
	gameID   string
	playerID string
}

func newClient(conn *websocket.Conn, gameID, playerID string) *client {
	return &client{
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		gameID:   gameID,
		playerID: playerID,
	}
}

// push queues a frame, dropping it when the buffer is full.
func (c *client) push(msg []byte) {
	select {
	case c.send <- msg:
	default:
	}
}

// writePump drains send and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub tracks which player sockets belong to which game.
type Hub struct {
	mu    sync.Mutex
	games map[string]map[string]*client
}

func newHub() *Hub {
	return &Hub{games: make(map[string]map[string]*client)}
}

// add registers a socket and returns the one it displaces, if any, so
// the caller can close it. Reconnects land here while the old socket
// is still draining.
func (h *Hub) add(c *client) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.games[c.gameID]
	if conns == nil {
		conns = make(map[string]*client)
		h.games[c.gameID] = conns
	}
	old := conns[c.playerID]
	conns[c.playerID] = c
	return old
}

// remove unregisters a socket if it is still the registered one and
// reports whether it was. A reconnect may already have replaced it, in
// which case the player is not actually gone.
func (h *Hub) remove(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.games[c.gameID]
	if conns == nil || conns[c.playerID] != c {
		return false
	}
	delete(conns, c.playerID)
	if len(conns) == 0 {
		delete(h.games, c.gameID)
	}
	return true
}

// sendTo queues a frame for one player. Reports false when they have
// no live socket.
func (h *Hub) sendTo(gameID, playerID string, msg []byte) bool {
	h.mu.Lock()
	c := h.games[gameID][playerID]
	h.mu.Unlock()
	if c == nil {
		return false
	}
	c.push(msg)
	return true
}

// broadcast queues a frame for every socket in the game.
func (h *Hub) broadcast(gameID string, msg []byte) {
	for _, c := range h.clients(gameID) {
		c.push(msg)
	}
}

// broadcastExcept queues a frame for every socket in the game but one.
func (h *Hub) broadcastExcept(gameID, exceptID string, msg []byte) {
	for _, c := range h.clients(gameID) {
		if c.playerID != exceptID {
			c.push(msg)
		}
	}
}

// clients snapshots the sockets of one game.
func (h *Hub) clients(gameID string) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.games[gameID]
	out := make([]*client, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

// closeGame drops every socket of a game. Closing the connections
// makes their read pumps exit and run normal cleanup.
func (h *Hub) closeGame(gameID string) {
	h.mu.Lock()
	conns := h.games[gameID]
	delete(h.games, gameID)
	h.mu.Unlock()
	for _, c := range conns {
		c.conn.Close()
	}
}

// closeAll drops every socket on the hub, used at shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	games := h.games
	h.games = make(map[string]map[string]*client)
	h.mu.Unlock()
	for _, conns := range games {
		for _, c := range conns {
			c.conn.Close()
		}
	}
}
