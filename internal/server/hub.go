package server

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// wsHub tracks open connections and their session broadcast groups.
// Writes to a single connection are serialized by a per-client mutex;
// the hub lock is only held while snapshotting recipients.
type wsHub struct {
	mu       sync.Mutex
	conns    map[string]*wsClient
	sessions map[string]map[string]*wsClient
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func newWSHub() *wsHub {
	return &wsHub{
		conns:    make(map[string]*wsClient),
		sessions: make(map[string]map[string]*wsClient),
	}
}

func (h *wsHub) Register(connectionID string, conn *websocket.Conn) {
	client := &wsClient{id: connectionID, conn: conn}
	h.mu.Lock()
	h.conns[connectionID] = client
	h.mu.Unlock()
}

func (h *wsHub) Unregister(connectionID string) {
	h.mu.Lock()
	client, ok := h.conns[connectionID]
	delete(h.conns, connectionID)
	for sessionID, group := range h.sessions {
		delete(group, connectionID)
		if len(group) == 0 {
			delete(h.sessions, sessionID)
		}
	}
	h.mu.Unlock()
	if ok {
		client.conn.Close()
	}
}

func (h *wsHub) Subscribe(sessionID, connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.conns[connectionID]
	if !ok {
		return
	}
	group, ok := h.sessions[sessionID]
	if !ok {
		group = make(map[string]*wsClient)
		h.sessions[sessionID] = group
	}
	group[connectionID] = client
}

func (h *wsHub) ToConnection(connectionID string, msg wsMessage) {
	h.mu.Lock()
	client, ok := h.conns[connectionID]
	h.mu.Unlock()
	if !ok {
		return
	}
	client.send(msg)
}

func (h *wsHub) ToSession(sessionID string, msg wsMessage) {
	h.mu.Lock()
	group := h.sessions[sessionID]
	clients := make([]*wsClient, 0, len(group))
	for _, client := range group {
		clients = append(clients, client)
	}
	h.mu.Unlock()
	for _, client := range clients {
		client.send(msg)
	}
}

func (c *wsClient) send(msg wsMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Printf("ws write failed conn=%s type=%s err=%v", c.id, msg.Type, err)
	}
}
