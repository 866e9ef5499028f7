// Package realtime fans change notifications and chat messages out to
// connected websocket clients, grouped into rooms. Delivery is at-most-once
// with no acknowledgment, replay, or cross-event ordering guarantee.
package realtime

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	// CollabRoom is the single global collaboration chat room.
	CollabRoom = "collab"
	// DashboardRoom scopes refresh_dashboard to sessions currently viewing
	// the dashboard, not every open connection.
	DashboardRoom = "dashboard"
)

// BoardRoom names the room for one board's viewers.
func BoardRoom(boardID uint) string {
	return fmt.Sprintf("board_%d", boardID)
}

// Event is the wire envelope for server-to-client notifications.
type Event struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Client is one websocket connection with its session identity attached.
type Client struct {
	ID       string
	UserID   uint
	Username string

	conn    *websocket.Conn
	writeMu sync.Mutex
}

func NewClient(conn *websocket.Conn, userID uint, username string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		conn:     conn,
	}
}

// Send writes one event with the usual deadline. Concurrent broadcasts and the
// ping loop share the connection, so writes are serialized per client.
func (c *Client) Send(event Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(event)
}

func (c *Client) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]*Client)}
}

// DefaultHub serves the whole process; handlers broadcast through it.
var DefaultHub = NewHub()

func (h *Hub) Join(room string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*Client)
	}
	h.rooms[room][client.ID] = client
}

func (h *Hub) Leave(room string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.rooms[room]; exists {
		delete(clients, client.ID)

		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// RemoveClient drops the client from every room it joined.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, clients := range h.rooms {
		delete(clients, client.ID)

		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}

// Broadcast sends the event to every member of the room. The member list is
// copied first so the lock is not held during network writes; clients whose
// write fails are evicted.
func (h *Hub) Broadcast(room, event string, data map[string]interface{}) {
	h.mu.RLock()
	clients, exists := h.rooms[room]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	clientsCopy := make([]*Client, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	for _, client := range clientsCopy {
		if err := client.Send(Event{Event: event, Data: data}); err != nil {
			log.Printf("Failed to broadcast %s to client %s: %v", event, client.ID, err)
			h.RemoveClient(client)
			client.Close()
		}
	}
}

func (c *Client) Close() {
	c.conn.Close()
}
