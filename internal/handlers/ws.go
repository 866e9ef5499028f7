package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/corkboard-dev/corkboard/internal/access"
	"github.com/corkboard-dev/corkboard/internal/realtime"
	"github.com/corkboard-dev/corkboard/internal/types"
	"github.com/corkboard-dev/corkboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 4096
)

// clientEvent is the inbound envelope; unused fields stay zero.
type clientEvent struct {
	Event    string `json:"event"`
	BoardID  uint   `json:"board_id"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Filename string `json:"filename"`
}

func WebSocket(c *gin.Context) {
	currentUser, err := utils.GetCurrentUser(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := realtime.NewClient(conn, currentUser.ID, currentUser.Username)
	hub := realtime.DefaultHub

	conn.SetReadLimit(wsMaxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	defer func() {
		hub.RemoveClient(client)
		conn.Close()
		log.Printf("WebSocket connection closed for %s", currentUser.Username)
	}()

	if err := client.Send(realtime.Event{Event: "connected", Data: map[string]interface{}{
		"message": "WebSocket connection established",
	}}); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		// Send pings periodically until the read loop exits.
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := client.Ping(); err != nil {
					log.Printf("Ping failed for %s: %v", currentUser.Username, err)
					return
				}
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
			log.Printf("Failed to set read deadline: %v", err)
			break
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", currentUser.Username, err)
			}
			break
		}

		var event clientEvent

		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("Malformed event from %s: %v", currentUser.Username, err)
			continue
		}

		dispatchEvent(hub, client, event)
	}
}

func dispatchEvent(hub *realtime.Hub, client *realtime.Client, event clientEvent) {
	switch event.Event {
	case "join_board":
		// Room admission requires board membership; any connected client used
		// to be able to join any room by id.
		if _, err := access.BoardForMember(event.BoardID, client.UserID); err != nil {
			sendError(client, "Unauthorized")
			return
		}
		hub.Join(realtime.BoardRoom(event.BoardID), client)

	case "leave_board":
		hub.Leave(realtime.BoardRoom(event.BoardID), client)

	case "join_dashboard":
		hub.Join(realtime.DashboardRoom, client)

	case "leave_dashboard":
		hub.Leave(realtime.DashboardRoom, client)

	case "join_collab":
		hub.Join(realtime.CollabRoom, client)
		hub.Broadcast(realtime.CollabRoom, "message", map[string]interface{}{
			"username": "System",
			"message":  client.Username + " joined the collaboration chat.",
		})

	case "leave_collab":
		hub.Leave(realtime.CollabRoom, client)
		hub.Broadcast(realtime.CollabRoom, "message", map[string]interface{}{
			"username": "System",
			"message":  client.Username + " left the collaboration chat.",
		})

	case "send_collab_message":
		if event.Message == "" && event.File == "" {
			return
		}
		// Username comes from the session, never from the payload.
		payload := map[string]interface{}{"username": client.Username}
		if event.Message != "" {
			payload["message"] = event.Message
		}
		if event.File != "" {
			payload["file"] = event.File
			if event.Filename != "" {
				payload["filename"] = event.Filename
			}
		}
		hub.Broadcast(realtime.CollabRoom, "message", payload)

	case "send_board_message":
		if event.BoardID == 0 {
			return
		}
		hub.Broadcast(realtime.BoardRoom(event.BoardID), "board_message", map[string]interface{}{
			"board_id": event.BoardID,
			"username": client.Username,
			"message":  event.Message,
		})

	default:
		log.Printf("Unknown event %q from %s", event.Event, client.Username)
	}
}

func sendError(client *realtime.Client, message string) {
	if err := client.Send(realtime.Event{Event: "error", Data: map[string]interface{}{
		"message": message,
	}}); err != nil {
		log.Printf("Failed to send error event: %v", err)
	}
}
