package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

func dialWS(t *testing.T, server *httptest.Server, session *http.Cookie) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	header := http.Header{}
	header.Set("Cookie", session.Name+"="+session.Value)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Every connection starts with the welcome event.
	event := readEvent(t, conn)
	require.Equal(t, "connected", event.Event)

	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var event wsEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func sendEvent(t *testing.T, conn *websocket.Conn, event map[string]interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(event))
}

func TestWebSocketRequiresSession(t *testing.T) {
	r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJoinBoardRequiresMembership(t *testing.T) {
	r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	alice := registerAndLogin(t, r, "alice", "secret123")
	mallory := registerAndLogin(t, r, "mallory", "secret789")

	board := createBoard(t, r, alice, "Private")

	conn := dialWS(t, server, mallory)
	sendEvent(t, conn, map[string]interface{}{"event": "join_board", "board_id": board.ID})

	event := readEvent(t, conn)
	assert.Equal(t, "error", event.Event)
	assert.Equal(t, "Unauthorized", event.Data["message"])
}

func TestBoardRoomReceivesRefreshAndCardMoved(t *testing.T) {
	r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	alice := registerAndLogin(t, r, "alice", "secret123")
	bob := registerAndLogin(t, r, "bob", "secret456")

	board := createBoard(t, r, alice, "Sprint 1")
	addCollaborator(t, r, alice, board.ID, "bob")
	todo := createList(t, r, alice, board.ID, "Todo")
	done := createList(t, r, alice, board.ID, "Done")
	card := createCard(t, r, alice, todo.ID, "Write spec")

	conn := dialWS(t, server, bob)
	sendEvent(t, conn, map[string]interface{}{"event": "join_board", "board_id": board.ID})

	// Give the join a moment to land before mutating the board.
	time.Sleep(100 * time.Millisecond)

	w := postForm(r, fmt.Sprintf("/update_list/%d", todo.ID), url.Values{"list_name": {"Todo"}}, alice)
	require.Equal(t, http.StatusSeeOther, w.Code)

	event := readEvent(t, conn)
	require.Equal(t, "refresh_board", event.Event)
	assert.EqualValues(t, board.ID, event.Data["board_id"])

	w = postJSON(r, fmt.Sprintf("/move_card/%d/%d", card.ID, done.ID), `{"new_position": 1}`, alice)
	require.Equal(t, http.StatusOK, w.Code)

	event = readEvent(t, conn)
	require.Equal(t, "card_moved", event.Event)
	assert.EqualValues(t, card.ID, event.Data["card_id"])
	assert.EqualValues(t, done.ID, event.Data["new_list_id"])
	assert.EqualValues(t, board.ID, event.Data["board_id"])
}

func TestDashboardRoomReceivesRefresh(t *testing.T) {
	r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	alice := registerAndLogin(t, r, "alice", "secret123")
	bob := registerAndLogin(t, r, "bob", "secret456")
	carol := registerAndLogin(t, r, "carol", "secret789")

	// Bob is viewing the dashboard; carol is connected but elsewhere.
	bobConn := dialWS(t, server, bob)
	sendEvent(t, bobConn, map[string]interface{}{"event": "join_dashboard"})

	carolConn := dialWS(t, server, carol)

	// Give the join a moment to land before mutating.
	time.Sleep(100 * time.Millisecond)

	w := postForm(r, "/create_board", url.Values{"board_name": {"Sprint 1"}}, alice)
	require.Equal(t, http.StatusSeeOther, w.Code)

	event := readEvent(t, bobConn)
	assert.Equal(t, "refresh_dashboard", event.Event)

	// Connections outside the dashboard room stay quiet.
	require.NoError(t, carolConn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var stray wsEvent
	err := carolConn.ReadJSON(&stray)
	assert.Error(t, err, "only dashboard viewers receive dashboard refreshes")

	// Leaving the room stops the refreshes.
	sendEvent(t, bobConn, map[string]interface{}{"event": "leave_dashboard"})
	time.Sleep(100 * time.Millisecond)

	w = postForm(r, "/create_board", url.Values{"board_name": {"Sprint 2"}}, alice)
	require.Equal(t, http.StatusSeeOther, w.Code)

	require.NoError(t, bobConn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	err = bobConn.ReadJSON(&stray)
	assert.Error(t, err, "refreshes stop after leaving the dashboard room")
}

func TestCollabChatUsesSessionIdentity(t *testing.T) {
	r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	alice := registerAndLogin(t, r, "alice", "secret123")
	bob := registerAndLogin(t, r, "bob", "secret456")

	aliceConn := dialWS(t, server, alice)
	sendEvent(t, aliceConn, map[string]interface{}{"event": "join_collab"})

	// Alice sees her own join announcement.
	event := readEvent(t, aliceConn)
	require.Equal(t, "message", event.Event)
	assert.Equal(t, "System", event.Data["username"])
	assert.Contains(t, event.Data["message"], "alice joined")

	bobConn := dialWS(t, server, bob)
	sendEvent(t, bobConn, map[string]interface{}{"event": "join_collab"})

	event = readEvent(t, aliceConn)
	require.Equal(t, "message", event.Event)
	assert.Contains(t, event.Data["message"], "bob joined")

	// The broadcast carries the sender's session username even when the
	// payload claims otherwise.
	sendEvent(t, bobConn, map[string]interface{}{
		"event":    "send_collab_message",
		"username": "admin",
		"message":  "hello board",
	})

	event = readEvent(t, aliceConn)
	require.Equal(t, "message", event.Event)
	assert.Equal(t, "bob", event.Data["username"])
	assert.Equal(t, "hello board", event.Data["message"])

	// File payloads pass through verbatim.
	sendEvent(t, bobConn, map[string]interface{}{
		"event":    "send_collab_message",
		"file":     "http://example.com/uploads/1_notes.txt",
		"filename": "notes.txt",
	})

	event = readEvent(t, aliceConn)
	require.Equal(t, "message", event.Event)
	assert.Equal(t, "http://example.com/uploads/1_notes.txt", event.Data["file"])
	assert.Equal(t, "notes.txt", event.Data["filename"])
}

func TestBoardChatScopedToRoom(t *testing.T) {
	r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	alice := registerAndLogin(t, r, "alice", "secret123")
	bob := registerAndLogin(t, r, "bob", "secret456")

	board := createBoard(t, r, alice, "Sprint 1")
	addCollaborator(t, r, alice, board.ID, "bob")
	other := createBoard(t, r, alice, "Other")

	aliceConn := dialWS(t, server, alice)
	bobConn := dialWS(t, server, bob)

	sendEvent(t, aliceConn, map[string]interface{}{"event": "join_board", "board_id": board.ID})
	sendEvent(t, bobConn, map[string]interface{}{"event": "join_board", "board_id": board.ID})

	// Give the joins a moment to land before broadcasting.
	time.Sleep(100 * time.Millisecond)

	sendEvent(t, aliceConn, map[string]interface{}{
		"event":    "send_board_message",
		"board_id": board.ID,
		"message":  "standup in 5",
	})

	event := readEvent(t, bobConn)
	require.Equal(t, "board_message", event.Event)
	assert.Equal(t, "alice", event.Data["username"])
	assert.Equal(t, "standup in 5", event.Data["message"])
	assert.EqualValues(t, board.ID, event.Data["board_id"])

	// A message to a room nobody joined goes nowhere and does not error.
	sendEvent(t, aliceConn, map[string]interface{}{
		"event":    "send_board_message",
		"board_id": other.ID,
		"message":  "into the void",
	})

	require.NoError(t, bobConn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var stray wsEvent
	err := bobConn.ReadJSON(&stray)
	assert.Error(t, err, "bob must not receive messages for rooms he is not in")
}
