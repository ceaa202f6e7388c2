package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dominohub/domino-server-go/internal/config"
	"github.com/dominohub/domino-server-go/internal/domino"
	"github.com/dominohub/domino-server-go/internal/room"
	"github.com/dominohub/domino-server-go/internal/server"
)

type wsHarness struct {
	t       *testing.T
	gateway *server.Gateway
	srv     *httptest.Server
}

func newWSHarness(t *testing.T) *wsHarness {
	t.Helper()

	cfg := config.WebSocketConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  64,
		AllowedOrigins:  []string{"*"},
	}
	gateway := server.NewGateway(cfg, zaptest.NewLogger(t))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gateway.HandleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &wsHarness{t: t, gateway: gateway, srv: srv}
}

func (h *wsHarness) dial(roomCode, playerName string, isHost bool) *websocket.Conn {
	h.t.Helper()

	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") +
		"/ws?roomCode=" + roomCode + "&playerName=" + playerName
	if isHost {
		url += "&isHost=true"
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until one of the wanted type arrives, failing the
// test if it does not show up in time.
func readUntil(t *testing.T, conn *websocket.Conn, event string) server.ServerMessage {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))

	for {
		var msg server.ServerMessage
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s frame", event)
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == event {
			return msg
		}
	}
}

func decodePayload(t *testing.T, payload any, out any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestHandshakeRequiresRoomAndName(t *testing.T) {
	h := newWSHarness(t)

	resp, err := http.Get(h.srv.URL + "/ws?playerName=Alice")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(h.srv.URL + "/ws?roomCode=GAME42")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFullGameFlowOverWebSocket(t *testing.T) {
	h := newWSHarness(t)

	alice := h.dial("GAME42", "Alice", true)
	readUntil(t, alice, room.EventGameState)

	bob := h.dial("GAME42", "Bob", false)

	// Both members see the two-player roster.
	msg := readUntil(t, alice, room.EventGameState)
	var snap room.Snapshot
	decodePayload(t, msg.Payload, &snap)
	if len(snap.Players) < 2 {
		msg = readUntil(t, alice, room.EventGameState)
		decodePayload(t, msg.Payload, &snap)
	}
	require.Len(t, snap.Players, 2)
	assert.Equal(t, room.StatusWaiting, snap.Status)
	assert.True(t, snap.Players[0].IsHost)

	// Host starts the game; everyone gets the playing snapshot, each player
	// a 7-tile private hand.
	require.NoError(t, alice.WriteJSON(server.ClientMessage{Type: server.MessageStartGame}))

	handMsg := readUntil(t, alice, room.EventPlayerHand)
	var hand []domino.Tile
	decodePayload(t, handMsg.Payload, &hand)
	assert.Len(t, hand, 7)

	stateMsg := readUntil(t, bob, room.EventGameState)
	decodePayload(t, stateMsg.Payload, &snap)
	for snap.Status != room.StatusPlaying {
		stateMsg = readUntil(t, bob, room.EventGameState)
		decodePayload(t, stateMsg.Payload, &snap)
	}
	assert.NotEmpty(t, snap.CurrentPlayer)
	for _, p := range snap.Players {
		assert.Equal(t, 7, p.TileCount)
	}

	// A non-host reset attempt earns only the requester an error frame.
	require.NoError(t, bob.WriteJSON(server.ClientMessage{Type: server.MessageResetGame}))
	errMsg := readUntil(t, bob, room.EventError)
	var errPayload server.ErrorPayload
	decodePayload(t, errMsg.Payload, &errPayload)
	assert.Equal(t, "not_host", errPayload.Code)

	// Disconnects shrink the roster and finally destroy the room.
	require.NoError(t, bob.Close())
	stateMsg = readUntil(t, alice, room.EventGameState)
	decodePayload(t, stateMsg.Payload, &snap)
	for len(snap.Players) != 1 {
		stateMsg = readUntil(t, alice, room.EventGameState)
		decodePayload(t, stateMsg.Payload, &snap)
	}

	require.NoError(t, alice.Close())
	require.Eventually(t, func() bool {
		return h.gateway.Registry().Count() == 0
	}, 3*time.Second, 10*time.Millisecond, "room is destroyed when its last player leaves")
}
