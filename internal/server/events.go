package server

import (
	"encoding/json"
	"fmt"

	"github.com/dominohub/domino-server-go/internal/domino"
)

// Inbound event names. Join and disconnect are implicit in the connection
// lifecycle; everything else arrives as a JSON message on the socket.
const (
	MessageStartGame = "startGame"
	MessagePlaceTile = "placeTile"
	MessageDrawTile  = "drawTile"
	MessageResetGame = "resetGame"
)

// ClientMessage is one inbound frame from a connected player.
type ClientMessage struct {
	Type     string       `json:"type"`
	RoomCode string       `json:"roomCode,omitempty"`
	Tile     *domino.Tile `json:"tile,omitempty"`
	Position string       `json:"position,omitempty"`
}

// ServerMessage is one outbound frame. Type matches the room event names
// (gameState, playerHand, validMoves, error).
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ErrorPayload is the body of an error frame: a short machine-checkable code
// plus a human-readable message. Errors go only to the requester.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encodeMessage(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(ServerMessage{Type: event, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", event, err)
	}
	return data, nil
}
