package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client is one connected player: the socket, its buffered outbound queue and
// the identity the gateway minted at connect time.
type client struct {
	conn     *websocket.Conn
	playerID string
	roomCode string
	name     string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// trySend queues a frame without blocking. A client whose queue is full has
// the frame dropped; the next broadcast will carry fresh state anyway. Frames
// for a client that is already shut down are dropped: the readPump may still
// be finishing an in-flight message when the gateway tears the client down,
// and a late reply must not crash the process.
func (c *client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// shutdown closes the send queue exactly once, ending the writePump. Safe to
// call concurrently with trySend and safe to call twice.
func (c *client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump decodes inbound frames and hands them to the gateway until the
// connection drops, then triggers the disconnect flow.
func (c *client) readPump(g *Gateway) {
	defer func() {
		g.handleDisconnect(c)
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Warn("websocket read failed",
					zap.String("player_id", c.playerID),
					zap.Error(err),
				)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			g.logger.Warn("malformed client message",
				zap.String("player_id", c.playerID),
				zap.Error(err),
			)
			g.sendError(c, "bad_request", "malformed message")
			continue
		}

		g.dispatch(c, msg)
	}
}

// writePump drains the send queue onto the socket. Closing the send channel
// ends the pump and the connection.
func (c *client) writePump() {
	defer c.conn.Close()

	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
