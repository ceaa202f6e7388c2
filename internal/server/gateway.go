package server

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dominohub/domino-server-go/internal/config"
	"github.com/dominohub/domino-server-go/internal/domino"
	"github.com/dominohub/domino-server-go/internal/room"
)

// Gateway is the session layer between websockets and rooms. It upgrades
// connections, routes inbound events to the right room and implements the
// room.Sink delivery capability: ordered unicast per player and ordered
// broadcast per room.
type Gateway struct {
	cfg      config.WebSocketConfig
	logger   *zap.Logger
	registry *room.Registry
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client            // player id -> connection
	members map[string]map[string]*client // room code -> player id -> connection
}

// NewGateway wires a gateway and its room registry together.
func NewGateway(cfg config.WebSocketConfig, logger *zap.Logger) *Gateway {
	g := &Gateway{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[string]*client),
		members: make(map[string]map[string]*client),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     g.checkOrigin,
	}
	g.registry = room.NewRegistry(g, logger)
	return g
}

// Registry exposes the room registry, mainly for tests and shutdown
// accounting.
func (g *Gateway) Registry() *room.Registry {
	return g.registry
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range g.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// HandleWS is the /ws endpoint. The handshake carries the room code, display
// name and host claim as query parameters; a connection is a join, a closed
// connection is a permanent leave.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomCode := room.NormalizeCode(r.URL.Query().Get("roomCode"))
	playerName := r.URL.Query().Get("playerName")
	hostClaim := r.URL.Query().Get("isHost") == "true"

	if roomCode == "" || playerName == "" {
		http.Error(w, "roomCode and playerName are required", http.StatusBadRequest)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn:     conn,
		send:     make(chan []byte, g.cfg.SendBufferSize),
		playerID: uuid.NewString(),
		roomCode: roomCode,
		name:     playerName,
	}

	g.mu.Lock()
	g.clients[c.playerID] = c
	if g.members[roomCode] == nil {
		g.members[roomCode] = make(map[string]*client)
	}
	g.members[roomCode][c.playerID] = c
	g.mu.Unlock()

	g.logger.Info("client connected",
		zap.String("player_id", c.playerID),
		zap.String("room_code", roomCode),
		zap.String("name", playerName),
	)

	go c.writePump()

	g.registry.GetOrCreate(roomCode).Join(c.playerID, playerName, hostClaim)

	c.readPump(g)
}

// dispatch routes one inbound event to its room. Handler errors are mapped to
// a unicast error frame for the requester; the room broadcasts nothing on a
// failed request.
func (g *Gateway) dispatch(c *client, msg ClientMessage) {
	code := c.roomCode
	if msg.RoomCode != "" {
		code = room.NormalizeCode(msg.RoomCode)
	}

	rm, ok := g.registry.Lookup(code)
	if !ok {
		g.sendError(c, room.Kind(room.ErrUnknownRoom), room.ErrUnknownRoom.Error())
		return
	}

	var err error
	switch msg.Type {
	case MessageStartGame:
		err = rm.Start(c.playerID)
	case MessagePlaceTile:
		if msg.Tile == nil {
			g.sendError(c, "bad_request", "placeTile requires a tile")
			return
		}
		err = rm.PlaceTile(c.playerID, *msg.Tile, domino.SideFromString(msg.Position))
	case MessageDrawTile:
		err = rm.DrawTile(c.playerID)
	case MessageResetGame:
		err = rm.Reset(c.playerID)
	default:
		g.sendError(c, "bad_request", "unrecognized message type")
		return
	}

	if err != nil {
		g.logger.Debug("request rejected",
			zap.String("player_id", c.playerID),
			zap.String("room_code", code),
			zap.String("type", msg.Type),
			zap.String("kind", room.Kind(err)),
		)
		g.sendError(c, room.Kind(err), err.Error())
	}
}

// handleDisconnect unwires a dropped connection: the player leaves their room
// permanently, the room is destroyed if that emptied it.
func (g *Gateway) handleDisconnect(c *client) {
	g.mu.Lock()
	if _, ok := g.clients[c.playerID]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.clients, c.playerID)
	if roomClients, ok := g.members[c.roomCode]; ok {
		delete(roomClients, c.playerID)
		if len(roomClients) == 0 {
			delete(g.members, c.roomCode)
		}
	}
	g.mu.Unlock()

	c.shutdown()

	g.logger.Info("client disconnected",
		zap.String("player_id", c.playerID),
		zap.String("room_code", c.roomCode),
	)

	if rm, ok := g.registry.Lookup(c.roomCode); ok {
		if empty := rm.Disconnect(c.playerID); empty {
			g.registry.RemoveIfEmpty(c.roomCode)
		}
	}
}

// CloseAll tears down every connection, used during graceful shutdown.
// Hijacked websocket connections outlive http.Server.Shutdown, so a readPump
// may still be mid-dispatch here; shutdown goes through the client's own
// guard so any reply it produces is dropped rather than sent on a closed
// channel.
func (g *Gateway) CloseAll() {
	g.mu.Lock()
	clients := make([]*client, 0, len(g.clients))
	for id, c := range g.clients {
		clients = append(clients, c)
		delete(g.clients, id)
	}
	g.members = make(map[string]map[string]*client)
	g.mu.Unlock()

	for _, c := range clients {
		c.shutdown()
	}
}

// Unicast implements room.Sink: deliver one frame to exactly one player.
func (g *Gateway) Unicast(playerID, event string, payload any) {
	data, err := encodeMessage(event, payload)
	if err != nil {
		g.logger.Error("unicast encode failed", zap.String("event", event), zap.Error(err))
		return
	}

	g.mu.RLock()
	c, ok := g.clients[playerID]
	g.mu.RUnlock()
	if !ok {
		return
	}

	if !c.trySend(data) {
		g.logger.Warn("dropped unicast to slow client",
			zap.String("player_id", playerID),
			zap.String("event", event),
		)
	}
}

// Broadcast implements room.Sink: deliver one frame to every current member
// of a room.
func (g *Gateway) Broadcast(roomCode, event string, payload any) {
	data, err := encodeMessage(event, payload)
	if err != nil {
		g.logger.Error("broadcast encode failed", zap.String("event", event), zap.Error(err))
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, c := range g.members[roomCode] {
		if !c.trySend(data) {
			g.logger.Warn("dropped broadcast to slow client",
				zap.String("player_id", c.playerID),
				zap.String("event", event),
			)
		}
	}
}

func (g *Gateway) sendError(c *client, code, message string) {
	data, err := encodeMessage(room.EventError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		g.logger.Error("error encode failed", zap.Error(err))
		return
	}
	c.trySend(data)
}
