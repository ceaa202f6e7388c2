package room

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/dominohub/domino-server-go/internal/domino"
)

// Status is the lifecycle phase of a room.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusOver    Status = "over"
)

// Outbound event names, mirrored by the client.
const (
	EventGameState  = "gameState"
	EventPlayerHand = "playerHand"
	EventValidMoves = "validMoves"
	EventError      = "error"
)

// Sink is the delivery capability the transport layer hands to a room: an
// ordered unicast channel per connected player and an ordered broadcast
// channel per room. Implementations must not block.
type Sink interface {
	Broadcast(roomCode, event string, payload any)
	Unicast(playerID, event string, payload any)
}

// Player is one seat in a room. Hand is owned exclusively by this player and
// is only ever delivered over their unicast channel.
type Player struct {
	ID     string
	Name   string
	IsHost bool
	Hand   []domino.Tile
}

// PlayerSummary is the public view of a player: everything except the hand
// contents.
type PlayerSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	TileCount int    `json:"tileCount"`
}

// Snapshot is the full public game state broadcast to every room member.
type Snapshot struct {
	Status        Status          `json:"status"`
	Players       []PlayerSummary `json:"players"`
	Board         []domino.Tile   `json:"board"`
	CurrentPlayer string          `json:"currentPlayer"`
	Winner        *PlayerSummary  `json:"winner"`
	Scores        map[string]int  `json:"scores"`
}

// Room is the authoritative state of one game. All mutation happens under a
// single mutex, so events for the same room are processed one at a time,
// each running to its terminal broadcast before the next begins.
type Room struct {
	code     string
	handSize int
	rng      *rand.Rand
	sink     Sink
	logger   *zap.Logger

	mu       sync.Mutex
	players  []*Player
	board    []domino.Tile
	boneyard []domino.Tile
	status   Status
	current  int // seat index holding the turn; -1 outside of playing
	winner   *PlayerSummary
	scores   map[string]int
}

// New creates an empty room in the waiting state. The rng drives every
// shuffle for this room and is injected so tests can seed it.
func New(code string, sink Sink, rng *rand.Rand, logger *zap.Logger) *Room {
	return &Room{
		code:     code,
		handSize: domino.DefaultHandSize,
		rng:      rng,
		sink:     sink,
		logger:   logger,
		status:   StatusWaiting,
		current:  -1,
		scores:   make(map[string]int),
	}
}

// Code returns the room's identifier.
func (r *Room) Code() string {
	return r.code
}

// PlayerCount returns the current roster size.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Join appends a player to the roster at any status. Joining mid-game is
// allowed: the joiner sits with an empty hand and no turn until a reset.
// The first seat always holds host rights; a later host claim is ignored so
// the room never has two hosts.
func (r *Room) Join(playerID, name string, hostClaim bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	isHost := hostClaim
	if len(r.players) == 0 {
		isHost = true
	} else if r.hostIndex() >= 0 {
		isHost = false
	}

	r.players = append(r.players, &Player{
		ID:     playerID,
		Name:   name,
		IsHost: isHost,
	})

	r.logger.Info("player joined",
		zap.String("room_code", r.code),
		zap.String("player_id", playerID),
		zap.String("name", name),
		zap.Bool("is_host", isHost),
		zap.String("status", string(r.status)),
	)

	r.pushState()
}

// Start deals a fresh game. Host-only, waiting-only, needs at least two
// players. On success every player receives their hand privately and the
// opening turn goes to the holder of the highest double anywhere, falling
// back to the highest-sum tile; ties go to the earliest seat reached.
func (r *Room) Start(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.playerIndex(playerID)
	if idx < 0 || r.status != StatusWaiting {
		return nil
	}
	if !r.players[idx].IsHost {
		return ErrNotHost
	}
	if len(r.players) < 2 {
		return ErrInsufficientPlayers
	}

	deck := domino.NewDeck()
	domino.Shuffle(deck, r.rng)

	hands, boneyard, err := domino.Deal(deck, len(r.players), r.handSize)
	if err != nil {
		return err
	}

	r.status = StatusPlaying
	r.board = nil
	r.boneyard = boneyard
	r.winner = nil
	r.scores = make(map[string]int, len(r.players))
	for i, p := range r.players {
		p.Hand = hands[i]
		r.scores[p.ID] = 0
		r.sendHand(p)
	}

	r.current = r.firstPlayerIndex()

	r.logger.Info("game started",
		zap.String("room_code", r.code),
		zap.Int("players", len(r.players)),
		zap.Int("boneyard", len(r.boneyard)),
		zap.String("first_player", r.players[r.current].ID),
	)

	r.pushState()
	return nil
}

// firstPlayerIndex scans all dealt hands in seating order. The highest double
// found anywhere wins the opening turn; if no hand holds a double, the
// highest-sum tile wins. Strict comparisons keep ties on the earliest seat.
func (r *Room) firstPlayerIndex() int {
	bestDouble, bestSum := -1, -1
	doubleSeat, sumSeat := 0, 0

	for i, p := range r.players {
		for _, t := range p.Hand {
			if t.IsDouble() {
				if t.Left > bestDouble {
					bestDouble = t.Left
					doubleSeat = i
				}
			} else if t.Sum() > bestSum {
				bestSum = t.Sum()
				sumSeat = i
			}
		}
	}

	if bestDouble >= 0 {
		return doubleSeat
	}
	return sumSeat
}

// PlaceTile plays one tile from the acting player's hand onto the requested
// board end. The tile arrives in whatever orientation the client holds it;
// hand lookup is by unordered pair and the tile is re-oriented to fit the
// board. Emptying the hand wins the game; otherwise the turn advances and the
// resulting room is checked for a block.
func (r *Room) PlaceTile(playerID string, tile domino.Tile, side domino.Side) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying {
		return nil
	}
	idx := r.playerIndex(playerID)
	if idx < 0 {
		return nil
	}
	if idx != r.current {
		return ErrNotYourTurn
	}

	p := r.players[idx]
	handIdx := -1
	for i, t := range p.Hand {
		if t.SamePair(tile) {
			handIdx = i
			break
		}
	}
	if handIdx == -1 {
		return ErrTileNotInHand
	}
	if !side.Valid() || !domino.IsLegalPlacement(r.board, tile, side) {
		return ErrIllegalPlacement
	}

	played := domino.OrientForPlacement(r.board, p.Hand[handIdx], side)
	p.Hand = append(p.Hand[:handIdx], p.Hand[handIdx+1:]...)

	if side == domino.SideLeft {
		r.board = append([]domino.Tile{played}, r.board...)
	} else {
		r.board = append(r.board, played)
	}

	if len(p.Hand) == 0 {
		r.status = StatusOver
		r.winner = r.summary(p)
		r.applyScores()
		r.logger.Info("game won",
			zap.String("room_code", r.code),
			zap.String("winner", p.ID),
		)
	} else {
		r.current = (r.current + 1) % len(r.players)
		if r.isBlocked() {
			r.status = StatusOver
			r.winner = r.summary(r.players[r.lowestHandIndex()])
			r.applyScores()
			r.logger.Info("game blocked",
				zap.String("room_code", r.code),
				zap.String("winner", r.winner.ID),
			)
		}
	}

	r.sendHand(p)
	r.pushState()
	return nil
}

// DrawTile pulls one tile from the boneyard for the acting player. An empty
// boneyard is reported to the requester and, when their hand still cannot
// play, their turn is skipped — the one case where an error and a state
// change travel together. A drawn tile that plays immediately keeps the turn.
func (r *Room) DrawTile(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying {
		return nil
	}
	idx := r.playerIndex(playerID)
	if idx < 0 {
		return nil
	}
	if idx != r.current {
		return ErrNotYourTurn
	}

	p := r.players[idx]

	if len(r.boneyard) == 0 {
		if !domino.CanHandPlay(p.Hand, r.board) {
			r.current = (r.current + 1) % len(r.players)
			r.logger.Info("turn skipped",
				zap.String("room_code", r.code),
				zap.String("player_id", p.ID),
			)
			r.pushState()
		}
		return ErrBoneyardEmpty
	}

	drawn := r.boneyard[len(r.boneyard)-1]
	r.boneyard = r.boneyard[:len(r.boneyard)-1]
	p.Hand = append(p.Hand, drawn)

	r.sendHand(p)

	if !domino.CanTilePlay(drawn, r.board) {
		r.current = (r.current + 1) % len(r.players)
	}

	r.pushState()
	return nil
}

// Reset clears the game back to waiting. Host-only, allowed at any status.
// The roster stays seated; board, boneyard, hands, scores and winner are all
// dropped.
func (r *Room) Reset(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.playerIndex(playerID)
	if idx < 0 {
		return nil
	}
	if !r.players[idx].IsHost {
		return ErrNotHost
	}

	r.status = StatusWaiting
	r.board = nil
	r.boneyard = nil
	r.current = -1
	r.winner = nil
	r.scores = make(map[string]int)
	for _, p := range r.players {
		p.Hand = nil
		r.sendHand(p)
	}

	r.logger.Info("game reset", zap.String("room_code", r.code))

	r.pushState()
	return nil
}

// Disconnect removes a player permanently. It reports whether the room is now
// empty and should be destroyed. Host rights fall to the first remaining seat
// if the host left. During play the turn pointer is repaired by a plain
// re-index: seats above the leaver shift down one, and if the leaver held the
// turn the pointer is taken modulo the smaller roster.
func (r *Room) Disconnect(playerID string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.playerIndex(playerID)
	if idx < 0 {
		return len(r.players) == 0
	}

	r.players = append(r.players[:idx], r.players[idx+1:]...)

	r.logger.Info("player left",
		zap.String("room_code", r.code),
		zap.String("player_id", playerID),
		zap.Int("remaining", len(r.players)),
	)

	if len(r.players) == 0 {
		return true
	}

	if r.hostIndex() < 0 {
		r.players[0].IsHost = true
	}

	if r.status == StatusPlaying {
		if idx < r.current {
			r.current--
		} else if idx == r.current {
			r.current = r.current % len(r.players)
		}
	}

	r.pushState()
	return false
}

// Snapshot returns the public view of the room.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// HandOf returns a copy of one player's hand, nil for an unknown player.
func (r *Room) HandOf(playerID string) []domino.Tile {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.playerIndex(playerID)
	if idx < 0 {
		return nil
	}
	hand := make([]domino.Tile, len(r.players[idx].Hand))
	copy(hand, r.players[idx].Hand)
	return hand
}

func (r *Room) playerIndex(playerID string) int {
	for i, p := range r.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) hostIndex() int {
	for i, p := range r.players {
		if p.IsHost {
			return i
		}
	}
	return -1
}

func (r *Room) summary(p *Player) *PlayerSummary {
	return &PlayerSummary{
		ID:        p.ID,
		Name:      p.Name,
		IsHost:    p.IsHost,
		TileCount: len(p.Hand),
	}
}

// isBlocked reports the end-of-game stall: boneyard exhausted and no hand in
// the room can attach to either open end.
func (r *Room) isBlocked() bool {
	if len(r.boneyard) > 0 {
		return false
	}
	for _, p := range r.players {
		if domino.CanHandPlay(p.Hand, r.board) {
			return false
		}
	}
	return true
}

// lowestHandIndex picks the block winner: the seat with the lowest hand pip
// sum, first seat on ties.
func (r *Room) lowestHandIndex() int {
	best := 0
	bestValue := domino.HandValue(r.players[0].Hand)
	for i, p := range r.players[1:] {
		if v := domino.HandValue(p.Hand); v < bestValue {
			bestValue = v
			best = i + 1
		}
	}
	return best
}

// applyScores credits the winner with the pip sum of every other hand. Only
// the winner's score moves.
func (r *Room) applyScores() {
	if r.winner == nil {
		return
	}
	points := 0
	for _, p := range r.players {
		if p.ID != r.winner.ID {
			points += domino.HandValue(p.Hand)
		}
	}
	r.scores[r.winner.ID] += points
}

func (r *Room) snapshotLocked() Snapshot {
	players := make([]PlayerSummary, len(r.players))
	for i, p := range r.players {
		players[i] = *r.summary(p)
	}

	board := make([]domino.Tile, len(r.board))
	copy(board, r.board)

	scores := make(map[string]int, len(r.scores))
	for id, s := range r.scores {
		scores[id] = s
	}

	currentPlayer := ""
	if r.status == StatusPlaying && r.current >= 0 && r.current < len(r.players) {
		currentPlayer = r.players[r.current].ID
	}

	var winner *PlayerSummary
	if r.winner != nil {
		w := *r.winner
		winner = &w
	}

	return Snapshot{
		Status:        r.status,
		Players:       players,
		Board:         board,
		CurrentPlayer: currentPlayer,
		Winner:        winner,
		Scores:        scores,
	}
}

// sendHand delivers a player's hand over their private channel only.
func (r *Room) sendHand(p *Player) {
	hand := make([]domino.Tile, len(p.Hand))
	copy(hand, p.Hand)
	r.sink.Unicast(p.ID, EventPlayerHand, hand)
}

// pushState recomputes every player's legal-move hint, delivers it privately,
// then broadcasts the public snapshot to the whole room. Called at the end of
// every successful mutation.
func (r *Room) pushState() {
	for _, p := range r.players {
		r.sink.Unicast(p.ID, EventValidMoves, domino.LegalMoves(p.Hand, r.board))
	}
	r.sink.Broadcast(r.code, EventGameState, r.snapshotLocked())
}
