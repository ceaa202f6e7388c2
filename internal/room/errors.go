package room

import (
	"errors"

	"github.com/dominohub/domino-server-go/internal/domino"
)

// Request errors. Every one of these is recoverable: the gateway reports it to
// the requester only, the room's state is untouched and nothing is broadcast.
// The single sanctioned exception is ErrBoneyardEmpty, which DrawTile may pair
// with a turn skip (see Room.DrawTile).
var (
	ErrUnknownRoom         = errors.New("unknown room")
	ErrNotHost             = errors.New("only the host can do that")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrTileNotInHand       = errors.New("tile not in hand")
	ErrIllegalPlacement    = errors.New("tile does not match the open end")
	ErrInsufficientPlayers = errors.New("need at least 2 players to start the game")
	ErrBoneyardEmpty       = errors.New("no tiles left to draw")
)

// Kind maps an error to its short machine-checkable wire code. Unrecognized
// errors fall back to bad_request per the drop-don't-crash policy.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownRoom):
		return "unknown_room"
	case errors.Is(err, ErrNotHost):
		return "not_host"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrTileNotInHand):
		return "tile_not_in_hand"
	case errors.Is(err, ErrIllegalPlacement):
		return "illegal_placement"
	case errors.Is(err, ErrInsufficientPlayers):
		return "insufficient_players"
	case errors.Is(err, domino.ErrInsufficientTiles):
		return "insufficient_tiles"
	case errors.Is(err, ErrBoneyardEmpty):
		return "boneyard_empty"
	default:
		return "bad_request"
	}
}
