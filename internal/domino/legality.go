package domino

// Side identifies a board extremity.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Valid reports whether s names a real board end.
func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

// SideFromString parses a wire position value. Anything unrecognized comes
// back as an invalid Side and fails the placement legality check.
func SideFromString(s string) Side {
	switch s {
	case "left":
		return SideLeft
	case "right":
		return SideRight
	default:
		return Side(s)
	}
}

// MoveHint tells one player where their hand can attach. A nil value means
// that end is unplayable for them; a non-nil value is the pip they must match.
// On an empty board both values are 0: anyone may open, which is distinct
// from "no moves available".
type MoveHint struct {
	Left  *int `json:"left"`
	Right *int `json:"right"`
}

// CanPlay reports whether the hint offers at least one playable end.
func (h MoveHint) CanPlay() bool {
	return h.Left != nil || h.Right != nil
}

// OpenEnds returns the pip values exposed at the two board extremities.
// Both are nil on an empty board.
func OpenEnds(board []Tile) (left, right *int) {
	if len(board) == 0 {
		return nil, nil
	}
	l := board[0].Left
	r := board[len(board)-1].Right
	return &l, &r
}

// IsLegalPlacement reports whether tile can attach to the given end. Any tile
// may open an empty board.
func IsLegalPlacement(board []Tile, tile Tile, side Side) bool {
	if len(board) == 0 {
		return true
	}
	switch side {
	case SideLeft:
		return tile.HasPip(board[0].Left)
	case SideRight:
		return tile.HasPip(board[len(board)-1].Right)
	default:
		return false
	}
}

// OrientForPlacement flips the tile if needed so its touching pip matches the
// board end it attaches to. Prepending on the left requires tile.Right to
// equal the left end; appending on the right requires tile.Left to equal the
// right end. The first tile on an empty board keeps its orientation.
func OrientForPlacement(board []Tile, tile Tile, side Side) Tile {
	if len(board) == 0 {
		return tile
	}
	if side == SideLeft {
		if tile.Right != board[0].Left {
			return tile.Flipped()
		}
		return tile
	}
	if tile.Left != board[len(board)-1].Right {
		return tile.Flipped()
	}
	return tile
}

// LegalMoves computes the per-end hint for a hand against the board. Each end
// reports its own pip value when some tile in the hand matches it.
func LegalMoves(hand []Tile, board []Tile) MoveHint {
	if len(board) == 0 {
		zero := 0
		zero2 := 0
		return MoveHint{Left: &zero, Right: &zero2}
	}

	leftEnd := board[0].Left
	rightEnd := board[len(board)-1].Right

	var hint MoveHint
	for _, t := range hand {
		if hint.Left == nil && t.HasPip(leftEnd) {
			v := leftEnd
			hint.Left = &v
		}
		if hint.Right == nil && t.HasPip(rightEnd) {
			v := rightEnd
			hint.Right = &v
		}
		if hint.Left != nil && hint.Right != nil {
			break
		}
	}
	return hint
}

// CanHandPlay reports whether any tile in the hand can be placed.
func CanHandPlay(hand []Tile, board []Tile) bool {
	if len(board) == 0 {
		return true
	}
	return LegalMoves(hand, board).CanPlay()
}

// CanTilePlay reports whether a single tile can attach to either open end.
// Used right after a draw to decide whether the turn is kept.
func CanTilePlay(tile Tile, board []Tile) bool {
	if len(board) == 0 {
		return true
	}
	return tile.HasPip(board[0].Left) || tile.HasPip(board[len(board)-1].Right)
}
