package domino

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInsufficientTiles is returned by Deal when the boneyard cannot cover
// every requested hand.
var ErrInsufficientTiles = errors.New("not enough tiles in boneyard")

const (
	// MaxPip is the highest pip value in a double-six set.
	MaxPip = 6
	// DeckSize is the number of tiles in a double-six set.
	DeckSize = 28
	// DefaultHandSize is the number of tiles dealt to each player.
	DefaultHandSize = 7
)

// Tile is a single domino. Left/Right describe the current orientation on the
// board; the unordered pip pair is the tile's identity and never changes.
type Tile struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// IsDouble reports whether both halves carry the same pip value.
func (t Tile) IsDouble() bool {
	return t.Left == t.Right
}

// Sum returns the total pip value of the tile.
func (t Tile) Sum() int {
	return t.Left + t.Right
}

// Flipped returns the tile with its orientation reversed.
func (t Tile) Flipped() Tile {
	return Tile{Left: t.Right, Right: t.Left}
}

// SamePair reports whether two tiles are the same physical tile, ignoring
// orientation.
func (t Tile) SamePair(other Tile) bool {
	if t.Left == other.Left && t.Right == other.Right {
		return true
	}
	return t.Left == other.Right && t.Right == other.Left
}

// HasPip reports whether either half of the tile carries the given pip value.
func (t Tile) HasPip(pip int) bool {
	return t.Left == pip || t.Right == pip
}

func (t Tile) String() string {
	return fmt.Sprintf("%d-%d", t.Left, t.Right)
}

// NewDeck builds the full double-six set: every pair (i,j) with 0 <= i <= j <= 6,
// 28 tiles in deterministic order. Callers shuffle before dealing.
func NewDeck() []Tile {
	deck := make([]Tile, 0, DeckSize)
	for i := 0; i <= MaxPip; i++ {
		for j := i; j <= MaxPip; j++ {
			deck = append(deck, Tile{Left: i, Right: j})
		}
	}
	return deck
}

// Shuffle permutes tiles in place using the supplied source. The source is
// injected so tests can seed deterministic layouts.
func Shuffle(tiles []Tile, rng *rand.Rand) {
	rng.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
}

// Deal removes handSize tiles per player from the front of the boneyard, in
// player order, and returns the hands plus the remaining boneyard.
func Deal(boneyard []Tile, playerCount, handSize int) ([][]Tile, []Tile, error) {
	need := playerCount * handSize
	if need > len(boneyard) {
		return nil, boneyard, fmt.Errorf("%w: need %d tiles for %d players, have %d",
			ErrInsufficientTiles, need, playerCount, len(boneyard))
	}

	hands := make([][]Tile, playerCount)
	for i := 0; i < playerCount; i++ {
		hand := make([]Tile, handSize)
		copy(hand, boneyard[:handSize])
		boneyard = boneyard[handSize:]
		hands[i] = hand
	}
	return hands, boneyard, nil
}

// HandValue returns the total pip count of a hand. Used for scoring and for
// picking the block winner.
func HandValue(hand []Tile) int {
	total := 0
	for _, t := range hand {
		total += t.Sum()
	}
	return total
}
