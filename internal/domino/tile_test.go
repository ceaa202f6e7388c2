package domino_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominohub/domino-server-go/internal/domino"
)

func TestNewDeck(t *testing.T) {
	deck := domino.NewDeck()
	require.Len(t, deck, domino.DeckSize)

	seen := make(map[domino.Tile]bool)
	doubles := 0
	for _, tile := range deck {
		assert.LessOrEqual(t, tile.Left, tile.Right, "deck tiles are built with left <= right")
		assert.GreaterOrEqual(t, tile.Left, 0)
		assert.LessOrEqual(t, tile.Right, domino.MaxPip)
		assert.False(t, seen[tile], "duplicate tile %s", tile)
		seen[tile] = true
		if tile.IsDouble() {
			doubles++
		}
	}
	assert.Equal(t, 7, doubles, "double-six set holds exactly 7 doubles")
}

func TestShuffleIsPermutationOfFullDeck(t *testing.T) {
	deck := domino.NewDeck()
	rng := rand.New(rand.NewSource(42))
	domino.Shuffle(deck, rng)

	require.Len(t, deck, domino.DeckSize)

	counts := make(map[domino.Tile]int)
	for _, tile := range deck {
		counts[tile]++
	}
	for _, tile := range domino.NewDeck() {
		assert.Equal(t, 1, counts[tile], "tile %s must appear exactly once", tile)
	}
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	a := domino.NewDeck()
	b := domino.NewDeck()
	domino.Shuffle(a, rand.New(rand.NewSource(7)))
	domino.Shuffle(b, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}

func TestDeal(t *testing.T) {
	deck := domino.NewDeck()
	rng := rand.New(rand.NewSource(1))
	domino.Shuffle(deck, rng)

	hands, boneyard, err := domino.Deal(deck, 2, domino.DefaultHandSize)
	require.NoError(t, err)
	require.Len(t, hands, 2)
	assert.Len(t, hands[0], 7)
	assert.Len(t, hands[1], 7)
	assert.Len(t, boneyard, 14)

	// Hands come off the front in player order.
	assert.Equal(t, deck[:7], hands[0])
	assert.Equal(t, deck[7:14], hands[1])
	assert.Equal(t, deck[14:], boneyard)
}

func TestDealInsufficientTiles(t *testing.T) {
	deck := domino.NewDeck()

	// 5 players x 7 tiles = 35 > 28.
	_, _, err := domino.Deal(deck, 5, domino.DefaultHandSize)
	require.Error(t, err)
	assert.ErrorIs(t, err, domino.ErrInsufficientTiles)

	// 4 players is the standard-rules ceiling.
	hands, boneyard, err := domino.Deal(deck, 4, domino.DefaultHandSize)
	require.NoError(t, err)
	assert.Len(t, hands, 4)
	assert.Empty(t, boneyard)
}

func TestTileIdentityAndOrientation(t *testing.T) {
	tile := domino.Tile{Left: 2, Right: 5}

	assert.True(t, tile.SamePair(domino.Tile{Left: 5, Right: 2}))
	assert.True(t, tile.SamePair(tile))
	assert.False(t, tile.SamePair(domino.Tile{Left: 2, Right: 4}))

	assert.Equal(t, domino.Tile{Left: 5, Right: 2}, tile.Flipped())
	assert.Equal(t, 7, tile.Sum())
	assert.False(t, tile.IsDouble())
	assert.True(t, domino.Tile{Left: 3, Right: 3}.IsDouble())
	assert.True(t, tile.HasPip(5))
	assert.False(t, tile.HasPip(6))
}

func TestHandValue(t *testing.T) {
	hand := []domino.Tile{{Left: 2, Right: 5}, {Left: 6, Right: 6}, {Left: 0, Right: 1}}
	assert.Equal(t, 20, domino.HandValue(hand))
	assert.Zero(t, domino.HandValue(nil))
}
