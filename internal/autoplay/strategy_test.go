package autoplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/shutthebox/internal/game"
	"github.com/lox/shutthebox/internal/tiles"
)

func viewFor(open tiles.Set, total int) game.TurnView {
	return game.TurnView{State: game.Rolled, Open: open, Combos: tiles.Combos(open, total)}
}

func TestStrategiesChoose(t *testing.T) {
	t.Parallel()
	v := viewFor(tiles.Of(1, 2, 3, 4), 7)
	assert.Equal(t, tiles.Of(3, 4), BestMove{}.Choose(v).Set())
	assert.Equal(t, tiles.Of(1, 2, 4), LargestTile{}.Choose(v).Set())
}

type scriptedIntn struct{ values []int }

func (s *scriptedIntn) Intn(n int) int {
	v := s.values[0]
	s.values = s.values[1:]
	return v % n
}

func TestRandomLegal(t *testing.T) {
	t.Parallel()
	r := NewRandomLegal(&scriptedIntn{values: []int{1, 0, 1}})
	v := viewFor(tiles.Full(9), 5) // three ways to make 5
	require.Len(t, v.Combos, 3)
	assert.Equal(t, v.Combos[1], r.Choose(v))

	v.OneDieEligible = true
	assert.Equal(t, 1, r.Dice(v))
	assert.Equal(t, 2, r.Dice(v))
}

func TestDiceCounts(t *testing.T) {
	t.Parallel()
	small := game.TurnView{Open: tiles.Of(1, 5), OneDieEligible: true}
	large := game.TurnView{Open: tiles.Of(1, 6), OneDieEligible: true}
	assert.Equal(t, 1, BestMove{}.Dice(small))
	assert.Equal(t, 2, BestMove{}.Dice(large))
	assert.Equal(t, 2, BestMove{}.Dice(game.TurnView{Open: tiles.Of(1)}))
	assert.Equal(t, 2, LargestTile{}.Dice(small))
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	for _, name := range StrategyNames() {
		s, err := ParseStrategy(name, 1)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}
	_, err := ParseStrategy("psychic", 1)
	assert.Error(t, err)
}
