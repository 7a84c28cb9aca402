package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newThreeLedger() *Ledger {
	return NewLedger([]PlayerInfo{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}})
}

func TestLedgerRecord(t *testing.T) {
	t.Parallel()
	l := newThreeLedger()
	l.Record(0, 7, true)
	l.Record(0, 3, true)
	assert.Equal(t, 10, l.Entry(0).TotalScore)
	assert.Equal(t, 3, l.Entry(0).LastScore)
	assert.Equal(t, 2, l.Entry(0).Unshut)

	l.Record(1, 12, false)
	l.Record(1, 0, false)
	assert.Equal(t, 0, l.Entry(1).TotalScore)
	assert.Equal(t, 1, l.Entry(1).Shut)
	assert.Equal(t, []int{0, 1}, l.Played())
}

func TestLedgerLowest(t *testing.T) {
	t.Parallel()
	l := newThreeLedger()
	assert.Nil(t, l.LowestLast(), "nobody played")

	l.Record(0, 5, true)
	l.Record(2, 5, true)
	assert.Equal(t, []int{0, 2}, l.LowestLast(), "players who did not play are ignored")
	assert.Equal(t, []int{1}, l.LowestTotal(0))
	assert.Equal(t, []int{0, 2}, l.LowestTotal(5), "only totals at or above the target count")
	assert.Nil(t, l.LowestTotal(6))
	assert.Equal(t, []string{"a", "c"}, l.IDs(l.LowestLast()))
}

func TestLedgerResets(t *testing.T) {
	t.Parallel()
	l := newThreeLedger()
	l.Record(0, 20, true)
	l.Record(1, 0, true)
	l.SetWinners([]int{1})

	l.ResetRound(true)
	assert.False(t, l.Entry(0).Played)
	assert.Equal(t, 20, l.Entry(0).TotalScore)
	assert.Equal(t, []int{1}, l.LastWinners())

	l.ResetRound(false)
	assert.Equal(t, 0, l.Entry(0).TotalScore)

	l.Record(0, 4, true)
	l.ResetAll()
	e := l.Entry(0)
	assert.Equal(t, PlayerScore{ID: "a", Name: "A", Unshut: 2}, e)
	assert.Equal(t, 0, l.Entry(1).RoundWins)
	assert.Equal(t, 1, l.Entry(1).Shut)
	assert.Empty(t, l.LastWinners())
}

func TestLedgerReached(t *testing.T) {
	t.Parallel()
	l := newThreeLedger()
	assert.False(t, l.Reached(10))
	l.Record(2, 10, true)
	assert.True(t, l.Reached(10))
}
