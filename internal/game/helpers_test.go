package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lox/shutthebox/internal/dice"
)

// shutRolls closes a nine-tile board: 9, 8, 7, 6, 5, 4, 3, 2 with two dice
// and then the 1 with a single die.
var shutRolls = []int{6, 3, 4, 4, 3, 4, 3, 3, 2, 3, 2, 2, 1, 2, 1, 1, 1}

type testMatchBuilder struct {
	opts    Options
	players []PlayerInfo
	rolls   []int
	sink    SnapshotSink
}

type testMatchOption func(*testMatchBuilder)

func withOptions(opts Options) testMatchOption {
	return func(b *testMatchBuilder) { b.opts = opts }
}

func withPlayers(names ...string) testMatchOption {
	return func(b *testMatchBuilder) {
		b.players = nil
		for _, n := range names {
			b.players = append(b.players, PlayerInfo{Name: n})
		}
	}
}

func withRolls(rolls ...int) testMatchOption {
	return func(b *testMatchBuilder) { b.rolls = append(b.rolls, rolls...) }
}

func withSink(sink SnapshotSink) testMatchOption {
	return func(b *testMatchBuilder) { b.sink = sink }
}

// newTestMatch creates a match with scripted dice and an event recorder.
func newTestMatch(t *testing.T, opts ...testMatchOption) (*Match, *EventRecorder) {
	t.Helper()
	b := &testMatchBuilder{
		opts:    DefaultOptions(),
		players: []PlayerInfo{{Name: "Alice"}, {Name: "Bob"}},
	}
	for _, opt := range opts {
		opt(b)
	}
	bus := NewEventBus()
	rec := &EventRecorder{}
	bus.Subscribe(rec)
	clock := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mopts := []MatchOption{
		WithRoller(dice.NewFixed(b.rolls...)),
		WithEventBus(bus),
		WithIDGenerator(func() string { return "match_test" }),
		WithClock(func() time.Time { return clock }),
	}
	if b.sink != nil {
		mopts = append(mopts, WithSink(b.sink))
	}
	m, err := NewMatch(b.opts, b.players, mopts...)
	require.NoError(t, err)
	return m, rec
}

// closeTiles rolls count dice and closes the given tiles.
func closeTiles(t *testing.T, m *Match, count int, tiles ...int) Outcome {
	t.Helper()
	_, err := m.Roll(count)
	require.NoError(t, err)
	for _, v := range tiles {
		_, err := m.ToggleTile(v)
		require.NoError(t, err)
	}
	out, err := m.Confirm()
	require.NoError(t, err)
	return out
}

// shutTheBox plays a whole turn with shutRolls, which must be next in the script.
func shutTheBox(t *testing.T, m *Match) Outcome {
	t.Helper()
	for _, v := range []int{9, 8, 7, 6, 5, 4, 3, 2} {
		closeTiles(t, m, 2, v)
	}
	return closeTiles(t, m, 1, 1)
}
