package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lox/shutthebox/internal/tiles"
)

func TestEventFormatter_Format(t *testing.T) {
	ts := time.Date(2024, 5, 6, 14, 30, 15, 0, time.UTC)
	names := map[string]string{"p1": "Alice", "p2": "Bob"}

	tests := []struct {
		name     string
		opts     FormattingOptions
		event    GameEvent
		expected string
	}{
		{
			name:     "round start",
			event:    RoundStartEvent{Round: 2, Players: []string{"Alice", "Bob"}},
			expected: "=== Round 2 (Alice, Bob) ===",
		},
		{
			name:     "turn start",
			event:    TurnStartEvent{PlayerName: "Alice", Board: tiles.Full(4)},
			expected: "Alice to play on {1 2 3 4}",
		},
		{
			name:     "roll with moves",
			event:    DiceRolledEvent{PlayerName: "Bob", Dice: []int{4, 5}, Total: 9, Combos: 8},
			expected: "Bob rolls 4+5 = 9, 8 ways to close",
		},
		{
			name:     "stuck roll",
			event:    DiceRolledEvent{PlayerName: "Bob", Dice: []int{1, 1}, Total: 2, Stuck: true},
			expected: "Bob rolls 1+1 = 2, no moves",
		},
		{
			name:     "tiles closed",
			event:    TilesClosedEvent{PlayerName: "Alice", Closed: tiles.Of(1, 8), Open: tiles.Of(2, 9)},
			expected: "Alice closes {1 8}, open {2 9}",
		},
		{
			name:     "shut",
			event:    TurnEndEvent{Summary: TurnSummary{PlayerName: "Alice", Shut: true}},
			expected: "Alice shuts the box!",
		},
		{
			name:     "forced end",
			event:    TurnEndEvent{Summary: TurnSummary{PlayerName: "Bob", Remainder: 12, Forced: true}},
			expected: "Bob ends the turn with 12 remaining",
		},
		{
			name:     "stuck end",
			event:    TurnEndEvent{Summary: TurnSummary{PlayerName: "Bob", Remainder: 3}},
			expected: "Bob is stuck with 3 remaining",
		},
		{
			name:     "handoff",
			event:    HandoffPendingEvent{Handoff: Handoff{PlayerName: "Bob"}},
			expected: "Pass to Bob",
		},
		{
			name:     "handoff to new round",
			event:    HandoffPendingEvent{Handoff: Handoff{Round: 3, PlayerName: "Alice", NewRound: true}},
			expected: "Round 3 next, pass to Alice",
		},
		{
			name:     "round winner",
			opts:     FormattingOptions{Names: names},
			event:    RoundEndEvent{Result: RoundResult{Round: 1, Winners: []int{1}, WinnerIDs: []string{"p2"}}},
			expected: "Round 1: Bob wins",
		},
		{
			name:     "round tie",
			opts:     FormattingOptions{Names: names},
			event:    RoundEndEvent{Result: RoundResult{Round: 1, Winners: []int{0, 1}, WinnerIDs: []string{"p1", "p2"}}},
			expected: "Round 1: Alice & Bob tie",
		},
		{
			name:     "round without winner",
			event:    RoundEndEvent{Result: RoundResult{Round: 4}},
			expected: "Round 4: no winner",
		},
		{
			name:     "match end falls back to IDs",
			event:    MatchEndEvent{Result: MatchResult{Rounds: 5, WinnerIDs: []string{"p9"}}},
			expected: "*** Match over after 5 rounds: p9 ***",
		},
		{
			name:     "timestamps",
			opts:     FormattingOptions{ShowTimestamps: true},
			event:    MatchResetEvent{timestamp: ts},
			expected: "14:30:15 Match reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEventFormatter(tt.opts).Format(tt.event)
			assert.Equal(t, tt.expected, got)
		})
	}
}

type countingSubscriber struct{ n int }

func (c *countingSubscriber) OnEvent(GameEvent) { c.n++ }

func TestEventBus(t *testing.T) {
	t.Parallel()
	bus := NewEventBus()
	a := &countingSubscriber{}
	b := &countingSubscriber{}
	var seen []EventType
	bus.Subscribe(a)
	bus.Subscribe(b)
	bus.Subscribe(EventSubscriberFunc(func(e GameEvent) { seen = append(seen, e.EventType()) }))

	bus.Publish(MatchResetEvent{})
	bus.Unsubscribe(a)
	bus.Publish(RoundStartEvent{})

	assert.Equal(t, 1, a.n)
	assert.Equal(t, 2, b.n)
	assert.Equal(t, []EventType{EventTypeMatchReset, EventTypeRoundStart}, seen)

	// function subscribers are not comparable and stay subscribed
	bus.Unsubscribe(EventSubscriberFunc(func(GameEvent) {}))
	bus.Publish(MatchResetEvent{})
	assert.Len(t, seen, 3)
}

func TestEventRecorderTypes(t *testing.T) {
	t.Parallel()
	rec := &EventRecorder{}
	rec.OnEvent(TurnStartEvent{})
	rec.OnEvent(TurnEndEvent{})
	assert.Equal(t, []EventType{EventTypeTurnStart, EventTypeTurnEnd}, rec.Types())
	assert.Equal(t, "turn_end", EventTypeTurnEnd.String())
}
