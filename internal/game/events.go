package game

import (
	"slices"
	"time"

	"github.com/lox/shutthebox/internal/tiles"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeRoundStart     EventType = "round_start"
	EventTypeTurnStart      EventType = "turn_start"
	EventTypeDiceRolled     EventType = "dice_rolled"
	EventTypeTilesClosed    EventType = "tiles_closed"
	EventTypeTurnEnd        EventType = "turn_end"
	EventTypeHandoffPending EventType = "handoff_pending"
	EventTypeRoundEnd       EventType = "round_end"
	EventTypeMatchEnd       EventType = "match_end"
	EventTypeMatchReset     EventType = "match_reset"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a match
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundStartEvent is published when a round begins
type RoundStartEvent struct {
	MatchID   string
	Round     int
	Players   []string
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// TurnStartEvent is published when a player's turn becomes active
type TurnStartEvent struct {
	Round      int
	Player     int
	PlayerName string
	Board      tiles.Set
	timestamp  time.Time
}

func (e TurnStartEvent) EventType() EventType { return EventTypeTurnStart }
func (e TurnStartEvent) Timestamp() time.Time { return e.timestamp }

// DiceRolledEvent is published after every roll
type DiceRolledEvent struct {
	Player     int
	PlayerName string
	Dice       []int
	Total      int
	Combos     int
	Stuck      bool // no combo matched, the turn is over
	timestamp  time.Time
}

func (e DiceRolledEvent) EventType() EventType { return EventTypeDiceRolled }
func (e DiceRolledEvent) Timestamp() time.Time { return e.timestamp }

// TilesClosedEvent is published when a selection is confirmed
type TilesClosedEvent struct {
	Player     int
	PlayerName string
	Closed     tiles.Set
	Open       tiles.Set
	timestamp  time.Time
}

func (e TilesClosedEvent) EventType() EventType { return EventTypeTilesClosed }
func (e TilesClosedEvent) Timestamp() time.Time { return e.timestamp }

// TurnEndEvent is published when a turn finishes
type TurnEndEvent struct {
	Summary   TurnSummary
	timestamp time.Time
}

func (e TurnEndEvent) EventType() EventType { return EventTypeTurnEnd }
func (e TurnEndEvent) Timestamp() time.Time { return e.timestamp }

// HandoffPendingEvent is published when the device should be passed on
type HandoffPendingEvent struct {
	Handoff   Handoff
	timestamp time.Time
}

func (e HandoffPendingEvent) EventType() EventType { return EventTypeHandoffPending }
func (e HandoffPendingEvent) Timestamp() time.Time { return e.timestamp }

// RoundEndEvent is published when a round completes
type RoundEndEvent struct {
	Result    RoundResult
	timestamp time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// MatchEndEvent is published when a target race is decided
type MatchEndEvent struct {
	Result    MatchResult
	timestamp time.Time
}

func (e MatchEndEvent) EventType() EventType { return EventTypeMatchEnd }
func (e MatchEndEvent) Timestamp() time.Time { return e.timestamp }

// MatchResetEvent is published when the match returns to setup
type MatchResetEvent struct {
	timestamp time.Time
}

func (e MatchResetEvent) EventType() EventType { return EventTypeMatchReset }
func (e MatchResetEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventSubscriberFunc adapts a function to EventSubscriber
type EventSubscriberFunc func(event GameEvent)

func (f EventSubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus. Delivery is synchronous on
// the publishing goroutine.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events. Function
// subscribers cannot be compared and must be removed by resetting the bus.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if _, ok := subscriber.(EventSubscriberFunc); ok {
		return
	}
	for i, sub := range bus.subscribers {
		if _, ok := sub.(EventSubscriberFunc); ok {
			continue
		}
		if sub == subscriber {
			bus.subscribers = slices.Delete(bus.subscribers, i, i+1)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}

// EventRecorder keeps every event it sees, for tests and replays.
type EventRecorder struct {
	Events []GameEvent
}

func (r *EventRecorder) OnEvent(event GameEvent) { r.Events = append(r.Events, event) }

// Types lists the recorded event types in order.
func (r *EventRecorder) Types() []EventType {
	out := make([]EventType, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.EventType()
	}
	return out
}
