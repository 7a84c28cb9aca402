package game

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/shutthebox/internal/dice"
)

// MatchOption configures a Match during creation.
type MatchOption func(*matchConfig)

type matchConfig struct {
	roller dice.Roller
	logger zerolog.Logger
	sink   SnapshotSink
	bus    EventBus
	newID  func() string
	now    func() time.Time
}

// WithRoller sets the dice roller. Tests pass a seeded or scripted roller;
// the default is seeded from the wall clock.
func WithRoller(r dice.Roller) MatchOption {
	return func(c *matchConfig) { c.roller = r }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) MatchOption {
	return func(c *matchConfig) { c.logger = logger }
}

// WithSink sets where snapshots are sent after each mutation.
func WithSink(sink SnapshotSink) MatchOption {
	return func(c *matchConfig) { c.sink = sink }
}

// WithEventBus sets the bus events are published on.
func WithEventBus(bus EventBus) MatchOption {
	return func(c *matchConfig) { c.bus = bus }
}

// WithIDGenerator overrides how match IDs are minted.
func WithIDGenerator(fn func() string) MatchOption {
	return func(c *matchConfig) { c.newID = fn }
}

// WithClock overrides the clock used for snapshot and event timestamps.
func WithClock(now func() time.Time) MatchOption {
	return func(c *matchConfig) { c.now = now }
}
