// Package autoplay plays a match through its public operations, one step
// at a time, the way a person at the table would.
package autoplay

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/shutthebox/internal/game"
	"github.com/lox/shutthebox/internal/tiles"
)

// ErrDone is returned by Step once there is nothing left to play.
var ErrDone = errors.New("autoplay: match complete")

// Delays are the pauses the driver leaves between steps.
type Delays struct {
	Roll    time.Duration // before rolling or starting a round
	Confirm time.Duration // between selecting tiles and confirming
	Handoff time.Duration // before acknowledging a hand-off
	Retry   time.Duration // before retrying a rejected step
}

// Driver steps a match forward with one Strategy per seat.
type Driver struct {
	match      *game.Match
	strategy   Strategy
	seats      map[int]Strategy
	clock      quartz.Clock
	logger     zerolog.Logger
	delays     Delays
	maxRetries int
	rounds     int

	plan    tiles.Combo
	hasPlan bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock sets the clock used to wait between steps.
func WithClock(clock quartz.Clock) Option {
	return func(d *Driver) { d.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithDelays sets the pauses between steps.
func WithDelays(delays Delays) Option {
	return func(d *Driver) { d.delays = delays }
}

// WithMaxRetries sets how many consecutive rejected steps Run tolerates.
func WithMaxRetries(n int) Option {
	return func(d *Driver) { d.maxRetries = n }
}

// WithRounds stops the driver once n rounds have finished. Zero means no
// limit, which only ends for a target race.
func WithRounds(n int) Option {
	return func(d *Driver) { d.rounds = n }
}

// WithSeat overrides the strategy for the player at index seat.
func WithSeat(seat int, s Strategy) Option {
	return func(d *Driver) { d.seats[seat] = s }
}

// NewDriver creates a driver for m that plays every seat with s unless
// overridden by WithSeat.
func NewDriver(m *game.Match, s Strategy, opts ...Option) *Driver {
	d := &Driver{
		match:      m,
		strategy:   s,
		seats:      make(map[int]Strategy),
		clock:      quartz.NewReal(),
		logger:     zerolog.Nop(),
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With().Str("component", "autoplay").Logger()
	return d
}

// StrategyFor returns the strategy playing seat.
func (d *Driver) StrategyFor(seat int) Strategy {
	if s, ok := d.seats[seat]; ok {
		return s
	}
	return d.strategy
}

// Step performs the next single operation and returns the delay to leave
// before the following step. Rejections from the match are returned as is.
func (d *Driver) Step() (time.Duration, error) {
	s := d.match.State()
	switch {
	case s.Result != nil:
		return 0, ErrDone
	case s.Phase == game.PhaseFinished && d.rounds > 0 && s.Round >= d.rounds:
		return 0, ErrDone
	case s.Pending != nil:
		d.logger.Debug().Str("next", s.Pending.PlayerName).Bool("new_round", s.Pending.NewRound).Msg("Acknowledging hand-off")
		_, err := d.match.AcknowledgeNextTurn()
		return d.delays.Roll, err
	case s.Phase == game.PhaseSetup || s.Phase == game.PhaseFinished:
		_, err := d.match.StartRound()
		return d.delays.Roll, err
	case s.Turn == nil:
		return 0, fmt.Errorf("no active turn in phase %s", s.Phase)
	}
	return d.playTurn(*s.Turn)
}

func (d *Driver) playTurn(v game.TurnView) (time.Duration, error) {
	strategy := d.StrategyFor(v.Player)
	switch v.State {
	case game.AwaitingRoll:
		d.hasPlan = false
		out, err := d.match.Roll(strategy.Dice(v))
		if err != nil {
			return 0, err
		}
		return d.delayAfter(out), nil

	case game.Rolled, game.Selecting:
		if !d.hasPlan || !slices.Contains(v.Combos, d.plan) {
			d.plan = strategy.Choose(v)
			d.hasPlan = true
			d.logger.Debug().Str("strategy", strategy.Name()).Ints("dice", v.Dice).Stringer("plan", d.plan).Msg("Chose combo")
		}
		plan := d.plan.Set()
		switch {
		case v.Selected == plan:
			out, err := d.match.Confirm()
			if err != nil {
				return 0, err
			}
			d.hasPlan = false
			return d.delayAfter(out), nil
		case !plan.Contains(v.Selected):
			_, err := d.match.ClearSelection()
			return d.delays.Confirm, err
		default:
			_, err := d.match.ToggleTile(plan.Minus(v.Selected).Values()[0])
			return d.delays.Confirm, err
		}

	default:
		return 0, fmt.Errorf("turn for player %d is %s with no hand-off pending", v.Player, v.State)
	}
}

func (d *Driver) delayAfter(out game.Outcome) time.Duration {
	switch {
	case out.Handoff != nil, out.RoundEnded != nil:
		return d.delays.Handoff
	case out.Turn != nil && out.Turn.State == game.Rolled:
		return d.delays.Confirm
	default:
		return d.delays.Roll
	}
}

// Run steps the match until it is done or ctx is cancelled. A rejected step
// is retried after the retry delay, up to the configured number of times in
// a row.
func (d *Driver) Run(ctx context.Context) error {
	retries := 0
	for {
		delay, err := d.Step()
		switch {
		case errors.Is(err, ErrDone):
			return nil
		case err != nil:
			var rejected *game.RejectedError
			if !errors.As(err, &rejected) || retries >= d.maxRetries {
				return fmt.Errorf("autoplay step: %w", err)
			}
			retries++
			d.logger.Warn().Err(err).Int("attempt", retries).Msg("Step rejected, retrying")
			delay = d.delays.Retry
		default:
			retries = 0
		}
		if err := d.wait(ctx, delay); err != nil {
			return err
		}
	}
}

func (d *Driver) wait(ctx context.Context, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}
	timer := d.clock.NewTimer(delay, "autoplay")
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
