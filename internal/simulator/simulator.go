// Package simulator plays many automated matches in parallel and collects
// per-strategy statistics.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/shutthebox/internal/autoplay"
	"github.com/lox/shutthebox/internal/dice"
	"github.com/lox/shutthebox/internal/game"
	"github.com/lox/shutthebox/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Matches    int
	Rounds     int // rounds per match; a target race may end sooner
	Seed       int64
	Parallel   int
	Timeout    time.Duration // per match
	Options    game.Options
	Strategies []string // one per seat
	Logger     zerolog.Logger
}

// Simulator runs automated shut the box matches
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Rounds <= 0 {
		config.Rounds = 1
	}
	if config.Parallel <= 0 {
		config.Parallel = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Simulator{config: config}
}

// Validate checks the configuration before any match is played.
func (c Config) Validate() error {
	if c.Matches <= 0 {
		return errors.New("matches must be positive")
	}
	if len(c.Strategies) == 0 {
		return errors.New("at least one strategy is required")
	}
	for _, name := range c.Strategies {
		if _, err := autoplay.ParseStrategy(name, 0); err != nil {
			return err
		}
	}
	return c.Options.Validate()
}

// Run plays every match and returns the aggregated report.
func (s *Simulator) Run(ctx context.Context) (*statistics.Report, error) {
	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	start := time.Now()
	results := make([]*statistics.Report, s.config.Matches)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for i := range s.config.Matches {
		g.Go(func() error {
			r, err := s.playMatch(ctx, i)
			if err != nil {
				return fmt.Errorf("match %d (seed %d): %w", i+1, s.seed(i), err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := statistics.NewReport()
	report.Matches = s.config.Matches
	report.Seed = s.config.Seed
	report.Rules = fmt.Sprintf("%d tiles, %s, one die %s", s.config.Options.HighestTile, s.config.Options.Scoring, s.config.Options.OneDie)
	for _, r := range results {
		for _, name := range r.Names() {
			report.For(name).Merge(r.Strategies[name])
		}
	}
	report.Duration = time.Since(start)
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return report, nil
}

func (s *Simulator) seed(i int) int64 { return s.config.Seed + int64(i) }

// playMatch plays one match. Seating rotates with the match index so no
// strategy always goes first.
func (s *Simulator) playMatch(ctx context.Context, i int) (*statistics.Report, error) {
	seed := s.seed(i)
	n := len(s.config.Strategies)

	seats := make([]string, n)
	players := make([]game.PlayerInfo, n)
	for j := range n {
		seats[j] = s.config.Strategies[(i+j)%n]
		players[j] = game.PlayerInfo{ID: fmt.Sprintf("seat%d", j+1), Name: fmt.Sprintf("%s #%d", seats[j], j+1)}
	}

	collector := newCollector(seats, seed)
	bus := game.NewEventBus()
	bus.Subscribe(collector)
	m, err := game.NewMatch(s.config.Options, players,
		game.WithRoller(dice.NewSeeded(seed)),
		game.WithEventBus(bus),
		game.WithLogger(s.config.Logger))
	if err != nil {
		return nil, err
	}

	opts := []autoplay.Option{
		autoplay.WithRounds(s.config.Rounds),
		autoplay.WithLogger(s.config.Logger),
	}
	for j, name := range seats {
		strategy, err := autoplay.ParseStrategy(name, seed*31+int64(j))
		if err != nil {
			return nil, err
		}
		opts = append(opts, autoplay.WithSeat(j, strategy))
	}
	driver := autoplay.NewDriver(m, autoplay.BestMove{}, opts...)

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	if err := driver.Run(ctx); err != nil {
		return nil, err
	}
	s.config.Logger.Debug().Int64("seed", seed).Int("rounds", m.Round()).Msg("Match simulated")
	return collector.report, nil
}

// collector turns match events into statistics.
type collector struct {
	seats  []string
	seed   int64
	report *statistics.Report
}

func newCollector(seats []string, seed int64) *collector {
	c := &collector{seats: seats, seed: seed, report: statistics.NewReport()}
	for _, name := range seats {
		c.report.For(name)
	}
	return c
}

func (c *collector) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.TurnEndEvent:
		c.report.For(c.seats[e.Summary.Player]).Add(statistics.TurnResult{
			Remainder: e.Summary.Remainder,
			Rolls:     e.Summary.Rolls,
			Closures:  len(e.Summary.History),
			Seed:      c.seed,
		})
	case game.RoundEndEvent:
		for _, name := range c.seats {
			c.report.For(name).Rounds++
		}
		for _, w := range e.Result.Winners {
			c.report.For(c.seats[w]).RoundWins++
		}
	case game.MatchEndEvent:
		for _, name := range c.seats {
			c.report.For(name).Matches++
		}
		for _, w := range e.Result.Winners {
			c.report.For(c.seats[w]).MatchWins++
		}
	}
}
