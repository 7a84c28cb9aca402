package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/shutthebox/cmd/shutthebox/shared"
	"github.com/lox/shutthebox/internal/autoplay"
	"github.com/lox/shutthebox/internal/config"
	"github.com/lox/shutthebox/internal/dice"
	"github.com/lox/shutthebox/internal/game"
	"github.com/lox/shutthebox/internal/store"
	"github.com/lox/shutthebox/internal/tui"
)

type PlayCmd struct {
	Players  []string  `arg:"" optional:"" help:"Player names in seating order (defaults to the config file)"`
	Auto     []string  `help:"Players the computer plays for"`
	Strategy string    `default:"best-move" enum:"${strategies}" help:"Strategy for computer players (${enum})"`
	Seed     int64     `help:"Seed for dice and computer choices (0 uses the clock)"`
	NoColor  bool      `help:"Disable colours"`
	LogFile  string    `type:"path" help:"Write debug logs to this file (the terminal belongs to the game)"`
	Resume   bool      `help:"Reuse the players and rules saved in the JSON snapshot"`
	Rules    RuleFlags `embed:"" group:"Rules"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	c.Rules.apply(&cfg.Game)
	if len(c.Players) > 0 {
		cfg.Players = c.Players
	}
	if c.LogFile != "" {
		cfg.Log.File = c.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	players := cfg.PlayerInfos()
	if c.Resume {
		if players, opts, err = resume(cfg, players, opts); err != nil {
			return err
		}
	}

	logOut := io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := shared.NewLogger(logOut, level, cfg.Log.JSON)
	tuiLogger := log.NewWithOptions(logOut, log.Options{ReportTimestamp: true})
	if l, err := log.ParseLevel(cfg.Log.Level); err == nil {
		tuiLogger.SetLevel(l)
	}

	ctx := context.Background()
	sink, closeSinks, err := openSinks(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeSinks()

	diceSeed, strategySeed := seeds(c.Seed, time.Now)
	mopts := []game.MatchOption{game.WithRoller(dice.NewSeeded(diceSeed)), game.WithLogger(logger)}
	if sink != nil {
		mopts = append(mopts, game.WithSink(sink))
	}
	match, err := game.NewMatch(opts, players, mopts...)
	if err != nil {
		return err
	}

	seats, err := autoSeats(players, c.Auto, cfg.Autoplay.Enabled)
	if err != nil {
		return err
	}
	strategy, err := autoplay.ParseStrategy(c.Strategy, strategySeed)
	if err != nil {
		return err
	}

	if c.NoColor {
		tui.DisableColor()
	}
	logger.Info().Str("match", match.ID()).Int64("seed", diceSeed).Int("players", len(players)).Ints("auto", seats).Msg("Starting match")

	model := tui.New(match, tui.Options{
		AutoSeats: seats,
		Strategy:  strategy,
		Delays: autoplay.Delays{
			Roll:    cfg.Autoplay.RollDelay(),
			Confirm: cfg.Autoplay.ConfirmDelay(),
			Handoff: cfg.Autoplay.HandoffDelay(),
			Retry:   cfg.Autoplay.RetryDelay(),
		},
		MaxRetries: cfg.Autoplay.MaxRetries,
		Clock:      quartz.NewReal(),
		Logger:     tuiLogger,
	})
	return tui.Run(model)
}

// seeds returns the dice and strategy seeds. Without a flag value both come
// from the clock; the strategy seed is mixed so it never replays the dice.
func seeds(flag int64, now func() time.Time) (int64, int64) {
	base := flag
	if base == 0 {
		base = now().UnixNano()
	}
	return base, base ^ 0x5deece66d
}

// resume replaces players and rules with those of the last JSON snapshot,
// when there is one.
func resume(cfg *config.Config, players []game.PlayerInfo, opts game.Options) ([]game.PlayerInfo, game.Options, error) {
	if cfg.Storage.JSONPath == "" {
		return nil, opts, errors.New("--resume needs storage.json_path in the config file")
	}
	snap, err := store.NewJSONFile(cfg.Storage.JSONPath).Load()
	if errors.Is(err, store.ErrNotFound) {
		return players, opts, nil
	}
	if err != nil {
		return nil, opts, err
	}
	restored, err := snap.Options.Options()
	if err != nil {
		return nil, opts, fmt.Errorf("snapshot rules: %w", err)
	}
	return snap.PlayerInfos(), restored, nil
}

// openSinks opens the configured snapshot stores. The returned sink is nil
// when nothing is configured.
func openSinks(ctx context.Context, s config.StorageSettings) (game.SnapshotSink, func(), error) {
	var sinks store.Multi
	closeAll := func() {}
	if s.JSONPath != "" {
		sinks = append(sinks, store.NewJSONFile(s.JSONPath))
	}
	if s.SQLitePath != "" {
		db, err := store.OpenSQLite(ctx, s.SQLitePath)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, db)
		closeAll = func() { _ = db.Close() }
	}
	if len(sinks) == 0 {
		return nil, closeAll, nil
	}
	return sinks, closeAll, nil
}

// autoSeats maps player names to seat indexes. With all set and no names
// given, the computer plays every seat.
func autoSeats(players []game.PlayerInfo, names []string, all bool) ([]int, error) {
	if len(names) == 0 && all {
		seats := make([]int, len(players))
		for i := range players {
			seats[i] = i
		}
		return seats, nil
	}
	seats := make([]int, 0, len(names))
	for _, name := range names {
		found := -1
		for i, p := range players {
			if p.Name == name {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("--auto %q is not a player", name)
		}
		seats = append(seats, found)
	}
	return seats, nil
}
