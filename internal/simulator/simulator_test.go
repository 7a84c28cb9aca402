package simulator

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/shutthebox/internal/autoplay"
	"github.com/lox/shutthebox/internal/game"
)

func testConfig() Config {
	return Config{
		Matches:    8,
		Rounds:     2,
		Seed:       12345,
		Parallel:   4,
		Options:    game.DefaultOptions(),
		Strategies: []string{autoplay.StrategyBestMove, autoplay.StrategyRandomLegal},
		Logger:     zerolog.Nop(),
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()
	s := New(Config{Matches: 1})
	assert.Equal(t, 1, s.config.Rounds)
	assert.Equal(t, 1, s.config.Parallel)
	assert.Positive(t, s.config.Timeout)
}

func TestRun(t *testing.T) {
	t.Parallel()
	report, err := New(testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, report.Matches)
	assert.Equal(t, []string{autoplay.StrategyBestMove, autoplay.StrategyRandomLegal}, report.Names())
	for _, name := range report.Names() {
		s := report.Strategies[name]
		assert.Equal(t, 16, s.Rounds, "%s: one seat, two rounds, eight matches", name)
		assert.Equal(t, 16, s.Turns, "%s: every seat plays every round", name)
	}
	best := report.Strategies[autoplay.StrategyBestMove]
	random := report.Strategies[autoplay.StrategyRandomLegal]
	assert.GreaterOrEqual(t, best.RoundWins+random.RoundWins, 16, "every two-player round has a winner")
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()
	a, err := New(testConfig()).Run(context.Background())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Parallel = 1
	b, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Summaries(), b.Summaries(), "parallelism must not change results")
}

func TestRunTargetRace(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Matches = 3
	cfg.Rounds = 1000
	cfg.Options.Scoring = game.ScoringTargetRace
	cfg.Options.Target = 100
	cfg.Strategies = []string{autoplay.StrategyLargestTile, autoplay.StrategyBestMove, autoplay.StrategyRandomLegal}

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	wins := 0
	for _, name := range report.Names() {
		assert.Equal(t, 3, report.Strategies[name].Matches)
		wins += report.Strategies[name].MatchWins
	}
	assert.GreaterOrEqual(t, wins, 3)
}

func TestRunRejectsBadConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no matches", func(c *Config) { c.Matches = 0 }},
		{"no strategies", func(c *Config) { c.Strategies = nil }},
		{"unknown strategy", func(c *Config) { c.Strategies = []string{"psychic"} }},
		{"bad options", func(c *Config) { c.Options.HighestTile = 20 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := New(cfg).Run(context.Background())
			assert.Error(t, err)
		})
	}
}
