package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"

	"github.com/lox/shutthebox/internal/game"
)

// Config is the complete configuration for a local match.
type Config struct {
	Game     GameSettings
	Players  []string
	Autoplay AutoplaySettings
	Storage  StorageSettings
	Log      LogSettings
}

// GameSettings mirrors game.Options in its string form.
type GameSettings struct {
	HighestTile      int    `hcl:"highest_tile,optional"`
	OneDie           string `hcl:"one_die,optional"`
	Scoring          string `hcl:"scoring,optional"`
	Target           int    `hcl:"target,optional"`
	InstantWinOnShut bool   `hcl:"instant_win_on_shut,optional"`
}

// PlayerBlock is a labelled player block: player "Alice" {}
type PlayerBlock struct {
	Name string `hcl:"name,label"`
}

// AutoplaySettings controls the automated driver. Delays are milliseconds.
type AutoplaySettings struct {
	Enabled        bool `hcl:"enabled,optional"`
	RollDelayMS    int  `hcl:"roll_delay_ms,optional"`
	ConfirmDelayMS int  `hcl:"confirm_delay_ms,optional"`
	HandoffDelayMS int  `hcl:"handoff_delay_ms,optional"`
	RetryDelayMS   int  `hcl:"retry_delay_ms,optional"`
	MaxRetries     int  `hcl:"max_retries,optional"`
}

// StorageSettings names where snapshots are written. Empty paths disable
// the corresponding store.
type StorageSettings struct {
	JSONPath   string `hcl:"json_path,optional"`
	SQLitePath string `hcl:"sqlite_path,optional"`
}

// LogSettings contains logging settings
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
	JSON  bool   `hcl:"json,optional"`
}

type fileConfig struct {
	Game     *GameSettings     `hcl:"game,block"`
	Players  []PlayerBlock     `hcl:"player,block"`
	Autoplay *AutoplaySettings `hcl:"autoplay,block"`
	Storage  *StorageSettings  `hcl:"storage,block"`
	Log      *LogSettings      `hcl:"log,block"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Game: GameSettings{
			HighestTile: 9,
			OneDie:      "after_top_tiles_closed",
			Scoring:     "lowest_remainder",
			Target:      45,
		},
		Players: []string{"Player 1", "Player 2"},
		Autoplay: AutoplaySettings{
			RollDelayMS:    400,
			ConfirmDelayMS: 600,
			HandoffDelayMS: 800,
			RetryDelayMS:   250,
			MaxRetries:     3,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and back-fills defaults for anything unset.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := Default()
	if fc.Game != nil {
		config.Game = *fc.Game
	}
	if len(fc.Players) > 0 {
		config.Players = config.Players[:0]
		for _, p := range fc.Players {
			config.Players = append(config.Players, p.Name)
		}
	}
	if fc.Autoplay != nil {
		config.Autoplay = *fc.Autoplay
	}
	if fc.Storage != nil {
		config.Storage = *fc.Storage
	}
	if fc.Log != nil {
		config.Log = *fc.Log
	}

	defaults := Default()
	if config.Game.HighestTile == 0 {
		config.Game.HighestTile = defaults.Game.HighestTile
	}
	if config.Game.OneDie == "" {
		config.Game.OneDie = defaults.Game.OneDie
	}
	if config.Game.Scoring == "" {
		config.Game.Scoring = defaults.Game.Scoring
	}
	if config.Game.Target == 0 {
		config.Game.Target = defaults.Game.Target
	}

	if config.Autoplay.RollDelayMS == 0 {
		config.Autoplay.RollDelayMS = defaults.Autoplay.RollDelayMS
	}
	if config.Autoplay.ConfirmDelayMS == 0 {
		config.Autoplay.ConfirmDelayMS = defaults.Autoplay.ConfirmDelayMS
	}
	if config.Autoplay.HandoffDelayMS == 0 {
		config.Autoplay.HandoffDelayMS = defaults.Autoplay.HandoffDelayMS
	}
	if config.Autoplay.RetryDelayMS == 0 {
		config.Autoplay.RetryDelayMS = defaults.Autoplay.RetryDelayMS
	}
	if config.Autoplay.MaxRetries == 0 {
		config.Autoplay.MaxRetries = defaults.Autoplay.MaxRetries
	}

	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}

	return config, nil
}

// Options converts the game block into match options.
func (c *Config) Options() (game.Options, error) {
	opts := game.DefaultOptions()
	var err error
	for _, kv := range [][2]string{
		{game.OptionOneDie, c.Game.OneDie},
		{game.OptionScoring, c.Game.Scoring},
		{game.OptionTarget, fmt.Sprint(c.Game.Target)},
		{game.OptionHighestTile, fmt.Sprint(c.Game.HighestTile)},
	} {
		if opts, err = opts.With(kv[0], kv[1]); err != nil {
			return opts, err
		}
	}
	opts.InstantWinOnShut = c.Game.InstantWinOnShut
	return opts, nil
}

// PlayerInfos returns the configured players in seating order.
func (c *Config) PlayerInfos() []game.PlayerInfo {
	out := make([]game.PlayerInfo, len(c.Players))
	for i, name := range c.Players {
		out[i] = game.PlayerInfo{Name: name}
	}
	return out
}

// LogLevel parses the configured level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	return zerolog.ParseLevel(c.Log.Level)
}

// RollDelay returns the pause before the driver rolls.
func (a AutoplaySettings) RollDelay() time.Duration {
	return time.Duration(a.RollDelayMS) * time.Millisecond
}

// ConfirmDelay returns the pause before the driver confirms a selection.
func (a AutoplaySettings) ConfirmDelay() time.Duration {
	return time.Duration(a.ConfirmDelayMS) * time.Millisecond
}

// HandoffDelay returns the pause before the driver acknowledges a hand-off.
func (a AutoplaySettings) HandoffDelay() time.Duration {
	return time.Duration(a.HandoffDelayMS) * time.Millisecond
}

// RetryDelay returns the pause before a rejected step is retried.
func (a AutoplaySettings) RetryDelay() time.Duration {
	return time.Duration(a.RetryDelayMS) * time.Millisecond
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.Options(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if len(c.Players) == 0 {
		return fmt.Errorf("at least one player is required")
	}
	seen := make(map[string]bool, len(c.Players))
	for _, name := range c.Players {
		if name == "" {
			return fmt.Errorf("player names must not be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate player %q", name)
		}
		seen[name] = true
	}
	if c.Autoplay.RollDelayMS < 0 || c.Autoplay.ConfirmDelayMS < 0 ||
		c.Autoplay.HandoffDelayMS < 0 || c.Autoplay.RetryDelayMS < 0 {
		return fmt.Errorf("autoplay delays must not be negative")
	}
	if c.Autoplay.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}
