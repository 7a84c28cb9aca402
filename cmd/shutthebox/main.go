package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/lox/shutthebox/cmd/shutthebox/shared"
	"github.com/lox/shutthebox/internal/autoplay"
	"github.com/lox/shutthebox/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"shutthebox.hcl" type:"path" help:"HCL configuration file (missing file means defaults)"`
	LogLevel string `default:"" help:"Log level (debug, info, warn, error); overrides the config file"`
	LogJSON  bool   `name:"log-json" help:"Write structured JSON logs"`
}

// load reads the configuration file and applies the global overrides.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogJSON {
		cfg.Log.JSON = true
	}
	return cfg, nil
}

// logger builds the zerolog logger for non-interactive commands.
func (g *Globals) logger(cfg *config.Config) (zerolog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	return shared.NewLogger(nil, level, cfg.Log.JSON), nil
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"withargs" help:"Play a hot-seat match in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Play many computer matches and report statistics"`
	Combos   CombosCmd        `cmd:"" help:"List the ways to close a total from a set of open tiles"`
	History  HistoryCmd       `cmd:"" help:"Show snapshots saved to the SQLite store"`
}

func options() []kong.Option {
	return []kong.Option{
		kong.Name("shutthebox"),
		kong.Description("Shut the box for the terminal, with computer players and a simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":    version,
			"strategies": strings.Join(autoplay.StrategyNames(), ","),
		},
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, options()...)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
