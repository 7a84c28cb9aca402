package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/lox/shutthebox/cmd/shutthebox/shared"
	"github.com/lox/shutthebox/internal/fileutil"
	"github.com/lox/shutthebox/internal/simulator"
	"github.com/lox/shutthebox/internal/statistics"
)

type SimulateCmd struct {
	Matches    int           `short:"n" default:"1000" help:"Number of matches to play"`
	Rounds     int           `default:"1" help:"Rounds per match"`
	Seed       int64         `default:"1" help:"Seed of the first match; match i uses seed+i"`
	Parallel   int           `short:"p" default:"0" help:"Matches played at once (0 uses every CPU)"`
	Timeout    time.Duration `default:"10s" help:"Time limit per match"`
	Strategies []string      `short:"s" default:"best-move,random-legal" help:"One strategy per seat (${strategies})"`
	Format     string        `short:"f" default:"text" enum:"text,json,yaml,yml" help:"Report format (${enum})"`
	Output     string        `short:"o" type:"path" help:"Write the report to a file instead of stdout"`
	Rules      RuleFlags     `embed:"" group:"Rules"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	c.Rules.apply(&cfg.Game)
	opts, err := cfg.Options()
	if err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	format, err := statistics.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	logger, err := g.logger(cfg)
	if err != nil {
		return err
	}

	parallel := c.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}
	simConfig := simulator.Config{
		Matches:    c.Matches,
		Rounds:     c.Rounds,
		Seed:       c.Seed,
		Parallel:   parallel,
		Timeout:    c.Timeout,
		Options:    opts,
		Strategies: c.Strategies,
		Logger:     logger,
	}
	if err := simConfig.Validate(); err != nil {
		return err
	}

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	logger.Info().
		Int("matches", c.Matches).
		Int("parallel", parallel).
		Strs("strategies", c.Strategies).
		Msg("Starting simulation")

	report, err := simulator.New(simConfig).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info().Dur("duration", report.Duration).Msg("Simulation complete")

	return writeReport(report, format, c.Output, os.Stdout)
}

// writeReport writes to path atomically, or to stdout when path is empty.
func writeReport(report *statistics.Report, format statistics.Format, path string, stdout io.Writer) error {
	if path == "" {
		return report.Write(stdout, format)
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, format); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
