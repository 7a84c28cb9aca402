package main

import "github.com/lox/shutthebox/internal/config"

// RuleFlags override the game block of the configuration file.
type RuleFlags struct {
	HighestTile      int    `help:"Highest tile on the board (3-12)"`
	OneDie           string `help:"When a single die may be rolled: never, after_top_tiles_closed or remainder_under_6"`
	Scoring          string `help:"Scoring mode: lowest_remainder, target_race or instant_win"`
	Target           int    `help:"Total that ends a target race"`
	InstantWinOnShut bool   `help:"Shutting the box wins the round at once"`
}

func (r RuleFlags) apply(g *config.GameSettings) {
	if r.HighestTile != 0 {
		g.HighestTile = r.HighestTile
	}
	if r.OneDie != "" {
		g.OneDie = r.OneDie
	}
	if r.Scoring != "" {
		g.Scoring = r.Scoring
	}
	if r.Target != 0 {
		g.Target = r.Target
	}
	if r.InstantWinOnShut {
		g.InstantWinOnShut = true
	}
}
