package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lox/shutthebox/internal/dice"
	"github.com/lox/shutthebox/internal/tiles"
)

type CombosCmd struct {
	Open        string `arg:"" help:"Open tiles, e.g. 1,2,5,9"`
	Total       int    `arg:"" help:"Dice total to make"`
	HighestTile int    `default:"9" help:"Highest tile on the board, for the one-die check"`
	OneDie      string `default:"after_top_tiles_closed" help:"One-die policy to check"`
}

func (c *CombosCmd) Run(*Globals) error {
	return c.write(os.Stdout)
}

func (c *CombosCmd) write(w io.Writer) error {
	open, err := tiles.Parse(c.Open)
	if err != nil {
		return err
	}
	if open.Empty() {
		return errors.New("no open tiles given")
	}
	if c.Total < 1 || c.Total > 2*dice.Faces {
		return fmt.Errorf("total %d cannot be rolled", c.Total)
	}
	policy, err := tiles.ParseOneDiePolicy(c.OneDie)
	if err != nil {
		return err
	}

	ranked := tiles.RankMoves(tiles.Combos(open, c.Total), open)
	if len(ranked) == 0 {
		fmt.Fprintf(w, "Open %s, total %d: no way to close, the turn ends\n", open, c.Total)
	} else {
		fmt.Fprintf(w, "Open %s, total %d: %d ways\n", open, c.Total, len(ranked))
		for i, combo := range ranked {
			line := fmt.Sprintf("  %-12s leaves %d", combo, open.Minus(combo.Set()).Sum())
			if i == 0 {
				line += "  (best)"
			}
			fmt.Fprintln(w, line)
		}
	}

	allowed := "no"
	if tiles.OneDieAllowed(open, c.HighestTile, policy) {
		allowed = "yes"
	}
	fmt.Fprintf(w, "One die allowed (%s): %s\n", policy, allowed)
	return nil
}
