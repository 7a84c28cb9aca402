package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"

	"github.com/lox/shutthebox/internal/game"
	"github.com/lox/shutthebox/internal/store"
)

type HistoryCmd struct {
	Match string `arg:"" optional:"" help:"Match ID (defaults to the most recent match)"`
	DB    string `type:"path" help:"SQLite store (defaults to storage.sqlite_path)"`
	List  bool   `short:"l" help:"List stored match IDs"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	path := c.DB
	if path == "" {
		path = cfg.Storage.SQLitePath
	}
	if path == "" {
		return errors.New("no SQLite store: pass --db or set storage.sqlite_path")
	}

	ctx := context.Background()
	db, err := store.OpenSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()
	return c.write(ctx, db, os.Stdout)
}

func (c *HistoryCmd) write(ctx context.Context, db *store.SQLite, w io.Writer) error {
	if c.List {
		ids, err := db.MatchIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
		return nil
	}

	matchID := c.Match
	if matchID == "" {
		latest, err := db.LatestSnapshot(ctx, "")
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintln(w, "No matches stored")
			return nil
		}
		if err != nil {
			return err
		}
		matchID = latest.MatchID
	}

	snaps, err := db.History(ctx, matchID)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("match %s: %w", matchID, store.ErrNotFound)
	}

	fmt.Fprintf(w, "Match %s, %d snapshots\n", matchID, len(snaps))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Round", "Phase", "Scores", "Round winners", "Saved")
	for _, snap := range snaps {
		t.Row(
			fmt.Sprint(snap.Round),
			snap.Phase,
			formatScores(snap.Players),
			strings.Join(winnerNames(snap), ", "),
			snap.UpdatedAt.Local().Format("15:04:05"),
		)
	}
	_, err = fmt.Fprintln(w, t.Render())
	return err
}

func formatScores(players []game.PlayerSnapshot) string {
	return strings.Join(lo.Map(players, func(p game.PlayerSnapshot, _ int) string {
		if p.LastScore == nil {
			return fmt.Sprintf("%s %d", p.Name, p.TotalScore)
		}
		return fmt.Sprintf("%s %d (%d)", p.Name, p.TotalScore, *p.LastScore)
	}), ", ")
}

func winnerNames(snap game.Snapshot) []string {
	byID := lo.SliceToMap(snap.Players, func(p game.PlayerSnapshot) (string, string) {
		return p.ID, p.Name
	})
	return lo.Map(snap.LastWinners, func(id string, _ int) string {
		if name, ok := byID[id]; ok {
			return name
		}
		return id
	})
}
