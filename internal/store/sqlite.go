package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/shutthebox/internal/game"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id   TEXT    NOT NULL,
		round      INTEGER NOT NULL,
		phase      TEXT    NOT NULL,
		payload    TEXT    NOT NULL,
		created_at TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS snapshots_match ON snapshots (match_id, id)`,
}

// SQLite appends every snapshot to a table, keeping the full history of
// each match.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection serialises writers
	db.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// WriteSnapshot appends snap.
func (s *SQLite) WriteSnapshot(snap game.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (match_id, round, phase, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		snap.MatchID, snap.Round, snap.Phase, string(payload), snap.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for matchID, or the most
// recent of any match when matchID is empty.
func (s *SQLite) LatestSnapshot(ctx context.Context, matchID string) (game.Snapshot, error) {
	query := `SELECT payload FROM snapshots ORDER BY id DESC LIMIT 1`
	args := []any{}
	if matchID != "" {
		query = `SELECT payload FROM snapshots WHERE match_id = ? ORDER BY id DESC LIMIT 1`
		args = append(args, matchID)
	}
	var payload string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("query latest snapshot: %w", err)
	}
	return decode(payload)
}

// History returns every snapshot of matchID in write order.
func (s *SQLite) History(ctx context.Context, matchID string) ([]game.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM snapshots WHERE match_id = ? ORDER BY id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []game.Snapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		snap, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// MatchIDs lists stored matches, most recently written first.
func (s *SQLite) MatchIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT match_id FROM snapshots GROUP BY match_id ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func decode(payload string) (game.Snapshot, error) {
	var snap game.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
