package game

import "time"

// PlayerSnapshot is the persisted view of one player.
type PlayerSnapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
	LastScore  *int   `json:"last_score,omitempty"`
	Unshut     int    `json:"unshut"`
	Shut       int    `json:"shut"`
	RoundWins  int    `json:"round_wins"`
}

// OptionsSnapshot is the persisted form of Options.
type OptionsSnapshot struct {
	HighestTile      int    `json:"highest_tile"`
	OneDie           string `json:"one_die"`
	Scoring          string `json:"scoring"`
	Target           int    `json:"target"`
	InstantWinOnShut bool   `json:"instant_win_on_shut"`
}

// Snapshot is a read-only copy of everything a persistence layer needs.
type Snapshot struct {
	MatchID        string           `json:"match_id"`
	Round          int              `json:"round"`
	Phase          string           `json:"phase"`
	Options        OptionsSnapshot  `json:"options"`
	Players        []PlayerSnapshot `json:"players"`
	LastWinners    []string         `json:"last_winners"`
	MatchOver      bool             `json:"match_over"`
	MatchWinners   []string         `json:"match_winners,omitempty"`
	HandoffPending bool             `json:"handoff_pending"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// SnapshotSink receives a snapshot after every successful mutation. The
// match never performs I/O itself; a sink decides where snapshots go.
type SnapshotSink interface {
	WriteSnapshot(Snapshot) error
}

// SnapshotSinkFunc adapts a function to SnapshotSink.
type SnapshotSinkFunc func(Snapshot) error

func (f SnapshotSinkFunc) WriteSnapshot(s Snapshot) error { return f(s) }

func snapshotOptions(o Options) OptionsSnapshot {
	return OptionsSnapshot{
		HighestTile:      o.HighestTile,
		OneDie:           o.OneDie.String(),
		Scoring:          o.Scoring.String(),
		Target:           o.Target,
		InstantWinOnShut: o.InstantWinOnShut,
	}
}

// Options converts the snapshot back into Options.
func (s OptionsSnapshot) Options() (Options, error) {
	o := DefaultOptions()
	var err error
	for _, kv := range [][2]string{
		{OptionOneDie, s.OneDie},
		{OptionScoring, s.Scoring},
	} {
		if o, err = o.With(kv[0], kv[1]); err != nil {
			return o, err
		}
	}
	o.HighestTile = s.HighestTile
	if s.Target > 0 {
		o.Target = s.Target
	}
	o.InstantWinOnShut = s.InstantWinOnShut
	return o, o.Validate()
}

// PlayerInfos returns the identities recorded in the snapshot, for seeding
// a new match with the same players.
func (s Snapshot) PlayerInfos() []PlayerInfo {
	out := make([]PlayerInfo, len(s.Players))
	for i, p := range s.Players {
		out[i] = PlayerInfo{ID: p.ID, Name: p.Name}
	}
	return out
}
