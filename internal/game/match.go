package game

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/shutthebox/internal/dice"
	"github.com/lox/shutthebox/internal/matchid"
	"github.com/lox/shutthebox/internal/tiles"
)

// Phase is the round-level state of a match.
type Phase uint8

const (
	PhaseSetup Phase = iota
	PhaseInProgress
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseInProgress:
		return "in_progress"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// PlayerInfo identifies a player.
type PlayerInfo struct {
	ID   string
	Name string
}

// Handoff is a prepared next turn waiting for AcknowledgeNextTurn.
type Handoff struct {
	Round      int
	Player     int
	PlayerID   string
	PlayerName string
	NewRound   bool // the acknowledgement starts a new round
	Board      tiles.Set
}

// TurnSummary describes a finished turn.
type TurnSummary struct {
	Round      int
	Player     int
	PlayerID   string
	PlayerName string
	Remainder  int
	Shut       bool
	Forced     bool
	Rolls      int
	LastDice   []int
	History    []Closure
}

// RoundResult describes a finished round. Winners is empty when nobody won.
type RoundResult struct {
	Round      int
	Winners    []int
	WinnerIDs  []string
	EndedEarly bool // a player shut the box and the remaining players were skipped
}

// NoWinner reports whether the round ended without a winner.
func (r RoundResult) NoWinner() bool { return len(r.Winners) == 0 }

// MatchResult describes the end of a target race.
type MatchResult struct {
	Rounds    int
	Winners   []int
	WinnerIDs []string
	Totals    []int
}

// Outcome reports what an operation changed. Pointer fields are nil when
// the corresponding thing did not happen.
type Outcome struct {
	Turn       *TurnView
	Closed     tiles.Set
	TurnEnded  *TurnSummary
	RoundEnded *RoundResult
	MatchEnded *MatchResult
	Handoff    *Handoff
}

// State is a read-only view of the whole match.
type State struct {
	ID        string
	Phase     Phase
	Round     int
	Options   Options
	Players   []PlayerScore
	Turn      *TurnView
	Pending   *Handoff
	LastRound *RoundResult
	Result    *MatchResult
}

// Match sequences players through rounds, owns the board, the active turn
// and the score ledger, and applies the scoring mode's win logic. A Match
// is not safe for concurrent use; every operation runs to completion before
// the next may start.
type Match struct {
	id     string
	opts   Options
	ledger *Ledger
	seq    int

	phase     Phase
	round     int
	turn      *Turn
	pending   *Handoff
	lastRound *RoundResult
	result    *MatchResult

	roller dice.Roller
	logger zerolog.Logger
	sink   SnapshotSink
	bus    EventBus
	newID  func() string
	now    func() time.Time
}

// NewMatch creates a match in the setup phase. Players without an ID are
// assigned one; players without a name are called "Player N".
func NewMatch(opts Options, players []PlayerInfo, mopts ...MatchOption) (*Match, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	cfg := &matchConfig{
		logger: zerolog.Nop(),
		newID:  matchid.New,
		now:    time.Now,
	}
	for _, opt := range mopts {
		opt(cfg)
	}
	if cfg.roller == nil {
		cfg.roller = dice.New()
	}
	if cfg.bus == nil {
		cfg.bus = NewEventBus()
	}

	m := &Match{
		opts:   opts,
		ledger: NewLedger(nil),
		roller: cfg.roller,
		logger: cfg.logger.With().Str("component", "match").Logger(),
		sink:   cfg.sink,
		bus:    cfg.bus,
		newID:  cfg.newID,
		now:    cfg.now,
	}
	for _, p := range players {
		if _, err := m.addPlayer(p); err != nil {
			return nil, err
		}
	}
	m.id = m.newID()
	return m, nil
}

// ID returns the match identifier. A new ID is minted whenever a match
// leaves the setup phase.
func (m *Match) ID() string { return m.id }

// Options returns the current options.
func (m *Match) Options() Options { return m.opts }

// Phase returns the round phase.
func (m *Match) Phase() Phase { return m.phase }

// Round returns the current round number, 0 before the first round.
func (m *Match) Round() int { return m.round }

// Players returns the ledger entries in seating order.
func (m *Match) Players() []PlayerScore { return m.ledger.Entries() }

// Over reports whether a target race has been decided.
func (m *Match) Over() bool { return m.result != nil }

// EventBus returns the bus events are published on.
func (m *Match) EventBus() EventBus { return m.bus }

// State returns a read-only view of the match.
func (m *Match) State() State {
	s := State{
		ID:      m.id,
		Phase:   m.phase,
		Round:   m.round,
		Options: m.opts,
		Players: m.ledger.Entries(),
	}
	if m.turn != nil {
		v := m.turn.View()
		s.Turn = &v
	}
	if m.pending != nil {
		h := *m.pending
		s.Pending = &h
	}
	if m.lastRound != nil {
		r := *m.lastRound
		s.LastRound = &r
	}
	if m.result != nil {
		r := *m.result
		s.Result = &r
	}
	return s
}

// StartRound moves from setup into round one, or from a finished round into
// the next. Per-round scores are reset; totals carry over only in a target race.
func (m *Match) StartRound() (Outcome, error) {
	const op = "start_round"
	switch {
	case m.phase == PhaseInProgress:
		return Outcome{}, m.rejected(reject(op, ReasonWrongPhase, "round %d is in progress", m.round))
	case m.result != nil:
		return Outcome{}, m.rejected(reject(op, ReasonWrongPhase, "match is over, reset to play again"))
	case m.ledger.Len() == 0:
		return Outcome{}, m.rejected(reject(op, ReasonWrongPhase, "no players"))
	}

	if m.phase == PhaseSetup {
		m.id = m.newID()
		m.round = 0
		m.ledger.ResetAll()
	}
	m.pending = nil
	m.beginRound()
	m.emit()
	return m.outcome(Outcome{}), nil
}

func (m *Match) beginRound() {
	m.round++
	m.ledger.ResetRound(m.opts.Scoring == ScoringTargetRace)
	m.phase = PhaseInProgress
	m.lastRound = nil
	m.turn = NewTurn(0, m.opts.HighestTile, m.opts.OneDie)

	names := make([]string, m.ledger.Len())
	for i, e := range m.ledger.entries {
		names[i] = e.Name
	}
	m.logger.Info().Str("match", m.id).Int("round", m.round).Msg("Round started")
	m.bus.Publish(RoundStartEvent{MatchID: m.id, Round: m.round, Players: names, timestamp: m.now()})
	m.publishTurnStart()
}

func (m *Match) publishTurnStart() {
	idx := m.turn.Player()
	m.bus.Publish(TurnStartEvent{
		Round:      m.round,
		Player:     idx,
		PlayerName: m.ledger.entries[idx].Name,
		Board:      m.turn.Open(),
		timestamp:  m.now(),
	})
}

// Roll throws one or two dice for the active player.
func (m *Match) Roll(count int) (Outcome, error) {
	return m.apply("roll", func(t *Turn, out *Outcome) error {
		if err := t.Roll(m.roller, count); err != nil {
			return err
		}
		d := t.Dice()
		m.logger.Debug().Int("player", t.Player()).Ints("dice", d).Int("combos", len(t.combos)).Msg("Rolled")
		m.bus.Publish(DiceRolledEvent{
			Player:     t.Player(),
			PlayerName: m.ledger.entries[t.Player()].Name,
			Dice:       d,
			Total:      dice.Sum(d),
			Combos:     len(t.combos),
			Stuck:      t.Finished(),
			timestamp:  m.now(),
		})
		return nil
	})
}

// ToggleTile adds or removes tile from the active player's selection.
func (m *Match) ToggleTile(tile int) (Outcome, error) {
	return m.apply("toggle", func(t *Turn, _ *Outcome) error {
		return t.Toggle(tile)
	})
}

// ClearSelection empties the active player's selection.
func (m *Match) ClearSelection() (Outcome, error) {
	return m.apply("clear", func(t *Turn, _ *Outcome) error {
		return t.ClearSelection()
	})
}

// Confirm closes the selected tiles if they form a legal combo.
func (m *Match) Confirm() (Outcome, error) {
	return m.apply("confirm", func(t *Turn, out *Outcome) error {
		closed, err := t.Confirm()
		if err != nil {
			return err
		}
		out.Closed = closed
		m.logger.Debug().Int("player", t.Player()).Stringer("closed", closed).Stringer("open", t.Open()).Msg("Closed tiles")
		m.bus.Publish(TilesClosedEvent{
			Player:     t.Player(),
			PlayerName: m.ledger.entries[t.Player()].Name,
			Closed:     closed,
			Open:       t.Open(),
			timestamp:  m.now(),
		})
		return nil
	})
}

// ForceEnd finishes the active turn early with the tiles currently open.
func (m *Match) ForceEnd() (Outcome, error) {
	return m.apply("force_end", func(t *Turn, _ *Outcome) error {
		t.ForceEnd()
		return nil
	})
}

// SelectBest replaces the selection with the advisory combo. The player
// still has to Confirm it.
func (m *Match) SelectBest() (Outcome, error) {
	return m.apply("select_best", func(t *Turn, _ *Outcome) error {
		best, ok := t.Hint()
		if !ok {
			return reject("select_best", ReasonNotRolled, "no roll to advise on")
		}
		return t.Select(best)
	})
}

// Hint returns the advisory combo for the active roll without changing anything.
func (m *Match) Hint() (tiles.Combo, bool) {
	if m.phase != PhaseInProgress || m.turn == nil || m.pending != nil {
		return 0, false
	}
	return m.turn.Hint()
}

func (m *Match) apply(op string, fn func(*Turn, *Outcome) error) (Outcome, error) {
	t, err := m.activeTurn(op)
	if err != nil {
		return Outcome{}, m.rejected(err)
	}
	var out Outcome
	if err := fn(t, &out); err != nil {
		return Outcome{}, m.rejected(err)
	}
	if t.Finished() {
		m.finishTurn(&out)
	}
	m.emit()
	return m.outcome(out), nil
}

func (m *Match) activeTurn(op string) (*Turn, error) {
	if m.phase != PhaseInProgress || m.turn == nil {
		return nil, reject(op, ReasonWrongPhase, "no active turn in phase %s", m.phase)
	}
	if m.pending != nil {
		return nil, reject(op, ReasonWrongPhase, "waiting for hand-off to %s", m.pending.PlayerName)
	}
	return m.turn, nil
}

func (m *Match) finishTurn(out *Outcome) {
	t := m.turn
	idx := t.Player()
	rem := t.Remainder()
	m.ledger.Record(idx, rem, m.opts.Scoring == ScoringTargetRace)

	entry := m.ledger.entries[idx]
	summary := TurnSummary{
		Round:      m.round,
		Player:     idx,
		PlayerID:   entry.ID,
		PlayerName: entry.Name,
		Remainder:  rem,
		Shut:       rem == 0,
		Forced:     t.Forced(),
		Rolls:      t.Rolls(),
		LastDice:   t.Dice(),
		History:    t.History(),
	}
	out.TurnEnded = &summary
	m.logger.Info().Str("player", entry.Name).Int("round", m.round).Int("remainder", rem).Bool("forced", summary.Forced).Msg("Turn finished")
	m.bus.Publish(TurnEndEvent{Summary: summary, timestamp: m.now()})

	switch {
	case rem == 0 && m.opts.InstantWin():
		m.endRound([]int{idx}, true, out)
	case idx == m.ledger.Len()-1:
		m.endRound(m.roundWinners(), false, out)
	default:
		m.prepareHandoff(idx+1, m.round, false, out)
	}
}

// roundWinners applies the scoring mode once every player has had a turn.
func (m *Match) roundWinners() []int {
	switch m.opts.Scoring {
	case ScoringLowestRemainder:
		played := m.ledger.Played()
		if len(played) == 1 && m.ledger.entries[played[0]].LastScore > 0 {
			// a lone player only wins by shutting the box
			return nil
		}
		return m.ledger.LowestLast()
	case ScoringTargetRace:
		return m.ledger.LowestLast()
	case ScoringInstantWin:
		// reaching the end of the order means nobody shut the box
		return nil
	default:
		panic(fmt.Sprintf("unhandled scoring mode %d", m.opts.Scoring))
	}
}

func (m *Match) endRound(winners []int, early bool, out *Outcome) {
	m.phase = PhaseFinished
	m.ledger.SetWinners(winners)
	res := RoundResult{
		Round:      m.round,
		Winners:    slices.Clone(winners),
		WinnerIDs:  m.ledger.IDs(winners),
		EndedEarly: early,
	}
	m.lastRound = &res
	out.RoundEnded = &res
	m.logger.Info().Int("round", m.round).Strs("winners", res.WinnerIDs).Bool("early", early).Msg("Round finished")
	m.bus.Publish(RoundEndEvent{Result: res, timestamp: m.now()})

	if m.opts.Scoring == ScoringTargetRace && m.ledger.Reached(m.opts.Target) {
		totals := make([]int, m.ledger.Len())
		for i, e := range m.ledger.entries {
			totals[i] = e.TotalScore
		}
		winners := m.ledger.LowestTotal(m.opts.Target)
		mr := MatchResult{
			Rounds:    m.round,
			Winners:   winners,
			WinnerIDs: m.ledger.IDs(winners),
			Totals:    totals,
		}
		m.result = &mr
		out.MatchEnded = &mr
		m.logger.Info().Strs("winners", mr.WinnerIDs).Ints("totals", totals).Msg("Match finished")
		m.bus.Publish(MatchEndEvent{Result: mr, timestamp: m.now()})
		return
	}

	if res.NoWinner() {
		m.prepareHandoff(0, m.round+1, true, out)
	}
}

func (m *Match) prepareHandoff(player, round int, newRound bool, out *Outcome) {
	entry := m.ledger.entries[player]
	h := Handoff{
		Round:      round,
		Player:     player,
		PlayerID:   entry.ID,
		PlayerName: entry.Name,
		NewRound:   newRound,
		Board:      tiles.Full(m.opts.HighestTile),
	}
	m.pending = &h
	copied := h
	out.Handoff = &copied
	m.logger.Debug().Str("next", entry.Name).Int("round", round).Bool("new_round", newRound).Msg("Hand-off pending")
	m.bus.Publish(HandoffPendingEvent{Handoff: h, timestamp: m.now()})
}

// AcknowledgeNextTurn applies a pending hand-off, making the next player's
// turn (or the next round) active. Without a pending hand-off it does nothing.
func (m *Match) AcknowledgeNextTurn() (Outcome, error) {
	if m.pending == nil {
		return Outcome{}, nil
	}
	h := *m.pending
	m.pending = nil
	if h.NewRound {
		m.beginRound()
	} else {
		m.turn = newTurnOnBoard(h.Player, m.opts.HighestTile, m.opts.OneDie, h.Board)
		m.publishTurnStart()
	}
	m.emit()
	return m.outcome(Outcome{}), nil
}

// ResetMatch discards all round and turn state and returns to setup.
// Player identities and names are kept.
func (m *Match) ResetMatch() Outcome {
	m.phase = PhaseSetup
	m.round = 0
	m.turn = nil
	m.pending = nil
	m.lastRound = nil
	m.result = nil
	m.ledger.ResetAll()
	m.logger.Info().Str("match", m.id).Msg("Match reset")
	m.bus.Publish(MatchResetEvent{timestamp: m.now()})
	m.emit()
	return Outcome{}
}

// SetOption changes one option from its string form. The highest tile can
// only change during setup.
func (m *Match) SetOption(key, value string) error {
	const op = "set_option"
	if key == OptionHighestTile && m.phase != PhaseSetup {
		return m.rejected(reject(op, ReasonWrongPhase, "highest tile can only change during setup"))
	}
	next, err := m.opts.With(key, value)
	if err != nil {
		return m.rejected(reject(op, ReasonInvalidValue, "%v", err))
	}
	return m.setOptions(next)
}

// SetOptions replaces every option at once, with the same restrictions as SetOption.
func (m *Match) SetOptions(opts Options) error {
	const op = "set_options"
	if err := opts.Validate(); err != nil {
		return m.rejected(reject(op, ReasonInvalidValue, "%v", err))
	}
	if opts.HighestTile != m.opts.HighestTile && m.phase != PhaseSetup {
		return m.rejected(reject(op, ReasonWrongPhase, "highest tile can only change during setup"))
	}
	return m.setOptions(opts)
}

func (m *Match) setOptions(opts Options) error {
	m.opts = opts
	if m.turn != nil {
		m.turn.policy = opts.OneDie
	}
	m.logger.Debug().Int("highest", opts.HighestTile).Stringer("one_die", opts.OneDie).Stringer("scoring", opts.Scoring).Msg("Options changed")
	m.emit()
	return nil
}

// AddPlayer seats a new player at the end of the order. Only allowed during setup.
func (m *Match) AddPlayer(name string) (PlayerInfo, error) {
	if m.phase != PhaseSetup {
		return PlayerInfo{}, m.rejected(reject("add_player", ReasonWrongPhase, "players can only join during setup"))
	}
	p, err := m.addPlayer(PlayerInfo{Name: name})
	if err != nil {
		return PlayerInfo{}, m.rejected(reject("add_player", ReasonInvalidValue, "%v", err))
	}
	m.emit()
	return p, nil
}

func (m *Match) addPlayer(p PlayerInfo) (PlayerInfo, error) {
	seq := m.seq
	if p.ID == "" {
		// generated IDs skip any the caller already supplied
		for {
			seq++
			p.ID = fmt.Sprintf("p%d", seq)
			if m.indexOf(p.ID) < 0 {
				break
			}
		}
	} else if m.indexOf(p.ID) >= 0 {
		return PlayerInfo{}, fmt.Errorf("duplicate player ID %q", p.ID)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = fmt.Sprintf("Player %d", m.ledger.Len()+1)
	}
	m.seq = seq
	m.ledger.add(p)
	return p, nil
}

// RemovePlayer removes a player by ID. Only allowed during setup.
func (m *Match) RemovePlayer(id string) error {
	const op = "remove_player"
	if m.phase != PhaseSetup {
		return m.rejected(reject(op, ReasonWrongPhase, "players can only leave during setup"))
	}
	i := m.indexOf(id)
	if i < 0 {
		return m.rejected(reject(op, ReasonInvalidValue, "unknown player %q", id))
	}
	m.ledger.remove(i)
	m.emit()
	return nil
}

// RenamePlayer changes a player's display name.
func (m *Match) RenamePlayer(id, name string) error {
	const op = "rename_player"
	i := m.indexOf(id)
	if i < 0 {
		return m.rejected(reject(op, ReasonInvalidValue, "unknown player %q", id))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return m.rejected(reject(op, ReasonInvalidValue, "name must not be empty"))
	}
	m.ledger.rename(i, name)
	m.emit()
	return nil
}

func (m *Match) indexOf(id string) int {
	return slices.IndexFunc(m.ledger.entries, func(e PlayerScore) bool { return e.ID == id })
}

func (m *Match) rejected(err error) error {
	m.logger.Debug().Err(err).Msg("Operation rejected")
	return err
}

func (m *Match) outcome(out Outcome) Outcome {
	if m.turn != nil {
		v := m.turn.View()
		out.Turn = &v
	}
	return out
}

// Snapshot returns the persisted view of the match.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		MatchID:        m.id,
		Round:          m.round,
		Phase:          m.phase.String(),
		Options:        snapshotOptions(m.opts),
		Players:        make([]PlayerSnapshot, m.ledger.Len()),
		LastWinners:    m.ledger.IDs(m.ledger.LastWinners()),
		HandoffPending: m.pending != nil,
		UpdatedAt:      m.now(),
	}
	for i, e := range m.ledger.entries {
		ps := PlayerSnapshot{
			ID:         e.ID,
			Name:       e.Name,
			TotalScore: e.TotalScore,
			Unshut:     e.Unshut,
			Shut:       e.Shut,
			RoundWins:  e.RoundWins,
		}
		if e.Played {
			last := e.LastScore
			ps.LastScore = &last
		}
		s.Players[i] = ps
	}
	if m.result != nil {
		s.MatchOver = true
		s.MatchWinners = slices.Clone(m.result.WinnerIDs)
	}
	return s
}

func (m *Match) emit() {
	if m.sink == nil {
		return
	}
	if err := m.sink.WriteSnapshot(m.Snapshot()); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to write snapshot")
	}
}
