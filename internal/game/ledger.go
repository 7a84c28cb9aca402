package game

import (
	"slices"

	"github.com/samber/lo"
)

// PlayerScore is one player's entry in the ledger.
type PlayerScore struct {
	ID         string
	Name       string
	LastScore  int  // remainder at the end of the most recent turn
	Played     bool // LastScore is set for the current round
	TotalScore int
	Unshut     int // turns finished without shutting the box
	Shut       int // turns that closed every tile
	RoundWins  int
}

// Ledger tracks per-player scores across rounds.
type Ledger struct {
	entries     []PlayerScore
	lastWinners []int
}

// NewLedger creates a ledger for players in seating order.
func NewLedger(players []PlayerInfo) *Ledger {
	l := &Ledger{}
	for _, p := range players {
		l.entries = append(l.entries, PlayerScore{ID: p.ID, Name: p.Name})
	}
	return l
}

// Len returns the number of players.
func (l *Ledger) Len() int { return len(l.entries) }

// Entry returns a copy of the entry at index i.
func (l *Ledger) Entry(i int) PlayerScore { return l.entries[i] }

// Entries returns a copy of every entry.
func (l *Ledger) Entries() []PlayerScore { return slices.Clone(l.entries) }

// Record stores a finished turn. With accumulate the remainder is added to
// the running total; otherwise the total only reflects this round.
func (l *Ledger) Record(i, remainder int, accumulate bool) {
	e := &l.entries[i]
	e.LastScore = remainder
	e.Played = true
	if accumulate {
		e.TotalScore += remainder
	} else {
		e.TotalScore = remainder
	}
	if remainder == 0 {
		e.Shut++
	} else {
		e.Unshut++
	}
}

// ResetRound clears the last scores ahead of a new round. Totals survive
// only when keepTotals is set.
func (l *Ledger) ResetRound(keepTotals bool) {
	for i := range l.entries {
		l.entries[i].LastScore = 0
		l.entries[i].Played = false
		if !keepTotals {
			l.entries[i].TotalScore = 0
		}
	}
}

// ResetAll clears scores and round wins. Identities and the lifetime
// shut/unshut counters are kept.
func (l *Ledger) ResetAll() {
	for i, e := range l.entries {
		l.entries[i] = PlayerScore{ID: e.ID, Name: e.Name, Unshut: e.Unshut, Shut: e.Shut}
	}
	l.lastWinners = nil
}

// Played returns the indexes of players with a score this round.
func (l *Ledger) Played() []int {
	return lo.Filter(lo.Range(len(l.entries)), func(i int, _ int) bool {
		return l.entries[i].Played
	})
}

// LowestLast returns the players who played this round with the minimum last score.
func (l *Ledger) LowestLast() []int {
	return l.lowest(l.Played(), func(e PlayerScore) int { return e.LastScore })
}

// LowestTotal returns the players with the minimum cumulative total among
// those whose total is at or above target. A target of zero considers everyone.
func (l *Ledger) LowestTotal(target int) []int {
	reached := lo.Filter(lo.Range(len(l.entries)), func(i int, _ int) bool {
		return l.entries[i].TotalScore >= target
	})
	return l.lowest(reached, func(e PlayerScore) int { return e.TotalScore })
}

func (l *Ledger) lowest(candidates []int, score func(PlayerScore) int) []int {
	if len(candidates) == 0 {
		return nil
	}
	best := lo.Min(lo.Map(candidates, func(i int, _ int) int { return score(l.entries[i]) }))
	return lo.Filter(candidates, func(i int, _ int) bool { return score(l.entries[i]) == best })
}

// Reached reports whether any player's total is at or above target.
func (l *Ledger) Reached(target int) bool {
	return lo.SomeBy(l.entries, func(e PlayerScore) bool { return e.TotalScore >= target })
}

// SetWinners records the winners of the round just finished.
func (l *Ledger) SetWinners(winners []int) {
	l.lastWinners = slices.Clone(winners)
	for _, i := range winners {
		l.entries[i].RoundWins++
	}
}

// LastWinners returns the winners of the most recent round.
func (l *Ledger) LastWinners() []int { return slices.Clone(l.lastWinners) }

// IDs maps player indexes to IDs.
func (l *Ledger) IDs(indexes []int) []string {
	return lo.Map(indexes, func(i int, _ int) string { return l.entries[i].ID })
}

func (l *Ledger) add(p PlayerInfo) {
	l.entries = append(l.entries, PlayerScore{ID: p.ID, Name: p.Name})
}

func (l *Ledger) remove(i int) {
	l.entries = slices.Delete(l.entries, i, i+1)
	l.lastWinners = nil
}

func (l *Ledger) rename(i int, name string) {
	l.entries[i].Name = name
}
