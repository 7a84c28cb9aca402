// Package game implements the turn and round state machine for hot-seat
// shut the box.
//
// The main type is Match, which owns the players, the score ledger, the
// active Turn and any pending hand-off between turns. Every operation
// returns an Outcome describing what changed, or a *RejectedError when the
// operation is not allowed, in which case nothing changed.
//
// # Basic Usage
//
//	m, err := game.NewMatch(game.DefaultOptions(),
//	    []game.PlayerInfo{{Name: "Alice"}, {Name: "Bob"}},
//	    game.WithRoller(dice.NewSeeded(42)))
//	m.StartRound()
//	m.Roll(2)
//	m.SelectBest()
//	out, err := m.Confirm()
//	if out.Handoff != nil {
//	    // pass the device, then
//	    m.AcknowledgeNextTurn()
//	}
//
// # Hand-off
//
// When a turn ends and the round continues, the next turn is prepared but
// not started. It becomes active only after AcknowledgeNextTurn, which
// models passing the device to the next player. The same checkpoint sits
// between rounds that ended without a winner.
//
// # Scoring modes
//
//   - ScoringLowestRemainder: lowest remainder wins the round; a lone player
//     must shut the box to win.
//   - ScoringTargetRace: remainders accumulate; once a total reaches the
//     target the match ends and the lowest total wins.
//   - ScoringInstantWin: shutting the box wins immediately and skips the
//     rest of the round.
//
// # Persistence and events
//
// After every successful mutation the match hands a Snapshot to its
// SnapshotSink, and publishes GameEvents on its EventBus. The match itself
// never touches storage.
package game
