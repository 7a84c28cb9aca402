package game

import (
	"fmt"
	"strings"
)

// FormattingOptions controls how events are rendered.
type FormattingOptions struct {
	ShowTimestamps bool
	// Names maps player IDs to names for round and match results.
	Names map[string]string
}

// EventFormatter turns events into one-line log entries.
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format renders any known event, or "" for unknown ones.
func (ef *EventFormatter) Format(event GameEvent) string {
	var line string
	switch e := event.(type) {
	case RoundStartEvent:
		line = fmt.Sprintf("=== Round %d (%s) ===", e.Round, strings.Join(e.Players, ", "))
	case TurnStartEvent:
		line = fmt.Sprintf("%s to play on %s", e.PlayerName, e.Board)
	case DiceRolledEvent:
		line = ef.formatRoll(e)
	case TilesClosedEvent:
		line = fmt.Sprintf("%s closes %s, open %s", e.PlayerName, e.Closed, e.Open)
	case TurnEndEvent:
		line = ef.formatTurnEnd(e.Summary)
	case HandoffPendingEvent:
		if e.Handoff.NewRound {
			line = fmt.Sprintf("Round %d next, pass to %s", e.Handoff.Round, e.Handoff.PlayerName)
		} else {
			line = fmt.Sprintf("Pass to %s", e.Handoff.PlayerName)
		}
	case RoundEndEvent:
		line = ef.formatRoundEnd(e.Result)
	case MatchEndEvent:
		line = fmt.Sprintf("*** Match over after %d rounds: %s ***", e.Result.Rounds, ef.names(e.Result.WinnerIDs))
	case MatchResetEvent:
		line = "Match reset"
	default:
		return ""
	}
	if ef.opts.ShowTimestamps {
		line = event.Timestamp().Format("15:04:05") + " " + line
	}
	return line
}

func (ef *EventFormatter) formatRoll(e DiceRolledEvent) string {
	dice := make([]string, len(e.Dice))
	for i, d := range e.Dice {
		dice[i] = fmt.Sprint(d)
	}
	line := fmt.Sprintf("%s rolls %s = %d", e.PlayerName, strings.Join(dice, "+"), e.Total)
	if e.Stuck {
		return line + ", no moves"
	}
	return fmt.Sprintf("%s, %d ways to close", line, e.Combos)
}

func (ef *EventFormatter) formatTurnEnd(s TurnSummary) string {
	switch {
	case s.Shut:
		return fmt.Sprintf("%s shuts the box!", s.PlayerName)
	case s.Forced:
		return fmt.Sprintf("%s ends the turn with %d remaining", s.PlayerName, s.Remainder)
	default:
		return fmt.Sprintf("%s is stuck with %d remaining", s.PlayerName, s.Remainder)
	}
}

func (ef *EventFormatter) formatRoundEnd(r RoundResult) string {
	if r.NoWinner() {
		return fmt.Sprintf("Round %d: no winner", r.Round)
	}
	verb := "wins"
	if len(r.WinnerIDs) > 1 {
		verb = "tie"
	}
	return fmt.Sprintf("Round %d: %s %s", r.Round, ef.names(r.WinnerIDs), verb)
}

func (ef *EventFormatter) names(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if name, ok := ef.opts.Names[id]; ok {
			out[i] = name
		} else {
			out[i] = id
		}
	}
	return strings.Join(out, " & ")
}
