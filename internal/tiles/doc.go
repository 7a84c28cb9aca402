// Package tiles holds the pure board rules for shut the box.
//
// A board is a Set of open tile values. Combos enumerates every way to close
// tiles for a roll total, OneDieAllowed decides single-die eligibility, and
// BestMove picks an advisory combo. Everything here works on Set values, so
// callers can pass boards around without sharing mutable state.
//
//	open := tiles.Full(9)
//	combos := tiles.Combos(open, 9)       // {9} {1 8} {2 7} ...
//	best, ok := tiles.BestMove(combos, open) // {9}
package tiles
