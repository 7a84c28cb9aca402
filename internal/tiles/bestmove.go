package tiles

import "slices"

// compareMoves orders combos best first: highest single tile, then highest
// sum, then fewest tiles, then smallest remainder, then lexicographically
// smallest tile list.
func compareMoves(open Set) func(a, b Combo) int {
	return func(a, b Combo) int {
		if d := b.Max() - a.Max(); d != 0 {
			return d
		}
		if d := b.Sum() - a.Sum(); d != 0 {
			return d
		}
		if d := a.Len() - b.Len(); d != 0 {
			return d
		}
		if d := open.Minus(Set(a)).Sum() - open.Minus(Set(b)).Sum(); d != 0 {
			return d
		}
		return slices.Compare(a.Tiles(), b.Tiles())
	}
}

// RankMoves returns combos sorted best first. The input is not modified.
func RankMoves(combos []Combo, open Set) []Combo {
	ranked := slices.Clone(combos)
	slices.SortStableFunc(ranked, compareMoves(open))
	return ranked
}

// BestMove returns the advisory combo, or false when there are none.
func BestMove(combos []Combo, open Set) (Combo, bool) {
	if len(combos) == 0 {
		return 0, false
	}
	return slices.MinFunc(combos, compareMoves(open)), true
}
