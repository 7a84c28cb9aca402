package tiles

// Combo is a subset of open tiles whose values sum to a roll total.
type Combo Set

// Set returns the combo as a tile set.
func (c Combo) Set() Set { return Set(c) }

// Tiles returns the combo's tiles in ascending order.
func (c Combo) Tiles() []int { return Set(c).Values() }

// Sum returns the total of the combo's tiles.
func (c Combo) Sum() int { return Set(c).Sum() }

// Len returns the number of tiles in the combo.
func (c Combo) Len() int { return Set(c).Len() }

// Max returns the combo's highest tile.
func (c Combo) Max() int { return Set(c).Max() }

func (c Combo) String() string { return Set(c).String() }

// Combos returns every subset of open whose tiles sum exactly to target.
//
// The search walks tiles in ascending order and abandons a branch as soon as
// its running sum passes the target. Results come out in exploration order,
// which is stable for a given input.
func Combos(open Set, target int) []Combo {
	if target <= 0 || open.Empty() {
		return nil
	}
	vals := open.Values()
	var out []Combo
	var walk func(start, remaining int, acc Set)
	walk = func(start, remaining int, acc Set) {
		for i := start; i < len(vals); i++ {
			v := vals[i]
			if v > remaining {
				// vals is ascending so nothing further fits either
				return
			}
			next := acc.With(v)
			if v == remaining {
				out = append(out, Combo(next))
				continue
			}
			walk(i+1, remaining-v, next)
		}
	}
	walk(0, target, 0)
	return out
}

// CanMake reports whether at least one combo of open sums to target.
func CanMake(open Set, target int) bool {
	if target <= 0 || open.Empty() || target > open.Sum() {
		return false
	}
	vals := open.Values()
	var walk func(start, remaining int) bool
	walk = func(start, remaining int) bool {
		for i := start; i < len(vals); i++ {
			v := vals[i]
			if v > remaining {
				return false
			}
			if v == remaining || walk(i+1, remaining-v) {
				return true
			}
		}
		return false
	}
	return walk(0, target)
}

// IsLegal reports whether sel is set-equal to one of combos.
func IsLegal(combos []Combo, sel Set) bool {
	for _, c := range combos {
		if Set(c) == sel {
			return true
		}
	}
	return false
}
