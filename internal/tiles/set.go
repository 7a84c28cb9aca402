package tiles

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// MaxTile is the largest tile value a Set can hold.
const MaxTile = 15

// Set is a bitset of tile values. Bit i is set when tile i is open.
// Bit 0 is never used.
type Set uint16

// Full returns a set with tiles 1..highest open.
func Full(highest int) Set {
	if highest <= 0 {
		return 0
	}
	if highest > MaxTile {
		highest = MaxTile
	}
	return Set((uint32(1)<<(highest+1) - 1) &^ 1)
}

// Of builds a set from the given tile values, ignoring anything out of range.
func Of(values ...int) Set {
	var s Set
	for _, v := range values {
		s = s.With(v)
	}
	return s
}

// Has reports whether tile v is open.
func (s Set) Has(v int) bool {
	if v < 1 || v > MaxTile {
		return false
	}
	return s&(1<<v) != 0
}

// With returns a copy of s with tile v open.
func (s Set) With(v int) Set {
	if v < 1 || v > MaxTile {
		return s
	}
	return s | 1<<v
}

// Without returns a copy of s with tile v closed.
func (s Set) Without(v int) Set {
	if v < 1 || v > MaxTile {
		return s
	}
	return s &^ (1 << v)
}

// Toggle flips tile v.
func (s Set) Toggle(v int) Set {
	if s.Has(v) {
		return s.Without(v)
	}
	return s.With(v)
}

// Minus removes every tile of o from s.
func (s Set) Minus(o Set) Set { return s &^ o }

// Contains reports whether every tile of o is in s.
func (s Set) Contains(o Set) bool { return s&o == o }

// Len returns the number of open tiles.
func (s Set) Len() int { return bits.OnesCount16(uint16(s)) }

// Empty reports whether every tile is closed.
func (s Set) Empty() bool { return s == 0 }

// Sum returns the sum of open tile values.
func (s Set) Sum() int {
	total := 0
	for v := s; v != 0; v &= v - 1 {
		total += bits.TrailingZeros16(uint16(v))
	}
	return total
}

// Max returns the highest open tile, or 0 for an empty set.
func (s Set) Max() int {
	if s == 0 {
		return 0
	}
	return 15 - bits.LeadingZeros16(uint16(s))
}

// Values returns the open tiles in ascending order.
func (s Set) Values() []int {
	out := make([]int, 0, s.Len())
	for v := s; v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros16(uint16(v)))
	}
	return out
}

// String renders the set as "{1 2 3}".
func (s Set) String() string {
	vals := s.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Parse reads a list of tile values separated by commas or spaces, e.g. "1,2,5".
func Parse(input string) (Set, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '{' || r == '}'
	})
	var s Set
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return 0, fmt.Errorf("invalid tile %q: %w", f, err)
		}
		if v < 1 || v > MaxTile {
			return 0, fmt.Errorf("tile %d out of range 1..%d", v, MaxTile)
		}
		if s.Has(v) {
			return 0, fmt.Errorf("duplicate tile %d", v)
		}
		s = s.With(v)
	}
	return s, nil
}
