package tiles

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comboTiles(combos []Combo) [][]int {
	out := make([][]int, len(combos))
	for i, c := range combos {
		out[i] = c.Tiles()
	}
	return out
}

func TestFull(t *testing.T) {
	t.Parallel()
	tests := []struct {
		highest int
		want    []int
	}{
		{3, []int{1, 2, 3}},
		{9, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{12, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{0, []int{}},
	}
	for _, tt := range tests {
		got := Full(tt.highest).Values()
		if !slices.Equal(got, tt.want) {
			t.Errorf("Full(%d) = %v, want %v", tt.highest, got, tt.want)
		}
	}
	if Full(9).Sum() != 45 {
		t.Errorf("Full(9).Sum() = %d, want 45", Full(9).Sum())
	}
	if Full(12).Max() != 12 {
		t.Errorf("Full(12).Max() = %d, want 12", Full(12).Max())
	}
}

func TestSetOperations(t *testing.T) {
	t.Parallel()
	s := Of(1, 4, 9)
	if !s.Has(4) || s.Has(5) {
		t.Errorf("unexpected membership for %s", s)
	}
	if s.Without(4).Has(4) {
		t.Error("Without should close the tile")
	}
	if s.Toggle(4).Has(4) || !s.Toggle(5).Has(5) {
		t.Error("Toggle should flip membership")
	}
	if !s.Contains(Of(1, 9)) || s.Contains(Of(1, 2)) {
		t.Error("Contains returned the wrong answer")
	}
	if got := s.Minus(Of(1, 9)); got != Of(4) {
		t.Errorf("Minus = %s, want {4}", got)
	}
	if s.String() != "{1 4 9}" {
		t.Errorf("String = %q", s.String())
	}
	if s.With(0) != s || s.With(MaxTile+1) != s {
		t.Error("out of range values must be ignored")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	s, err := Parse("1, 2,5 9")
	require.NoError(t, err)
	assert.Equal(t, Of(1, 2, 5, 9), s)

	s, err = Parse("{3 4}")
	require.NoError(t, err)
	assert.Equal(t, Of(3, 4), s)

	for _, bad := range []string{"x", "0", "16", "2,2"} {
		_, err := Parse(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestCombosNineOnFullBoard(t *testing.T) {
	t.Parallel()
	got := Combos(Full(9), 9)
	want := [][]int{
		{9}, {1, 8}, {2, 7}, {3, 6}, {4, 5}, {1, 2, 6}, {1, 3, 5}, {2, 3, 4},
	}
	assert.ElementsMatch(t, want, comboTiles(got))
}

func TestCombosStableOrder(t *testing.T) {
	t.Parallel()
	first := Combos(Full(12), 11)
	second := Combos(Full(12), 11)
	assert.Equal(t, first, second)
	assert.Equal(t, []int{1, 2, 3, 5}, first[0].Tiles(), "exploration starts from the lowest tiles")
}

func TestCombosEdgeCases(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Combos(Full(9), 0))
	assert.Empty(t, Combos(Full(9), -3))
	assert.Empty(t, Combos(0, 7))
	assert.Empty(t, Combos(Of(8, 9), 7))
	assert.Equal(t, [][]int{{1}}, comboTiles(Combos(Of(1, 2), 1)))
}

func TestCombosProperties(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		open := Set(rng.IntN(1<<13)) &^ 1
		target := rng.IntN(14)
		combos := Combos(open, target)
		seen := make(map[Combo]bool)
		for _, c := range combos {
			if c.Sum() != target {
				t.Fatalf("combo %s sums to %d, want %d", c, c.Sum(), target)
			}
			if !open.Contains(c.Set()) {
				t.Fatalf("combo %s uses closed tiles of %s", c, open)
			}
			if seen[c] {
				t.Fatalf("duplicate combo %s for %s/%d", c, open, target)
			}
			seen[c] = true
			if !slices.IsSorted(c.Tiles()) {
				t.Fatalf("combo %v not ascending", c.Tiles())
			}
		}
		if got := CanMake(open, target); got != (len(combos) > 0) {
			t.Fatalf("CanMake(%s, %d) = %v with %d combos", open, target, got, len(combos))
		}
	}
}

func TestIsLegal(t *testing.T) {
	t.Parallel()
	combos := Combos(Full(9), 9)
	assert.True(t, IsLegal(combos, Of(4, 5)))
	assert.True(t, IsLegal(combos, Of(2, 3, 4)))
	assert.False(t, IsLegal(combos, Of(4)))
	assert.False(t, IsLegal(combos, 0))
	assert.False(t, IsLegal(nil, Of(9)))
}

func TestOneDieAllowed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		open    Set
		highest int
		policy  OneDiePolicy
		want    bool
	}{
		{"never on empty-ish board", Of(1), 9, OneDieNever, false},
		{"top tiles all open", Full(9), 9, OneDieAfterTopTilesClosed, false},
		{"top tiles closed", Of(1, 2, 3, 4, 5, 6), 9, OneDieAfterTopTilesClosed, true},
		{"nine still open", Of(1, 9), 9, OneDieAfterTopTilesClosed, false},
		{"seven still open", Of(7), 9, OneDieAfterTopTilesClosed, false},
		{"twelve board top closed", Of(1, 8, 9), 12, OneDieAfterTopTilesClosed, true},
		{"twelve board ten open", Of(10), 12, OneDieAfterTopTilesClosed, false},
		{"tiny board", 0, 2, OneDieAfterTopTilesClosed, true},
		{"remainder five", Of(1, 4), 9, OneDieWhenRemainderUnder6, true},
		{"remainder six", Of(6), 9, OneDieWhenRemainderUnder6, false},
		{"remainder zero", 0, 9, OneDieWhenRemainderUnder6, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OneDieAllowed(tt.open, tt.highest, tt.policy); got != tt.want {
				t.Errorf("OneDieAllowed(%s, %d, %s) = %v, want %v", tt.open, tt.highest, tt.policy, got, tt.want)
			}
		})
	}
}

func TestOneDieTopTilesExhaustive(t *testing.T) {
	t.Parallel()
	for open := Set(0); open <= Full(9); open += 2 {
		want := !open.Has(7) && !open.Has(8) && !open.Has(9)
		if got := OneDieAllowed(open, 9, OneDieAfterTopTilesClosed); got != want {
			t.Fatalf("OneDieAllowed(%s) = %v, want %v", open, got, want)
		}
	}
}

func TestParseOneDiePolicy(t *testing.T) {
	t.Parallel()
	for _, p := range []OneDiePolicy{OneDieNever, OneDieAfterTopTilesClosed, OneDieWhenRemainderUnder6} {
		got, err := ParseOneDiePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParseOneDiePolicy("sometimes")
	assert.Error(t, err)
}

func TestBestMove(t *testing.T) {
	t.Parallel()
	open := Full(9)
	best, ok := BestMove(Combos(open, 9), open)
	require.True(t, ok)
	assert.Equal(t, []int{9}, best.Tiles())

	// 9 is closed: {1 7} and {2 6} etc; highest single tile wins
	open = Full(9).Without(9)
	best, ok = BestMove(Combos(open, 8), open)
	require.True(t, ok)
	assert.Equal(t, []int{8}, best.Tiles())

	open = Of(1, 2, 3, 4, 5)
	best, ok = BestMove(Combos(open, 6), open)
	require.True(t, ok)
	assert.Equal(t, []int{1, 5}, best.Tiles())

	_, ok = BestMove(nil, open)
	assert.False(t, ok)
}

func TestBestMoveFewerTilesBreaksTie(t *testing.T) {
	t.Parallel()
	open := Of(1, 2, 3, 6)
	best, ok := BestMove([]Combo{Combo(Of(1, 2, 6)), Combo(Of(3, 6))}, open)
	require.True(t, ok)
	assert.Equal(t, []int{3, 6}, best.Tiles())
}

func TestRankMoves(t *testing.T) {
	t.Parallel()
	open := Full(9)
	combos := Combos(open, 9)
	ranked := RankMoves(combos, open)
	require.Len(t, ranked, len(combos))
	assert.Equal(t, []int{9}, ranked[0].Tiles())
	assert.Equal(t, []int{1, 8}, ranked[1].Tiles())
	assert.Equal(t, []int{2, 7}, ranked[2].Tiles())
	best, _ := BestMove(combos, open)
	assert.Equal(t, best, ranked[0])
	// input untouched
	assert.Equal(t, Combos(open, 9), combos)
}
