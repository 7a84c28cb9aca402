package tiles

import "fmt"

// OneDiePolicy governs when a player may roll a single die.
type OneDiePolicy uint8

const (
	// OneDieNever never allows a single die.
	OneDieNever OneDiePolicy = iota
	// OneDieAfterTopTilesClosed allows one die once the three highest tiles are closed.
	OneDieAfterTopTilesClosed
	// OneDieWhenRemainderUnder6 allows one die while the open tiles sum to less than 6.
	OneDieWhenRemainderUnder6
)

func (p OneDiePolicy) String() string {
	switch p {
	case OneDieNever:
		return "never"
	case OneDieAfterTopTilesClosed:
		return "after_top_tiles_closed"
	case OneDieWhenRemainderUnder6:
		return "remainder_under_6"
	default:
		return fmt.Sprintf("OneDiePolicy(%d)", uint8(p))
	}
}

// ParseOneDiePolicy accepts the names produced by String.
func ParseOneDiePolicy(s string) (OneDiePolicy, error) {
	switch s {
	case "never", "":
		return OneDieNever, nil
	case "after_top_tiles_closed", "top_tiles":
		return OneDieAfterTopTilesClosed, nil
	case "remainder_under_6", "under_6":
		return OneDieWhenRemainderUnder6, nil
	default:
		return OneDieNever, fmt.Errorf("unknown one-die policy %q", s)
	}
}

// OneDieAllowed reports whether a single die may be rolled for the open tiles
// of a board whose highest tile is highest.
//
// With fewer than three tiles on the board the top-tiles rule only inspects
// the tiles that exist.
func OneDieAllowed(open Set, highest int, p OneDiePolicy) bool {
	switch p {
	case OneDieNever:
		return false
	case OneDieAfterTopTilesClosed:
		for v := max(1, highest-2); v <= highest; v++ {
			if open.Has(v) {
				return false
			}
		}
		return true
	case OneDieWhenRemainderUnder6:
		return open.Sum() < 6
	default:
		return false
	}
}
