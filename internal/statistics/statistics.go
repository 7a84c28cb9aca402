package statistics

import (
	"fmt"
	"math"
	"slices"
)

// TurnResult is the outcome of one automated turn.
type TurnResult struct {
	Remainder int   // sum of tiles left open, 0 when the box was shut
	Rolls     int   // dice throws taken
	Closures  int   // confirmed selections
	Seed      int64 // match seed, for replay
}

// Statistics accumulates turn results for one strategy.
type Statistics struct {
	Turns  int
	Sum    float64
	Sum2   float64   // sum of squares for the variance
	Values []float64 // every remainder, for median and percentiles

	Shuts    int
	Rolls    int
	Closures int

	Rounds    int // rounds this strategy took part in
	RoundWins int // ties count as a win for each tied player
	Matches   int
	MatchWins int

	Worst TurnResult // highest remainder seen, kept for replay
}

// Add incorporates one turn.
func (s *Statistics) Add(r TurnResult) {
	v := float64(r.Remainder)
	s.Turns++
	s.Sum += v
	s.Sum2 += v * v
	s.Values = append(s.Values, v)
	s.Rolls += r.Rolls
	s.Closures += r.Closures
	if r.Remainder == 0 {
		s.Shuts++
	}
	if s.Turns == 1 || r.Remainder > s.Worst.Remainder {
		s.Worst = r
	}
}

// Merge folds o into s.
func (s *Statistics) Merge(o *Statistics) {
	s.Turns += o.Turns
	s.Sum += o.Sum
	s.Sum2 += o.Sum2
	s.Values = append(s.Values, o.Values...)
	s.Shuts += o.Shuts
	s.Rolls += o.Rolls
	s.Closures += o.Closures
	s.Rounds += o.Rounds
	s.RoundWins += o.RoundWins
	s.Matches += o.Matches
	s.MatchWins += o.MatchWins
	if o.Turns > 0 && (s.Turns == o.Turns || o.Worst.Remainder > s.Worst.Remainder) {
		s.Worst = o.Worst
	}
}

// Mean returns the mean remainder per turn.
func (s *Statistics) Mean() float64 {
	if s.Turns == 0 {
		return 0
	}
	return s.Sum / float64(s.Turns)
}

// Variance returns the sample variance of the remainders.
func (s *Statistics) Variance() float64 {
	if s.Turns < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Turns)*mean*mean) / float64(s.Turns-1)
}

// StdDev returns the sample standard deviation.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Turns == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Turns))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median remainder.
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the interpolated value at p in [0, 1].
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// ShutRate returns the fraction of turns that shut the box.
func (s *Statistics) ShutRate() float64 {
	return ratio(s.Shuts, s.Turns)
}

// RoundWinRate returns the fraction of rounds won.
func (s *Statistics) RoundWinRate() float64 {
	return ratio(s.RoundWins, s.Rounds)
}

// MeanRolls returns the average number of rolls per turn.
func (s *Statistics) MeanRolls() float64 {
	return ratio(s.Rolls, s.Turns)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Validate checks the counters are consistent with each other.
func (s *Statistics) Validate() error {
	if len(s.Values) != s.Turns {
		return fmt.Errorf("values length (%d) does not match turns (%d)", len(s.Values), s.Turns)
	}
	if s.Shuts > s.Turns {
		return fmt.Errorf("shuts (%d) exceed turns (%d)", s.Shuts, s.Turns)
	}
	if s.RoundWins > s.Rounds {
		return fmt.Errorf("round wins (%d) exceed rounds (%d)", s.RoundWins, s.Rounds)
	}
	if s.MatchWins > s.Matches {
		return fmt.Errorf("match wins (%d) exceed matches (%d)", s.MatchWins, s.Matches)
	}
	return nil
}
