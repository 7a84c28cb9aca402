// Package dice rolls six-sided dice. It is the only source of randomness in
// the game and is always injected so tests can replay exact sequences.
package dice

import (
	"fmt"
	rand "math/rand/v2"
	"time"
)

const (
	// Faces is the number of sides on each die.
	Faces = 6

	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Roller produces dice values in 1..Faces.
type Roller interface {
	Roll(n int) []int
}

// Rand rolls dice from a math/rand/v2 source.
type Rand struct {
	rng *rand.Rand
}

// NewSeeded returns a Rand seeded deterministically from seed. Two rollers
// built from the same seed produce the same sequence.
func NewSeeded(seed int64) *Rand {
	u := uint64(seed)
	return &Rand{rng: rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))}
}

// New returns a Rand seeded from the wall clock.
func New() *Rand {
	return NewSeeded(time.Now().UnixNano())
}

// Roll returns n uniform values in 1..Faces.
func (r *Rand) Roll(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = r.rng.IntN(Faces) + 1
	}
	return out
}

// Intn exposes the underlying source for callers that need other draws,
// such as picking a random legal combo.
func (r *Rand) Intn(n int) int {
	return r.rng.IntN(n)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Sum adds up dice values.
func Sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// Fixed replays a scripted list of values. Each call to Roll consumes n
// values in order and panics once the script runs out.
type Fixed struct {
	values []int
	next   int
}

// NewFixed returns a Fixed roller over values.
func NewFixed(values ...int) *Fixed {
	for _, v := range values {
		if v < 1 || v > Faces {
			panic(fmt.Sprintf("dice: scripted value %d out of range", v))
		}
	}
	return &Fixed{values: values}
}

// Roll returns the next n scripted values.
func (f *Fixed) Roll(n int) []int {
	if f.next+n > len(f.values) {
		panic(fmt.Sprintf("dice: script exhausted after %d values", len(f.values)))
	}
	out := make([]int, n)
	copy(out, f.values[f.next:f.next+n])
	f.next += n
	return out
}

// Remaining reports how many scripted values are left.
func (f *Fixed) Remaining() int {
	return len(f.values) - f.next
}
