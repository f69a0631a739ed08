// Package rng provides the deterministic random stream every ship is built from.
//
// The generator is deliberately simple: a string seed is hashed into a single integer,
// and each draw evaluates a trigonometric map on that integer before advancing it by one.
// The same seed always yields the same stream, independent of the Go runtime's own PRNG.
package rng

import (
	"math"
	"unicode/utf16"
)

// Source produces uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

// Hash folds a string into a non-negative seed.
// Each UTF-16 code unit c is accumulated as h = h*31 + c with 32-bit wraparound.
func Hash(seed string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(seed)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// trigSource is the sin-map generator seeded from Hash.
type trigSource struct {
	seed int64
}

// Float64 returns the fractional part of sin(seed)*10000 and advances the seed.
func (s *trigSource) Float64() float64 {
	x := math.Sin(float64(s.seed)) * 10000
	s.seed++
	v := x - math.Floor(x)
	if v >= 1 {
		// tiny negative x rounds x-floor(x) up to exactly 1
		v = math.Nextafter(1, 0)
	}
	return v
}

// Rand is an exclusively owned cursor over a Source.
// It is not safe for concurrent use; each generation creates its own.
type Rand struct {
	src   Source
	draws int
}

// New creates a Rand seeded from the given string.
func New(seed string) *Rand {
	return &Rand{src: &trigSource{seed: Hash(seed)}}
}

// NewFromSource wraps an arbitrary Source, typically a Sequence in tests.
func NewFromSource(src Source) *Rand {
	return &Rand{src: src}
}

// Random returns a uniform float in [0, 1).
func (r *Rand) Random() float64 {
	r.draws++
	return r.src.Float64()
}

// Range returns a uniform float in [min, max).
// If min > max the call is treated as a precondition violation and min is returned.
func (r *Rand) Range(min, max float64) float64 {
	v := r.Random()
	if min > max {
		return min
	}
	return min + v*(max-min)
}

// Int returns a uniform integer in [min, max], inclusive on both ends.
// If min > max the result is clamped to min.
func (r *Rand) Int(min, max int) int {
	v := r.Random()
	if min >= max {
		return min
	}
	n := min + int(math.Floor(v*float64(max-min+1)))
	if n > max {
		n = max
	}
	return n
}

// Chance returns true with probability p.
func (r *Rand) Chance(p float64) bool {
	return r.Random() < p
}

// Gaussian draws from a normal distribution using the Box-Muller transform.
func (r *Rand) Gaussian(mean, stddev float64) float64 {
	u1 := r.Random()
	u2 := r.Random()
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + z*stddev
}

// WeightedRandom returns a Gaussian draw around target, clamped to [0, 1].
func (r *Rand) WeightedRandom(target, stddev float64) float64 {
	v := r.Gaussian(target, stddev)
	return math.Max(0, math.Min(1, v))
}

// WeightedIndex picks an index with probability proportional to its weight.
// Non-positive weights are never picked unless every weight is non-positive,
// in which case index 0 is returned. Exactly one draw is consumed.
func (r *Rand) WeightedIndex(weights []float64) int {
	v := r.Random()
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	roll := v * total
	cumulative := 0.0
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		last = i
		if roll < cumulative {
			return i
		}
	}
	return last
}

// Draws returns how many values have been consumed so far.
func (r *Rand) Draws() int {
	return r.draws
}

// Sequence is a fixed-sequence Source that cycles through its values.
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence returns a Source replaying the given values in order, wrapping around.
// An empty sequence always yields 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next value in the sequence.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}
