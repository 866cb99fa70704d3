// Package random provides the seeded generator that derives puzzle rounds.
//
// Sources are fully deterministic: the same seed always yields the same
// sequence. Seeds are hashed with xmur3a and the four resulting words seed a
// sfc32 generator. All arithmetic is 32-bit wrapping and seed characters are
// read as UTF-16 code units, so sequences match JavaScript's charCodeAt for
// any seed string.
package random

import (
	"math"
	"math/bits"
	"strconv"
	"unicode/utf16"
)

// Source is a sfc32 generator. A Source is not safe for concurrent use.
type Source struct {
	a, b, c, d uint32
}

// New creates a Source seeded from a string.
func New(seed string) *Source {
	hash := xmur3a(seed)
	return &Source{a: hash(), b: hash(), c: hash(), d: hash()}
}

// NewFromInt creates a Source seeded from the decimal form of an integer.
//
// NewFromInt(42) and New("42") produce identical sequences.
func NewFromInt(seed int64) *Source {
	return New(strconv.FormatInt(seed, 10))
}

// Float returns the next value in [0, 1).
func (s *Source) Float() float64 {
	t := s.a + s.b + s.d
	s.d++
	s.a = s.b ^ (s.b >> 9)
	s.b = s.c + (s.c << 3)
	s.c = bits.RotateLeft32(s.c, 21) + t
	return float64(t) / 4294967296
}

// Int returns a value in the inclusive range [min, max].
//
// Exactly one value is drawn from the sequence per call.
func (s *Source) Int(min, max int) int {
	return int(math.Floor(s.Float()*float64(max-min+1))) + min
}

// IntN returns a value in [0, n-1].
func (s *Source) IntN(n int) int {
	return s.Int(0, n-1)
}

// Weighted picks an index with probability proportional to its weight.
//
// One value is always drawn, even for degenerate weights, so the rest of the
// sequence stays aligned. It returns -1 when no bucket is selected, which
// happens when the weights are empty or sum to zero.
func (s *Source) Weighted(weights []float64) int {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	r := s.Float() * sum
	prefix := 0.0
	for i, w := range weights {
		prefix += w
		if prefix > r {
			return i
		}
	}
	return -1
}

// xmur3a returns a hash function over seed; each call yields the next word.
func xmur3a(seed string) func() uint32 {
	units := utf16.Encode([]rune(seed))
	h := uint32(2166136261)
	for _, c := range units {
		k := uint32(c) * 3432918353
		k = bits.RotateLeft32(k, 15)
		h ^= k * 461845907
		h = bits.RotateLeft32(h, 13)
		h = h*5 + 3864292196
	}
	h ^= uint32(len(units))
	return func() uint32 {
		h ^= h >> 16
		h *= 2246822507
		h ^= h >> 13
		h *= 3266489909
		h ^= h >> 16
		return h
	}
}
