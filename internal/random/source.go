package random

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Alphabet is the character set names are drawn from: digits, ASCII
// letters, then ASCII punctuation.
const Alphabet = "0123456789" +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Source is the single pseudo-random stream owned by one generation run.
type Source struct {
	rng   *rand.Rand
	draws int64
}

// NewSource returns a Source seeded with seed.
func NewSource(seed int64) *Source {
	s := uint64(seed)
	return &Source{rng: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

// IntRange returns a uniform integer in [lo, hi], inclusive on both ends.
// Every call is exactly one draw, including lo == hi. It panics if hi < lo.
func (s *Source) IntRange(lo, hi int) int {
	if hi < lo {
		panic(fmt.Sprintf("random: IntRange(%d, %d): hi < lo", lo, hi))
	}
	s.draws++
	return lo + s.rng.IntN(hi-lo+1)
}

// String draws a length in [minLen, maxLen] and then that many characters
// from Alphabet, with replacement, concatenated in draw order.
func (s *Source) String(minLen, maxLen int) string {
	n := s.IntRange(minLen, maxLen)

	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(Alphabet[s.IntRange(0, len(Alphabet)-1)])
	}
	return sb.String()
}

// Draws reports how many draws have been taken from the source.
func (s *Source) Draws() int64 {
	return s.draws
}
