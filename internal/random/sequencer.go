package random

// Sequencer splits a flat sequence into groups whose sizes are drawn
// uniformly from [min, max].
//
// Position starts at -1 and the threshold at -1, so the first Advance
// always opens a group. Opening a group resets Position to 1: the item that
// triggered the boundary is item #1 of the new group. Callers use Position
// as the 1-based ordinal of the current item inside its group.
type Sequencer struct {
	src       *Source
	lo, hi    int
	position  int
	threshold int
}

// NewSequencer returns a Sequencer drawing group sizes from src.
func NewSequencer(src *Source, lo, hi int) *Sequencer {
	return &Sequencer{
		src:       src,
		lo:        lo,
		hi:        hi,
		position:  -1,
		threshold: -1,
	}
}

// Advance moves to the next item and reports whether it starts a new group.
// A new group consumes exactly one draw from the source.
func (s *Sequencer) Advance() bool {
	s.position++
	if s.position <= s.threshold {
		return false
	}

	s.position = 1
	s.threshold = s.src.IntRange(s.lo, s.hi)
	return true
}

// Position returns the ordinal of the current item inside its group.
func (s *Sequencer) Position() int {
	return s.position
}

// Size returns the size drawn for the current group, or -1 before the
// first Advance.
func (s *Sequencer) Size() int {
	return s.threshold
}
