package utils

import (
	"fmt"
	"math/bits"
)

const wordBits = 64

// StaticBitSet is a fixed size set of small non-negative integers, one bit
// per member. Indexes outside [0, Len) panic.
type StaticBitSet struct {
	words []uint64
	size  int
}

func NewStaticBitSet(size int) *StaticBitSet {
	Assert(size >= 0, "negative bit set size")
	return &StaticBitSet{
		words: make([]uint64, (size+wordBits-1)/wordBits),
		size:  size,
	}
}

// Len is the number of bits in the set.
func (s *StaticBitSet) Len() int { return s.size }

func (s *StaticBitSet) check(idx int) {
	Assert(idx >= 0 && idx < s.size, fmt.Sprintf("bit %d out of range [0, %d)", idx, s.size))
}

func (s *StaticBitSet) Set(idx int) {
	s.check(idx)
	s.words[idx/wordBits] |= 1 << (idx % wordBits)
}

func (s *StaticBitSet) Unset(idx int) {
	s.check(idx)
	s.words[idx/wordBits] &^= 1 << (idx % wordBits)
}

func (s *StaticBitSet) IsSet(idx int) bool {
	s.check(idx)
	return s.words[idx/wordBits]&(1<<(idx%wordBits)) != 0
}

// NextSet returns the first set bit at or after idx, -1 if there is none.
func (s *StaticBitSet) NextSet(idx int) int {
	if idx < 0 {
		idx = 0
	}
	if idx >= s.size {
		return -1
	}
	w := idx / wordBits
	word := s.words[w] >> (idx % wordBits) << (idx % wordBits)
	for {
		if word != 0 {
			next := w*wordBits + bits.TrailingZeros64(word)
			if next >= s.size {
				return -1
			}
			return next
		}
		w++
		if w == len(s.words) {
			return -1
		}
		word = s.words[w]
	}
}

// Count is the number of set bits.
func (s *StaticBitSet) Count() int {
	total := 0
	for _, w := range s.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Clear unsets every bit.
func (s *StaticBitSet) Clear() {
	clear(s.words)
}
