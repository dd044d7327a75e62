// Package visitmap provides a fixed-size bitmap of decoded byte offsets that many goroutines
// can mark and query without external locking.
//
// Every bit lives in an atomic 64-bit word. Range updates touch each word once with an
// atomic OR/AND, so a SetRange that completes on one goroutine is visible to any later Get.
package visitmap

import (
	"math/bits"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
)

const wordBits = 64

// Map records which of n offsets have been visited.
type Map struct {
	words []atomic.Uint64
	n     int
}

// New returns a map covering offsets [0, n).
func New(n int) *Map {
	if n < 0 {
		n = 0
	}
	return &Map{
		words: make([]atomic.Uint64, (n+wordBits-1)/wordBits),
		n:     n,
	}
}

// Len returns the number of offsets covered.
func (m *Map) Len() int {
	return m.n
}

// Get reports whether offset i is visited. Offsets outside the map are never visited.
func (m *Map) Get(i int) bool {
	if i < 0 || i >= m.n {
		return false
	}
	return m.words[i/wordBits].Load()&(1<<(uint(i)%wordBits)) != 0
}

// SetRange marks or clears offsets [i, i+length). The range is clipped to the map.
func (m *Map) SetRange(i, length int, state bool) {
	if length <= 0 || i >= m.n {
		return
	}
	if i < 0 {
		length += i
		i = 0
	}
	end := i + length
	if end > m.n || end < i {
		end = m.n
	}

	for i < end {
		w := i / wordBits
		lo := uint(i % wordBits)
		hi := uint(wordBits)
		if (w+1)*wordBits > end {
			hi = uint(end - w*wordBits)
		}

		var mask uint64
		if hi-lo == wordBits {
			mask = ^uint64(0)
		} else {
			mask = ((uint64(1) << (hi - lo)) - 1) << lo
		}

		if state {
			m.words[w].Or(mask)
		} else {
			m.words[w].And(^mask)
		}
		i = (w + 1) * wordBits
	}
}

// Count returns the number of visited offsets.
func (m *Map) Count() int {
	total := 0
	for w := range m.words {
		total += bits.OnesCount64(m.words[w].Load())
	}
	return total
}

// Snapshot copies the current state into a bitset. Concurrent writers may or may not be
// reflected, but each word is read atomically.
func (m *Map) Snapshot() *bitset.BitSet {
	buf := make([]uint64, len(m.words))
	for w := range m.words {
		buf[w] = m.words[w].Load()
	}
	return bitset.From(buf)
}
