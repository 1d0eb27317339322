// Package bitmap implements the fixed-size coverage bit vectors the
// scheduler uses for edge sets: the edges a seed touches (trace_mini),
// frontier edges, and the edges a set cover still has to cover. Raw trace
// and virgin bits stay one-byte-per-edge []byte slices.
package bitmap

import "math/bits"

// Map is a fixed-size bit vector, one bit per edge id. It is the
// minimized "trace_mini" form of a coverage map: presence, not hit count.
type Map struct {
	bits []uint64
	size int
}

// New allocates a Map able to address edge ids in [0, size).
func New(size int) *Map {
	return &Map{
		bits: make([]uint64, (size+63)/64),
		size: size,
	}
}

// Size returns the number of addressable bits.
func (m *Map) Size() int { return m.size }

// Set marks edge id as hit.
func (m *Map) Set(id int) {
	m.bits[id/64] |= 1 << uint(id%64)
}

// Clear unmarks edge id.
func (m *Map) Clear(id int) {
	m.bits[id/64] &^= 1 << uint(id%64)
}

// Test reports whether edge id is set.
func (m *Map) Test(id int) bool {
	return m.bits[id/64]&(1<<uint(id%64)) != 0
}

// Reset clears every bit.
func (m *Map) Reset() {
	for i := range m.bits {
		m.bits[i] = 0
	}
}

// Popcount returns the number of set bits.
func (m *Map) Popcount() int {
	n := 0
	for _, w := range m.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Or sets every bit that is set in other into m. Panics if sizes differ.
func (m *Map) Or(other *Map) {
	m.mustMatch(other)
	for i, w := range other.bits {
		m.bits[i] |= w
	}
}

// And keeps only the bits that are set in both m and other.
func (m *Map) And(other *Map) {
	m.mustMatch(other)
	for i, w := range other.bits {
		m.bits[i] &= w
	}
}

// AndNot clears every bit in m that is set in other (set subtraction).
func (m *Map) AndNot(other *Map) {
	m.mustMatch(other)
	for i, w := range other.bits {
		m.bits[i] &^= w
	}
}

// NewBits reports, without mutating m, which edge ids are set in other
// but not in m — the edges other would newly contribute if merged.
func (m *Map) NewBits(other *Map) []int {
	m.mustMatch(other)
	var fresh []int
	for i, w := range other.bits {
		novel := w &^ m.bits[i]
		for novel != 0 {
			b := bits.TrailingZeros64(novel)
			fresh = append(fresh, i*64+b)
			novel &^= 1 << uint(b)
		}
	}
	return fresh
}

// Clone returns an independent copy of m.
func (m *Map) Clone() *Map {
	cp := &Map{bits: make([]uint64, len(m.bits)), size: m.size}
	copy(cp.bits, m.bits)
	return cp
}

// Each calls fn for every set bit's edge id, in ascending order.
func (m *Map) Each(fn func(id int)) {
	for i, w := range m.bits {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			fn(i*64 + b)
			w &^= 1 << uint(b)
		}
	}
}

func (m *Map) mustMatch(other *Map) {
	if m.size != other.size {
		panic("bitmap: size mismatch")
	}
}

// FromTraceBits builds a minimized Map from a raw one-byte-per-edge trace,
// the form an Executor.Execute result carries. A non-zero byte means hit.
func FromTraceBits(trace []byte) *Map {
	m := New(len(trace))
	for i, b := range trace {
		if b != 0 {
			m.Set(i)
		}
	}
	return m
}
