// Package arena implements the bump allocator that backs the text of a single
// interpreted line.
//
// An Arena hands out Spans: handles to regions of one pre-sized block. There
// is no way to free a single Span; the whole arena is rewound with Reset once
// the line has been executed. Spans carry the generation of the arena that
// created them so that a handle kept past a Reset is caught the first time it
// is resolved.
package arena

import (
	"errors"
	"fmt"
	"math"
)

// MaxCapacity is the largest backing block an Arena will allocate.
const MaxCapacity = 1 << 30

var (
	// ErrAllocation is returned when the backing block can't be created or the
	// request itself is invalid.
	ErrAllocation = errors.New("arena: allocation error")

	// ErrOutOfSpace is returned when a request doesn't fit in the remaining
	// capacity.
	ErrOutOfSpace = errors.New("arena: out of space")

	// ErrOverflow is returned when computing the end of a request overflows.
	ErrOverflow = errors.New("arena: size overflow")
)

// Span is a handle to a region of an Arena.
type Span struct {
	off int
	n   int
	gen uint32
}

// Len returns the length of the region in bytes.
func (s Span) Len() int {
	return s.n
}

// Arena is a fixed capacity bump allocator.
//
// An Arena isn't safe for concurrent use.
type Arena struct {
	buf []byte
	off int
	gen uint32
}

// New creates an Arena with a backing block of capacity bytes.
func New(capacity int) (*Arena, error) {
	if capacity <= 0 || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: invalid capacity %d", ErrAllocation, capacity)
	}

	return &Arena{buf: make([]byte, capacity)}, nil
}

// Cap returns the capacity of the arena.
func (a *Arena) Cap() int {
	return len(a.buf)
}

// Offset returns the number of bytes handed out since the last Reset.
func (a *Arena) Offset() int {
	return a.off
}

// Remaining returns the number of bytes still available.
func (a *Arena) Remaining() int {
	return len(a.buf) - a.off
}

// Alloc returns a zeroed region of size bytes.
//
// On failure the offset is left untouched.
func (a *Arena) Alloc(size int) (Span, error) {
	switch {
	case a.buf == nil:
		return Span{}, fmt.Errorf("%w: arena released", ErrAllocation)
	case size < 0:
		return Span{}, fmt.Errorf("%w: negative size %d", ErrAllocation, size)
	case size > math.MaxInt-a.off:
		return Span{}, ErrOverflow
	case a.off+size > len(a.buf):
		return Span{}, fmt.Errorf("%w: requested %d bytes, %d remaining", ErrOutOfSpace, size, a.Remaining())
	}

	s := Span{off: a.off, n: size, gen: a.gen}
	clear(a.buf[a.off : a.off+size])
	a.off += size
	return s, nil
}

// Copy allocates a region holding a copy of b.
func (a *Arena) Copy(b []byte) (Span, error) {
	s, err := a.Alloc(len(b))
	if err != nil {
		return Span{}, err
	}
	copy(a.buf[s.off:], b)
	return s, nil
}

// CopyString allocates a region holding the bytes of str.
func (a *Arena) CopyString(str string) (Span, error) {
	s, err := a.Alloc(len(str))
	if err != nil {
		return Span{}, err
	}
	copy(a.buf[s.off:], str)
	return s, nil
}

// Bytes resolves a Span to its region. The returned slice can't be appended
// past the end of the region.
//
// Bytes panics if the Span was issued before the last Reset.
func (a *Arena) Bytes(s Span) []byte {
	a.check(s)
	return a.buf[s.off : s.off+s.n : s.off+s.n]
}

// String returns a copy of the region as a string.
func (a *Arena) String(s Span) string {
	return string(a.Bytes(s))
}

// Strings resolves a list of Spans.
func (a *Arena) Strings(spans []Span) []string {
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = a.String(s)
	}
	return out
}

// Reset rewinds the arena so the whole block can be reused. Every Span handed
// out before the call becomes invalid.
func (a *Arena) Reset() {
	a.off = 0
	a.gen++
}

// Release drops the backing block. Allocations fail afterwards.
func (a *Arena) Release() {
	a.buf = nil
	a.off = 0
	a.gen++
}

func (a *Arena) check(s Span) {
	if s.gen != a.gen {
		panic(fmt.Sprintf("arena: span from generation %d used in generation %d", s.gen, a.gen))
	}
	if s.off+s.n > a.off {
		panic("arena: span outside of allocated region")
	}
}
