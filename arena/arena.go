// Package arena provides the memory resources that back streamjson value
// trees: a Resource capability for raw block allocation, a chunked bump
// allocator (Monotonic) for O(1) bulk reclamation, and a process-wide
// default resource.
package arena

import (
	"unsafe"

	"github.com/pkg/errors"
)

// ErrOutOfMemory reports that a resource could not satisfy an allocation.
var ErrOutOfMemory = errors.New("arena: out of memory")

// Resource allocates and releases raw memory blocks. Implementations make
// no thread-safety guarantee; callers serialize access themselves.
type Resource interface {
	// Allocate returns a block of size bytes whose first byte is aligned
	// to align (a power of two). A zero size yields a nil block.
	Allocate(size, align int) ([]byte, error)

	// Deallocate returns a block obtained from Allocate. The size and
	// align arguments must be exactly those used at allocation; callers
	// track them faithfully.
	Deallocate(b []byte, size, align int)

	// IsEqual reports whether blocks allocated from the receiver may be
	// released through other and vice versa.
	IsEqual(other Resource) bool
}

// Heap passes every allocation through to the Go allocator. Deallocate is
// a no-op; the garbage collector reclaims blocks once unreachable. All
// Heap resources are equal to one another.
type Heap struct{}

func (*Heap) Allocate(size, align int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if align <= 0 || align&(align-1) != 0 {
		return nil, errors.Errorf("arena: alignment %d is not a power of two", align)
	}
	b := make([]byte, size+align-1)
	shift := int((-uintptr(unsafe.Pointer(&b[0]))) & uintptr(align-1))
	return b[shift : shift+size : shift+size], nil
}

func (*Heap) Deallocate([]byte, int, int) {}

func (*Heap) IsEqual(other Resource) bool {
	_, ok := other.(*Heap)
	return ok
}

// DefaultChunkSize is the chunk size Monotonic uses when none is given
// (64 KiB).
const DefaultChunkSize = 1 << 16

type chunk struct {
	buf []byte
	off int
}

// Monotonic is a chunked bump allocator. Blocks are carved sequentially
// out of large chunks; individual Deallocate calls only recycle the most
// recent block, everything else is reclaimed in bulk by Reset or Release.
// Two Monotonic resources are equal only if they are the same instance.
//
// Blocks remain valid exactly as long as the Monotonic itself is
// reachable and neither Reset nor Release has run.
type Monotonic struct {
	chunks    []chunk
	chunkSize int
	limit     int
	used      int
	released  bool
}

// NewMonotonic creates a Monotonic with the given chunk size.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewMonotonic(chunkSize int) *Monotonic {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Monotonic{chunkSize: chunkSize}
}

// WithLimit caps the total bytes Allocate may hand out; exceeding the cap
// fails with ErrOutOfMemory. A limit of 0 means no cap.
func (m *Monotonic) WithLimit(n int) *Monotonic {
	m.limit = n
	return m
}

func (m *Monotonic) Allocate(size, align int) ([]byte, error) {
	m.panicIfReleased()
	if size == 0 {
		return nil, nil
	}
	if align <= 0 || align&(align-1) != 0 {
		return nil, errors.Errorf("arena: alignment %d is not a power of two", align)
	}
	if m.limit > 0 && m.used+size > m.limit {
		return nil, errors.Wrapf(ErrOutOfMemory, "%d bytes over a %d byte limit", m.used+size, m.limit)
	}
	b := m.bump(size, align)
	if b == nil {
		m.grow(size + align)
		b = m.bump(size, align)
	}
	m.used += size
	return b, nil
}

// bump carves size bytes out of the current chunk, or returns nil when
// they do not fit.
func (m *Monotonic) bump(size, align int) []byte {
	if len(m.chunks) == 0 {
		return nil
	}
	c := &m.chunks[len(m.chunks)-1]
	base := uintptr(unsafe.Pointer(&c.buf[0]))
	off := c.off + int((-(base+uintptr(c.off)))&uintptr(align-1))
	if off+size > len(c.buf) {
		return nil
	}
	c.off = off + size
	return c.buf[off:c.off:c.off]
}

func (m *Monotonic) grow(min int) {
	size := m.chunkSize
	if min > size {
		size = min
	}
	m.chunks = append(m.chunks, chunk{buf: make([]byte, size)})
}

// Deallocate recycles b only when it is the most recent allocation of the
// current chunk; any other block stays claimed until Reset or Release.
func (m *Monotonic) Deallocate(b []byte, size, align int) {
	m.panicIfReleased()
	if size == 0 || len(b) == 0 || len(m.chunks) == 0 {
		return
	}
	c := &m.chunks[len(m.chunks)-1]
	if c.off >= size && &c.buf[c.off-size] == &b[0] {
		c.off -= size
		m.used -= size
	}
}

func (m *Monotonic) IsEqual(other Resource) bool {
	o, ok := other.(*Monotonic)
	return ok && o == m
}

// Reset rewinds every chunk for reuse. All blocks handed out so far
// become invalid; the chunks themselves are kept.
func (m *Monotonic) Reset() {
	m.panicIfReleased()
	for i := range m.chunks {
		m.chunks[i].off = 0
	}
	m.used = 0
}

// Release drops all chunks and makes the resource unusable. Any
// subsequent operation panics.
func (m *Monotonic) Release() {
	m.chunks = nil
	m.used = 0
	m.released = true
}

// Allocated returns the bytes currently handed out.
func (m *Monotonic) Allocated() int { return m.used }

// Capacity returns the total bytes held in chunks.
func (m *Monotonic) Capacity() int {
	total := 0
	for i := range m.chunks {
		total += len(m.chunks[i].buf)
	}
	return total
}

func (m *Monotonic) panicIfReleased() {
	if m.released {
		panic("arena: use after Release")
	}
}
