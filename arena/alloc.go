package arena

import "unsafe"

// New allocates a zeroed T from r. For a Heap resource the value lives in
// ordinary garbage-collected memory, so pointers stored in it stay
// visible to the runtime. Other resources hand out raw bytes: the caller
// must keep r reachable for as long as the value is in use, and pointers
// stored inside it must target memory the resource itself keeps alive.
func New[T any](r Resource) (*T, error) {
	if _, ok := r.(*Heap); ok {
		return new(T), nil
	}
	var zero T
	size, align := int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero))
	if size == 0 {
		return new(T), nil
	}
	b, err := r.Allocate(size, align)
	if err != nil {
		return nil, err
	}
	clear(b)
	return (*T)(unsafe.Pointer(&b[0])), nil
}

// MakeSlice allocates a zeroed slice of n elements of T from r, under the
// same reachability rules as New. Returns nil for n <= 0.
func MakeSlice[T any](r Resource, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if _, ok := r.(*Heap); ok {
		return make([]T, n), nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return make([]T, n), nil
	}
	b, err := r.Allocate(size*n, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	clear(b)
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil
}

// FreeSlice returns the block backing s, to its full capacity, to r. The
// size and alignment passed down are exactly those MakeSlice used, as the
// Resource contract requires.
func FreeSlice[T any](r Resource, s []T) {
	if cap(s) == 0 {
		return
	}
	if _, ok := r.(*Heap); ok {
		return
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return
	}
	full := s[:cap(s)]
	b := unsafe.Slice((*byte)(unsafe.Pointer(&full[0])), size*cap(s))
	r.Deallocate(b, size*cap(s), int(unsafe.Alignof(zero)))
}
