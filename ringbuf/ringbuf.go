// Package ringbuf provides fixed-capacity circular buffers.
//
// Ring rejects pushes once full (the caller sees ErrOverflow and the buffer
// is left untouched); Overwrite drops the oldest element instead so a push
// always succeeds. Both keep elements in FIFO order addressed by a head
// index plus length, capacity fixed at construction. No allocation happens
// after New.
package ringbuf

import "errors"

// ErrOverflow is returned by reject-policy writes that do not fit.
var ErrOverflow = errors.New("ringbuf: overflow")

// Ring is a reject-on-overflow circular buffer.
type Ring[T any] struct {
	buf []T
	pos int // physical index of the logical front
	n   int
}

// New creates a Ring with the given capacity. capacity must be > 0.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("ringbuf: capacity must be positive")
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

func (r *Ring[T]) Len() int { return r.n }
func (r *Ring[T]) Cap() int { return len(r.buf) }

// At returns the element at logical position i (0 is the oldest).
func (r *Ring[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= r.n {
		return zero, false
	}
	return r.buf[(r.pos+i)%len(r.buf)], true
}

// Front returns the oldest element without removing it.
func (r *Ring[T]) Front() (T, bool) { return r.At(0) }

// Back returns the newest element without removing it.
func (r *Ring[T]) Back() (T, bool) { return r.At(r.n - 1) }

// PopFront removes and returns the oldest element.
func (r *Ring[T]) PopFront() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	v := r.buf[r.pos]
	r.buf[r.pos] = zero // drop the reference
	r.pos = (r.pos + 1) % len(r.buf)
	r.n--
	return v, true
}

// PopBack removes and returns the newest element.
func (r *Ring[T]) PopBack() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	i := (r.pos + r.n - 1) % len(r.buf)
	v := r.buf[i]
	r.buf[i] = zero
	r.n--
	return v, true
}

// Push appends v. When the buffer is full it returns ErrOverflow and the
// buffer is unchanged.
func (r *Ring[T]) Push(v T) error {
	if r.n == len(r.buf) {
		return ErrOverflow
	}
	r.buf[(r.pos+r.n)%len(r.buf)] = v
	r.n++
	return nil
}

// ExtendSlice appends as many elements of s as fit, in order, and returns the
// number written. If any remainder did not fit the error is ErrOverflow; the
// written prefix stays in the buffer. An empty s is a no-op success.
func (r *Ring[T]) ExtendSlice(s []T) (int, error) {
	if len(s) == 0 {
		return 0, nil
	}
	free := len(r.buf) - r.n
	n := len(s)
	if n > free {
		n = free
	}
	for i := 0; i < n; i++ {
		r.buf[(r.pos+r.n)%len(r.buf)] = s[i]
		r.n++
	}
	if n < len(s) {
		return n, ErrOverflow
	}
	return n, nil
}

// Reset discards all elements. Capacity is retained.
func (r *Ring[T]) Reset() {
	var zero T
	for i := 0; i < r.n; i++ {
		r.buf[(r.pos+i)%len(r.buf)] = zero
	}
	r.pos = 0
	r.n = 0
}

// Overwrite is a circular buffer that drops the oldest element when full.
type Overwrite[T any] struct {
	ring Ring[T]
}

// NewOverwrite creates an Overwrite buffer with the given capacity.
func NewOverwrite[T any](capacity int) *Overwrite[T] {
	if capacity <= 0 {
		panic("ringbuf: capacity must be positive")
	}
	return &Overwrite[T]{ring: Ring[T]{buf: make([]T, capacity)}}
}

func (o *Overwrite[T]) Len() int { return o.ring.Len() }
func (o *Overwrite[T]) Cap() int { return o.ring.Cap() }

func (o *Overwrite[T]) At(i int) (T, bool)  { return o.ring.At(i) }
func (o *Overwrite[T]) Front() (T, bool)    { return o.ring.Front() }
func (o *Overwrite[T]) Back() (T, bool)     { return o.ring.Back() }
func (o *Overwrite[T]) PopFront() (T, bool) { return o.ring.PopFront() }
func (o *Overwrite[T]) PopBack() (T, bool)  { return o.ring.PopBack() }

// Push appends v, evicting the oldest element first when the buffer is full.
func (o *Overwrite[T]) Push(v T) {
	r := &o.ring
	if r.n == len(r.buf) {
		// Head slot is recycled for the newest element.
		r.buf[r.pos] = v
		r.pos = (r.pos + 1) % len(r.buf)
		return
	}
	r.buf[(r.pos+r.n)%len(r.buf)] = v
	r.n++
}
