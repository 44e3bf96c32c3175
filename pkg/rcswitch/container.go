// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The rcscope authors

package rcswitch

// Stack is a fixed-capacity stack. Pushes beyond the capacity are
// dropped and counted by an overflow counter. The backing array is
// allocated once at construction; Push never allocates, so it is safe
// to call from the edge interrupt path. PopAt, Clear and consistent
// multi-element reads are reserved for non-interrupt context (see the
// ownership rules on Receiver).
type Stack[T any] struct {
	data     []T
	size     int
	overflow uint32
}

// NewStack returns a stack with the given fixed capacity.
func NewStack[T any](capacity int) *Stack[T] {
	return &Stack[T]{data: make([]T, capacity)}
}

// Push appends v on top of the stack. It returns false and increments
// the overflow counter when the stack is full.
func (s *Stack[T]) Push(v T) bool {
	if s.size < len(s.data) {
		s.data[s.size] = v
		s.size++
		return true
	}
	s.overflow++
	return false
}

// PopAt removes the element at index i, shifting the tail left.
// References previously obtained through At are invalidated. The
// overflow counter stays untouched.
func (s *Stack[T]) PopAt(i int) {
	if i >= s.size {
		return
	}
	copy(s.data[i:], s.data[i+1:s.size])
	s.size--
}

// At returns the element at index i, 0 being the bottom of the stack.
func (s *Stack[T]) At(i int) T {
	return s.data[i]
}

// Len returns the number of elements on the stack.
func (s *Stack[T]) Len() int {
	return s.size
}

// Cap returns the fixed capacity.
func (s *Stack[T]) Cap() int {
	return len(s.data)
}

// Clear drops all elements and resets the overflow counter.
func (s *Stack[T]) Clear() {
	s.size = 0
	s.overflow = 0
}

// OverflowCount returns the number of elements dropped by Push.
func (s *Stack[T]) OverflowCount() uint32 {
	return s.overflow
}

// Ring is a fixed-capacity ring buffer with overwrite-oldest
// semantics. Push always succeeds; once the ring is full the oldest
// element is dropped in favour of the new one. Like Stack, pushes are
// allocation-free and permitted from the interrupt path.
type Ring[T any] struct {
	data  []T
	begin int
	size  int
}

// NewRing returns a ring buffer with the given fixed capacity.
func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{data: make([]T, capacity)}
}

// Push appends v, dropping the oldest element when the ring is full.
func (r *Ring[T]) Push(v T) {
	r.data[(r.begin+r.size)%len(r.data)] = v
	if r.size < len(r.data) {
		r.size++
	} else {
		r.begin = (r.begin + 1) % len(r.data)
	}
}

// At returns the element at index i, 0 being the oldest.
func (r *Ring[T]) At(i int) T {
	return r.data[(r.begin+i)%len(r.data)]
}

// Set replaces the element at index i, 0 being the oldest.
func (r *Ring[T]) Set(i int, v T) {
	r.data[(r.begin+i)%len(r.data)] = v
}

// Len returns the number of elements held.
func (r *Ring[T]) Len() int {
	return r.size
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.data)
}

// Clear drops all elements.
func (r *Ring[T]) Clear() {
	r.begin = 0
	r.size = 0
}
