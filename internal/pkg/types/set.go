package types

import (
	"iter"
	"maps"
	"slices"
)

// Set is a mutable hash set over comparable types, backed by a
// map[T]struct{}. Add and Delete modify the set in place.
type Set[T comparable] map[T]struct{}

// NewSet builds a Set containing the provided elements.
func NewSet[T comparable](data ...T) Set[T] {
	set := make(Set[T], len(data))
	set.Add(data...)
	return set
}

// Add inserts one or more elements into the set.
func (s Set[T]) Add(values ...T) {
	for _, val := range values {
		s[val] = struct{}{}
	}
}

// Delete removes one or more elements from the set.
func (s Set[T]) Delete(values ...T) {
	for _, val := range values {
		delete(s, val)
	}
}

// Contains reports whether val is a member of the set.
func (s Set[T]) Contains(val T) bool {
	_, ok := s[val]
	return ok
}

// Difference returns a new set with the elements of s that are not in other.
func (s Set[T]) Difference(other Set[T]) Set[T] {
	diff := make(Set[T])
	for val := range s {
		if !other.Contains(val) {
			diff.Add(val)
		}
	}
	return diff
}

// Len returns the number of elements in the set.
func (s Set[T]) Len() int {
	return len(s)
}

// ToIter returns an iterator over all elements in the set.
func (s Set[T]) ToIter() iter.Seq[T] {
	return maps.Keys(s)
}

// ToSlice returns the set's elements as a slice, in no particular order.
func (s Set[T]) ToSlice() []T {
	return slices.Collect(s.ToIter())
}
