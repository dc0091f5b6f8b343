// Package validation holds the process-wide set of champion ids the server
// currently accepts in edits. The set is read on every edit and replaced
// wholesale after each catalog sync.
package validation

import "sync/atomic"

// Set is a snapshot of valid champion ids with single-writer, many-reader
// discipline. Readers always observe either the previous snapshot or the
// complete new one, never a partial replacement.
type Set struct {
	ids atomic.Pointer[map[int32]struct{}]
}

// NewSet returns an empty set. Until the first Replace, every id is invalid.
func NewSet() *Set {
	s := &Set{}
	empty := make(map[int32]struct{})
	s.ids.Store(&empty)
	return s
}

// Replace swaps in a new snapshot built from ids.
func (s *Set) Replace(ids []int32) {
	next := make(map[int32]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	s.ids.Store(&next)
}

// Contains reports whether id is in the current snapshot.
func (s *Set) Contains(id int32) bool {
	_, ok := (*s.ids.Load())[id]
	return ok
}

// Len returns the size of the current snapshot.
func (s *Set) Len() int {
	return len(*s.ids.Load())
}
