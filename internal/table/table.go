// Package table holds parsed GTFS rows in memory and the indexes validators read them through.
//
// Tables and indexes are built once, before any validator runs, and are never mutated
// afterwards, so they can be shared by concurrent readers without locking.
package table

import "iter"

// Table is an ordered collection of rows from one GTFS file.
type Table[T any] struct {
	entities []T
}

// NewTable wraps entities in a Table. The slice is owned by the table from then on.
func NewTable[T any](entities []T) *Table[T] {
	return &Table[T]{entities: entities}
}

// EntityCount returns the number of rows in the table.
func (t *Table[T]) EntityCount() int {
	if t == nil {
		return 0
	}
	return len(t.entities)
}

// Entities returns the rows in load order.
// The returned slice is shared with the table and must not be modified.
func (t *Table[T]) Entities() []T {
	if t == nil {
		return nil
	}
	return t.entities
}

// Index is a multi-map from a key to the rows sharing it.
// Rows keep their relative table order inside each group.
type Index[K comparable, T any] struct {
	keys   []K
	groups map[K][]T
}

// GroupBy builds an Index over t in one pass. No sorting is performed: if the table order
// is not the semantic order callers expect (ascending stop_sequence, for instance), the
// groups will not be in that order either.
func GroupBy[K comparable, T any](t *Table[T], key func(T) K) *Index[K, T] {
	idx := &Index[K, T]{groups: make(map[K][]T)}
	for _, e := range t.Entities() {
		k := key(e)
		group, seen := idx.groups[k]
		if !seen {
			idx.keys = append(idx.keys, k)
		}
		idx.groups[k] = append(group, e)
	}
	return idx
}

// Get returns the rows for key, or nil.
func (idx *Index[K, T]) Get(key K) []T {
	return idx.groups[key]
}

// Keys returns the distinct keys in the order they were first seen.
func (idx *Index[K, T]) Keys() []K {
	return idx.keys
}

// Len returns the number of distinct keys.
func (idx *Index[K, T]) Len() int {
	return len(idx.keys)
}

// Groups iterates over the groups in first-seen key order.
func (idx *Index[K, T]) Groups() iter.Seq2[K, []T] {
	return func(yield func(K, []T) bool) {
		for _, k := range idx.keys {
			if !yield(k, idx.groups[k]) {
				return
			}
		}
	}
}
