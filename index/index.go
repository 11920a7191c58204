package index

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/poiesic/tradesearch/core"
)

// Entry is one slot of a SortedIndex.
type Entry struct {
	Key    core.DateKey
	Record core.Record
}

// SortedIndex is an immutable sequence of entries ordered by date key.
type SortedIndex struct {
	entries []Entry
}

// Build normalizes every record's date and sorts the records by key.
//
// The sort is not stable; entries sharing a key end up in an undefined
// relative order. The input slice is left untouched. A record whose date
// cannot be normalized aborts the build with an error wrapping both
// ErrUnnormalizedDate and core.ErrInvalidDate.
func Build(records []core.Record) (*SortedIndex, error) {
	entries := make([]Entry, len(records))
	for i := range records {
		key, err := core.ParseDate(records[i].Date)
		if err != nil {
			return nil, fmt.Errorf("%w: position %d: %w", ErrUnnormalizedDate, records[i].Position, err)
		}
		entries[i] = Entry{Key: key, Record: records[i]}
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Key, b.Key)
	})

	return &SortedIndex{entries: entries}, nil
}

// Len returns the number of entries.
func (idx *SortedIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Key returns the date key at position i. It panics if i is out of range.
func (idx *SortedIndex) Key(i int) core.DateKey {
	return idx.entries[i].Key
}

// At returns the entry at position i. It panics if i is out of range.
func (idx *SortedIndex) At(i int) Entry {
	return idx.entries[i]
}

// Record returns the record at position i without copying it.
// Callers must not modify the returned record.
func (idx *SortedIndex) Record(i int) *core.Record {
	return &idx.entries[i].Record
}

// Bounds returns the smallest and largest key. ok is false for an empty index.
func (idx *SortedIndex) Bounds() (first, last core.DateKey, ok bool) {
	if idx.Len() == 0 {
		return 0, 0, false
	}
	return idx.entries[0].Key, idx.entries[len(idx.entries)-1].Key, true
}

// IsSorted reports whether keys are non-decreasing. It always holds for an
// index returned by Build.
func (idx *SortedIndex) IsSorted() bool {
	return slices.IsSortedFunc(idx.entries, func(a, b Entry) int {
		return cmp.Compare(a.Key, b.Key)
	})
}
