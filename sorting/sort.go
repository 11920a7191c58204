package sorting

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/tradesearch/core"
)

// Algorithm selects how Sort orders records.
type Algorithm int

const (
	AlgorithmMerge Algorithm = iota + 1
	AlgorithmQuick
	AlgorithmHeap
	AlgorithmCounting
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmMerge:
		return "merge"
	case AlgorithmQuick:
		return "quick"
	case AlgorithmHeap:
		return "heap"
	case AlgorithmCounting:
		return "counting"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps an algorithm name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "merge":
		return AlgorithmMerge, nil
	case "quick":
		return AlgorithmQuick, nil
	case "heap":
		return AlgorithmHeap, nil
	case "counting":
		return AlgorithmCounting, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Field selects the sort key.
type Field int

const (
	FieldValue Field = iota + 1
	FieldDate
)

func (f Field) String() string {
	switch f {
	case FieldValue:
		return "value"
	case FieldDate:
		return "date"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// ParseField maps a field name to a Field.
func ParseField(name string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "value":
		return FieldValue, nil
	case "date":
		return FieldDate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// maxCountingSpan bounds the count table allocated by counting sort.
const maxCountingSpan = 1 << 24

const secondsPerDay = 24 * 60 * 60

type keyed struct {
	key    int64
	record core.Record
}

// Sort returns a copy of records ordered ascending by field, ties by
// position. records is not modified.
func Sort(records []core.Record, field Field, algorithm Algorithm) ([]core.Record, error) {
	items, err := keyRecords(records, field)
	if err != nil {
		return nil, err
	}

	switch algorithm {
	case AlgorithmMerge:
		slices.SortStableFunc(items, compareKeyed)
	case AlgorithmQuick:
		slices.SortFunc(items, compareKeyed)
	case AlgorithmHeap:
		heapSort(items)
	case AlgorithmCounting:
		if err := countingSort(items); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(algorithm))
	}

	sorted := make([]core.Record, len(items))
	for i := range items {
		sorted[i] = items[i].record
	}
	return sorted, nil
}

func keyRecords(records []core.Record, field Field) ([]keyed, error) {
	items := make([]keyed, len(records))
	for i := range records {
		items[i].record = records[i]
		switch field {
		case FieldValue:
			items[i].key = records[i].Value
		case FieldDate:
			// Keys are UTC midnights, so day numbers are exact.
			key, err := core.ParseDate(records[i].Date)
			if err != nil {
				return nil, fmt.Errorf("position %d: %w", records[i].Position, err)
			}
			items[i].key = int64(key) / secondsPerDay
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownField, int(field))
		}
	}
	return items, nil
}

func compareKeyed(a, b keyed) int {
	return cmp.Or(cmp.Compare(a.key, b.key), cmp.Compare(a.record.Position, b.record.Position))
}

func comparePosition(a, b keyed) int {
	return cmp.Compare(a.record.Position, b.record.Position)
}

// heapSort sorts items in place with a max-heap.
func heapSort(items []keyed) {
	n := len(items)
	for i := n/2 - 1; i >= 0; i-- {
		siftDown(items, i, n)
	}
	for end := n - 1; end > 0; end-- {
		items[0], items[end] = items[end], items[0]
		siftDown(items, 0, end)
	}
}

func siftDown(items []keyed, root, n int) {
	for {
		largest := root
		left, right := 2*root+1, 2*root+2
		if left < n && compareKeyed(items[left], items[largest]) > 0 {
			largest = left
		}
		if right < n && compareKeyed(items[right], items[largest]) > 0 {
			largest = right
		}
		if largest == root {
			return
		}
		items[root], items[largest] = items[largest], items[root]
		root = largest
	}
}

// countingSort is a stable counting sort over the key span. Input is put in
// position order first so that stability yields ties by position.
func countingSort(items []keyed) error {
	if len(items) == 0 {
		return nil
	}

	lo, hi := items[0].key, items[0].key
	for _, it := range items[1:] {
		lo = min(lo, it.key)
		hi = max(hi, it.key)
	}
	span := uint64(hi) - uint64(lo)
	if span >= maxCountingSpan {
		return fmt.Errorf("%w: span %d exceeds %d", ErrRangeTooWide, span, maxCountingSpan-1)
	}

	if !slices.IsSortedFunc(items, comparePosition) {
		slices.SortStableFunc(items, comparePosition)
	}

	counts := make([]int, span+1)
	for _, it := range items {
		counts[it.key-lo]++
	}
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}

	sorted := make([]keyed, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		slot := items[i].key - lo
		counts[slot]--
		sorted[counts[slot]] = items[i]
	}
	copy(items, sorted)
	return nil
}
