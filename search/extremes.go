package search

import (
	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/index"
)

// Extremes holds the smallest and largest values in an index together with
// every row carrying them.
type Extremes struct {
	Min     int64
	MinRows []core.Match
	Max     int64
	MaxRows []core.Match
}

// FindExtremes scans idx for the smallest and largest Value. Rows are
// ordered by original position. An empty index yields the zero Extremes.
func FindExtremes(idx *index.SortedIndex) Extremes {
	var ext Extremes
	if idx.Len() == 0 {
		return ext
	}

	var minPos, maxPos []int
	ext.Min = idx.Record(0).Value
	ext.Max = ext.Min
	for i := 0; i < idx.Len(); i++ {
		v := idx.Record(i).Value
		switch {
		case v < ext.Min:
			ext.Min, minPos = v, minPos[:0]
		case v > ext.Max:
			ext.Max, maxPos = v, maxPos[:0]
		}
		if v == ext.Min {
			minPos = append(minPos, i)
		}
		if v == ext.Max {
			maxPos = append(maxPos, i)
		}
	}

	ext.MinRows = Assemble(idx, minPos)
	ext.MaxRows = Assemble(idx, maxPos)
	return ext
}
