package search

import (
	"cmp"
	"slices"

	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/index"
)

// Assemble converts index positions into matches ordered by the records'
// original ingestion position. No positions are added or removed.
func Assemble(idx *index.SortedIndex, positions []int) []core.Match {
	ordered := slices.Clone(positions)
	slices.SortFunc(ordered, func(a, b int) int {
		return cmp.Compare(idx.Record(a).Position, idx.Record(b).Position)
	})

	matches := make([]core.Match, len(ordered))
	for i, p := range ordered {
		matches[i] = core.MatchFromRecord(idx.Record(p))
	}
	return matches
}
