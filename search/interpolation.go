package search

import (
	"math"

	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/index"
)

// stepCounter drives the correction walk that follows a missed probe. The
// walk checks probe ± i*step for successive counter values i.
type stepCounter struct {
	start int
	next  func(i int) int
}

var (
	// linearCounter visits 0, 1, 2, 3, ...
	linearCounter = stepCounter{start: 0, next: func(i int) int { return i + 1 }}

	// doublingCounter visits 1, 2, 4, 8, ...
	doublingCounter = stepCounter{start: 1, next: func(i int) int { return i * 2 }}
)

// InterpolationStep returns the positions in idx whose key equals target,
// using interpolation probes corrected by a linear walk of sqrt-sized steps.
//
// The returned positions index into idx, not original record positions. The
// probe position comes first, followed by its left neighbors (descending) and
// then its right neighbors (ascending). A nil slice means the target is absent.
func InterpolationStep(idx *index.SortedIndex, target core.DateKey) []int {
	return interpolationStep(idx, target, linearCounter, noopMonitor{})
}

// ImprovedInterpolationStep is InterpolationStep with an exponentially growing
// correction walk. It needs fewer comparisons to bracket a distant target at
// the cost of a wider bracket.
func ImprovedInterpolationStep(idx *index.SortedIndex, target core.DateKey) []int {
	return interpolationStep(idx, target, doublingCounter, noopMonitor{})
}

func interpolationStep(idx *index.SortedIndex, target core.DateKey, counter stepCounter, mon SearchMonitor) []int {
	n := idx.Len()
	if n == 0 {
		return nil
	}

	left, right := 0, n-1
	for left <= right {
		lowKey, highKey := idx.Key(left), idx.Key(right)
		if target < lowKey || target > highKey {
			return nil
		}

		probe := interpolate(left, right, lowKey, highKey, target)
		mon.Probe(left, right, probe)

		probeKey := idx.Key(probe)
		if probeKey == target {
			run := expandRun(idx, probe, target)
			mon.RunFound(probe, run)
			return run
		}

		step := int(math.Sqrt(float64(right - left)))
		if step < 1 {
			step = 1
		}

		if target > probeKey {
			// Walk right. below tracks the last checked position known to be
			// under the target; right is a bound known to reach it.
			below := probe
			bound := right
			for i := counter.start; ; i = counter.next(i) {
				pos := probe + i*step
				if pos >= right {
					mon.Step(i, right)
					break
				}
				mon.Step(i, pos)
				if idx.Key(pos) >= target {
					bound = pos
					break
				}
				below = pos
			}
			// Tighter than moving right alone: positions up to below are known to be under target.
			left, right = below+1, bound
		} else {
			// Walk left, mirror image of the above.
			above := probe
			bound := left
			for i := counter.start; ; i = counter.next(i) {
				pos := probe - i*step
				if pos <= left {
					mon.Step(i, left)
					break
				}
				mon.Step(i, pos)
				if idx.Key(pos) <= target {
					bound = pos
					break
				}
				above = pos
			}
			// Tighter than moving left alone: positions from above on are known to be over target.
			left, right = bound, above-1
		}
		mon.Bracket(left, right)
	}

	return nil
}

// interpolate estimates where target sits in [left, right] assuming keys are
// spread uniformly between lowKey and highKey. The caller guarantees
// lowKey <= target <= highKey.
func interpolate(left, right int, lowKey, highKey, target core.DateKey) int {
	if highKey == lowKey {
		// Zero-width span: every slot holds the same key, so the whole
		// bracket is one run.
		return left
	}

	frac := float64(target-lowKey) / float64(highKey-lowKey)
	probe := left + int(float64(right-left)*frac)

	// Guard against float rounding pushing past the bracket.
	return min(max(probe, left), right)
}

// expandRun collects the maximal run of entries equal to target around probe.
func expandRun(idx *index.SortedIndex, probe int, target core.DateKey) []int {
	run := []int{probe}
	for i := probe - 1; i >= 0 && idx.Key(i) == target; i-- {
		run = append(run, i)
	}
	for i := probe + 1; i < idx.Len() && idx.Key(i) == target; i++ {
		run = append(run, i)
	}
	return run
}
