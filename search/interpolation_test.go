package search

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type algorithm struct {
	name string
	fn   func(*index.SortedIndex, core.DateKey) []int
}

var algorithms = []algorithm{
	{"linear", InterpolationStep},
	{"improved", ImprovedInterpolationStep},
}

func buildIndex(t testing.TB, dates ...string) *index.SortedIndex {
	t.Helper()
	records := make([]core.Record, len(dates))
	for i, d := range dates {
		records[i] = core.Record{Position: i, Date: d, Value: int64(100 + i), Cumulative: int64(1000 + i)}
	}
	idx, err := index.Build(records)
	require.NoError(t, err)
	return idx
}

// bruteForce returns every index position holding target, ascending.
func bruteForce(idx *index.SortedIndex, target core.DateKey) []int {
	var out []int
	for i := 0; i < idx.Len(); i++ {
		if idx.Key(i) == target {
			out = append(out, i)
		}
	}
	return out
}

func sorted(positions []int) []int {
	out := slices.Clone(positions)
	slices.Sort(out)
	return out
}

func originalPositions(idx *index.SortedIndex, positions []int) []int {
	var out []int
	for _, m := range Assemble(idx, positions) {
		out = append(out, m.Position)
	}
	return out
}

func TestScenario(t *testing.T) {
	idx := buildIndex(t, "01/01/2015", "01/01/2015", "01/06/2015", "01/01/2016")

	for _, alg := range algorithms {
		t.Run(alg.name, func(t *testing.T) {
			got := alg.fn(idx, core.MustParseDate("01/01/2015"))
			assert.Equal(t, []int{0, 1}, originalPositions(idx, got))

			got = alg.fn(idx, core.MustParseDate("01/06/2015"))
			assert.Equal(t, []int{2}, originalPositions(idx, got))

			got = alg.fn(idx, core.MustParseDate("01/01/2016"))
			assert.Equal(t, []int{3}, originalPositions(idx, got))

			assert.Empty(t, alg.fn(idx, core.MustParseDate("01/01/2014")))
		})
	}
}

func TestBoundary(t *testing.T) {
	idx := buildIndex(t, "01/01/2015", "02/01/2015", "03/01/2015", "10/01/2015")

	targets := []string{"31/12/2014", "11/01/2015", "01/01/1970", "01/01/2100"}
	for _, alg := range algorithms {
		for _, target := range targets {
			t.Run(alg.name+"/"+target, func(t *testing.T) {
				assert.Empty(t, alg.fn(idx, core.MustParseDate(target)))
			})
		}
	}
}

func TestMissingInsideRange(t *testing.T) {
	idx := buildIndex(t, "01/01/2015", "02/01/2015", "05/01/2015", "06/01/2015", "20/01/2015")

	for _, alg := range algorithms {
		t.Run(alg.name, func(t *testing.T) {
			assert.Empty(t, alg.fn(idx, core.MustParseDate("03/01/2015")))
			assert.Empty(t, alg.fn(idx, core.MustParseDate("19/01/2015")))
		})
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := buildIndex(t)
	for _, alg := range algorithms {
		t.Run(alg.name, func(t *testing.T) {
			assert.Nil(t, alg.fn(idx, core.MustParseDate("01/01/2015")))
		})
	}
}

func TestSingleEntry(t *testing.T) {
	idx := buildIndex(t, "01/01/2015")
	for _, alg := range algorithms {
		t.Run(alg.name, func(t *testing.T) {
			assert.Equal(t, []int{0}, alg.fn(idx, core.MustParseDate("01/01/2015")))
			assert.Empty(t, alg.fn(idx, core.MustParseDate("02/01/2015")))
		})
	}
}

func TestAllDatesIdentical(t *testing.T) {
	dates := make([]string, 500)
	for i := range dates {
		dates[i] = "20/02/2020"
	}
	idx := buildIndex(t, dates...)

	for _, alg := range algorithms {
		t.Run(alg.name, func(t *testing.T) {
			got := alg.fn(idx, core.MustParseDate("20/02/2020"))
			require.Len(t, got, len(dates))
			assert.Equal(t, bruteForce(idx, core.MustParseDate("20/02/2020")), sorted(got))

			assert.Empty(t, alg.fn(idx, core.MustParseDate("21/02/2020")))
			assert.Empty(t, alg.fn(idx, core.MustParseDate("19/02/2020")))
		})
	}
}

func TestRunOrder(t *testing.T) {
	// Probe lands somewhere in the run; its left neighbors follow it in
	// descending order, then its right neighbors in ascending order.
	idx := buildIndex(t, "01/01/2015", "02/01/2015", "02/01/2015", "02/01/2015", "03/01/2015")
	target := core.MustParseDate("02/01/2015")

	for _, alg := range algorithms {
		t.Run(alg.name, func(t *testing.T) {
			got := alg.fn(idx, target)
			require.Len(t, got, 3)
			probe := got[0]
			var want []int
			want = append(want, probe)
			for i := probe - 1; i >= 1; i-- {
				want = append(want, i)
			}
			for i := probe + 1; i <= 3; i++ {
				want = append(want, i)
			}
			assert.Equal(t, want, got)
		})
	}
}

// datasets produces key distributions from uniform to heavily skewed.
func datasets(rng *rand.Rand) map[string][]string {
	day := func(offset int) string {
		return core.DateKey(int64(core.MustParseDate("01/01/2015")) + int64(offset)*86400).String()
	}

	out := make(map[string][]string)

	var uniform []string
	for d := 0; d < 2000; d++ {
		for c := rng.Intn(4); c > 0; c-- {
			uniform = append(uniform, day(d))
		}
	}
	out["uniform with duplicates"] = uniform

	var clustered []string
	for i := 0; i < 3000; i++ {
		clustered = append(clustered, day(rng.Intn(10)))
	}
	clustered = append(clustered, day(5000), day(9000))
	out["clustered with far outliers"] = clustered

	var exponential []string
	for i := 0; i < 40; i++ {
		exponential = append(exponential, day(1<<(i/3)))
	}
	out["exponential gaps"] = exponential

	var twoBlocks []string
	for i := 0; i < 1500; i++ {
		twoBlocks = append(twoBlocks, day(0))
	}
	for i := 0; i < 1500; i++ {
		twoBlocks = append(twoBlocks, day(3650))
	}
	twoBlocks = append(twoBlocks, day(1))
	out["two heavy blocks"] = twoBlocks

	var sparse []string
	for i := 0; i < 300; i++ {
		sparse = append(sparse, day(rng.Intn(20000)))
	}
	out["sparse random"] = sparse

	return out
}

func TestCompletenessAndEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for name, dates := range datasets(rng) {
		t.Run(name, func(t *testing.T) {
			rng.Shuffle(len(dates), func(i, j int) { dates[i], dates[j] = dates[j], dates[i] })
			idx := buildIndex(t, dates...)
			first, last, ok := idx.Bounds()
			require.True(t, ok)

			// Every present key, plus a selection of absent ones inside and
			// around the range.
			targets := map[core.DateKey]bool{first - 86400: true, last + 86400: true}
			for i := 0; i < idx.Len(); i++ {
				targets[idx.Key(i)] = true
			}
			for i := 0; i < 200; i++ {
				span := int64(last-first) / 86400
				targets[first+core.DateKey(rng.Int63n(span+1)*86400)] = true
			}

			for target := range targets {
				want := bruteForce(idx, target)
				linear := InterpolationStep(idx, target)
				improved := ImprovedInterpolationStep(idx, target)

				require.Equal(t, want, sorted(linear), "linear, target %s", target)
				require.Equal(t, want, sorted(improved), "improved, target %s", target)
				for _, p := range linear {
					require.Equal(t, target, idx.Key(p))
				}
			}
		})
	}
}

func TestAssembledOrderIsStrictlyAscending(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	dates := make([]string, 1000)
	for i := range dates {
		dates[i] = fmt.Sprintf("%02d/03/2020", rng.Intn(5)+1)
	}
	idx := buildIndex(t, dates...)

	for _, alg := range algorithms {
		t.Run(alg.name, func(t *testing.T) {
			got := originalPositions(idx, alg.fn(idx, core.MustParseDate("03/03/2020")))
			require.NotEmpty(t, got)
			for i := 1; i < len(got); i++ {
				assert.Less(t, got[i-1], got[i])
			}
		})
	}
}

// traceMonitor records the counter sequence of every correction walk.
type traceMonitor struct {
	noopMonitor
	walks  [][]int
	probes []int
}

func (m *traceMonitor) Probe(_, _, probe int) {
	m.probes = append(m.probes, probe)
	m.walks = append(m.walks, nil)
}

func (m *traceMonitor) Step(counter, _ int) {
	last := len(m.walks) - 1
	m.walks[last] = append(m.walks[last], counter)
}

func TestCounterSequences(t *testing.T) {
	// Keys are bunched at the low end so the first probe overshoots and a
	// walk is required.
	var dates []string
	for i := 1; i <= 28; i++ {
		dates = append(dates, fmt.Sprintf("%02d/01/2015", i))
	}
	dates = append(dates, "01/01/2030")
	idx := buildIndex(t, dates...)
	target := core.MustParseDate("20/01/2015")

	t.Run("linear counter starts at 0 and increments", func(t *testing.T) {
		mon := &traceMonitor{}
		got := interpolationStep(idx, target, linearCounter, mon)
		require.Len(t, got, 1)

		walked := false
		for _, walk := range mon.walks {
			if len(walk) == 0 {
				continue
			}
			walked = true
			assert.Equal(t, 0, walk[0])
			for i := 1; i < len(walk); i++ {
				assert.Equal(t, walk[i-1]+1, walk[i])
			}
		}
		assert.True(t, walked, "expected at least one correction walk")
	})

	t.Run("doubling counter starts at 1 and doubles", func(t *testing.T) {
		mon := &traceMonitor{}
		got := interpolationStep(idx, target, doublingCounter, mon)
		require.Len(t, got, 1)

		walked := false
		for _, walk := range mon.walks {
			if len(walk) == 0 {
				continue
			}
			walked = true
			assert.Equal(t, 1, walk[0])
			for i := 1; i < len(walk); i++ {
				assert.Equal(t, walk[i-1]*2, walk[i])
			}
		}
		assert.True(t, walked, "expected at least one correction walk")
	})
}

func TestProbesStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for name, dates := range datasets(rng) {
		idx := buildIndex(t, dates...)
		first, last, _ := idx.Bounds()
		for _, counter := range []stepCounter{linearCounter, doublingCounter} {
			mon := &boundsMonitor{t: t, n: idx.Len(), name: name}
			for k := first; k <= last; k += core.DateKey(86400 * (1 + rng.Intn(30))) {
				interpolationStep(idx, k, counter, mon)
			}
		}
	}
}

type boundsMonitor struct {
	noopMonitor
	t    *testing.T
	n    int
	name string
	l, r int
}

func (m *boundsMonitor) Probe(left, right, probe int) {
	m.l, m.r = left, right
	if probe < left || probe > right {
		m.t.Errorf("%s: probe %d outside [%d,%d]", m.name, probe, left, right)
	}
}

func (m *boundsMonitor) Step(_, position int) {
	if position < m.l || position > m.r {
		m.t.Errorf("%s: step position %d outside [%d,%d]", m.name, position, m.l, m.r)
	}
}

func (m *boundsMonitor) Bracket(left, right int) {
	if left < 0 || right >= m.n {
		m.t.Errorf("%s: bracket [%d,%d] outside index of %d", m.name, left, right, m.n)
	}
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name              string
		left, right       int
		low, high, target core.DateKey
		want              int
	}{
		{"zero span", 3, 9, 100, 100, 100, 3},
		{"target at low", 0, 10, 0, 100, 0, 0},
		{"target at high", 0, 10, 0, 100, 100, 10},
		{"midpoint", 0, 10, 0, 100, 50, 5},
		{"truncates", 0, 10, 0, 100, 59, 5},
		{"offset bracket", 20, 30, 1000, 2000, 1500, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interpolate(tt.left, tt.right, tt.low, tt.high, tt.target))
		})
	}
}
