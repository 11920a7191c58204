package search

import (
	"github.com/poiesic/tradesearch/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to trace probes and correction walks during a search.
type SearchMonitor interface {
	Start(method Method, target core.DateKey)
	Probe(left, right, probe int)
	Step(counter, position int)
	Bracket(left, right int)
	RunFound(probe int, positions []int)
	Finish(result *core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = noopMonitor{}

func (noopMonitor) Start(_ Method, _ core.DateKey) {}
func (noopMonitor) Probe(_, _, _ int)              {}
func (noopMonitor) Step(_, _ int)                  {}
func (noopMonitor) Bracket(_, _ int)               {}
func (noopMonitor) RunFound(_ int, _ []int)        {}
func (noopMonitor) Finish(_ *core.SearchResult)    {}

// probeCounter counts probes and forwards every hook to an inner monitor.
type probeCounter struct {
	SearchMonitor
	probes int
}

func (p *probeCounter) Probe(left, right, probe int) {
	p.probes++
	p.SearchMonitor.Probe(left, right, probe)
}
