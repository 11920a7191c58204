package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports row throughput for a long-running load. It is safe
// for use by concurrent workers.
type ProgressTracker struct {
	mu           sync.Mutex
	writer       io.Writer
	label        string
	total        int
	current      int
	interval     int
	lastReported int
	startTime    time.Time
	started      bool
}

// NewProgressTracker creates a tracker that writes a status line to writer
// each time another interval rows complete. label prefixes the line.
func NewProgressTracker(writer io.Writer, label string, total, interval int) *ProgressTracker {
	return &ProgressTracker{
		writer:   writer,
		label:    label,
		total:    total,
		interval: max(interval, 1),
	}
}

// Start begins tracking and resets the counters.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
}

// Increment records delta more completed rows.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = min(p.current+delta, p.total)
	if p.current-p.lastReported >= p.interval {
		p.report()
		p.lastReported = p.current
	}
}

// Current returns the number of rows completed so far.
func (p *ProgressTracker) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish prints the final status line. Unlike the periodic reports it shows
// the actual count reached, which is below total when a load aborts.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	rate := 0.0
	if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\r%s: %d/%d (%.1f%%) - %.0f rows/s",
		p.label, p.current, p.total, percentage, rate)
}
