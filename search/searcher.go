package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/index"
)

// Searcher answers date queries against a sorted index.
// A Searcher never modifies its index and is safe for concurrent use.
type Searcher struct {
	index    *index.SortedIndex
	method   Method
	poolSize int
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMethod sets the algorithm used by Search and SearchAll.
// Default is MethodImprovedInterpolationStep.
func WithMethod(method Method) Option {
	return func(s *Searcher) error {
		if _, err := method.counter(); err != nil {
			return err
		}
		s.method = method
		return nil
	}
}

// WithPoolSize sets the number of workers SearchAll fans out to.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			size = 1
		}
		s.poolSize = size
		return nil
	}
}

// NewSearcher creates a new searcher over idx.
func NewSearcher(idx *index.SortedIndex, opts ...Option) (*Searcher, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}

	s := &Searcher{
		index:    idx,
		method:   MethodImprovedInterpolationStep,
		poolSize: max(runtime.NumCPU(), 1),
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Method returns the searcher's default algorithm.
func (s *Searcher) Method() Method {
	return s.method
}

// Index returns the index the searcher reads.
func (s *Searcher) Index() *index.SortedIndex {
	return s.index
}

// Search finds every record dated date (dd/mm/yyyy) using the default method.
// A date absent from the index yields a result with no matches and a nil error;
// an undecomposable date yields an error wrapping core.ErrInvalidDate.
func (s *Searcher) Search(ctx context.Context, date string) (*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, s.method, date, nil)
}

// SearchWith is Search with an explicit method.
func (s *Searcher) SearchWith(ctx context.Context, method Method, date string) (*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, method, date, nil)
}

// SearchWithMonitor searches with an explicit method and monitoring.
// The monitor receives callbacks for every probe and correction step.
func (s *Searcher) SearchWithMonitor(ctx context.Context, method Method, date string, monitor SearchMonitor) (*core.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counter, err := method.counter()
	if err != nil {
		return nil, err
	}

	// Use noop monitor if none provided
	if monitor == nil {
		monitor = noopMonitor{}
	}

	target, err := core.ParseDate(date)
	if err != nil {
		s.logger.Debug("rejecting search target", "date", date, "err", err)
		return nil, err
	}

	monitor.Start(method, target)
	counted := &probeCounter{SearchMonitor: monitor}

	start := time.Now()
	positions := interpolationStep(s.index, target, counter, counted)
	matches := Assemble(s.index, positions)
	elapsed := time.Since(start)

	result := &core.SearchResult{
		Date:    date,
		Key:     target,
		Method:  method.String(),
		Matches: matches,
		Probes:  counted.probes,
		Elapsed: elapsed,
	}
	monitor.Finish(result)

	s.logger.Debug("search complete",
		"date", date,
		"method", method.String(),
		"matches", len(matches),
		"probes", counted.probes,
		"elapsed", elapsed)

	return result, nil
}

// SearchAll runs Search for every date concurrently on a worker pool sharing
// the read-only index. Results are returned in the order of dates. The first
// error encountered is returned and the partial results are discarded.
func (s *Searcher) SearchAll(ctx context.Context, dates []string) ([]*core.SearchResult, error) {
	if len(dates) == 0 {
		return []*core.SearchResult{}, nil
	}

	pool, err := ants.NewPool(min(s.poolSize, len(dates)))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]*core.SearchResult, len(dates))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for i, date := range dates {
		if err := ctx.Err(); err != nil {
			setErr(err)
			break
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			res, err := s.Search(ctx, date)
			if err != nil {
				setErr(fmt.Errorf("search %q: %w", date, err))
				return
			}
			results[i] = res
		})
		if submitErr != nil {
			wg.Done()
			setErr(submitErr)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		s.logger.Error("batch search failed", "dates", len(dates), "err", firstErr)
		return nil, firstErr
	}
	return results, nil
}
