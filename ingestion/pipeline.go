package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/storage"
)

const (
	defaultBatchSize        = 1000
	defaultProgressInterval = 10000
	defaultMaxAttempts      = 3
	defaultRetryDelay       = 100 * time.Millisecond
)

// Pipeline orchestrates loading a CSV dataset into storage.
// Parsing and storing are fanned out over a shared worker pool.
type Pipeline struct {
	records          storage.RecordRepository
	manifests        storage.ManifestRepository
	pool             *ants.Pool
	batchSize        int
	progress         io.Writer
	progressInterval int
	maxAttempts      int
	retryDelay       time.Duration
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many rows a worker parses or stores per task.
// Default is 1000, with a minimum of 1.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		p.batchSize = max(size, 1)
		return nil
	}
}

// WithProgress writes a status line to w every interval stored rows.
// Progress is off by default.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		p.progress = w
		if interval > 0 {
			p.progressInterval = interval
		}
		return nil
	}
}

// WithRetry sets how often a failed storage batch is attempted and the delay
// before the first retry; the delay doubles on each further retry.
// Default is 3 attempts starting at 100ms.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		p.maxAttempts = max(maxAttempts, 1)
		if baseDelay > 0 {
			p.retryDelay = baseDelay
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	records storage.RecordRepository,
	manifests storage.ManifestRepository,
	opts ...Option,
) (*Pipeline, error) {
	if records == nil {
		return nil, ErrRecordRepositoryRequired
	}
	if manifests == nil {
		return nil, ErrManifestRepositoryRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		records:          records,
		manifests:        manifests,
		pool:             pool,
		batchSize:        defaultBatchSize,
		progressInterval: defaultProgressInterval,
		maxAttempts:      defaultMaxAttempts,
		retryDelay:       defaultRetryDelay,
		logger:           slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release frees the worker pool. The pipeline must not be used afterwards.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Parse reads a CSV dataset and returns its records in row order. The first
// row must be the header. Any malformed row aborts the parse with an error
// wrapping ErrMalformedRow that names the CSV line.
func (p *Pipeline) Parse(ctx context.Context, r io.Reader) ([]core.Record, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	records := make([]core.Record, len(rows))
	err = p.forEachBatch(ctx, len(rows), func(start, end int) error {
		for i := start; i < end; i++ {
			record, err := ParseRecord(i, rows[i])
			if err != nil {
				return fmt.Errorf("line %d: %w", i+2, err)
			}
			records[i] = *record
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Debug("parsed dataset", "rows", len(records))
	return records, nil
}

// Ingest replaces the stored dataset with the one read from r and returns the
// saved manifest. source names the dataset in the manifest. The previous
// manifest is removed before any record is touched and the new one is only
// written after every record is stored, so a failed ingest leaves no manifest.
func (p *Pipeline) Ingest(ctx context.Context, source string, r io.Reader) (*core.Manifest, error) {
	start := time.Now()

	hash := core.NewContentHash()
	records, err := p.Parse(ctx, io.TeeReader(r, hash))
	if err != nil {
		return nil, err
	}

	if err := p.manifests.DeleteManifest(ctx); err != nil {
		return nil, fmt.Errorf("clear previous manifest: %w", err)
	}
	if err := p.records.DeleteAllRecords(ctx); err != nil {
		return nil, fmt.Errorf("clear previous dataset: %w", err)
	}

	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, "Loading", len(records), p.progressInterval)
		tracker.Start()
		defer tracker.Finish()
	}

	err = p.forEachBatch(ctx, len(records), func(start, end int) error {
		batch := make([]*core.Record, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, &records[i])
		}
		store := func() error { return p.records.AddRecords(ctx, batch...) }
		if err := retryWithBackoff(ctx, p.logger, store, p.maxAttempts, p.retryDelay); err != nil {
			return fmt.Errorf("store rows %d-%d: %w", start, end-1, err)
		}
		if tracker != nil {
			tracker.Increment(len(batch))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	manifest := &core.Manifest{
		Source:      source,
		Fingerprint: core.IDFromHash(hash),
		Records:     len(records),
		LoadedAt:    time.Now().UTC(),
	}
	if err := p.manifests.SaveManifest(ctx, manifest); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}

	p.logger.Info("dataset loaded",
		"source", source,
		"records", len(records),
		"fingerprint", manifest.Fingerprint,
		"elapsed", time.Since(start))
	return manifest, nil
}

// forEachBatch splits [0, n) into batches and runs fn on the pool for each.
// It waits for every submitted batch and returns the first error.
func (p *Pipeline) forEachBatch(ctx context.Context, n int, fn func(start, end int) error) error {
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
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for start := 0; start < n; start += p.batchSize {
		if err := ctx.Err(); err != nil {
			setErr(err)
			break
		}
		if failed() {
			break
		}

		end := min(start+p.batchSize, n)
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if failed() {
				return
			}
			if err := fn(start, end); err != nil {
				setErr(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			setErr(submitErr)
			break
		}
	}
	wg.Wait()
	return firstErr
}

// readRows reads every data row after the header. Field counts are checked
// per row by ParseRecord so that the error can name the row.
func readRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		rows = append(rows, row)
	}
}
