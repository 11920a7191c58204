package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(position int, date string, value int64) *core.Record {
	return &core.Record{
		Position:      position,
		Direction:     "Exports",
		Year:          2015,
		Date:          date,
		Weekday:       "Thursday",
		Country:       "All",
		Commodity:     "All",
		TransportMode: "All",
		Measure:       "$",
		Value:         value,
		Cumulative:    value * 10,
	}
}

func setupRecords(t *testing.T) (storage.RecordRepository, context.Context) {
	t.Helper()
	records, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		records.Close()
		backend.Close()
	})
	return records, context.Background()
}

func TestRecordBasics(t *testing.T) {
	repo, ctx := setupRecords(t)

	r1 := newTestRecord(0, "01/01/2015", 100)
	r2 := newTestRecord(1, "02/01/2015", 200)
	require.NoError(t, repo.AddRecords(ctx, r1, r2))

	got, err := repo.GetRecord(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, r2, got)

	_, err = repo.GetRecord(ctx, 7)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	_, err = repo.GetRecord(ctx, -1)
	assert.True(t, errors.Is(err, storage.ErrInvalidQuery))

	count, err := repo.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAddRecords_Overwrite(t *testing.T) {
	repo, ctx := setupRecords(t)

	require.NoError(t, repo.AddRecords(ctx, newTestRecord(3, "01/01/2015", 1)))
	require.NoError(t, repo.AddRecords(ctx, newTestRecord(3, "01/01/2015", 2)))

	got, err := repo.GetRecord(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Value)

	count, err := repo.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddRecords_Invalid(t *testing.T) {
	repo, ctx := setupRecords(t)

	err := repo.AddRecords(ctx,
		newTestRecord(0, "01/01/2015", 1),
		newTestRecord(1, "not a date", 1),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidRecord))

	// Nothing from the rejected batch is stored.
	count, err := repo.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGetRecords_Multiple(t *testing.T) {
	repo, ctx := setupRecords(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AddRecords(ctx, newTestRecord(i, "01/01/2015", int64(i))))
	}

	got, err := repo.GetRecords(ctx, 4, 99, 0, -2, 2)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 4, got[0].Position)
	assert.Equal(t, 0, got[1].Position)
	assert.Equal(t, 2, got[2].Position)

	got, err = repo.GetRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestForEachRecord(t *testing.T) {
	repo, ctx := setupRecords(t)

	// Insert out of order and across a byte boundary.
	positions := []int{300, 2, 255, 0, 256, 1, 7}
	for _, p := range positions {
		require.NoError(t, repo.AddRecords(ctx, newTestRecord(p, fmt.Sprintf("%02d/01/2015", p%28+1), int64(p))))
	}

	for _, batchSize := range []int{1, 2, 3, 7, 100} {
		t.Run(fmt.Sprintf("batch %d", batchSize), func(t *testing.T) {
			var seen []int
			batches := 0
			err := repo.ForEachRecord(ctx, batchSize, func(batch []*core.Record) error {
				batches++
				assert.LessOrEqual(t, len(batch), batchSize)
				for _, r := range batch {
					seen = append(seen, r.Position)
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1, 2, 7, 255, 256, 300}, seen)
			assert.Equal(t, (len(positions)+batchSize-1)/batchSize, batches)
		})
	}
}

func TestForEachRecord_Errors(t *testing.T) {
	repo, ctx := setupRecords(t)
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.AddRecords(ctx, newTestRecord(i, "01/01/2015", 0)))
	}

	t.Run("invalid batch size", func(t *testing.T) {
		err := repo.ForEachRecord(ctx, 0, func([]*core.Record) error { return nil })
		assert.True(t, errors.Is(err, storage.ErrInvalidQuery))
	})

	t.Run("callback error stops iteration", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := repo.ForEachRecord(ctx, 1, func([]*core.Record) error {
			calls++
			return stop
		})
		assert.Equal(t, stop, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := repo.ForEachRecord(cctx, 1, func([]*core.Record) error {
			calls++
			cancel()
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("empty store", func(t *testing.T) {
		empty, ectx := setupRecords(t)
		calls := 0
		err := empty.ForEachRecord(ectx, 10, func([]*core.Record) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Zero(t, calls)
	})
}

func TestDeleteAllRecords(t *testing.T) {
	repo, ctx := setupRecords(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.AddRecords(ctx, newTestRecord(i, "01/01/2015", 0)))
	}
	require.NoError(t, repo.DeleteAllRecords(ctx))

	count, err := repo.CountRecords(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The store is usable afterwards.
	require.NoError(t, repo.AddRecords(ctx, newTestRecord(0, "01/01/2015", 5)))
	got, err := repo.GetRecord(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Value)
}

func TestRecordRepository_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	repo := NewRecordRepository(backend)
	require.NoError(t, repo.AddRecords(ctx, newTestRecord(0, "01/01/2015", 42)))
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	repo = NewRecordRepository(backend)

	got, err := repo.GetRecord(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Value)
}

func TestDeleteRecords(t *testing.T) {
	repo, ctx := setupRecords(t)

	require.NoError(t, repo.AddRecords(ctx,
		newTestRecord(0, "01/01/2015", 100),
		newTestRecord(1, "01/01/2015", 200),
		newTestRecord(2, "02/01/2015", 300),
	))

	deleted, err := repo.DeleteRecords(ctx, 1, 2, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted, "missing positions are not counted")

	count, err := repo.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = repo.GetRecord(ctx, 1)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	// Iteration skips the gaps.
	var positions []int
	err = repo.ForEachRecord(ctx, 1, func(batch []*core.Record) error {
		for _, r := range batch {
			positions = append(positions, r.Position)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, positions)

	t.Run("negative position", func(t *testing.T) {
		_, err := repo.DeleteRecords(ctx, -1)
		assert.True(t, errors.Is(err, storage.ErrInvalidQuery))
	})

	t.Run("nothing to delete", func(t *testing.T) {
		deleted, err := repo.DeleteRecords(ctx)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}
