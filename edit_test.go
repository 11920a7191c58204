package tradesearch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/tradesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenario(t *testing.T) (*Database, context.Context) {
	t.Helper()
	db, err := NewMemoryDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()
	_, err = pipeline.Ingest(ctx, "scenario.csv", strings.NewReader(scenarioCSV))
	require.NoError(t, err)
	return db, ctx
}

func values(matches []core.Match) []int64 {
	out := make([]int64, len(matches))
	for i, m := range matches {
		out[i] = m.Value
	}
	return out
}

func TestFindDate(t *testing.T) {
	db, ctx := loadScenario(t)

	matches, err := db.FindDate(ctx, "01/01/2015")
	require.NoError(t, err)
	assert.Equal(t, []int64{104000000, 42}, values(matches))

	matches, err = db.FindDate(ctx, "02/01/2015")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = db.FindDate(ctx, "2015")
	assert.True(t, errors.Is(err, core.ErrInvalidDate))
}

func TestModifyValue(t *testing.T) {
	db, ctx := loadScenario(t)

	record, err := db.ModifyValue(ctx, "01/01/2015", 42, 43)
	require.NoError(t, err)
	assert.Equal(t, 1, record.Position)
	assert.Equal(t, int64(43), record.Value)
	assert.Equal(t, int64(104000042), record.Cumulative, "cumulative is left as loaded")

	// A fresh index sees the change.
	matches, err := db.FindDate(ctx, "01/01/2015")
	require.NoError(t, err)
	assert.Equal(t, []int64{104000000, 43}, values(matches))

	manifest, err := db.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, manifest.Records)

	t.Run("unknown date", func(t *testing.T) {
		_, err := db.ModifyValue(ctx, "02/01/2015", 1, 2)
		assert.True(t, errors.Is(err, ErrDateNotFound))
	})

	t.Run("unknown value", func(t *testing.T) {
		_, err := db.ModifyValue(ctx, "01/01/2015", 42, 44)
		assert.True(t, errors.Is(err, ErrValueNotFound))
	})
}

func TestModifyValue_FirstMatchInLoadOrder(t *testing.T) {
	db, err := NewMemoryDatabase()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()
	csv := "Direction,Year,Date,Weekday,Country,Commodity,Transport_Mode,Measure,Value,Cumulative\n" +
		"Exports,2015,01/01/2015,Thursday,All,All,All,$,7,7\n" +
		"Exports,2015,01/01/2015,Thursday,All,All,All,$,7,14\n"
	_, err = pipeline.Ingest(ctx, "dupes.csv", strings.NewReader(csv))
	require.NoError(t, err)

	record, err := db.ModifyValue(ctx, "01/01/2015", 7, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Position)

	matches, err := db.FindDate(ctx, "01/01/2015")
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 7}, values(matches))
}

func TestDeleteDate(t *testing.T) {
	db, ctx := loadScenario(t)

	deleted, err := db.DeleteDate(ctx, "01/01/2015")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	matches, err := db.FindDate(ctx, "01/01/2015")
	require.NoError(t, err)
	assert.Empty(t, matches)

	manifest, err := db.Manifest(ctx)
	require.NoError(t, err, "manifest count follows deletions")
	assert.Equal(t, 2, manifest.Records)

	idx, err := db.BuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())

	_, err = db.DeleteDate(ctx, "01/01/2015")
	assert.True(t, errors.Is(err, ErrDateNotFound))
}

func TestDeleteValue(t *testing.T) {
	db, ctx := loadScenario(t)

	match, err := db.DeleteValue(ctx, "01/01/2015", 42)
	require.NoError(t, err)
	assert.Equal(t, 1, match.Position)

	matches, err := db.FindDate(ctx, "01/01/2015")
	require.NoError(t, err)
	assert.Equal(t, []int64{104000000}, values(matches))

	manifest, err := db.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, manifest.Records)

	_, err = db.DeleteValue(ctx, "01/01/2015", 42)
	assert.True(t, errors.Is(err, ErrValueNotFound))
}
