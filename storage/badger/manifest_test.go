package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/tradesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest(t *testing.T) {
	records, manifests, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		records.Close()
		backend.Close()
	}()
	ctx := context.Background()

	got, err := manifests.LoadManifest(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "no manifest before first load")

	m := &core.Manifest{
		Source:      "effects.csv",
		Fingerprint: core.IDFromContent([]byte("rows")),
		Records:     4,
	}
	require.NoError(t, manifests.SaveManifest(ctx, m))
	assert.False(t, m.LoadedAt.IsZero(), "LoadedAt is stamped on save")

	got, err = manifests.LoadManifest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "effects.csv", got.Source)
	assert.Equal(t, m.Fingerprint, got.Fingerprint)
	assert.Equal(t, 4, got.Records)
	assert.WithinDuration(t, m.LoadedAt, got.LoadedAt, time.Millisecond)

	// Saving again replaces.
	m2 := &core.Manifest{Source: "other.csv", Records: 9, LoadedAt: time.Unix(1700000000, 0).UTC()}
	require.NoError(t, manifests.SaveManifest(ctx, m2))
	got, err = manifests.LoadManifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "other.csv", got.Source)
	assert.True(t, m2.LoadedAt.Equal(got.LoadedAt))
}

func TestSaveManifest_Invalid(t *testing.T) {
	_, manifests, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	err = manifests.SaveManifest(context.Background(), &core.Manifest{Records: -1})
	assert.True(t, errors.Is(err, core.ErrInvalidManifest))

	err = manifests.SaveManifest(context.Background(), nil)
	assert.True(t, errors.Is(err, core.ErrInvalidManifest))
}

func TestDeleteManifest(t *testing.T) {
	_, manifests, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	// Deleting an absent manifest is fine.
	require.NoError(t, manifests.DeleteManifest(ctx))

	require.NoError(t, manifests.SaveManifest(ctx, &core.Manifest{Source: "effects.csv", Records: 4}))
	require.NoError(t, manifests.DeleteManifest(ctx))

	got, err := manifests.LoadManifest(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
