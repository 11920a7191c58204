package storage

import (
	"context"

	"github.com/poiesic/tradesearch/core"
)

// RecordRepository provides operations for managing trade records.
// Records are keyed by their ingestion position, which is unique within a
// loaded dataset. Implementations must be thread-safe.
type RecordRepository interface {
	// AddRecords stores one or more records in a single transaction.
	// A record whose position already exists is overwritten.
	// Returns an error wrapping core.ErrInvalidRecord if any record fails validation.
	AddRecords(ctx context.Context, records ...*core.Record) error

	// GetRecord retrieves a single record by position.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, position int) (*core.Record, error)

	// GetRecords retrieves multiple records by position.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, positions ...int) ([]*core.Record, error)

	// CountRecords returns the number of stored records.
	CountRecords(ctx context.Context) (int, error)

	// ForEachRecord calls fn with successive batches of at most batchSize
	// records in ascending position order. The context is checked between
	// batches; an error from fn stops the iteration and is returned.
	ForEachRecord(ctx context.Context, batchSize int, fn func(batch []*core.Record) error) error

	// DeleteRecords removes the records at positions in a single transaction
	// and returns how many existed. Missing positions are skipped.
	DeleteRecords(ctx context.Context, positions ...int) (int, error)

	// DeleteAllRecords removes every stored record.
	DeleteAllRecords(ctx context.Context) error

	// Close releases repository resources. It does not close the backend.
	Close() error
}

// ManifestRepository persists the description of the loaded dataset.
type ManifestRepository interface {
	// SaveManifest replaces the stored manifest.
	SaveManifest(ctx context.Context, manifest *core.Manifest) error

	// LoadManifest returns the stored manifest.
	// Returns nil, nil if no dataset has been loaded.
	LoadManifest(ctx context.Context) (*core.Manifest, error)

	// DeleteManifest removes the stored manifest. Deleting an absent
	// manifest is not an error.
	DeleteManifest(ctx context.Context) error
}
