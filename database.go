// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tradesearch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/index"
	"github.com/poiesic/tradesearch/ingestion"
	"github.com/poiesic/tradesearch/search"
	"github.com/poiesic/tradesearch/storage"
	"github.com/poiesic/tradesearch/storage/badger"
)

const indexBatchSize = 4096

// Database ties the record store to the ingestion pipeline and searcher.
type Database struct {
	backend   *badger.Backend
	records   storage.RecordRepository
	manifests storage.ManifestRepository
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger handed to the backend, pipelines and searchers.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens or creates a database in the directory at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	return openDatabase(filePath, false, opts)
}

// NewMemoryDatabase creates a database that lives only as long as the process.
func NewMemoryDatabase(opts ...DatabaseOption) (*Database, error) {
	return openDatabase("", true, opts)
}

func openDatabase(filePath string, inMemory bool, opts []DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, inMemory, badger.WithBackendLogger(options.logger))
	if err != nil {
		return nil, err
	}

	return &Database{
		backend:   backend,
		records:   badger.NewRecordRepository(backend),
		manifests: badger.NewManifestRepository(backend),
		logger:    options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.records.Close(); err != nil {
		db.logger.Error("error closing record repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) RecordRepository() storage.RecordRepository {
	return db.records
}

func (db *Database) ManifestRepository() storage.ManifestRepository {
	return db.manifests
}

// NewIngestionPipeline returns a pipeline writing into this database.
// The caller must Release it.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewPipeline(db.records, db.manifests, opts...)
}

// Manifest returns the manifest of the loaded dataset after checking that the
// stored record count agrees with it. It returns ErrNoDataset when nothing is
// loaded and ErrInconsistentDataset when the counts differ.
func (db *Database) Manifest(ctx context.Context) (*core.Manifest, error) {
	manifest, err := db.manifests.LoadManifest(ctx)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, ErrNoDataset
	}

	count, err := db.records.CountRecords(ctx)
	if err != nil {
		return nil, err
	}
	if count != manifest.Records {
		return nil, fmt.Errorf("%w: manifest lists %d, %d stored", ErrInconsistentDataset, manifest.Records, count)
	}
	return manifest, nil
}

// Records returns every stored record in load order.
func (db *Database) Records(ctx context.Context) ([]core.Record, error) {
	count, err := db.records.CountRecords(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]core.Record, 0, count)
	err = db.records.ForEachRecord(ctx, indexBatchSize, func(batch []*core.Record) error {
		for _, r := range batch {
			records = append(records, *r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}

// BuildIndex streams every stored record into a new sorted index.
func (db *Database) BuildIndex(ctx context.Context) (*index.SortedIndex, error) {
	records, err := db.Records(ctx)
	if err != nil {
		return nil, err
	}

	idx, err := index.Build(records)
	if err != nil {
		return nil, err
	}
	db.logger.Debug("index built", "records", idx.Len())
	return idx, nil
}

// NewSearcher builds an index over the stored records and returns a searcher
// for it. Records added afterwards are not visible to the searcher.
func (db *Database) NewSearcher(ctx context.Context, opts ...search.Option) (*search.Searcher, error) {
	idx, err := db.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]search.Option{search.WithLogger(db.logger)}, opts...)
	return search.NewSearcher(idx, opts...)
}
