package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/storage"
)

// RecordRepository implements storage.RecordRepository for BadgerDB.
type RecordRepository struct {
	backend *Backend
}

var _ storage.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(backend *Backend) *RecordRepository {
	return &RecordRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns the database handle.
func (r *RecordRepository) Close() error {
	return nil
}

// AddRecords stores records keyed by position in a single transaction.
func (r *RecordRepository) AddRecords(ctx context.Context, records ...*core.Record) error {
	for _, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := tx.Set(makeRecordKey(record.Position), storage.MarshalRecord(record)); err != nil {
				return fmt.Errorf("store record %d: %w", record.Position, err)
			}
		}
		return tx.Commit()
	}, true)
}

// GetRecord retrieves a single record by position.
func (r *RecordRepository) GetRecord(ctx context.Context, position int) (*core.Record, error) {
	if position < 0 {
		return nil, fmt.Errorf("%w: negative position %d", storage.ErrInvalidQuery, position)
	}

	var record *core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = readRecord(tx, makeRecordKey(position))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// GetRecords retrieves the records that exist among positions, in the order
// requested.
func (r *RecordRepository) GetRecords(ctx context.Context, positions ...int) ([]*core.Record, error) {
	records := make([]*core.Record, 0, len(positions))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, position := range positions {
			if position < 0 {
				continue
			}
			record, err := readRecord(tx, makeRecordKey(position))
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CountRecords counts record keys without loading values.
func (r *RecordRepository) CountRecords(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(recordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// ForEachRecord streams records in position order. Each batch is read in its
// own transaction so that fn may run for a long time without pinning a
// snapshot.
func (r *RecordRepository) ForEachRecord(ctx context.Context, batchSize int, fn func(batch []*core.Record) error) error {
	if batchSize < 1 {
		return fmt.Errorf("%w: batch size %d", storage.ErrInvalidQuery, batchSize)
	}

	seek := makeRecordKey(0)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := make([]*core.Record, 0, batchSize)
		var last int
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(recordPrefix)
			opts.PrefetchSize = min(batchSize, 100)
			iter := tx.NewIterator(opts)
			defer iter.Close()

			for iter.Seek(seek); iter.Valid() && len(batch) < batchSize; iter.Next() {
				item := iter.Item()
				position, err := positionFromKey(item.Key())
				if err != nil {
					return err
				}
				var record *core.Record
				err = item.Value(func(val []byte) error {
					var err error
					record, err = storage.UnmarshalRecord(val)
					return err
				})
				if err != nil {
					return err
				}
				batch = append(batch, record)
				last = position
			}
			return nil
		}, false)
		if err != nil {
			return err
		}

		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		seek = makeRecordKey(last + 1)
	}
}

// DeleteRecords removes the records at positions in one transaction.
func (r *RecordRepository) DeleteRecords(ctx context.Context, positions ...int) (int, error) {
	for _, position := range positions {
		if position < 0 {
			return 0, fmt.Errorf("%w: negative position %d", storage.ErrInvalidQuery, position)
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, position := range positions {
			key := makeRecordKey(position)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return fmt.Errorf("delete record %d: %w", position, err)
			}
			deleted++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// DeleteAllRecords drops the whole record keyspace.
func (r *RecordRepository) DeleteAllRecords(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.backend.DropPrefix([]byte(recordPrefix))
}

// readRecord reads and unmarshals a record within a transaction.
// Returns nil, nil if the key does not exist.
func readRecord(tx *badger.Txn, key []byte) (*core.Record, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.Record
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalRecord(val)
		return err
	})
	return record, err
}
