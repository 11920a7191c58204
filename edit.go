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

	"github.com/poiesic/tradesearch/core"
	"github.com/poiesic/tradesearch/search"
)

// FindDate returns the records dated date in load order. Each call builds a
// fresh index, so it always reflects earlier modifications and deletions.
func (db *Database) FindDate(ctx context.Context, date string) ([]core.Match, error) {
	key, err := core.ParseDate(date)
	if err != nil {
		return nil, err
	}
	idx, err := db.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	return search.Assemble(idx, search.ImprovedInterpolationStep(idx, key)), nil
}

// ModifyValue replaces oldValue with newValue on the first record dated date
// that carries it, in load order, and returns the updated record. Cumulative
// is left as loaded.
func (db *Database) ModifyValue(ctx context.Context, date string, oldValue, newValue int64) (*core.Record, error) {
	match, err := db.findValue(ctx, date, oldValue)
	if err != nil {
		return nil, err
	}

	record, err := db.records.GetRecord(ctx, match.Position)
	if err != nil {
		return nil, err
	}
	record.Value = newValue
	if err := db.records.AddRecords(ctx, record); err != nil {
		return nil, fmt.Errorf("store record %d: %w", record.Position, err)
	}

	db.logger.Info("value modified", "date", date, "position", record.Position, "old", oldValue, "new", newValue)
	return record, nil
}

// DeleteDate removes every record dated date and returns how many were removed.
func (db *Database) DeleteDate(ctx context.Context, date string) (int, error) {
	matches, err := db.FindDate(ctx, date)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrDateNotFound, date)
	}

	positions := make([]int, len(matches))
	for i, m := range matches {
		positions[i] = m.Position
	}
	return db.deleteRecords(ctx, date, positions)
}

// DeleteValue removes the first record dated date that carries value, in load
// order, and returns it.
func (db *Database) DeleteValue(ctx context.Context, date string, value int64) (core.Match, error) {
	match, err := db.findValue(ctx, date, value)
	if err != nil {
		return core.Match{}, err
	}
	if _, err := db.deleteRecords(ctx, date, []int{match.Position}); err != nil {
		return core.Match{}, err
	}
	return match, nil
}

func (db *Database) findValue(ctx context.Context, date string, value int64) (core.Match, error) {
	matches, err := db.FindDate(ctx, date)
	if err != nil {
		return core.Match{}, err
	}
	if len(matches) == 0 {
		return core.Match{}, fmt.Errorf("%w: %s", ErrDateNotFound, date)
	}
	for _, m := range matches {
		if m.Value == value {
			return m, nil
		}
	}
	return core.Match{}, fmt.Errorf("%w: %d on %s", ErrValueNotFound, value, date)
}

// deleteRecords removes positions and lowers the manifest's record count to
// match.
func (db *Database) deleteRecords(ctx context.Context, date string, positions []int) (int, error) {
	deleted, err := db.records.DeleteRecords(ctx, positions...)
	if err != nil {
		return 0, err
	}

	manifest, err := db.manifests.LoadManifest(ctx)
	if err != nil {
		return deleted, err
	}
	if manifest != nil {
		manifest.Records = max(manifest.Records-deleted, 0)
		if err := db.manifests.SaveManifest(ctx, manifest); err != nil {
			return deleted, fmt.Errorf("update manifest: %w", err)
		}
	}

	db.logger.Info("records deleted", "date", date, "count", deleted)
	return deleted, nil
}
