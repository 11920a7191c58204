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

// Package storage provides the storage abstraction layer for tradesearch.
//
// This package defines repository interfaces that decouple the persisted
// record set from the search code. The search path never reads storage
// directly: records are streamed out once, in position order, to build an
// in-memory index.
//
// # Architecture
//
//   - RecordRepository: trade records keyed by ingestion position
//   - ManifestRepository: source, fingerprint and size of the loaded dataset
//
// The BadgerDB implementation lives in the badger subpackage.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	records := badger.NewRecordRepository(backend)
//	n, err := records.CountRecords(ctx)
//
// Use in tests with in-memory storage:
//
//	records, manifests, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Serialization
//
// Values are encoded with the MUS serializers in package core. Record keys
// use MarshalPosition so that key order is position order.
package storage
