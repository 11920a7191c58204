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

import "errors"

var (
	// ErrNoDataset indicates the database holds no loaded dataset.
	ErrNoDataset = errors.New("no dataset loaded")

	// ErrInconsistentDataset indicates the stored records disagree with the manifest,
	// typically after an interrupted load.
	ErrInconsistentDataset = errors.New("stored records do not match the manifest")

	// ErrDateNotFound indicates no record carries the requested date.
	ErrDateNotFound = errors.New("date not found")

	// ErrValueNotFound indicates no record on the requested date carries the value.
	ErrValueNotFound = errors.New("value not found")
)
