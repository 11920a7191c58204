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


package core

import (
	"fmt"
)

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - Position must not be negative
//   - Date must not be empty and must normalize with ParseDate
//
// NOT validated (opaque payload):
//   - Direction, Country, Commodity, TransportMode, Measure
//   - Value and Cumulative (negative values occur in the source data)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Position < 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidRecord, ErrNegativePosition, record.Position)
	}

	if record.Date == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyDate)
	}

	if _, err := ParseDate(record.Date); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return nil
}

// ValidateManifest validates a Manifest.
func ValidateManifest(manifest *Manifest) error {
	if manifest == nil {
		return fmt.Errorf("%w: manifest is nil", ErrInvalidManifest)
	}

	if manifest.Records < 0 {
		return fmt.Errorf("%w: negative record count %d", ErrInvalidManifest, manifest.Records)
	}

	return nil
}
