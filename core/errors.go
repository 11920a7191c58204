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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDate indicates a date string cannot be decomposed into day, month and year.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrNegativePosition indicates a Record carries a negative ingestion position.
	ErrNegativePosition = errors.New("position cannot be negative")

	// ErrEmptyDate indicates the Date field is empty.
	ErrEmptyDate = errors.New("date cannot be empty")

	// ErrInvalidManifest indicates a Manifest failed validation.
	ErrInvalidManifest = errors.New("invalid manifest")
)
