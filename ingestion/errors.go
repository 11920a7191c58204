package ingestion

import "errors"

var (
	// ErrRecordRepositoryRequired is returned when a record repository is not provided.
	ErrRecordRepositoryRequired = errors.New("record repository required")

	// ErrManifestRepositoryRequired is returned when a manifest repository is not provided.
	ErrManifestRepositoryRequired = errors.New("manifest repository required")

	// ErrMissingHeader is returned when the input has no header row.
	ErrMissingHeader = errors.New("missing header row")

	// ErrMalformedRow is returned when a data row cannot be turned into a record.
	ErrMalformedRow = errors.New("malformed row")
)
