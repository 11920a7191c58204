package index

import "errors"

var (
	// ErrUnnormalizedDate is returned by Build when a record's date cannot be normalized.
	ErrUnnormalizedDate = errors.New("record date cannot be normalized")
)
