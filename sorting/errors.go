package sorting

import "errors"

var (
	// ErrUnknownAlgorithm is returned when a sort algorithm name is not recognized.
	ErrUnknownAlgorithm = errors.New("unknown sort algorithm")

	// ErrUnknownField is returned when a sort field name is not recognized.
	ErrUnknownField = errors.New("unknown sort field")

	// ErrRangeTooWide is returned by counting sort when the key span is too large
	// for a count table.
	ErrRangeTooWide = errors.New("key range too wide for counting sort")
)
