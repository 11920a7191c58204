// Package sorting orders a record set by value or by date for listing and
// export.
//
// Four algorithms are available: merge, quick, heap and counting. They all
// produce the same order, ascending by key with ties broken by load position,
// so the choice only changes how the work is done. Counting sort needs the
// key span to fit in a count table and fails with ErrRangeTooWide otherwise.
package sorting
