// Package ingestion loads the trade dataset from CSV into storage.
//
// A load reads the header row, then turns every following row into a
// core.Record whose Position is its 0-based row index. Rows are parsed and
// stored concurrently on a worker pool; positions, not completion order,
// determine the stored order.
//
// A load replaces whatever dataset was stored before and finishes by saving a
// core.Manifest carrying the source name, a fingerprint of the raw bytes and
// the row count. Loading is all-or-nothing: the first malformed row aborts it.
package ingestion
