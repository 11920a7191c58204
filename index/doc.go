// Package index builds the date-ordered index that searches run against.
//
// A SortedIndex is built once from the full record set by Build and is
// read-only afterwards. Entries are ordered ascending by date key; the
// relative order of entries sharing a key is undefined. Every entry keeps
// the record's original ingestion position so results can be presented in
// load order.
//
// Because nothing mutates a SortedIndex after Build returns, any number of
// goroutines may search the same index concurrently.
package index
