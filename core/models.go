package core

import (
	"encoding/binary"
	"hash"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from raw content using BLAKE2b hashing.
// Identical content produces identical IDs.
func IDFromContent(content []byte) ID {
	h := NewContentHash()
	h.Write(content)
	return IDFromHash(h)
}

// NewContentHash returns the hash behind IDFromContent, for content that is
// streamed rather than held in memory.
func NewContentHash() hash.Hash {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	return h
}

// IDFromHash finalizes a hash returned by NewContentHash.
func IDFromHash(h hash.Hash) ID {
	return ID(binary.LittleEndian.Uint64(h.Sum(nil)))
}

// Record is a single row of the trade dataset.
// Only Date takes part in searching; the remaining fields are carried as payload.
type Record struct {
	Position      int    // 0-based ingestion index, assigned once at load time
	Direction     string // "Exports", "Imports" or "Reimports"
	Year          int
	Date          string // dd/mm/yyyy as found in the source
	Weekday       string
	Country       string
	Commodity     string
	TransportMode string
	Measure       string
	Value         int64
	Cumulative    int64
}

// Match is one row of a search answer.
type Match struct {
	Position   int
	Date       string
	Value      int64
	Cumulative int64
}

// MatchFromRecord projects a record onto the fields a search reports.
func MatchFromRecord(r *Record) Match {
	return Match{
		Position:   r.Position,
		Date:       r.Date,
		Value:      r.Value,
		Cumulative: r.Cumulative,
	}
}

// SearchResult is the answer to a single date query.
type SearchResult struct {
	Date    string  // target as supplied by the caller
	Key     DateKey // normalized target
	Method  string  // algorithm that produced the result
	Matches []Match // ordered by original position
	Probes  int     // interpolation probes issued
	Elapsed time.Duration
}

// Found reports whether the target date exists in the index.
func (r *SearchResult) Found() bool {
	return r != nil && len(r.Matches) > 0
}

// Manifest describes the dataset currently held by a record store.
type Manifest struct {
	Source      string // where the records were loaded from
	Fingerprint ID     // IDFromContent of the raw source bytes
	Records     int
	LoadedAt    time.Time
}
