package badger

import (
	"github.com/poiesic/tradesearch/storage"
)

// Key prefixes for different data types
const (
	recordPrefix = "rec:"
	manifestKey  = "manifest"
)

// makeRecordKey generates a key for a record by position.
// Format: prefix + 8 byte big-endian position, so key order is position order.
func makeRecordKey(position int) []byte {
	buf := make([]byte, 0, len(recordPrefix)+8)
	buf = append(buf, recordPrefix...)
	return append(buf, storage.MarshalPosition(position)...)
}

// positionFromKey extracts the position from a record key.
func positionFromKey(key []byte) (int, error) {
	return storage.UnmarshalPosition(key[len(recordPrefix):])
}
