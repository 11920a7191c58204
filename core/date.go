package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateKey is a totally ordered encoding of a calendar date: seconds since the
// Unix epoch at UTC midnight.
type DateKey int64

// ParseDate normalizes a day/month/year string such as "01/01/2015" into a DateKey.
//
// The string must split on '/' into exactly three integer fields. Calendar
// correctness is not checked: out-of-range days and months roll over the way
// time.Date normalizes them, so 31/04/2020 becomes 01/05/2020.
func ParseDate(s string) (DateKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q: expected day/month/year", ErrInvalidDate, s)
	}

	var fields [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrInvalidDate, s, err)
		}
		fields[i] = v
	}

	day, month, year := fields[0], fields[1], fields[2]
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return DateKey(t.Unix()), nil
}

// MustParseDate is like ParseDate but panics on error.
// Intended for tests and constant tables.
func MustParseDate(s string) DateKey {
	k, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Time returns the UTC midnight the key encodes.
func (k DateKey) Time() time.Time {
	return time.Unix(int64(k), 0).UTC()
}

// String formats the key as dd/mm/yyyy.
func (k DateKey) String() string {
	return k.Time().Format("02/01/2006")
}
