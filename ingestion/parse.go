package ingestion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/tradesearch/core"
)

// Header is the expected column layout of the source CSV.
var Header = []string{
	"Direction", "Year", "Date", "Weekday", "Country",
	"Commodity", "Transport_Mode", "Measure", "Value", "Cumulative",
}

// Column indexes into a row.
const (
	colDirection = iota
	colYear
	colDate
	colWeekday
	colCountry
	colCommodity
	colTransportMode
	colMeasure
	colValue
	colCumulative
	numColumns
)

// ParseRecord builds the record at position from one CSV row. Text columns
// are kept verbatim; Year, Value and Cumulative must be integers and Date must
// decompose into day/month/year.
func ParseRecord(position int, fields []string) (*core.Record, error) {
	if len(fields) != numColumns {
		return nil, fmt.Errorf("%w: row %d: want %d fields, got %d",
			ErrMalformedRow, position, numColumns, len(fields))
	}

	year, err := strconv.Atoi(strings.TrimSpace(fields[colYear]))
	if err != nil {
		return nil, fmt.Errorf("%w: row %d: year %q", ErrMalformedRow, position, fields[colYear])
	}
	value, err := parseAmount(fields[colValue])
	if err != nil {
		return nil, fmt.Errorf("%w: row %d: value %q", ErrMalformedRow, position, fields[colValue])
	}
	cumulative, err := parseAmount(fields[colCumulative])
	if err != nil {
		return nil, fmt.Errorf("%w: row %d: cumulative %q", ErrMalformedRow, position, fields[colCumulative])
	}

	record := &core.Record{
		Position:      position,
		Direction:     fields[colDirection],
		Year:          year,
		Date:          strings.TrimSpace(fields[colDate]),
		Weekday:       fields[colWeekday],
		Country:       fields[colCountry],
		Commodity:     fields[colCommodity],
		TransportMode: fields[colTransportMode],
		Measure:       fields[colMeasure],
		Value:         value,
		Cumulative:    cumulative,
	}
	if _, err := core.ParseDate(record.Date); err != nil {
		return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedRow, position, err)
	}
	return record, nil
}

func parseAmount(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// checkHeader matches a header row against Header, ignoring case and
// surrounding space.
func checkHeader(fields []string) error {
	if len(fields) != numColumns {
		return fmt.Errorf("%w: want %d columns, got %d", ErrMissingHeader, numColumns, len(fields))
	}
	for i, name := range Header {
		got := strings.TrimSpace(strings.TrimPrefix(fields[i], "\ufeff"))
		if !strings.EqualFold(got, name) {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrMissingHeader, i+1, fields[i], name)
		}
	}
	return nil
}
