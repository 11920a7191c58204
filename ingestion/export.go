package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/poiesic/tradesearch/core"
)

// FormatRecord renders a record as a CSV row in Header order. It is the
// inverse of ParseRecord apart from the position, which a file does not carry.
func FormatRecord(r *core.Record) []string {
	fields := make([]string, numColumns)
	fields[colDirection] = r.Direction
	fields[colYear] = strconv.Itoa(r.Year)
	fields[colDate] = r.Date
	fields[colWeekday] = r.Weekday
	fields[colCountry] = r.Country
	fields[colCommodity] = r.Commodity
	fields[colTransportMode] = r.TransportMode
	fields[colMeasure] = r.Measure
	fields[colValue] = strconv.FormatInt(r.Value, 10)
	fields[colCumulative] = strconv.FormatInt(r.Cumulative, 10)
	return fields
}

// WriteCSV writes the header and records to w in the given order. The output
// can be loaded again with Pipeline.Ingest.
func WriteCSV(w io.Writer, records []core.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := cw.Write(FormatRecord(&records[i])); err != nil {
			return fmt.Errorf("write record %d: %w", records[i].Position, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
