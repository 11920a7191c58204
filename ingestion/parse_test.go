package ingestion

import (
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/tradesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	fields := []string{"Reimports", "2019", " 1/2/2019 ", "Friday", "Australia", "Fish", "Air", "Tonnes", " -12 ", "9000000000"}

	record, err := ParseRecord(9, fields)
	require.NoError(t, err)
	assert.Equal(t, &core.Record{
		Position:      9,
		Direction:     "Reimports",
		Year:          2019,
		Date:          "1/2/2019",
		Weekday:       "Friday",
		Country:       "Australia",
		Commodity:     "Fish",
		TransportMode: "Air",
		Measure:       "Tonnes",
		Value:         -12,
		Cumulative:    9000000000,
	}, record)
}

func TestParseRecord_Errors(t *testing.T) {
	valid := func() []string {
		return []string{"Exports", "2015", "01/01/2015", "Thursday", "All", "All", "All", "$", "1", "2"}
	}

	tests := []struct {
		name   string
		mutate func([]string) []string
		want   string
	}{
		{"too few fields", func(f []string) []string { return f[:9] }, "want 10 fields, got 9"},
		{"too many fields", func(f []string) []string { return append(f, "x") }, "got 11"},
		{"bad year", func(f []string) []string { f[1] = "MMXV"; return f }, "year"},
		{"bad value", func(f []string) []string { f[8] = "1.5"; return f }, "value"},
		{"bad cumulative", func(f []string) []string { f[9] = ""; return f }, "cumulative"},
		{"bad date", func(f []string) []string { f[2] = "01-01-2015"; return f }, "invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(3, tt.mutate(valid()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRow))
			assert.Contains(t, err.Error(), "row 3")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckHeader(t *testing.T) {
	assert.NoError(t, checkHeader(Header))

	relaxed := []string{"\ufeffdirection", " YEAR", "date", "weekday", "country", "commodity", "transport_mode", "measure", "value", "cumulative "}
	assert.NoError(t, checkHeader(relaxed))

	swapped := append([]string{}, Header...)
	swapped[8], swapped[9] = swapped[9], swapped[8]
	err := checkHeader(swapped)
	assert.True(t, errors.Is(err, ErrMissingHeader))
	assert.True(t, strings.Contains(err.Error(), "column 9"))
}
