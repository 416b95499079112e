package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDates(t *testing.T) {
	table := NewTable([]string{"Order Date"}, [][]string{
		{"2024-01-05"},
		{"01/06/2024"},
		{"2024-01-07 15:04:05"},
		{"not-a-date"},
		{""},
	})

	dates, err := NormalizeDates(table, "Order Date")
	require.NoError(t, err)
	require.Len(t, dates, table.Len())

	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), dates[1])
	// Time-of-day is discarded.
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), dates[2])
	assert.True(t, dates[3].IsZero())
	assert.True(t, dates[4].IsZero())
}

func TestNormalizeDates_MissingColumn(t *testing.T) {
	table := NewTable([]string{"Total"}, [][]string{{"10"}})

	_, err := NormalizeDates(table, "Order Date")

	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Order Date", missing.Column)
}

func TestParseDate_Whitespace(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), parseDate("  2024-01-05  "))
	assert.True(t, parseDate("   ").IsZero())
}
