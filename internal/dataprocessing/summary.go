package dataprocessing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrNoValidDates reports that a summary found no parseable dates. A valid
// operation with zero rows, not a failure.
var ErrNoValidDates = errors.New("no valid dates")

// DateCount is one summary bucket: a calendar date and its row count.
type DateCount struct {
	Date  time.Time
	Count int
}

// SummaryReport is a date-wise row count aggregation, ascending by date.
type SummaryReport struct {
	Buckets []DateCount
	// Excluded counts rows whose date column held no parseable date.
	Excluded int
}

// Total returns the number of rows across all buckets.
func (r *SummaryReport) Total() int {
	total := 0
	for _, b := range r.Buckets {
		total += b.Count
	}
	return total
}

// String renders the report as a plain-text table for the email body.
func (r *SummaryReport) String() string {
	var b strings.Builder
	b.WriteString("Date        Record Count\n")
	for _, bucket := range r.Buckets {
		fmt.Fprintf(&b, "%s  %11d\n", bucket.Date.Format("2006-01-02"), bucket.Count)
	}
	return b.String()
}

// Summarize groups the table's rows by the calendar date in the named column
// and counts rows per date. Rows without a parseable date are dropped from
// the aggregation (unlike filtering, which retains them). Returns
// *MissingColumnError when the column is absent and ErrNoValidDates when no
// row has a parseable date.
func Summarize(t *Table, dateColumn string) (*SummaryReport, error) {
	dates, err := NormalizeDates(t, dateColumn)
	if err != nil {
		return nil, err
	}

	counts := make(map[time.Time]int)
	excluded := 0
	for _, d := range dates {
		if d.IsZero() {
			excluded++
			continue
		}
		counts[d]++
	}

	if len(counts) == 0 {
		return nil, ErrNoValidDates
	}

	buckets := make([]DateCount, 0, len(counts))
	for d, n := range counts {
		buckets = append(buckets, DateCount{Date: d, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})

	return &SummaryReport{Buckets: buckets, Excluded: excluded}, nil
}
