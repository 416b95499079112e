package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplement(t *testing.T) {
	table := ordersTable()
	filtered := Filter(table, FilterSpec{Category: "Pizza Place"}, testColumns)

	complement := Complement(table, filtered)

	require.Equal(t, 2, complement.Len())
	assert.Equal(t, "Sushi Bar", complement.Value(0, 1))
	assert.Equal(t, "Taco Stand", complement.Value(1, 1))
}

func TestComplement_EmptySubset(t *testing.T) {
	table := ordersTable()
	filtered := Filter(table, FilterSpec{Category: "No Such Restaurant"}, testColumns)

	complement := Complement(table, filtered)

	assert.Equal(t, table.Rows(), complement.Rows())
}

func TestComplement_ReconstructsOriginal(t *testing.T) {
	// The filtered subset and its complement partition the original rows
	// with nothing lost and nothing duplicated.
	table := ordersTable()
	filtered := Filter(table, FilterSpec{Date: "2024-01-05"}, testColumns)
	complement := Complement(table, filtered)

	assert.Equal(t, table.Len(), filtered.Count()+complement.Len())

	seen := make(map[int]bool)
	for _, row := range filtered.SourceRows {
		require.False(t, seen[row])
		seen[row] = true
	}
	assert.Len(t, seen, filtered.Count())
}

func TestComplement_DistinguishesIdenticalRows(t *testing.T) {
	// Two textually identical rows are still distinct by position.
	table := NewTable([]string{"Restaurant Name"}, [][]string{
		{"Pizza Place"},
		{"Pizza Place"},
	})
	filtered := &FilterResult{Table: table.Select([]int{0}), SourceRows: []int{0}}

	complement := Complement(table, filtered)

	require.Equal(t, 1, complement.Len())
	assert.Equal(t, "Pizza Place", complement.Value(0, 0))
}
