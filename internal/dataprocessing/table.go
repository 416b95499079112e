package dataprocessing

// Table is an ordered, in-memory row/column dataset loaded from a delimited
// text file. Every row shares the header set of the load that produced it.
type Table struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

// NewTable builds a table from a header row and data rows. Rows shorter than
// the header are kept as-is; Value treats the missing cells as empty.
func NewTable(headers []string, rows [][]string) *Table {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	return &Table{headers: headers, index: index, rows: rows}
}

// Headers returns the column names in file order.
func (t *Table) Headers() []string {
	return t.headers
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return len(t.rows) == 0
}

// Rows returns the underlying data rows. Callers must not mutate them.
func (t *Table) Rows() [][]string {
	return t.rows
}

// Row returns the data row at position i.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// Column returns the position of the named column. The lookup is exact and
// case-sensitive, matching how headers appear in the file.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Value returns the cell at (row, col), or the empty string when the row is
// shorter than the header set.
func (t *Table) Value(row, col int) string {
	r := t.rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Head returns a derived table with at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n >= len(t.rows) {
		return t
	}
	return NewTable(t.headers, t.rows[:n])
}

// Select returns a derived table containing the rows at the given positions,
// in the given order.
func (t *Table) Select(positions []int) *Table {
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, t.rows[p])
	}
	return NewTable(t.headers, rows)
}
