package models

// Table is an ordered tabular dataset read from one spreadsheet sheet.
// Columns holds the header in original order; every row is aligned with it.
// A Table is treated as immutable for the duration of a reconciliation run.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}

	return -1
}

// Value returns the cell at (row, col), or "" when the row is short.
func (t *Table) Value(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}

	cells := t.Rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}

	return cells[col]
}

// DefaultKeyColumn is the column holding raw parcel identifiers when the
// caller does not pick one explicitly.
const DefaultKeyColumn = "Parcel_Number"

// DetectKeyColumn returns the index of the default parcel-number column,
// falling back to the first column.
func (t *Table) DetectKeyColumn() int {
	if i := t.ColumnIndex(DefaultKeyColumn); i >= 0 {
		return i
	}

	return 0
}
