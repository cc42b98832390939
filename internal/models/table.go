package models

// Table is the whole stop file held in memory. Columns keeps the header
// order so the file can be written back with the same layout.
type Table struct {
	Columns []string
	Rows    []StopRecord
}

// HasColumn reports whether the header contains the given column
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// EnsureColumn appends a column to the header if it is missing
func (t *Table) EnsureColumn(column string) {
	if !t.HasColumn(column) {
		t.Columns = append(t.Columns, column)
	}
}

// Append adds rows to the end of the table
func (t *Table) Append(rows ...StopRecord) {
	t.Rows = append(t.Rows, rows...)
}
