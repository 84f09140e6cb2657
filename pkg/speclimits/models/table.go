package models

import "strings"

// Table is a raw header + rows table read from a CSV file or a worksheet.
type Table struct {
	// Name identifies the table (file name, optionally with sheet).
	Name string `json:"name"`
	// Headers holds the trimmed header cells.
	Headers []string `json:"headers"`
	// Rows holds data rows, each padded or truncated to len(Headers).
	Rows [][]string `json:"rows,omitempty"`
}

// Column returns the index of the header equal to name, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// ColumnFold is like Column but compares case-insensitively.
func (t *Table) ColumnFold(name string) int {
	for i, h := range t.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Value returns the cell at row, col or "" when out of range.
func (t *Table) Value(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}
