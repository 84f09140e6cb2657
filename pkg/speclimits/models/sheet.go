package models

// Sheet represents the raw cells of a single worksheet.
type Sheet struct {
	// Name is the worksheet name.
	Name string `json:"name"`
	// Rows holds the cell text, row-major, as returned by excelize.
	Rows [][]string `json:"rows,omitempty"`
}
