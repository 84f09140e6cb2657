package models

// Workbook is the raw cell grid of every sheet in a workbook, in sheet order.
type Workbook struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Sheets holds the sheets in workbook order.
	Sheets []Sheet `json:"sheets"`
}

// Sheet looks up a sheet by name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}
