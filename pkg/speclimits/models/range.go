package models

// CellRange represents cell coordinate bounds, optionally tied to a sheet.
type CellRange struct {
	// Sheet is the worksheet name, empty when unqualified.
	Sheet string `json:"sheet,omitempty"`
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// Crop returns the part of rows inside the range. Rows and columns are
// 0-based in rows and 1-based in the range.
func (r CellRange) Crop(rows [][]string) [][]string {
	var out [][]string
	for i := r.R1 - 1; i < r.R2 && i < len(rows); i++ {
		if i < 0 {
			continue
		}
		row := rows[i]
		cropped := make([]string, 0, r.C2-r.C1+1)
		for j := r.C1 - 1; j < r.C2; j++ {
			if j >= 0 && j < len(row) {
				cropped = append(cropped, row[j])
			} else {
				cropped = append(cropped, "")
			}
		}
		out = append(out, cropped)
	}
	return out
}
