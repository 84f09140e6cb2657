package parser

// TableDetectionParams holds parameters for table detection.
type TableDetectionParams struct {
	DensityMin       float64
	MinNonemptyCells int
	// MinHeaderCells is the number of non-empty cells a row needs to be
	// taken as the header row.
	MinHeaderCells int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		DensityMin:       0.04,
		MinNonemptyCells: 3,
		MinHeaderCells:   2,
	}
}

// Bounds is the 0-based, inclusive bounding box of a table in a sheet.
type Bounds struct {
	MinRow, MaxRow int
	MinCol, MaxCol int
	// HeaderRow is the 0-based row holding column names.
	HeaderRow int
}

// DetectBounds locates the table-like region in a sheet. It returns false
// when the sheet is empty or too sparse to hold a table.
func DetectBounds(rows [][]string, params TableDetectionParams) (Bounds, bool) {
	if len(rows) == 0 {
		return Bounds{}, false
	}

	// Find the bounding box of non-empty cells
	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 {
		return Bounds{}, false
	}

	// Calculate density
	totalCells := (maxRow - minRow + 1) * (maxCol - minCol + 1)
	nonEmptyCells := countNonEmptyCells(rows, minRow, maxRow, minCol, maxCol)

	if nonEmptyCells < params.MinNonemptyCells {
		return Bounds{}, false
	}

	density := float64(nonEmptyCells) / float64(totalCells)
	if density < params.DensityMin {
		return Bounds{}, false
	}

	b := Bounds{MinRow: minRow, MaxRow: maxRow, MinCol: minCol, MaxCol: maxCol, HeaderRow: minRow}
	// Title rows above the header usually hold a single merged caption.
	for r := minRow; r <= maxRow; r++ {
		if countNonEmptyCells(rows, r, r, minCol, maxCol) >= params.MinHeaderCells {
			b.HeaderRow = r
			break
		}
	}
	return b, true
}

// Slice returns the header row and data rows within the bounds, each
// padded to the bounds width.
func (b Bounds) Slice(rows [][]string) (header []string, data [][]string) {
	width := b.MaxCol - b.MinCol + 1
	cut := func(row []string) []string {
		out := make([]string, width)
		for c := b.MinCol; c <= b.MaxCol && c < len(row); c++ {
			out[c-b.MinCol] = row[c]
		}
		return out
	}
	if b.HeaderRow < len(rows) {
		header = cut(rows[b.HeaderRow])
	}
	for r := b.HeaderRow + 1; r <= b.MaxRow && r < len(rows); r++ {
		data = append(data, cut(rows[r]))
	}
	return header, data
}

// findDataBounds finds the bounding box of non-empty cells.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell != "" {
				if minRow < 0 || rowIdx < minRow {
					minRow = rowIdx
				}
				if maxRow < 0 || rowIdx > maxRow {
					maxRow = rowIdx
				}
				if minCol < 0 || colIdx < minCol {
					minCol = colIdx
				}
				if maxCol < 0 || colIdx > maxCol {
					maxCol = colIdx
				}
			}
		}
	}

	return
}

// countNonEmptyCells counts non-empty cells within bounds.
func countNonEmptyCells(rows [][]string, minRow, maxRow, minCol, maxCol int) int {
	count := 0
	for rowIdx := minRow; rowIdx <= maxRow && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		for colIdx := minCol; colIdx <= maxCol && colIdx < len(row); colIdx++ {
			if row[colIdx] != "" {
				count++
			}
		}
	}
	return count
}
