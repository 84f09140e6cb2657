package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/xuri/excelize/v2"
)

// ResolveRange turns a user supplied region into cell bounds. The region is
// either a defined name in the workbook (e.g. "Limites") or a reference such
// as 'Hoja 1'!$A$3:$H$40 or A3:H40.
func ResolveRange(f *excelize.File, ref string) (*models.CellRange, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty range")
	}

	if f != nil {
		for _, dn := range f.GetDefinedName() {
			if strings.EqualFold(dn.Name, ref) {
				return ParseRange(dn.RefersTo)
			}
		}
	}
	return ParseRange(ref)
}

// ParseRange parses a reference string.
// Format: 'SheetName'!$A$1:$D$10, SheetName!A1:D10 or A1:D10.
// Only the first area of a multi-area reference is used.
func ParseRange(ref string) (*models.CellRange, error) {
	part := strings.TrimSpace(strings.Split(ref, ",")[0])
	if part == "" {
		return nil, fmt.Errorf("invalid range %q", ref)
	}

	var sheet string
	// Split by ! to separate sheet name and range
	if idx := strings.LastIndex(part, "!"); idx >= 0 {
		sheet = strings.Trim(strings.TrimPrefix(part[:idx], "="), "'")
		part = part[idx+1:]
	}

	area := parseRangeToArea(part)
	if area == nil {
		return nil, fmt.Errorf("invalid range %q", ref)
	}
	area.Sheet = sheet
	return area, nil
}

// parseRangeToArea parses a range string like $A$1:$D$10 to CellRange.
func parseRangeToArea(rangeStr string) *models.CellRange {
	// Remove $ signs
	rangeStr = strings.ReplaceAll(rangeStr, "$", "")

	// Split by :
	parts := strings.Split(rangeStr, ":")
	if len(parts) != 2 {
		return nil
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return nil
	}

	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return nil
	}

	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}
	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}

	return &models.CellRange{
		R1: startRow,
		C1: startCol,
		R2: endRow,
		C2: endCol,
	}
}
