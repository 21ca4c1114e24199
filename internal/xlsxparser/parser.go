// =============================================================================
// Chemical Inventory to RDF Converter - XLSX Inventory Parser
// =============================================================================
//
// Some laboratories keep the inventory as an Excel workbook instead of the
// exported CSV. This module reads such a workbook into the same InventoryRow
// values the CSV parser produces, so the converter does not care where the
// rows came from.
//
// WORKBOOK STRUCTURE:
//   The sheet holds the fixed inventory schema, one row per substance:
//
//   | A    | B       | C                | ... | J   | K      |
//   |------|---------|------------------|-----|-----|--------|
//   | NAME | FORMULA | ALTERNATIVE_NAME | ... | CAS | Smiles |
//   | ...  | ...     | ...              | ... | ... | ...    |
//
//   Row 1 is the header and is skipped like the CSV header. Empty rows are
//   skipped. Cells are read as displayed text.
//
// =============================================================================

package xlsxparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/csvparser"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
)

// Load reads the inventory rows of a workbook.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - sheet: The sheet to read. Empty selects the first sheet.
//
// RETURNS:
//   - The data rows in sheet order, header excluded.
//   - An error wrapping csvparser.ErrFileAccess or csvparser.ErrSchema.
func Load(path, sheet string) ([]types.InventoryRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", csvparser.ErrFileAccess, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%s: %w", path, &csvparser.SchemaError{Msg: fmt.Sprintf("sheet %q not found", sheet)})
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	var out []types.InventoryRow
	for i, row := range rows {
		line := i + 1
		if line == 1 {
			continue
		}

		row = trimTrailingEmpty(row)
		if len(row) == 0 {
			continue
		}
		if len(row) > types.ColumnCount {
			return nil, fmt.Errorf("%s: %w", path, &csvparser.SchemaError{
				Line:   line,
				Fields: len(row),
				Msg:    "wrong number of cells",
			})
		}

		// excelize drops trailing empty cells, so short rows are padded.
		var fields [types.ColumnCount]string
		copy(fields[:], row)
		out = append(out, types.InventoryRow{Fields: fields, Line: line})
	}

	return out, nil
}

// trimTrailingEmpty removes empty cells at the end of a row.
func trimTrailingEmpty(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	return row[:n]
}
