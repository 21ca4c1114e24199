package xlsxparser

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/csvparser"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
)

func headerRow() []interface{} {
	row := make([]interface{}, len(types.Columns))
	for i, c := range types.Columns {
		row[i] = c
	}
	return row
}

// writeWorkbook saves rows (header first) to a new workbook in a temp dir.
func writeWorkbook(t *testing.T, sheet string, rows ...[]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad(t *testing.T) {
	path := writeWorkbook(t, "Sheet1",
		headerRow(),
		[]interface{}{"Ethanol", "C2H6O", "", "", "1 l", "101", "A", "2", "", "64-17-5", "CCO"},
		[]interface{}{},
		[]interface{}{"Sulfur", "S"},
	)

	rows, err := Load(path, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ethanol", rows[0].Name())
	assert.Equal(t, "CCO", rows[0].SMILES())
	assert.Equal(t, 2, rows[0].Line)

	assert.Equal(t, "Sulfur", rows[1].Name())
	assert.Equal(t, "", rows[1].SMILES(), "short rows are padded")
	assert.Equal(t, 4, rows[1].Line)
}

func TestLoad_NamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Stock",
		headerRow(),
		[]interface{}{"Water", "H2O", "", "", "", "", "", "", "", "7732-18-5", "O"},
	)

	rows, err := Load(path, "Stock")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "O", rows[0].SMILES())

	_, err = Load(path, "Missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, csvparser.ErrSchema))
}

func TestLoad_TooManyCells(t *testing.T) {
	wide := make([]interface{}, types.ColumnCount+1)
	for i := range wide {
		wide[i] = "x"
	}
	path := writeWorkbook(t, "Sheet1", headerRow(), wide)

	_, err := Load(path, "")
	require.Error(t, err)

	var serr *csvparser.SchemaError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 2, serr.Line)
	assert.Equal(t, types.ColumnCount+1, serr.Fields)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.xlsx"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, csvparser.ErrFileAccess))
}
