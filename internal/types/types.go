// =============================================================================
// Chemical Inventory to RDF Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (producers of InventoryRow)
//   - converter              (consumer of rows, producer of ConversionResult)
//   - validation, journal, shell
//
// =============================================================================

package types

import (
	"strings"
	"time"
)

// =============================================================================
// INVENTORY SCHEMA
// =============================================================================

// ColumnCount is the number of fields every inventory row carries.
const ColumnCount = 11

// Column positions in the fixed inventory schema.
const (
	ColName = iota
	ColFormula
	ColAlternativeName
	ColAnotherName
	ColOstatok
	ColKomnata
	ColShkaff
	ColPolka
	ColKoment
	ColCAS
	ColSmiles
)

// Columns is the fixed inventory schema, in file order. The names double as
// the property names attached to every converted molecule.
var Columns = [ColumnCount]string{
	"NAME",
	"FORMULA",
	"ALTERNATIVE_NAME",
	"ANOTHER_NAME",
	"OSTATOK",
	"KOMNATA",
	"SHKAFF",
	"POLKA",
	"KOMENT",
	"CAS",
	"Smiles",
}

// ColumnIndex returns the position of a column name, ignoring case.
// It returns -1 for names outside the schema.
func ColumnIndex(name string) int {
	for i, column := range Columns {
		if strings.EqualFold(column, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// =============================================================================
// INVENTORY ROW
// =============================================================================

// InventoryRow is one data record of the inventory file.
type InventoryRow struct {
	// Fields holds the raw text of each column, in schema order.
	Fields [ColumnCount]string

	// Line is the line of the source file where the record starts
	// (1-indexed, the header usually being line 1). Diagnostics only.
	Line int
}

// Get returns the value of the named column (case-insensitive).
// Unknown columns yield an empty string.
func (r InventoryRow) Get(column string) string {
	i := ColumnIndex(column)
	if i < 0 {
		return ""
	}
	return r.Fields[i]
}

// SMILES returns the structure string of the row.
func (r InventoryRow) SMILES() string { return r.Fields[ColSmiles] }

// CAS returns the registry number of the row.
func (r InventoryRow) CAS() string { return r.Fields[ColCAS] }

// Name returns the primary name of the row.
func (r InventoryRow) Name() string { return r.Fields[ColName] }

// =============================================================================
// CONVERSION RESULT
// =============================================================================

// RowFailure describes a row that could not be converted.
type RowFailure struct {
	// Index is the 1-based display index (list position + 1).
	Index int

	// Line is the source line of the row.
	Line int

	Name   string
	CAS    string
	Smiles string

	// Reason is the chemistry-layer error message.
	Reason string
}

// ConversionResult represents the outcome of one conversion pass.
type ConversionResult struct {
	// RunID uniquely identifies the pass in logs and in the journal.
	RunID string

	InputPath  string
	OutputPath string

	StartedAt  time.Time
	FinishedAt time.Time

	// RowsRead is the number of data rows produced by the loader.
	RowsRead int

	// Skipped is the number of leading rows never attempted.
	Skipped int

	// Converted is the number of molecule records appended to the output.
	Converted int

	// Failures lists the rows that failed at the chemistry layer, in
	// strictly increasing index order.
	Failures []RowFailure
}

// FailedIndices returns the 1-based display indices of the failed rows.
func (r ConversionResult) FailedIndices() []int {
	indices := make([]int, len(r.Failures))
	for i, f := range r.Failures {
		indices[i] = f.Index
	}
	return indices
}

// Success reports whether every attempted row was converted.
func (r ConversionResult) Success() bool {
	return len(r.Failures) == 0
}

// Duration returns the wall time of the pass.
func (r ConversionResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
