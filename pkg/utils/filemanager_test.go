package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
)

var passDate = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

func TestOutputNaming(t *testing.T) {
	assert.Equal(t, "reagents_2024-03-05.rdf", OutputFileName("reagents", passDate))
	assert.Equal(t, "reagents_2024-03-05.rdf", OutputFileName("/lab/data/reagents", passDate))

	assert.Equal(t, filepath.Join("/lab/data", "reagents_2024-03-05.rdf"), OutputPath("/lab/data/reagents", "", passDate))
	assert.Equal(t, filepath.Join("/out", "reagents_2024-03-05.rdf"), OutputPath("/lab/data/reagents", "/out", passDate))

	assert.Equal(t, "/out/reagents_2024-03-05_errors.txt", ErrorLogPath("/out/reagents_2024-03-05.rdf"))
}

func TestInputNaming(t *testing.T) {
	assert.Equal(t, "stock.csv", CSVPath("stock"))
	assert.Equal(t, "stock.xlsx", XLSXPath("stock"))

	assert.Equal(t, "stock", TrimInputExt("stock.csv"))
	assert.Equal(t, "stock", TrimInputExt("stock.XLSX"))
	assert.Equal(t, "stock.v2", TrimInputExt("stock.v2"))

	path, err := ResolveInput("stock")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "stock.csv", filepath.Base(path))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir), "directories are not input files")
	assert.False(t, FileExists(filepath.Join(dir, "b.csv")))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoError(t, EnsureDir(""))
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}

func TestWriteErrorLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.txt")
	result := types.ConversionResult{
		RunID:      "run-1",
		InputPath:  "/lab/reagents.csv",
		OutputPath: "/lab/reagents_2024-03-05.rdf",
		FinishedAt: passDate,
		RowsRead:   4,
		Converted:  1,
		Failures: []types.RowFailure{
			{Index: 3, Line: 4, Name: "Mystery", CAS: "1-23-4", Smiles: "C1CC", Reason: "unclosed ring"},
			{Index: 4, Line: 5, Smiles: "", Reason: "empty structure"},
		},
	}

	require.NoError(t, WriteErrorLog(path, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Run ID:       run-1")
	assert.Contains(t, text, "Failed rows:  2")
	assert.Contains(t, text, "Row 3 (line 4)\n  Name:    Mystery\n  CAS:     1-23-4\n  Smiles:  C1CC\n  Reason:  unclosed ring\n")
	assert.Contains(t, text, "Row 4 (line 5)\n  Smiles:  \n  Reason:  empty structure\n")
}

func TestWriteErrorLog_NoFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.txt")
	require.NoError(t, WriteErrorLog(path, types.ConversionResult{}))
	assert.False(t, FileExists(path))
}
