// =============================================================================
// Chemical Inventory to RDF Converter - File Manager Utility
// =============================================================================
//
// This module provides the file handling shared by the converter, the
// interactive shell and the CLI:
//   - Input naming (the operator types a base name without extension)
//   - Output naming (<base>_<YYYY-MM-DD>.rdf, next to the input or in a
//     configured output directory)
//   - Error log generation for partially converted inventories
//   - Run identifiers
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
)

// File extensions used by the converter.
const (
	CSVExt   = ".csv"
	XLSXExt  = ".xlsx"
	RDFExt   = ".rdf"
	dateForm = "2006-01-02"
)

// =============================================================================
// INPUT NAMING
// =============================================================================

// CSVPath returns the inventory CSV for a base name.
func CSVPath(base string) string {
	return base + CSVExt
}

// XLSXPath returns the inventory workbook for a base name.
func XLSXPath(base string) string {
	return base + XLSXExt
}

// TrimInputExt strips a trailing .csv or .xlsx from a name the operator
// typed with its extension.
func TrimInputExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{CSVExt, XLSXExt} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// ResolveInput turns a base name into the absolute path of its CSV file,
// resolved against the working directory.
//
// PARAMETERS:
//   - base: The file name without extension.
//
// RETURNS:
//   - The absolute path of <base>.csv.
//   - An error if the working directory cannot be determined.
func ResolveInput(base string) (string, error) {
	path, err := filepath.Abs(CSVPath(base))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", CSVPath(base), err)
	}
	return path, nil
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// =============================================================================
// OUTPUT NAMING
// =============================================================================

// OutputFileName builds the RDF file name for a base name and pass date.
//
// EXAMPLE:
//   base:   "reagents"
//   date:   2024-03-05
//   output: "reagents_2024-03-05.rdf"
func OutputFileName(base string, date time.Time) string {
	return filepath.Base(base) + "_" + date.Format(dateForm) + RDFExt
}

// OutputPath places the RDF file in outputDir, or next to the input when
// outputDir is empty.
func OutputPath(base, outputDir string, date time.Time) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(base)
	}
	return filepath.Join(dir, OutputFileName(base, date))
}

// ErrorLogPath returns the error log that accompanies an RDF file.
func ErrorLogPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, RDFExt) + "_errors.txt"
}

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// NewRunID returns a fresh identifier for a conversion pass.
func NewRunID() string {
	return uuid.New().String()
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// WriteErrorLog writes the failed rows of a pass to path.
//
// PARAMETERS:
//   - path: The log file to create (see ErrorLogPath).
//   - result: The finished conversion pass.
//
// RETURNS:
//   - An error if writing fails. Nothing is written for a pass without
//     failures.
func WriteErrorLog(path string, result types.ConversionResult) error {
	if result.Success() {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Chemical Inventory to RDF Converter - Error Log\n"+
		"Run ID:       %s\n"+
		"Input:        %s\n"+
		"Output:       %s\n"+
		"Generated:    %s\n"+
		"Rows read:    %d\n"+
		"Converted:    %d\n"+
		"Failed rows:  %d\n"+
		"================================================================================\n\n",
		result.RunID,
		result.InputPath,
		result.OutputPath,
		result.FinishedAt.Format("2006-01-02 15:04:05"),
		result.RowsRead,
		result.Converted,
		len(result.Failures))

	for _, f := range result.Failures {
		fmt.Fprintf(writer, "Row %d (line %d)\n", f.Index, f.Line)
		if f.Name != "" {
			fmt.Fprintf(writer, "  Name:    %s\n", f.Name)
		}
		if f.CAS != "" {
			fmt.Fprintf(writer, "  CAS:     %s\n", f.CAS)
		}
		fmt.Fprintf(writer, "  Smiles:  %s\n", f.Smiles)
		fmt.Fprintf(writer, "  Reason:  %s\n\n", f.Reason)
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush error log: %w", err)
	}
	return file.Close()
}
