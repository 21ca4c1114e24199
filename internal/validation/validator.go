// =============================================================================
// Chemical Inventory to RDF Converter - Validation Engine
// =============================================================================
//
// This module checks inventory rows before a conversion, without writing any
// output. It answers the question an operator asks before a long pass:
// "which rows will fail, and which ones look suspicious?"
//
// VALIDATION RULES:
//   Errors (the row would be reported as failed by the converter):
//   - Smiles is empty
//   - Smiles cannot be parsed
//   - The molecule cannot be laid out, dearomatized or written as a molfile
//
//   Warnings (the row converts, but the data is likely wrong):
//   - CAS does not have the NNNNNNN-NN-N shape
//   - CAS check digit does not match
//   - NAME is empty
//
// ERROR HANDLING:
//   - Errors are collected, not returned immediately
//   - Each error names the row index (as the converter reports it), the
//     source line, the field and the offending value
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/chem"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError for rows the converter would reject and
	// SeverityWarning for suspicious data that still converts.
	Severity string

	// Row is the 1-based display index, the same number the converter
	// reports for a failed row.
	Row int

	// Line is the source line of the row.
	Line int

	// Field is the column that failed validation.
	Field string

	// Value is the actual value that failed validation.
	Value string

	// Message is a human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Row %d (line %d), Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Row,
		e.Line,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the results of validation.
type Result struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Errors contains all findings, warnings included, in row order.
	Errors []*ValidationError

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RowsValidated is the number of rows checked.
	RowsValidated int
}

// FailedRows returns the distinct row indices that carry an error.
func (r *Result) FailedRows() []int {
	var rows []int
	for _, e := range r.Errors {
		if e.Severity != SeverityError {
			continue
		}
		if n := len(rows); n > 0 && rows[n-1] == e.Row {
			continue
		}
		rows = append(rows, e.Row)
	}
	return rows
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options contains options for validation.
type Options struct {
	// StartIndex is the first row position checked. It should match the
	// converter's start index so the two report the same rows.
	// Default: 1
	StartIndex int

	// StopOnFirstError stops validation after the first error.
	// Default: false
	StopOnFirstError bool

	// TreatWarningsAsErrors makes any warning invalidate the result.
	// Default: false
	TreatWarningsAsErrors bool
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{StartIndex: 1}
}

// Validator checks inventory rows against a chemistry engine.
type Validator struct {
	engine  *chem.Engine
	options Options
}

// NewValidator creates a new Validator with the default options.
func NewValidator(engine *chem.Engine) *Validator {
	return NewValidatorWithOptions(engine, DefaultOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(engine *chem.Engine, options Options) *Validator {
	if engine == nil {
		engine = chem.NewEngine()
	}
	return &Validator{engine: engine, options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks rows with the default options.
//
// PARAMETERS:
//   - rows: The loaded inventory rows, header excluded.
//   - engine: The engine used to build test molecules. Nil uses a default.
//
// RETURNS:
//   - The validation result.
func Validate(rows []types.InventoryRow, engine *chem.Engine) *Result {
	return NewValidator(engine).ValidateAll(rows)
}

// ValidateAll checks every row from the start index on.
func (v *Validator) ValidateAll(rows []types.InventoryRow) *Result {
	result := &Result{IsValid: true}

	for i := v.options.StartIndex; i < len(rows); i++ {
		result.RowsValidated++

		for _, err := range v.ValidateRow(i+1, rows[i]) {
			result.Errors = append(result.Errors, err)

			if err.Severity == SeverityError {
				result.ErrorCount++
				result.IsValid = false

				if v.options.StopOnFirstError {
					return result
				}
			} else {
				result.WarningCount++

				if v.options.TreatWarningsAsErrors {
					result.IsValid = false
				}
			}
		}
	}

	return result
}

// ValidateRow checks a single row. index is the 1-based display index.
func (v *Validator) ValidateRow(index int, row types.InventoryRow) []*ValidationError {
	var errs []*ValidationError

	finding := func(severity string, column int, message string) *ValidationError {
		return &ValidationError{
			Severity: severity,
			Row:      index,
			Line:     row.Line,
			Field:    types.Columns[column],
			Value:    row.Fields[column],
			Message:  message,
		}
	}

	if msg := v.checkStructure(row.SMILES()); msg != "" {
		errs = append(errs, finding(SeverityError, types.ColSmiles, msg))
	}

	if cas := row.CAS(); cas != "" {
		if msg := ValidateCAS(cas); msg != "" {
			errs = append(errs, finding(SeverityWarning, types.ColCAS, msg))
		}
	}

	if strings.TrimSpace(row.Name()) == "" {
		errs = append(errs, finding(SeverityWarning, types.ColName, "name is empty"))
	}

	return errs
}

// checkStructure runs the same chemistry steps as a conversion and returns
// the first failure, or "" when the structure would convert.
func (v *Validator) checkStructure(smiles string) string {
	if strings.TrimSpace(smiles) == "" {
		return "structure is empty"
	}

	mol, err := v.engine.LoadMoleculeFromSmiles(smiles)
	if err != nil {
		return err.Error()
	}
	if err := mol.Layout(); err != nil {
		return err.Error()
	}
	if err := mol.Dearomatize(); err != nil {
		return err.Error()
	}
	if _, err := mol.MarshalMolfile(v.engine.Timestamp()); err != nil {
		return err.Error()
	}
	return ""
}

// =============================================================================
// CAS REGISTRY NUMBERS
// =============================================================================

var casPattern = regexp.MustCompile(`^(\d{2,7})-(\d{2})-(\d)$`)

// ValidateCAS checks the shape and check digit of a CAS registry number.
// It returns an error message, or "" for a valid number.
//
// The check digit is the sum of the other digits, each multiplied by its
// position counted from the right starting at 1, modulo 10.
func ValidateCAS(cas string) string {
	m := casPattern.FindStringSubmatch(cas)
	if m == nil {
		return "CAS number must look like NNNNNNN-NN-N"
	}

	digits := m[1] + m[2]
	sum := 0
	for i := 0; i < len(digits); i++ {
		weight := len(digits) - i
		sum += int(digits[i]-'0') * weight
	}

	check := int(m[3][0] - '0')
	if sum%10 != check {
		return fmt.Sprintf("CAS check digit is %d, expected %d", check, sum%10)
	}
	return ""
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
