// =============================================================================
// Chemical Inventory to RDF Converter - CSV Parser Module
// =============================================================================
//
// This module reads the inventory CSV exported by the laboratory and turns it
// into an ordered list of InventoryRow values. The schema is fixed:
//
//   NAME;FORMULA;ALTERNATIVE_NAME;ANOTHER_NAME;OSTATOK;KOMNATA;SHKAFF;POLKA;KOMENT;CAS;Smiles
//
// FEATURES:
//   - ";" delimiter by default, RFC 4180 quoting with lazy quotes
//   - Empty lines and all-empty records are skipped
//   - The header row is skipped; its content is only checked in strict mode
//   - UTF-8 (BOM stripped), Windows-1251, KOI8-R or automatic detection
//   - Field values are passed through untouched (no trimming)
//
// ERRORS:
//   - ErrFileAccess: the file is missing or unreadable
//   - ErrSchema (*SchemaError): a record does not have 11 fields, the
//     header does not match in strict mode, or the CSV is malformed
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/config"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
	"github.com/ginjaninja78/chem-inventory-rdf/pkg/utils"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrFileAccess is returned when the input file cannot be opened or read.
	// It wraps the underlying *fs.PathError, so errors.Is(err, fs.ErrNotExist)
	// also works.
	ErrFileAccess = errors.New("cannot access input file")

	// ErrSchema is returned when the file does not follow the fixed
	// inventory schema.
	ErrSchema = errors.New("input does not match the inventory schema")
)

// SchemaError describes a record that violates the schema.
type SchemaError struct {
	// Line is the line in the source where the offending record starts.
	Line int

	// Fields is the number of fields found, or 0 when not applicable.
	Fields int

	Msg string
}

func (e *SchemaError) Error() string {
	if e.Fields > 0 {
		return fmt.Sprintf("line %d: %s (found %d fields, expected %d)", e.Line, e.Msg, e.Fields, types.ColumnCount)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Unwrap lets callers test for ErrSchema.
func (e *SchemaError) Unwrap() error { return ErrSchema }

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Load reads <basePath>.csv.
//
// PARAMETERS:
//   - basePath: The file name without extension, as typed by the operator.
//   - settings: The CSV settings from the configuration.
//
// RETURNS:
//   - The data rows in file order, header excluded.
//   - An error wrapping ErrFileAccess or ErrSchema.
func Load(basePath string, settings config.CSVSettings) ([]types.InventoryRow, error) {
	return LoadFile(utils.CSVPath(basePath), settings)
}

// LoadFile reads an inventory CSV from a complete path.
func LoadFile(path string, settings config.CSVSettings) ([]types.InventoryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	defer f.Close()

	rows, err := Parse(f, settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Parse reads inventory rows from r.
//
// PARSING PROCESS:
//  1. Read the whole input and decode it to UTF-8
//  2. Read records with the configured delimiter
//  3. Skip the header record (checked against the schema in strict mode)
//  4. Check every remaining record for exactly 11 fields
func Parse(r io.Reader, settings config.CSVSettings) ([]types.InventoryRow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}

	data, err := Decode(raw, settings.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	configureReader(reader, settings)

	var rows []types.InventoryRow
	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(err)
		}
		line, _ := reader.FieldPos(0)

		if header {
			header = false
			if settings.StrictHeader {
				if err := checkHeader(record, line); err != nil {
					return nil, err
				}
			}
			continue
		}

		if isBlankLine(record) {
			continue
		}

		fields, err := fixedFields(record, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, types.InventoryRow{Fields: fields, Line: line})
	}

	return rows, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = settings.Comma()

	// The field count is checked per record so the error can name the line.
	reader.FieldsPerRecord = -1

	// Exported inventories contain stray quotes inside names.
	reader.LazyQuotes = true
}

// fixedFields copies a record into the fixed schema. A single trailing empty
// field (a line ending with the delimiter) is tolerated.
func fixedFields(record []string, line int) ([types.ColumnCount]string, error) {
	var fields [types.ColumnCount]string

	n := len(record)
	if n == types.ColumnCount+1 && record[n-1] == "" {
		n = types.ColumnCount
	}
	if n != types.ColumnCount {
		return fields, &SchemaError{Line: line, Fields: len(record), Msg: "wrong number of fields"}
	}

	copy(fields[:], record[:n])
	return fields, nil
}

// checkHeader compares the header record with the schema, ignoring case.
func checkHeader(record []string, line int) error {
	if _, err := fixedFields(record, line); err != nil {
		return err
	}
	for i, column := range types.Columns {
		if types.ColumnIndex(record[i]) != i {
			return &SchemaError{Line: line, Msg: fmt.Sprintf("header column %d is %q, expected %q", i+1, record[i], column)}
		}
	}
	return nil
}

// isBlankLine reports whether a record is a line holding only whitespace.
// A record of empty fields still occupies a row position and is kept.
func isBlankLine(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}

func parseError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &SchemaError{Line: perr.StartLine, Msg: perr.Err.Error()}
	}
	return fmt.Errorf("%w: %w", ErrSchema, err)
}

// =============================================================================
// CHARACTER ENCODING
// =============================================================================

// Decode converts raw file content to UTF-8 according to the encoding
// setting. A UTF-8 byte order mark is removed in every mode.
//
// SUPPORTED ENCODINGS:
//   - "utf-8" (also "utf8", ""): content is used as is
//   - "windows-1251" (also "cp1251"): Cyrillic exports from Excel
//   - "koi8-r"
//   - "auto": UTF-8 when the content is valid UTF-8, otherwise Windows-1251
func Decode(raw []byte, encoding string) ([]byte, error) {
	var decoder transform.Transformer
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		decoder = unicode.UTF8BOM.NewDecoder()
	case "windows-1251", "cp1251":
		decoder = unicode.BOMOverride(charmap.Windows1251.NewDecoder())
	case "koi8-r":
		decoder = unicode.BOMOverride(charmap.KOI8R.NewDecoder())
	case "auto":
		if utf8.Valid(raw) {
			decoder = unicode.UTF8BOM.NewDecoder()
		} else {
			decoder = charmap.Windows1251.NewDecoder()
		}
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}

	data, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s input: %w", encoding, err)
	}
	return data, nil
}
