// =============================================================================
// Chemical Inventory to RDF Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It turns the rows of one
// inventory file into one RDfile, isolating chemistry failures per row.
//
// CONVERSION PIPELINE (per pass):
//   1. Load the inventory rows (CSV or workbook)
//   2. Open the RDF output and write its header
//   3. For each row from the start index on:
//        build the molecule from Smiles, attach the 11 fields as data
//        items, compute the 2D layout, dearomatize, append the record.
//      A failure at any of these steps records the row's 1-based index and
//      moves on to the next row.
//   4. Close the output
//   5. Write the error log and record the pass in the journal
//
// CONCURRENCY:
//   A pass is strictly sequential. Every pass builds its own chemistry engine
//   and its own writer, so a Converter can be reused for consecutive passes.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/chem"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/config"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/csvparser"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/xlsxparser"
	"github.com/ginjaninja78/chem-inventory-rdf/pkg/utils"
)

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Recorder stores finished passes. The journal implements it.
type Recorder interface {
	Record(ctx context.Context, result types.ConversionResult) error
}

// Converter runs conversion passes.
type Converter struct {
	cfg    *config.Config
	logger *slog.Logger

	// recorder is optional; nil disables the journal.
	recorder Recorder

	// now is the clock; the pass date is its value truncated to the day.
	now func() time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder enables recording of finished passes.
func WithRecorder(r Recorder) Option {
	return func(c *Converter) { c.recorder = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter.
//
// PARAMETERS:
//   - cfg: The application configuration. Nil means config.Default().
//   - opts: Optional logger, recorder and clock.
//
// RETURNS:
//   - A new Converter instance.
func New(cfg *config.Config, opts ...Option) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Converter{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run converts <inputBase>.csv into <inputBase>_<date>.rdf.
//
// PARAMETERS:
//   - ctx: Used for the journal. A pass in progress is never interrupted.
//   - inputBase: The input path without extension.
//
// RETURNS:
//   - The outcome of the pass. On error it holds whatever was known.
//   - An error wrapping csvparser.ErrFileAccess or csvparser.ErrSchema when
//     the input cannot be loaded, or an output error that aborted the pass.
func (c *Converter) Run(ctx context.Context, inputBase string) (types.ConversionResult, error) {
	inputPath := utils.CSVPath(inputBase)

	rows, err := csvparser.Load(inputBase, c.cfg.CSV)
	if err != nil {
		return types.ConversionResult{InputPath: inputPath}, err
	}
	return c.pass(ctx, inputBase, inputPath, rows)
}

// RunWorkbook converts an .xlsx inventory. The output is named after the
// workbook without its extension.
func (c *Converter) RunWorkbook(ctx context.Context, path, sheet string) (types.ConversionResult, error) {
	rows, err := xlsxparser.Load(path, sheet)
	if err != nil {
		return types.ConversionResult{InputPath: path}, err
	}
	return c.pass(ctx, utils.TrimInputExt(path), path, rows)
}

// Convert writes rows to outputPath and returns the 1-based indices of the
// rows that failed at the chemistry layer, in increasing order.
//
// PARAMETERS:
//   - rows: The loaded rows, header excluded.
//   - outputPath: The RDF file to create or truncate.
//
// RETURNS:
//   - The failed indices (i + 1 for list position i).
//   - An error only when the output itself cannot be written. The partial
//     output is left in place.
func (c *Converter) Convert(rows []types.InventoryRow, outputPath string) ([]int, error) {
	result, err := c.convert(rows, outputPath, c.passDate())
	return result.FailedIndices(), err
}

// pass runs a complete pass over loaded rows.
func (c *Converter) pass(ctx context.Context, base, inputPath string, rows []types.InventoryRow) (types.ConversionResult, error) {
	startedAt := c.now()
	date := c.passDate()

	// =========================================================================
	// STEP 1: RESOLVE OUTPUT
	// =========================================================================

	outputPath := utils.OutputPath(base, c.cfg.OutputDir, date)
	if err := utils.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return types.ConversionResult{InputPath: inputPath}, err
	}

	runID := utils.NewRunID()
	logger := c.logger.With("run_id", runID)
	logger.Info("conversion started", "input", inputPath, "output", outputPath, "rows", len(rows))

	// =========================================================================
	// STEP 2: CONVERT ROWS
	// =========================================================================

	result, err := c.convertWith(logger, rows, outputPath, date)
	result.RunID = runID
	result.InputPath = inputPath
	result.StartedAt = startedAt
	result.FinishedAt = c.now()

	if err != nil {
		logger.Error("conversion aborted", "output", outputPath, "error", err)
		return result, err
	}

	// =========================================================================
	// STEP 3: REPORT
	// =========================================================================

	if !result.Success() && c.cfg.ErrorLogEnabled() {
		logPath := utils.ErrorLogPath(outputPath)
		if err := utils.WriteErrorLog(logPath, result); err != nil {
			logger.Warn("failed to write error log", "path", logPath, "error", err)
		} else {
			logger.Info("error log written", "path", logPath)
		}
	}

	if c.recorder != nil {
		if err := c.recorder.Record(ctx, result); err != nil {
			logger.Warn("failed to record conversion", "error", err)
		}
	}

	logger.Info("conversion finished",
		"converted", result.Converted,
		"failed", len(result.Failures),
		"skipped", result.Skipped,
		"duration", result.Duration())

	return result, nil
}

// passDate is the current day at midnight. It stamps the file name and the
// RDF headers, so two passes on the same day produce identical output.
func (c *Converter) passDate() time.Time {
	now := c.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (c *Converter) convert(rows []types.InventoryRow, outputPath string, date time.Time) (types.ConversionResult, error) {
	return c.convertWith(c.logger, rows, outputPath, date)
}

// convertWith is the row loop shared by Convert and Run.
func (c *Converter) convertWith(logger *slog.Logger, rows []types.InventoryRow, outputPath string, date time.Time) (result types.ConversionResult, err error) {
	result.OutputPath = outputPath
	result.RowsRead = len(rows)

	engine := chem.NewEngine(
		chem.WithTimestamp(date),
		chem.WithBondLength(c.cfg.Chem.BondLength),
		chem.WithLogger(logger),
	)

	w, err := engine.OpenExchangeWriter(outputPath)
	if err != nil {
		return result, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to finish %s: %w", outputPath, cerr)
		}
	}()

	if err := w.WriteFormatHeader(); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	start := c.cfg.Converter.StartIndex()
	result.Skipped = min(start, len(rows))

	for i := start; i < len(rows); i++ {
		row := rows[i]

		mol, err := buildMolecule(engine, row)
		if err == nil {
			err = w.AppendMolecule(mol)
			if err != nil && !errors.Is(err, chem.ErrSerialization) {
				return result, fmt.Errorf("failed to write %s: %w", outputPath, err)
			}
		}
		if err != nil {
			failure := types.RowFailure{
				Index:  i + 1,
				Line:   row.Line,
				Name:   row.Name(),
				CAS:    row.CAS(),
				Smiles: row.SMILES(),
				Reason: err.Error(),
			}
			result.Failures = append(result.Failures, failure)
			logger.Warn("row not converted",
				"index", failure.Index,
				"line", failure.Line,
				"cas", failure.CAS,
				"error", err)
			continue
		}

		result.Converted++
	}

	return result, nil
}

// buildMolecule runs the per-row chemistry steps: construct, decorate,
// layout, dearomatize.
func buildMolecule(engine *chem.Engine, row types.InventoryRow) (*chem.Molecule, error) {
	mol, err := engine.LoadMoleculeFromSmiles(row.SMILES())
	if err != nil {
		return nil, err
	}

	for i, column := range types.Columns {
		mol.SetProperty(column, row.Fields[i])
	}

	if err := mol.Layout(); err != nil {
		return nil, err
	}
	if err := mol.Dearomatize(); err != nil {
		return nil, err
	}
	return mol, nil
}
