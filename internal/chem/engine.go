// Package chem is the molecule-processing engine behind the inventory
// converter. It builds molecules from SMILES strings, attaches named
// properties, computes a 2D depiction, converts aromatic rings to Kekulé
// form and serializes the result as MDL RDfile records.
//
// The converter treats the engine as a black box and only uses the
// operations exposed here:
//
//	engine := chem.NewEngine(chem.WithTimestamp(day))
//	mol, err := engine.LoadMoleculeFromSmiles("c1ccccc1O")
//	mol.SetProperty("NAME", "Phenol")
//	mol.Layout()
//	mol.Dearomatize()
//	w, err := engine.OpenExchangeWriter("out.rdf")
//	w.WriteFormatHeader()
//	w.AppendMolecule(mol)
//	w.Close()
package chem

import (
	"errors"
	"io"
	"log/slog"
	"time"
)

// DefaultBondLength is the depiction bond length in molfile units.
const DefaultBondLength = 1.5

// Errors reported by the engine. Callers classify failures with errors.Is.
var (
	// ErrConstruction signals a SMILES string that cannot be interpreted.
	ErrConstruction = errors.New("chem: cannot build molecule")

	// ErrLayout signals a failed 2D coordinate computation.
	ErrLayout = errors.New("chem: layout failed")

	// ErrKekulize signals aromatic rings with no valid Kekulé structure.
	ErrKekulize = errors.New("chem: cannot dearomatize")

	// ErrSerialization signals a molecule that cannot be written as a
	// molfile record. The output stream itself is left intact.
	ErrSerialization = errors.New("chem: cannot serialize molecule")

	// ErrWriterClosed is returned by writes after Close.
	ErrWriterClosed = errors.New("chem: writer closed")
)

// Engine creates molecules and exchange-file writers. An Engine holds no
// per-molecule state and is meant to live for one conversion pass.
type Engine struct {
	bondLength float64
	stamp      time.Time
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBondLength sets the depiction bond length. Non-positive values are
// ignored.
func WithBondLength(length float64) Option {
	return func(e *Engine) {
		if length > 0 {
			e.bondLength = length
		}
	}
}

// WithTimestamp sets the time written into RDF and molfile headers.
// Fixing it makes the output reproducible.
func WithTimestamp(t time.Time) Option {
	return func(e *Engine) { e.stamp = t }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine returns an engine configured by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		bondLength: DefaultBondLength,
		stamp:      time.Now(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadMoleculeFromSmiles parses text into a new molecule. Anything after
// the first whitespace is taken as the molecule title.
func (e *Engine) LoadMoleculeFromSmiles(text string) (*Molecule, error) {
	m, err := parseSmiles(text, e.bondLength)
	if err != nil {
		e.logger.Debug("smiles rejected", "smiles", text, "error", err)
		return nil, err
	}
	return m, nil
}

// Timestamp returns the header time used by writers of this engine.
func (e *Engine) Timestamp() time.Time { return e.stamp }
