package chem

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// RDF record markers.
const (
	rdfFileMarker  = "$RDFILE 1"
	rdfDateMarker  = "$DATM"
	rdfMolMarker   = "$MFMT"
	rdfTypeMarker  = "$DTYPE"
	rdfDatumMarker = "$DATUM"
)

// RDFWriter streams molecule records into an MDL RDfile.
type RDFWriter struct {
	w      *bufio.Writer
	closer io.Closer
	stamp  time.Time

	records int
	closed  bool
}

// OpenExchangeWriter creates (or truncates) path and returns a writer for
// it. The caller must Close the writer.
func (e *Engine) OpenExchangeWriter(path string) (*RDFWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange file: %w", err)
	}
	e.logger.Debug("opened exchange file", "path", path)
	return &RDFWriter{w: bufio.NewWriter(f), closer: f, stamp: e.stamp}, nil
}

// NewRDFWriter returns a writer over w. Close flushes but does not close w.
func NewRDFWriter(w io.Writer, stamp time.Time) *RDFWriter {
	return &RDFWriter{w: bufio.NewWriter(w), stamp: stamp}
}

// WriteFormatHeader writes the "$RDFILE 1" and "$DATM" lines.
func (w *RDFWriter) WriteFormatHeader() error {
	if w.closed {
		return ErrWriterClosed
	}
	_, err := fmt.Fprintf(w.w, "%s\n%s    %s\n", rdfFileMarker, rdfDateMarker, w.stamp.Format("01/02/06 15:04"))
	return err
}

// AppendMolecule writes one "$MFMT" record followed by the molecule's
// properties as "$DTYPE"/"$DATUM" pairs. The record is rendered in full
// before anything is written, so a molecule rejected with ErrSerialization
// leaves the stream unchanged.
func (w *RDFWriter) AppendMolecule(m *Molecule) error {
	if w.closed {
		return ErrWriterClosed
	}
	molfile, err := m.MarshalMolfile(w.stamp)
	if err != nil {
		return err
	}

	var rec bytes.Buffer
	rec.WriteString(rdfMolMarker)
	rec.WriteString("\n")
	rec.Write(molfile)
	for _, p := range m.props {
		if p.Name == "" || strings.ContainsAny(p.Name, "\r\n") {
			return fmt.Errorf("%w: invalid property name %q", ErrSerialization, p.Name)
		}
		if markerContinuation(p.Value) {
			return fmt.Errorf("%w: value of %s has a line starting with '$'", ErrSerialization, p.Name)
		}
		fmt.Fprintf(&rec, "%s %s\n%s %s\n", rdfTypeMarker, p.Name, rdfDatumMarker, p.Value)
	}

	if _, err := w.w.Write(rec.Bytes()); err != nil {
		return err
	}
	w.records++
	return nil
}

// markerContinuation reports whether a multi-line value has a continuation
// line that readers would take for an RDF marker.
func markerContinuation(value string) bool {
	_, rest, ok := strings.Cut(value, "\n")
	for ok {
		if strings.HasPrefix(rest, "$") {
			return true
		}
		_, rest, ok = strings.Cut(rest, "\n")
	}
	return false
}

// Records returns the number of molecules appended so far.
func (w *RDFWriter) Records() int { return w.records }

// Close flushes buffered output and releases the file. It is safe to call
// more than once.
func (w *RDFWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// =============================================================================
// READER
// =============================================================================

// RDFRecord is one molecule record read back from an RDfile.
type RDFRecord struct {
	// Molfile is the raw molfile text, including the "M  END" line.
	Molfile string

	AtomCount int
	BondCount int

	Properties []Property
}

// Property returns the value of a named data item.
func (r RDFRecord) Property(name string) (string, bool) {
	for _, p := range r.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// RDFFile is a parsed RDfile.
type RDFFile struct {
	// Date is the raw "$DATM" value.
	Date    string
	Records []RDFRecord
}

// ErrMalformedRDF is returned by ReadRDF for input that is not an RDfile.
var ErrMalformedRDF = errors.New("chem: malformed RDF")

// ReadRDF parses molecule records and their data items. A "$DATUM" value
// continues over following lines until the next "$" marker line.
func ReadRDF(r io.Reader) (*RDFFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) < 2 || lines[0] != rdfFileMarker || !strings.HasPrefix(lines[1], rdfDateMarker) {
		return nil, fmt.Errorf("%w: missing $RDFILE/$DATM header", ErrMalformedRDF)
	}
	file := &RDFFile{Date: strings.TrimSpace(strings.TrimPrefix(lines[1], rdfDateMarker))}

	i := 2
	for i < len(lines) {
		if lines[i] != rdfMolMarker {
			return nil, fmt.Errorf("%w: line %d: expected %s, got %q", ErrMalformedRDF, i+1, rdfMolMarker, lines[i])
		}
		i++
		rec, next, err := readRecord(lines, i)
		if err != nil {
			return nil, err
		}
		file.Records = append(file.Records, rec)
		i = next
	}
	return file, nil
}

func readRecord(lines []string, i int) (RDFRecord, int, error) {
	var rec RDFRecord
	start := i
	for ; i < len(lines); i++ {
		if lines[i] == "M  END" {
			break
		}
	}
	if i == len(lines) {
		return rec, i, fmt.Errorf("%w: molfile starting at line %d has no M  END", ErrMalformedRDF, start+1)
	}
	rec.Molfile = strings.Join(lines[start:i+1], "\n") + "\n"
	if start+3 < len(lines) {
		counts := lines[start+3]
		if len(counts) >= 6 {
			rec.AtomCount, _ = strconv.Atoi(strings.TrimSpace(counts[0:3]))
			rec.BondCount, _ = strconv.Atoi(strings.TrimSpace(counts[3:6]))
		}
	}
	i++

	for i < len(lines) && strings.HasPrefix(lines[i], rdfTypeMarker+" ") {
		name := strings.TrimPrefix(lines[i], rdfTypeMarker+" ")
		i++
		if i >= len(lines) || !strings.HasPrefix(lines[i], rdfDatumMarker) {
			return rec, i, fmt.Errorf("%w: $DTYPE %s without $DATUM", ErrMalformedRDF, name)
		}
		value := strings.TrimPrefix(strings.TrimPrefix(lines[i], rdfDatumMarker), " ")
		i++
		for i < len(lines) && !strings.HasPrefix(lines[i], "$") {
			value += "\n" + lines[i]
			i++
		}
		rec.Properties = append(rec.Properties, Property{Name: name, Value: value})
	}
	return rec, i, nil
}
