package chem

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMolecule(t *testing.T, e *Engine, smiles string, props ...Property) *Molecule {
	t.Helper()
	mol, err := e.LoadMoleculeFromSmiles(smiles)
	require.NoError(t, err)
	for _, p := range props {
		mol.SetProperty(p.Name, p.Value)
	}
	require.NoError(t, mol.Layout())
	require.NoError(t, mol.Dearomatize())
	return mol
}

func TestRDFWriter_RoundTrip(t *testing.T) {
	engine := NewEngine(WithTimestamp(testStamp))
	var buf bytes.Buffer
	w := NewRDFWriter(&buf, engine.Timestamp())

	phenol := []Property{
		{Name: "NAME", Value: "Фенол"},
		{Name: "FORMULA", Value: "C6H6O"},
		{Name: "OSTATOK", Value: ""},
		{Name: "KOMENT", Value: "first line\nsecond line"},
	}
	ethanol := []Property{
		{Name: "NAME", Value: "Ethanol"},
		{Name: "CAS", Value: "64-17-5"},
	}

	require.NoError(t, w.WriteFormatHeader())
	require.NoError(t, w.AppendMolecule(buildMolecule(t, engine, "Oc1ccccc1", phenol...)))
	require.NoError(t, w.AppendMolecule(buildMolecule(t, engine, "CCO", ethanol...)))
	assert.Equal(t, 2, w.Records())
	require.NoError(t, w.Close())

	assert.True(t, strings.HasPrefix(buf.String(), "$RDFILE 1\n$DATM    03/05/24 00:00\n$MFMT\n"))

	file, err := ReadRDF(&buf)
	require.NoError(t, err)
	assert.Equal(t, "03/05/24 00:00", file.Date)
	require.Len(t, file.Records, 2)

	assert.Equal(t, 7, file.Records[0].AtomCount)
	assert.Equal(t, 7, file.Records[0].BondCount)
	if diff := cmp.Diff(phenol, file.Records[0].Properties); diff != "" {
		t.Errorf("phenol properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ethanol, file.Records[1].Properties); diff != "" {
		t.Errorf("ethanol properties mismatch (-want +got):\n%s", diff)
	}

	cas, ok := file.Records[1].Property("CAS")
	assert.True(t, ok)
	assert.Equal(t, "64-17-5", cas)
}

func TestRDFWriter_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	w := NewRDFWriter(&buf, testStamp)
	require.NoError(t, w.WriteFormatHeader())
	require.NoError(t, w.Close())

	assert.Equal(t, "$RDFILE 1\n$DATM    03/05/24 00:00\n", buf.String())

	file, err := ReadRDF(&buf)
	require.NoError(t, err)
	assert.Empty(t, file.Records)
}

func TestRDFWriter_RejectedMoleculeLeavesStream(t *testing.T) {
	engine := NewEngine(WithTimestamp(testStamp))

	var clean bytes.Buffer
	w := NewRDFWriter(&clean, testStamp)
	require.NoError(t, w.WriteFormatHeader())
	require.NoError(t, w.AppendMolecule(buildMolecule(t, engine, "CC")))
	require.NoError(t, w.Close())

	var dirty bytes.Buffer
	w = NewRDFWriter(&dirty, testStamp)
	require.NoError(t, w.WriteFormatHeader())

	bad, err := engine.LoadMoleculeFromSmiles("C$C")
	require.NoError(t, err)
	err = w.AppendMolecule(bad)
	assert.True(t, errors.Is(err, ErrSerialization))

	badName := buildMolecule(t, engine, "C", Property{Name: "A\nB", Value: "x"})
	err = w.AppendMolecule(badName)
	assert.True(t, errors.Is(err, ErrSerialization))

	badValue := buildMolecule(t, engine, "C", Property{Name: "KOMENT", Value: "line1\n$5 per gram"})
	err = w.AppendMolecule(badValue)
	assert.True(t, errors.Is(err, ErrSerialization))

	require.NoError(t, w.AppendMolecule(buildMolecule(t, engine, "CC")))
	require.NoError(t, w.Close())

	assert.Equal(t, clean.String(), dirty.String())
	assert.Equal(t, 1, w.Records())
}

func TestRDFWriter_Closed(t *testing.T) {
	w := NewRDFWriter(&bytes.Buffer{}, testStamp)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.WriteFormatHeader(), ErrWriterClosed)
	mol, err := NewEngine().LoadMoleculeFromSmiles("C")
	require.NoError(t, err)
	assert.ErrorIs(t, w.AppendMolecule(mol), ErrWriterClosed)
}

func TestOpenExchangeWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_2024-03-05.rdf")
	engine := NewEngine(WithTimestamp(testStamp))

	w, err := engine.OpenExchangeWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteFormatHeader())
	require.NoError(t, w.AppendMolecule(buildMolecule(t, engine, "CCO", Property{Name: "NAME", Value: "Ethanol"})))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	file, err := ReadRDF(f)
	require.NoError(t, err)
	require.Len(t, file.Records, 1)
	assert.Contains(t, file.Records[0].Molfile, "M  END")
}

func TestOpenExchangeWriter_BadPath(t *testing.T) {
	_, err := NewEngine().OpenExchangeWriter(filepath.Join(t.TempDir(), "missing", "out.rdf"))
	require.Error(t, err)
}

func TestReadRDF_Malformed(t *testing.T) {
	for name, input := range map[string]string{
		"empty":          "",
		"no header":      "$MFMT\n",
		"stray line":     "$RDFILE 1\n$DATM    03/05/24 00:00\ngarbage\n",
		"no end":         "$RDFILE 1\n$DATM    03/05/24 00:00\n$MFMT\n\n\n\n  0  0\n",
		"dtype no datum": "$RDFILE 1\n$DATM    x\n$MFMT\nt\n\n\n  0  0\nM  END\n$DTYPE A\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadRDF(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrMalformedRDF)
		})
	}
}

func TestRDFWriter_MultiLineValues(t *testing.T) {
	engine := NewEngine(WithTimestamp(testStamp))
	props := []Property{
		{Name: "KOMENT", Value: "costs $5\nper gram"},
		{Name: "POLKA", Value: "top\r\nleft"},
		{Name: "SHKAFF", Value: "A\n\nB\n"},
	}

	var buf bytes.Buffer
	w := NewRDFWriter(&buf, testStamp)
	require.NoError(t, w.WriteFormatHeader())
	require.NoError(t, w.AppendMolecule(buildMolecule(t, engine, "C", props...)))
	require.NoError(t, w.AppendMolecule(buildMolecule(t, engine, "N")))
	require.NoError(t, w.Close())

	file, err := ReadRDF(&buf)
	require.NoError(t, err)
	require.Len(t, file.Records, 2)
	if diff := cmp.Diff(props, file.Records[0].Properties); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, markerContinuation("a\n$b"))
	assert.True(t, markerContinuation("a\nb\n$"))
	assert.False(t, markerContinuation("$a\nb"))
	assert.False(t, markerContinuation("a b $c"))
}
