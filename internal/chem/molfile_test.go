package chem

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStamp = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

func molfileLines(t *testing.T, m *Molecule) []string {
	t.Helper()
	data, err := m.MarshalMolfile(testStamp)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.HasSuffix(text, "M  END\n"))
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func TestMarshalMolfile(t *testing.T) {
	mol, err := NewEngine().LoadMoleculeFromSmiles("CCO ethanol")
	require.NoError(t, err)
	require.NoError(t, mol.Layout())

	lines := molfileLines(t, mol)
	require.Len(t, lines, 10)
	assert.Equal(t, "ethanol", lines[0])
	assert.Equal(t, "  -INVRDF-03052400002D", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "  3  2  0  0  0  0  0  0  0  0999 V2000", lines[3])

	for i, symbol := range []string{"C  ", "C  ", "O  "} {
		line := lines[4+i]
		assert.Len(t, line, 69)
		assert.Equal(t, symbol, line[31:34])
		assert.Equal(t, "    0.0000", line[20:30])
	}

	assert.Equal(t, "  1  2  1  0  0  0  0", lines[7])
	assert.Equal(t, "  2  3  1  0  0  0  0", lines[8])
	assert.Equal(t, "M  END", lines[9])
}

func TestMarshalMolfile_NotLaidOut(t *testing.T) {
	mol, err := NewEngine().LoadMoleculeFromSmiles("C")
	require.NoError(t, err)

	lines := molfileLines(t, mol)
	assert.Equal(t, "  -INVRDF-03052400000D", lines[1])
	assert.True(t, strings.HasPrefix(lines[4], "    0.0000    0.0000    0.0000 C  "))
}

func TestMarshalMolfile_ChargesAndIsotopes(t *testing.T) {
	mol, err := NewEngine().LoadMoleculeFromSmiles("[NH4+].[Cl-].[13CH4]")
	require.NoError(t, err)

	lines := molfileLines(t, mol)
	assert.Equal(t, " 0  3", lines[4][34:39])
	assert.Equal(t, " 0  5", lines[5][34:39])
	assert.Contains(t, lines, "M  CHG  2   1   1   2  -1")
	assert.Contains(t, lines, "M  ISO  1   3  13")
}

func TestMarshalMolfile_Aromatic(t *testing.T) {
	mol, err := NewEngine().LoadMoleculeFromSmiles("c1ccccc1")
	require.NoError(t, err)

	lines := molfileLines(t, mol)
	assert.Equal(t, "  1  2  4  0  0  0  0", lines[10])

	require.NoError(t, mol.Dearomatize())
	lines = molfileLines(t, mol)
	for _, line := range lines[10:16] {
		assert.NotEqual(t, "4", strings.TrimSpace(line[6:9]))
	}
}

func TestMarshalMolfile_Rejected(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name   string
		smiles string
	}{
		{"quadruple bond", "C$C"},
		{"too many atoms", strings.Repeat("C", 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mol, err := engine.LoadMoleculeFromSmiles(tt.smiles)
			require.NoError(t, err)

			_, err = mol.MarshalMolfile(testStamp)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSerialization))
		})
	}
}
