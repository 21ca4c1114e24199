package chem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doubleBondsPerAtom counts the double bonds touching each atom.
func doubleBondsPerAtom(m *Molecule) []int {
	counts := make([]int, m.AtomCount())
	for i := 0; i < m.BondCount(); i++ {
		b := m.Bond(i)
		if b.Order == Double {
			counts[b.A]++
			counts[b.B]++
		}
	}
	return counts
}

func TestDearomatize(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name    string
		smiles  string
		doubles int
		// atoms that must not receive a double bond
		saturated []int
	}{
		{"benzene", "c1ccccc1", 3, nil},
		{"pyridine", "c1ccncc1", 3, nil},
		{"pyrrole", "c1cc[nH]c1", 2, []int{3}},
		{"furan", "c1ccoc1", 2, []int{3}},
		{"naphthalene", "c1ccc2ccccc2c1", 5, nil},
		{"toluene", "Cc1ccccc1", 3, []int{0}},
		{"phenol", "Oc1ccccc1", 3, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mol, err := engine.LoadMoleculeFromSmiles(tt.smiles)
			require.NoError(t, err)
			require.True(t, mol.HasAromaticBonds())

			require.NoError(t, mol.Dearomatize())
			assert.False(t, mol.HasAromaticBonds())

			total := 0
			for i := 0; i < mol.BondCount(); i++ {
				if mol.Bond(i).Order == Double {
					total++
				}
			}
			assert.Equal(t, tt.doubles, total)

			perAtom := doubleBondsPerAtom(mol)
			for _, i := range tt.saturated {
				assert.Zero(t, perAtom[i], "atom %d", i)
			}
			for i, n := range perAtom {
				assert.LessOrEqual(t, n, 1, "atom %d", i)
				assert.False(t, mol.Atom(i).Aromatic)
			}
		})
	}
}

func TestDearomatize_NoAromaticBonds(t *testing.T) {
	mol, err := NewEngine().LoadMoleculeFromSmiles("CC(=O)O")
	require.NoError(t, err)

	require.NoError(t, mol.Dearomatize())
	assert.Equal(t, Single, mol.Bond(0).Order)
	assert.Equal(t, Double, mol.Bond(1).Order)
	assert.Equal(t, Single, mol.Bond(2).Order)
}

func TestDearomatize_Impossible(t *testing.T) {
	// Five aromatic carbons cannot pair up into double bonds.
	mol, err := NewEngine().LoadMoleculeFromSmiles("c1cccc1")
	require.NoError(t, err)

	err = mol.Dearomatize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKekulize))
}

func TestDearomatize_Deterministic(t *testing.T) {
	engine := NewEngine()
	first, err := engine.LoadMoleculeFromSmiles("c1ccc2ccccc2c1")
	require.NoError(t, err)
	second, err := engine.LoadMoleculeFromSmiles("c1ccc2ccccc2c1")
	require.NoError(t, err)

	require.NoError(t, first.Dearomatize())
	require.NoError(t, second.Dearomatize())
	for i := 0; i < first.BondCount(); i++ {
		assert.Equal(t, first.Bond(i), second.Bond(i))
	}
}
