package chem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMoleculeFromSmiles(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name   string
		smiles string
		atoms  int
		bonds  int
		title  string
	}{
		{"ethanol", "CCO", 3, 2, ""},
		{"benzene", "c1ccccc1", 6, 6, ""},
		{"acetic acid", "CC(=O)O", 4, 3, ""},
		{"titled", "C1CC1 cyclopropane", 3, 3, "cyclopropane"},
		{"salt", "[Na+].[Cl-]", 2, 0, ""},
		{"two digit ring", "C%10CCCC%10", 5, 5, ""},
		{"halogens", "ClCBr", 3, 2, ""},
		{"chiral", "N[C@@H](C)C(=O)O", 6, 5, ""},
		{"aromatic selenium", "c1cc[se]c1", 5, 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mol, err := engine.LoadMoleculeFromSmiles(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.atoms, mol.AtomCount())
			assert.Equal(t, tt.bonds, mol.BondCount())
			assert.Equal(t, tt.title, mol.Name)
		})
	}
}

func TestLoadMoleculeFromSmiles_Atoms(t *testing.T) {
	engine := NewEngine()

	t.Run("implicit hydrogens", func(t *testing.T) {
		mol, err := engine.LoadMoleculeFromSmiles("CC=O")
		require.NoError(t, err)
		assert.Equal(t, 3, mol.ImplicitHydrogens(0))
		assert.Equal(t, 1, mol.ImplicitHydrogens(1))
		assert.Equal(t, 0, mol.ImplicitHydrogens(2))
		assert.Equal(t, Double, mol.Bond(1).Order)
	})

	t.Run("bracket atom", func(t *testing.T) {
		mol, err := engine.LoadMoleculeFromSmiles("[13CH4]")
		require.NoError(t, err)
		a := mol.Atom(0)
		assert.Equal(t, "C", a.Element)
		assert.Equal(t, 13, a.Isotope)
		assert.Equal(t, 4, a.HCount)
		assert.True(t, a.Bracket)
	})

	t.Run("charges", func(t *testing.T) {
		mol, err := engine.LoadMoleculeFromSmiles("[NH4+].[Fe+++].[O-2]")
		require.NoError(t, err)
		assert.Equal(t, 1, mol.Atom(0).Charge)
		assert.Equal(t, 3, mol.Atom(1).Charge)
		assert.Equal(t, -2, mol.Atom(2).Charge)
	})

	t.Run("aromatic bonds", func(t *testing.T) {
		mol, err := engine.LoadMoleculeFromSmiles("c1ccccc1C")
		require.NoError(t, err)
		for i := 0; i < 6; i++ {
			assert.Equal(t, Aromatic, mol.Bond(i).Order, "bond %d", i)
		}
		assert.Equal(t, Single, mol.Bond(6).Order)
	})

	t.Run("ring closure bond order", func(t *testing.T) {
		mol, err := engine.LoadMoleculeFromSmiles("C=1CCCCC1")
		require.NoError(t, err)
		last := mol.Bond(mol.BondCount() - 1)
		assert.Equal(t, Double, last.Order)
		assert.Equal(t, 0, last.A)
		assert.Equal(t, 5, last.B)
	})
}

func TestLoadMoleculeFromSmiles_Errors(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name   string
		smiles string
		pos    int
	}{
		{"empty", "", 0},
		{"blank", "   ", 0},
		{"unclosed branch", "CC(C", 4},
		{"unbalanced paren", "CC)C", 2},
		{"unclosed ring", "C1CC2CC", 1},
		{"dangling bond", "CC=", 3},
		{"unknown character", "CXC", 1},
		{"unknown element", "C[Xx]C", 2},
		{"unterminated bracket", "C[NH4", 5},
		{"self ring", "C11", 2},
		{"duplicate ring bond", "C12CC12", 6},
		{"conflicting ring orders", "C=1CCC-1", 7},
		{"leading bond", "=CC", 0},
		{"empty branch", "C()C", 2},
		{"isotope too large", "[12345C]", 1},
		{"isotope digit run", "C[99999999999999999999999C]", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.LoadMoleculeFromSmiles(tt.smiles)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConstruction))

			var serr *SmilesError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.pos, serr.Pos)
		})
	}
}

func TestLoadMoleculeFromSmiles_IsotopeRange(t *testing.T) {
	mol, err := NewEngine().LoadMoleculeFromSmiles("[999C]")
	require.NoError(t, err)
	assert.Equal(t, 999, mol.Atom(0).Isotope)

	_, err = NewEngine().LoadMoleculeFromSmiles("[1000C]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "isotope 1000 out of range")
}
