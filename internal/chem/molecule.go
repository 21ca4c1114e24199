package chem

import (
	"math"
	"sort"
)

// BondOrder is the multiplicity of a bond.
type BondOrder int

// Bond orders. Aromatic uses the molfile bond type code.
const (
	Single   BondOrder = 1
	Double   BondOrder = 2
	Triple   BondOrder = 3
	Aromatic BondOrder = 4

	// Quadruple has no V2000 bond code; such molecules are rejected when
	// serialized.
	Quadruple BondOrder = 5
)

// Atom is one atom of a molecule.
type Atom struct {
	Element  string
	Charge   int
	Isotope  int
	Aromatic bool

	// Bracket is set for atoms written in [brackets]; their hydrogen count
	// is explicit (HCount) instead of derived from the default valence.
	Bracket bool
	HCount  int

	X, Y float64
}

// Bond connects two atoms by index.
type Bond struct {
	A, B  int
	Order BondOrder
}

// Other returns the bond end that is not atom i.
func (b Bond) Other(i int) int {
	if b.A == i {
		return b.B
	}
	return b.A
}

// Property is a named text value attached to a molecule.
type Property struct {
	Name  string
	Value string
}

// Molecule is a molecular graph with attached properties. It is created by
// Engine.LoadMoleculeFromSmiles and owned by the caller until serialized.
type Molecule struct {
	// Name is the title carried after the SMILES string, if any.
	Name string

	atoms []Atom
	bonds []Bond
	adj   [][]int // bond indices per atom

	props []Property

	bondLength float64
	laidOut    bool
}

func newMolecule(bondLength float64) *Molecule {
	return &Molecule{bondLength: bondLength}
}

func (m *Molecule) addAtom(a Atom) int {
	m.atoms = append(m.atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.atoms) - 1
}

func (m *Molecule) addBond(a, b int, order BondOrder) int {
	m.bonds = append(m.bonds, Bond{A: a, B: b, Order: order})
	idx := len(m.bonds) - 1
	m.adj[a] = append(m.adj[a], idx)
	m.adj[b] = append(m.adj[b], idx)
	return idx
}

// bondBetween returns the index of the bond joining a and b, or -1.
func (m *Molecule) bondBetween(a, b int) int {
	for _, bi := range m.adj[a] {
		if m.bonds[bi].Other(a) == b {
			return bi
		}
	}
	return -1
}

// AtomCount returns the number of heavy and explicit atoms.
func (m *Molecule) AtomCount() int { return len(m.atoms) }

// BondCount returns the number of bonds.
func (m *Molecule) BondCount() int { return len(m.bonds) }

// Atom returns a copy of atom i.
func (m *Molecule) Atom(i int) Atom { return m.atoms[i] }

// Bond returns a copy of bond i.
func (m *Molecule) Bond(i int) Bond { return m.bonds[i] }

// Neighbors returns the atoms bonded to atom i, in ascending order.
func (m *Molecule) Neighbors(i int) []int {
	out := make([]int, 0, len(m.adj[i]))
	for _, bi := range m.adj[i] {
		out = append(out, m.bonds[bi].Other(i))
	}
	sort.Ints(out)
	return out
}

// SetProperty attaches a named value. Setting an existing name replaces
// its value in place and keeps the original position.
func (m *Molecule) SetProperty(name, value string) {
	for i := range m.props {
		if m.props[i].Name == name {
			m.props[i].Value = value
			return
		}
	}
	m.props = append(m.props, Property{Name: name, Value: value})
}

// Property returns the value of a named property.
func (m *Molecule) Property(name string) (string, bool) {
	for _, p := range m.props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Properties returns the attached properties in insertion order.
func (m *Molecule) Properties() []Property {
	out := make([]Property, len(m.props))
	copy(out, m.props)
	return out
}

// IsLaidOut reports whether 2D coordinates have been computed.
func (m *Molecule) IsLaidOut() bool { return m.laidOut }

// valenceSum is the sum of bond orders around atom i, counting aromatic
// bonds as single.
func (m *Molecule) valenceSum(i int) int {
	sum := 0
	for _, bi := range m.adj[i] {
		if o := m.bonds[bi].Order; o == Aromatic {
			sum++
		} else {
			sum += int(o)
		}
	}
	return sum
}

// ImplicitHydrogens returns the hydrogens implied on atom i.
// Bracket atoms carry exactly their written count.
func (m *Molecule) ImplicitHydrogens(i int) int {
	a := m.atoms[i]
	if a.Bracket {
		return a.HCount
	}
	return m.defaultHydrogens(i)
}

// defaultHydrogens fills the lowest default valence that fits the current
// bonding. An aromatic atom still awaiting kekulization reserves one unit
// for its future double bond.
func (m *Molecule) defaultHydrogens(i int) int {
	a := m.atoms[i]
	valences, ok := defaultValences[a.Element]
	if !ok {
		return 0
	}
	sum := m.valenceSum(i)
	if a.Aromatic && m.hasAromaticBond(i) {
		sum++
	}
	for _, v := range valences {
		v = chargeAdjustedValence(a.Element, v, a.Charge)
		if v >= sum {
			return v - sum
		}
	}
	return 0
}

func (m *Molecule) hasAromaticBond(i int) bool {
	for _, bi := range m.adj[i] {
		if m.bonds[bi].Order == Aromatic {
			return true
		}
	}
	return false
}

// HasAromaticBonds reports whether any bond is still aromatic.
func (m *Molecule) HasAromaticBonds() bool {
	for _, b := range m.bonds {
		if b.Order == Aromatic {
			return true
		}
	}
	return false
}

// coordsFinite reports whether every coordinate is a real number.
func (m *Molecule) coordsFinite() bool {
	for _, a := range m.atoms {
		if math.IsNaN(a.X) || math.IsNaN(a.Y) || math.IsInf(a.X, 0) || math.IsInf(a.Y, 0) {
			return false
		}
	}
	return true
}
