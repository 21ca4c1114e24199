package chem

import (
	"fmt"
	"sort"
)

// kekuleSearchBudget bounds the matching search so pathological inputs
// fail instead of hanging a conversion pass.
const kekuleSearchBudget = 1 << 20

// Dearomatize replaces aromatic bonds with an explicit alternation of
// single and double bonds and clears the aromatic atom flags. Molecules
// without aromatic bonds are left untouched.
func (m *Molecule) Dearomatize() error {
	if !m.HasAromaticBonds() {
		for i := range m.atoms {
			m.atoms[i].Aromatic = false
		}
		return nil
	}

	needs := make([]bool, len(m.atoms))
	var pending []int
	for i := range m.atoms {
		if m.needsDoubleBond(i) {
			needs[i] = true
			pending = append(pending, i)
		}
	}

	k := &kekulizer{mol: m, needs: needs, partner: make([]int, len(m.atoms))}
	for i := range k.partner {
		k.partner[i] = -1
	}
	if !k.solve(len(pending)) {
		if k.steps > kekuleSearchBudget {
			return fmt.Errorf("%w: search limit exceeded", ErrKekulize)
		}
		return fmt.Errorf("%w: no alternating bond pattern for %d aromatic atoms", ErrKekulize, len(pending))
	}

	for bi := range m.bonds {
		b := &m.bonds[bi]
		if b.Order != Aromatic {
			continue
		}
		if k.partner[b.A] == b.B {
			b.Order = Double
		} else {
			b.Order = Single
		}
	}
	for i := range m.atoms {
		m.atoms[i].Aromatic = false
	}
	return nil
}

// needsDoubleBond reports whether aromatic atom i must receive one double
// bond from the Kekulé assignment.
func (m *Molecule) needsDoubleBond(i int) bool {
	a := m.atoms[i]
	if !a.Aromatic || !m.hasAromaticBond(i) {
		return false
	}
	for _, bi := range m.adj[i] {
		if o := m.bonds[bi].Order; o == Double || o == Triple {
			return false
		}
	}
	valences, ok := defaultValences[a.Element]
	if !ok {
		return false
	}
	hydrogens := 0
	if a.Bracket {
		hydrogens = a.HCount
	} else if a.Element == "C" {
		// Organic aromatic carbon takes whatever hydrogens remain.
		return true
	}
	target := chargeAdjustedValence(a.Element, valences[0], a.Charge)
	return m.valenceSum(i)+hydrogens+1 <= target
}

type kekulizer struct {
	mol     *Molecule
	needs   []bool
	partner []int
	steps   int
}

// candidates returns the unmatched aromatic neighbors of atom i that also
// need a double bond.
func (k *kekulizer) candidates(i int) []int {
	var out []int
	for _, bi := range k.mol.adj[i] {
		b := k.mol.bonds[bi]
		if b.Order != Aromatic {
			continue
		}
		j := b.Other(i)
		if k.needs[j] && k.partner[j] < 0 {
			out = append(out, j)
		}
	}
	sort.Ints(out)
	return out
}

// solve pairs the remaining atoms by backtracking, always expanding the
// most constrained atom first.
func (k *kekulizer) solve(remaining int) bool {
	if remaining == 0 {
		return true
	}
	k.steps++
	if k.steps > kekuleSearchBudget {
		return false
	}

	best := -1
	var bestOptions []int
	for i := range k.needs {
		if !k.needs[i] || k.partner[i] >= 0 {
			continue
		}
		options := k.candidates(i)
		if len(options) == 0 {
			return false
		}
		if best < 0 || len(options) < len(bestOptions) {
			best, bestOptions = i, options
			if len(options) == 1 {
				break
			}
		}
	}

	for _, j := range bestOptions {
		k.partner[best], k.partner[j] = j, best
		if k.solve(remaining - 2) {
			return true
		}
		k.partner[best], k.partner[j] = -1, -1
	}
	return false
}
