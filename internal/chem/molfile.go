package chem

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

const (
	// maxV2000Atoms is the largest atom or bond count the V2000 counts
	// line can carry.
	maxV2000Atoms = 999

	// molfileProgram is the 8-character program field of header line 2.
	molfileProgram = "-INVRDF-"
)

// MarshalMolfile renders the molecule as a V2000 molfile ending with
// "M  END". Molecules without a layout get all-zero coordinates.
func (m *Molecule) MarshalMolfile(stamp time.Time) ([]byte, error) {
	if len(m.atoms) > maxV2000Atoms || len(m.bonds) > maxV2000Atoms {
		return nil, fmt.Errorf("%w: %d atoms and %d bonds exceed the V2000 limit",
			ErrSerialization, len(m.atoms), len(m.bonds))
	}
	if strings.ContainsAny(m.Name, "\r\n") {
		return nil, fmt.Errorf("%w: title spans several lines", ErrSerialization)
	}

	var buf bytes.Buffer

	dim := "2D"
	if !m.laidOut {
		dim = "0D"
	}
	fmt.Fprintf(&buf, "%s\n", m.Name)
	fmt.Fprintf(&buf, "  %s%s%s\n", molfileProgram, stamp.Format("0102061504"), dim)
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", len(m.atoms), len(m.bonds))

	for i, a := range m.atoms {
		fmt.Fprintf(&buf, "%10.4f%10.4f%10.4f %-3s 0%3d  0  0  0%3d  0  0  0  0  0  0\n",
			a.X, a.Y, 0.0, a.Element, chargeCode(a.Charge), m.valenceField(i))
	}

	for _, b := range m.bonds {
		code, err := bondCode(b.Order)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%3d%3d%3d  0  0  0  0\n", b.A+1, b.B+1, code)
	}

	var charges, isotopes [][2]int
	for i, a := range m.atoms {
		if a.Charge != 0 {
			charges = append(charges, [2]int{i + 1, a.Charge})
		}
		if a.Isotope != 0 {
			isotopes = append(isotopes, [2]int{i + 1, a.Isotope})
		}
	}
	writePropertyBlock(&buf, "CHG", charges)
	writePropertyBlock(&buf, "ISO", isotopes)
	buf.WriteString("M  END\n")

	return buf.Bytes(), nil
}

// writePropertyBlock emits "M  XXX" lines with at most eight entries each.
func writePropertyBlock(buf *bytes.Buffer, tag string, entries [][2]int) {
	for start := 0; start < len(entries); start += 8 {
		end := min(start+8, len(entries))
		fmt.Fprintf(buf, "M  %s%3d", tag, end-start)
		for _, e := range entries[start:end] {
			fmt.Fprintf(buf, " %3d %3d", e[0], e[1])
		}
		buf.WriteString("\n")
	}
}

// chargeCode maps a formal charge to the atom-block ccc field.
func chargeCode(charge int) int {
	switch charge {
	case 3:
		return 1
	case 2:
		return 2
	case 1:
		return 3
	case -1:
		return 5
	case -2:
		return 6
	case -3:
		return 7
	}
	return 0
}

func bondCode(order BondOrder) (int, error) {
	switch order {
	case Single, Double, Triple, Aromatic:
		return int(order), nil
	}
	return 0, fmt.Errorf("%w: bond order %d has no molfile code", ErrSerialization, order)
}

// valenceField returns the atom-block vvv field. It is only set for
// bracket atoms whose written hydrogen count differs from what a reader
// would derive from default valences; 15 encodes a valence of zero.
func (m *Molecule) valenceField(i int) int {
	a := m.atoms[i]
	if !a.Bracket {
		return 0
	}
	if _, ok := defaultValences[a.Element]; ok && a.HCount == m.defaultHydrogens(i) {
		return 0
	}
	if _, ok := defaultValences[a.Element]; !ok && a.HCount == 0 {
		return 0
	}
	total := m.valenceSum(i) + a.HCount
	if total == 0 {
		return 15
	}
	return total
}
