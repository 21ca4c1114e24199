package chem

// elementSymbols lists the element symbols ordered by atomic number,
// starting at hydrogen.
var elementSymbols = []string{
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba",
	"La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra",
	"Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm", "Md", "No", "Lr",
	"Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds", "Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for i, s := range elementSymbols {
		m[s] = i + 1
	}
	return m
}()

// isElement reports whether symbol is a known element symbol.
func isElement(symbol string) bool {
	_, ok := atomicNumbers[symbol]
	return ok
}

// defaultValences holds the normal valences of the SMILES organic subset
// plus the few heavier analogues that appear in aromatic bracket atoms.
var defaultValences = map[string][]int{
	"B":  {3},
	"C":  {4},
	"N":  {3, 5},
	"O":  {2},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"F":  {1},
	"Cl": {1},
	"Br": {1},
	"I":  {1},
	"Si": {4},
	"Se": {2, 4, 6},
	"As": {3, 5},
	"Te": {2, 4, 6},
}

// organicSubset contains the elements that may be written without brackets.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticSymbols maps lowercase aromatic SMILES symbols to elements.
// Only b, c, n, o, p and s are allowed outside brackets.
var aromaticSymbols = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S",
	"se": "Se", "as": "As", "te": "Te", "si": "Si",
}

// chargeAdjustedValence shifts an element's base valence by its formal
// charge: electron-rich pnictogens and chalcogens gain a bond per positive
// charge, while B, C and Si lose one per unit of charge of either sign.
func chargeAdjustedValence(element string, base, charge int) int {
	switch element {
	case "N", "P", "As", "O", "S", "Se", "Te":
		return base + charge
	case "B":
		return base - charge
	case "C", "Si":
		if charge < 0 {
			return base + charge
		}
		return base - charge
	}
	return base - abs(charge)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
