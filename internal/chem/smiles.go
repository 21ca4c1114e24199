package chem

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// maxIsotope is the largest mass number the molfile ISO block can hold.
	maxIsotope = 999

	// numberLimit caps digit runs inside bracket atoms.
	numberLimit = 1 << 20
)

// SmilesError reports where and why a SMILES string was rejected.
type SmilesError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SmilesError) Error() string {
	return fmt.Sprintf("smiles %q at position %d: %s", e.Input, e.Pos, e.Msg)
}

// Unwrap classifies every SMILES error as a construction failure.
func (e *SmilesError) Unwrap() error { return ErrConstruction }

type ringBond struct {
	atom  int
	order BondOrder // 0 when unspecified at the opening digit
	pos   int
}

type smilesParser struct {
	src     string
	pos     int
	mol     *Molecule
	prev    int
	pending BondOrder
	branch  []int
	rings   map[int]ringBond
}

// parseSmiles builds a molecule from a SMILES string.
func parseSmiles(text string, bondLength float64) (*Molecule, error) {
	text = strings.TrimSpace(text)
	name := ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		name = strings.TrimSpace(text[i:])
		text = text[:i]
	}

	p := &smilesParser{
		src:   text,
		mol:   newMolecule(bondLength),
		prev:  -1,
		rings: make(map[int]ringBond),
	}
	p.mol.Name = name

	if text == "" {
		return nil, p.fail("empty structure")
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.mol, nil
}

func (p *smilesParser) fail(format string, args ...any) error {
	return p.failAt(p.pos, format, args...)
}

func (p *smilesParser) failAt(pos int, format string, args ...any) error {
	return &SmilesError{Input: p.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *smilesParser) parse() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch without a preceding atom")
			}
			if p.pending != 0 {
				return p.fail("bond before branch")
			}
			p.branch = append(p.branch, p.prev)
			p.pos++

		case c == ')':
			if len(p.branch) == 0 {
				return p.fail("unbalanced ')'")
			}
			if p.pending != 0 {
				return p.fail("bond without a following atom")
			}
			if p.src[p.pos-1] == '(' {
				return p.fail("empty branch")
			}
			p.prev = p.branch[len(p.branch)-1]
			p.branch = p.branch[:len(p.branch)-1]
			p.pos++

		case c == '.':
			if p.pending != 0 {
				return p.fail("bond before '.'")
			}
			if len(p.branch) > 0 {
				return p.fail("'.' inside a branch")
			}
			p.prev = -1
			p.pos++

		case isBondChar(c):
			if p.prev < 0 {
				return p.fail("bond without a preceding atom")
			}
			if p.pending != 0 {
				return p.fail("two consecutive bonds")
			}
			p.pending = bondOrderOf(c)
			p.pos++

		case c >= '0' && c <= '9' || c == '%':
			if err := p.ringClosure(); err != nil {
				return err
			}

		case c == '[':
			atom, err := p.bracketAtom()
			if err != nil {
				return err
			}
			if err := p.attach(atom); err != nil {
				return err
			}

		default:
			atom, ok := p.organicAtom()
			if !ok {
				return p.fail("unexpected character %q", c)
			}
			if err := p.attach(atom); err != nil {
				return err
			}
		}
	}

	switch {
	case len(p.branch) > 0:
		return p.fail("unclosed branch")
	case len(p.rings) > 0:
		pos := len(p.src)
		for _, open := range p.rings {
			pos = min(pos, open.pos)
		}
		return p.failAt(pos, "unclosed ring")
	case p.pending != 0:
		return p.fail("bond without a following atom")
	case len(p.mol.atoms) == 0:
		return p.fail("no atoms")
	}
	return nil
}

func isBondChar(c byte) bool {
	switch c {
	case '-', '=', '#', '$', ':', '/', '\\':
		return true
	}
	return false
}

func bondOrderOf(c byte) BondOrder {
	switch c {
	case '=':
		return Double
	case '#':
		return Triple
	case '$':
		return Quadruple
	case ':':
		return Aromatic
	}
	// '-' and the directional '/' '\' bonds.
	return Single
}

// implicitOrder is the order of a bond written without a symbol.
func (p *smilesParser) implicitOrder(a, b int) BondOrder {
	if p.mol.atoms[a].Aromatic && p.mol.atoms[b].Aromatic {
		return Aromatic
	}
	return Single
}

// attach adds atom to the molecule and bonds it to the previous atom.
func (p *smilesParser) attach(atom Atom) error {
	idx := p.mol.addAtom(atom)
	if p.prev >= 0 {
		order := p.pending
		if order == 0 {
			order = p.implicitOrder(p.prev, idx)
		}
		p.mol.addBond(p.prev, idx, order)
	}
	p.pending = 0
	p.prev = idx
	return nil
}

func (p *smilesParser) ringClosure() error {
	if p.prev < 0 {
		return p.fail("ring closure without a preceding atom")
	}
	start := p.pos
	var num int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return p.fail("'%%' must be followed by two digits")
		}
		num = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		num = int(p.src[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringBond{atom: p.prev, order: p.pending, pos: start}
		p.pending = 0
		return nil
	}
	delete(p.rings, num)

	if open.atom == p.prev {
		return p.failAt(start, "ring %d closes on itself", num)
	}
	if p.mol.bondBetween(open.atom, p.prev) >= 0 {
		return p.failAt(start, "ring %d duplicates an existing bond", num)
	}
	order := p.pending
	switch {
	case order == 0:
		order = open.order
	case open.order != 0 && open.order != order:
		return p.failAt(start, "ring %d has conflicting bond orders", num)
	}
	if order == 0 {
		order = p.implicitOrder(open.atom, p.prev)
	}
	p.mol.addBond(open.atom, p.prev, order)
	p.pending = 0
	return nil
}

// organicAtom reads an unbracketed atom of the organic subset.
func (p *smilesParser) organicAtom() (Atom, bool) {
	rest := p.src[p.pos:]
	for _, two := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, two) {
			p.pos += 2
			return Atom{Element: two}, true
		}
	}
	c := string(rest[0])
	if organicSubset[c] {
		p.pos++
		return Atom{Element: c}, true
	}
	switch c {
	case "b", "c", "n", "o", "p", "s":
		p.pos++
		return Atom{Element: aromaticSymbols[c], Aromatic: true}, true
	}
	return Atom{}, false
}

// bracketAtom reads [isotope? symbol chiral? hcount? charge? class?].
func (p *smilesParser) bracketAtom() (Atom, error) {
	p.pos++ // '['
	var atom Atom
	atom.Bracket = true

	start := p.pos
	if n, ok := p.number(); ok {
		if n == 0 {
			return atom, p.failAt(start, "isotope must be positive")
		}
		if n > maxIsotope {
			return atom, p.failAt(start, "isotope %s out of range", p.src[start:p.pos])
		}
		atom.Isotope = n
	}

	element, aromatic, ok := p.bracketSymbol()
	if !ok {
		return atom, p.fail("unknown element")
	}
	atom.Element = element
	atom.Aromatic = aromatic

	p.chirality()

	if p.peek() == 'H' {
		p.pos++
		atom.HCount = 1
		if n, ok := p.singleDigit(); ok {
			atom.HCount = n
		}
	}

	charge, err := p.charge()
	if err != nil {
		return atom, err
	}
	atom.Charge = charge

	if p.peek() == ':' {
		p.pos++
		if _, ok := p.number(); !ok {
			return atom, p.fail("atom class must be a number")
		}
	}

	if p.peek() != ']' {
		return atom, p.fail("unterminated bracket atom")
	}
	p.pos++
	return atom, nil
}

func (p *smilesParser) bracketSymbol() (string, bool, bool) {
	rest := p.src[p.pos:]
	// Aromatic two-letter symbols first so "se" is not read as "s".
	for _, sym := range []string{"se", "as", "te", "si"} {
		if strings.HasPrefix(rest, sym) {
			p.pos += len(sym)
			return aromaticSymbols[sym], true, true
		}
	}
	if rest == "" {
		return "", false, false
	}
	if el, ok := aromaticSymbols[rest[:1]]; ok {
		p.pos++
		return el, true, true
	}
	if len(rest) >= 2 && isElement(rest[:2]) {
		p.pos += 2
		return rest[:2], false, true
	}
	if isElement(rest[:1]) {
		p.pos++
		return rest[:1], false, true
	}
	return "", false, false
}

// chirality skips @, @@ and the extended @TH1/@AL2/@SP3/@TB10/@OH20 forms.
func (p *smilesParser) chirality() {
	if p.peek() != '@' {
		return
	}
	p.pos++
	if p.peek() == '@' {
		p.pos++
		return
	}
	rest := p.src[p.pos:]
	for _, class := range []string{"TH", "AL", "SP", "TB", "OH"} {
		if strings.HasPrefix(rest, class) {
			p.pos += 2
			p.number()
			return
		}
	}
}

func (p *smilesParser) charge() (int, error) {
	sign := 0
	switch p.peek() {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 0, nil
	}
	c := p.src[p.pos]
	p.pos++
	if n, ok := p.number(); ok {
		if n > 15 {
			return 0, p.fail("charge out of range")
		}
		return sign * n, nil
	}
	count := 1
	for p.peek() == c {
		count++
		p.pos++
	}
	return sign * count, nil
}

func (p *smilesParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

// number reads a run of digits. Values saturate at numberLimit so long
// runs cannot overflow.
func (p *smilesParser) number() (int, bool) {
	start := p.pos
	n := 0
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		n = min(n*10+int(p.src[p.pos]-'0'), numberLimit)
		p.pos++
	}
	return n, p.pos > start
}

func (p *smilesParser) singleDigit() (int, bool) {
	if isDigit(p.peek()) {
		n := int(p.src[p.pos] - '0')
		p.pos++
		return n, true
	}
	return 0, false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
