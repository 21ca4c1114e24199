package chem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// Layout computes 2D depiction coordinates. Rings are drawn as regular
// polygons, fused rings are built outward from their shared bond, chains
// zig-zag at 120 degrees and disconnected fragments are placed side by side
// from left to right. The result depends only on the molecule.
func (m *Molecule) Layout() error {
	if len(m.atoms) == 0 {
		return fmt.Errorf("%w: molecule has no atoms", ErrLayout)
	}

	l := &layouter{
		mol:    m,
		length: m.bondLength,
		pos:    make([]r2.Vec, len(m.atoms)),
		placed: make([]bool, len(m.atoms)),
	}
	if l.length <= 0 {
		l.length = DefaultBondLength
	}
	l.rings = m.rings()
	l.ringDone = make([]bool, len(l.rings))

	offset := 0.0
	for _, frag := range m.fragments() {
		l.placeFragment(frag)
		offset = l.shiftFragment(frag, offset)
	}

	for i := range m.atoms {
		m.atoms[i].X = l.pos[i].X
		m.atoms[i].Y = l.pos[i].Y
	}
	if !m.coordsFinite() {
		return fmt.Errorf("%w: non-finite coordinates", ErrLayout)
	}
	m.laidOut = true
	return nil
}

type layouter struct {
	mol      *Molecule
	length   float64
	pos      []r2.Vec
	placed   []bool
	rings    [][]int
	ringDone []bool
}

// placeFragment lays out one connected component breadth-first from its
// lowest-indexed atom.
func (l *layouter) placeFragment(frag []int) {
	start := frag[0]
	l.set(start, r2.Vec{})
	queue := []int{start}
	l.placeRingsAt(start, &queue)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range l.mol.Neighbors(cur) {
			if l.placed[next] {
				continue
			}
			if ri := l.pendingRingWith(cur, next); ri >= 0 {
				l.placeRing(ri, &queue)
				continue
			}
			l.set(next, l.chainPosition(cur))
			queue = append(queue, next)
			l.placeRingsAt(next, &queue)
		}
	}
}

func (l *layouter) set(i int, p r2.Vec) {
	l.pos[i] = p
	l.placed[i] = true
}

// placeRingsAt draws every unplaced ring through atom i.
func (l *layouter) placeRingsAt(i int, queue *[]int) {
	for ri, ring := range l.rings {
		if !l.ringDone[ri] && contains(ring, i) {
			l.placeRing(ri, queue)
		}
	}
}

// pendingRingWith returns an unplaced ring holding the bond a-b, or -1.
func (l *layouter) pendingRingWith(a, b int) int {
	for ri, ring := range l.rings {
		if l.ringDone[ri] {
			continue
		}
		if ringHasBond(ring, a, b) {
			return ri
		}
	}
	return -1
}

// placeRing draws ring ri as a regular polygon. When two consecutive ring
// atoms are already placed the polygon is built on that shared bond, on
// the side away from the atoms drawn so far. Otherwise it hangs off its
// single placed atom, opposite to that atom's placed neighbors.
func (l *layouter) placeRing(ri int, queue *[]int) {
	l.ringDone[ri] = true
	ring := l.rings[ri]
	n := len(ring)
	radius := l.length / (2 * math.Sin(math.Pi/float64(n)))

	var (
		center  r2.Vec
		order   []int
		theta0  float64
		step    = 2 * math.Pi / float64(n)
		anchors = 0
	)

	if u, v, ok := l.placedEdge(ring); ok {
		order = rotateRing(ring, u, v)
		mid := r2.Scale(0.5, r2.Add(l.pos[u], l.pos[v]))
		edge := r2.Sub(l.pos[v], l.pos[u])
		normal := unit(r2.Vec{X: -edge.Y, Y: edge.X})
		apothem := l.length / (2 * math.Tan(math.Pi/float64(n)))
		if r2.Dot(normal, r2.Sub(l.placedCentroid(u, v), mid)) > 0 {
			normal = r2.Scale(-1, normal)
		}
		center = r2.Add(mid, r2.Scale(apothem, normal))
		theta0 = angle(r2.Sub(l.pos[u], center))
		thetaV := angle(r2.Sub(l.pos[v], center))
		if normalizeAngle(thetaV-theta0) < 0 {
			step = -step
		}
		anchors = 2
	} else {
		anchor := ring[0]
		for _, a := range ring {
			if l.placed[a] {
				anchor = a
				break
			}
		}
		if !l.placed[anchor] {
			l.set(anchor, r2.Vec{})
		}
		order = rotateRing(ring, anchor, -1)
		dir := l.freeDirection(anchor)
		center = r2.Add(l.pos[anchor], r2.Scale(radius, dir))
		theta0 = angle(r2.Sub(l.pos[anchor], center))
		anchors = 1
	}

	for k, atom := range order {
		if k < anchors || l.placed[atom] {
			continue
		}
		a := theta0 + float64(k)*step
		l.set(atom, r2.Add(center, r2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}))
		*queue = append(*queue, atom)
	}
	for _, atom := range order[:anchors] {
		*queue = append(*queue, atom)
	}
}

// placedEdge finds two consecutive ring atoms that are both placed.
func (l *layouter) placedEdge(ring []int) (int, int, bool) {
	n := len(ring)
	for k := 0; k < n; k++ {
		u, v := ring[k], ring[(k+1)%n]
		if l.placed[u] && l.placed[v] {
			return u, v, true
		}
	}
	return 0, 0, false
}

// placedCentroid averages the placed neighbors of u and v other than
// themselves, falling back to the centroid of every placed atom.
func (l *layouter) placedCentroid(u, v int) r2.Vec {
	var xs, ys []float64
	for _, a := range []int{u, v} {
		for _, nb := range l.mol.Neighbors(a) {
			if nb != u && nb != v && l.placed[nb] {
				xs = append(xs, l.pos[nb].X)
				ys = append(ys, l.pos[nb].Y)
			}
		}
	}
	if len(xs) == 0 {
		for i, ok := range l.placed {
			if ok && i != u && i != v {
				xs = append(xs, l.pos[i].X)
				ys = append(ys, l.pos[i].Y)
			}
		}
	}
	if len(xs) == 0 {
		return r2.Scale(0.5, r2.Add(l.pos[u], l.pos[v]))
	}
	return r2.Vec{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}

// freeDirection is the unit vector pointing away from the placed
// neighbors of atom i.
func (l *layouter) freeDirection(i int) r2.Vec {
	var sum r2.Vec
	count := 0
	for _, nb := range l.mol.Neighbors(i) {
		if l.placed[nb] {
			sum = r2.Add(sum, unit(r2.Sub(l.pos[nb], l.pos[i])))
			count++
		}
	}
	if count == 0 {
		return r2.Vec{X: 1}
	}
	if r2.Norm(sum) < 1e-6 {
		prev := unit(r2.Sub(l.pos[l.firstPlacedNeighbor(i)], l.pos[i]))
		return r2.Vec{X: -prev.Y, Y: prev.X}
	}
	return r2.Scale(-1, unit(sum))
}

func (l *layouter) firstPlacedNeighbor(i int) int {
	for _, nb := range l.mol.Neighbors(i) {
		if l.placed[nb] {
			return nb
		}
	}
	return i
}

// chainPosition picks the position for a new neighbor of atom i. With one
// placed neighbor the candidates are the two 120 degree positions (or the
// straight continuation for sp centers); otherwise twelve directions are
// tried. The candidate farthest from every placed atom wins.
func (l *layouter) chainPosition(i int) r2.Vec {
	var placedNbs []int
	for _, nb := range l.mol.Neighbors(i) {
		if l.placed[nb] {
			placedNbs = append(placedNbs, nb)
		}
	}

	var candidates []float64
	switch len(placedNbs) {
	case 0:
		candidates = []float64{-math.Pi / 6, math.Pi / 6}
	case 1:
		back := angle(r2.Sub(l.pos[placedNbs[0]], l.pos[i]))
		if l.isLinear(i) {
			candidates = []float64{back + math.Pi}
		} else {
			// candidates[0] turns right, candidates[1] left. Keep chains
			// zig-zagging by turning opposite to the previous bend; the first
			// bend of a chain heads right.
			candidates = []float64{back + 2*math.Pi/3, back - 2*math.Pi/3}
			switch s := l.bendSign(placedNbs[0], i); {
			case s < 0:
				candidates[0], candidates[1] = candidates[1], candidates[0]
			case s == 0 && math.Cos(candidates[1]) > math.Cos(candidates[0]):
				candidates[0], candidates[1] = candidates[1], candidates[0]
			}
		}
	default:
		candidates = []float64{angle(l.freeDirection(i))}
	}
	for k := 0; k < 12; k++ {
		candidates = append(candidates, float64(k)*math.Pi/6)
	}

	best := r2.Vec{}
	bestScore := -1.0
	for _, a := range candidates {
		p := r2.Add(l.pos[i], r2.Vec{X: l.length * math.Cos(a), Y: l.length * math.Sin(a)})
		score := l.clearance(p, i)
		if score > bestScore+1e-9 {
			best, bestScore = p, score
		}
		if bestScore >= l.length*0.99 && len(placedNbs) <= 1 && score == bestScore {
			// A full bond length of clearance is good enough; prefer the
			// earlier, geometrically preferred candidate.
			break
		}
	}
	return best
}

// bendSign is the turn direction at atom prev when coming from its own
// first placed neighbor towards cur: +1 left, -1 right, 0 straight.
func (l *layouter) bendSign(prev, cur int) float64 {
	for _, nb := range l.mol.Neighbors(prev) {
		if nb == cur || !l.placed[nb] {
			continue
		}
		a := r2.Sub(l.pos[prev], l.pos[nb])
		b := r2.Sub(l.pos[cur], l.pos[prev])
		return math.Copysign(1, a.X*b.Y-a.Y*b.X)
	}
	return 0
}

// isLinear reports sp centers: a triple bond or two double bonds.
func (l *layouter) isLinear(i int) bool {
	doubles := 0
	for _, bi := range l.mol.adj[i] {
		switch l.mol.bonds[bi].Order {
		case Triple, Quadruple:
			return true
		case Double:
			doubles++
		}
	}
	return doubles >= 2
}

// clearance is the distance from p to the nearest placed atom other than
// the atom it is bonded to.
func (l *layouter) clearance(p r2.Vec, from int) float64 {
	nearest := math.Inf(1)
	for j, ok := range l.placed {
		if !ok || j == from {
			continue
		}
		if d := r2.Norm(r2.Sub(p, l.pos[j])); d < nearest {
			nearest = d
		}
	}
	return nearest
}

// shiftFragment moves a laid-out fragment so its left edge sits at offset
// and its vertical center on the x axis. It returns the next free offset.
func (l *layouter) shiftFragment(frag []int, offset float64) float64 {
	minX, maxX := math.Inf(1), math.Inf(-1)
	ys := make([]float64, len(frag))
	for k, i := range frag {
		minX = math.Min(minX, l.pos[i].X)
		maxX = math.Max(maxX, l.pos[i].X)
		ys[k] = l.pos[i].Y
	}
	shift := r2.Vec{X: offset - minX, Y: -stat.Mean(ys, nil)}
	for _, i := range frag {
		l.pos[i] = r2.Add(l.pos[i], shift)
	}
	return offset + (maxX - minX) + 2*l.length
}

// rotateRing returns the ring cycle starting at u. When v is given the
// cycle continues through v, reversing the ring if needed.
func rotateRing(ring []int, u, v int) []int {
	n := len(ring)
	start := 0
	for k, a := range ring {
		if a == u {
			start = k
			break
		}
	}
	out := make([]int, n)
	for k := range out {
		out[k] = ring[(start+k)%n]
	}
	if v >= 0 && n > 1 && out[1] != v {
		for k := 1; k < n; k++ {
			out[k] = ring[(start-k+n)%n]
		}
	}
	return out
}

func ringHasBond(ring []int, a, b int) bool {
	n := len(ring)
	for k := 0; k < n; k++ {
		u, v := ring[k], ring[(k+1)%n]
		if (u == a && v == b) || (u == b && v == a) {
			return true
		}
	}
	return false
}

func contains(values []int, x int) bool {
	for _, v := range values {
		if v == x {
			return true
		}
	}
	return false
}

func unit(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{X: 1}
	}
	return r2.Scale(1/n, v)
}

func angle(v r2.Vec) float64 { return math.Atan2(v.Y, v.X) }

// normalizeAngle maps a to (-pi, pi].
func normalizeAngle(a float64) float64 {
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
