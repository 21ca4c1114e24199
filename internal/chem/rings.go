package chem

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// graph returns the molecule as an undirected gonum graph whose node IDs
// are atom indices.
func (m *Molecule) graph() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := range m.atoms {
		g.AddNode(simple.Node(i))
	}
	for _, b := range m.bonds {
		g.SetEdge(simple.Edge{F: simple.Node(b.A), T: simple.Node(b.B)})
	}
	return g
}

// fragments returns the connected components as sorted atom index lists,
// ordered by their lowest atom index.
func (m *Molecule) fragments() [][]int {
	components := topo.ConnectedComponents(m.graph())
	out := make([][]int, 0, len(components))
	for _, c := range components {
		out = append(out, nodeIndices(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func nodeIndices(nodes []graph.Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = int(n.ID())
	}
	sort.Ints(out)
	return out
}

// rings returns one ring per cycle-closing bond: the shortest path between
// the bond ends that avoids the bond itself, as an ordered atom cycle.
// Rings are ordered by size, then by lowest atom index. Together they form
// a cycle basis of the molecule.
func (m *Molecule) rings() [][]int {
	// A bond closes a cycle when its ends are already connected by the
	// bonds seen before it.
	forest := simple.NewUndirectedGraph()
	for i := range m.atoms {
		forest.AddNode(simple.Node(i))
	}
	var closures []int
	for bi, b := range m.bonds {
		if topo.PathExistsIn(forest, simple.Node(b.A), simple.Node(b.B)) {
			closures = append(closures, bi)
			continue
		}
		forest.SetEdge(simple.Edge{F: simple.Node(b.A), T: simple.Node(b.B)})
	}

	var out [][]int
	seen := make(map[string]bool)
	for _, bi := range closures {
		ring := m.shortestPathAvoiding(m.bonds[bi].A, m.bonds[bi].B, bi)
		if ring == nil {
			continue
		}
		key := ringKey(ring)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ring)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return minInt(out[i]) < minInt(out[j])
	})
	return out
}

// shortestPathAvoiding runs a breadth-first search from src to dst that
// never crosses bond skip. Neighbors are visited in index order so equal
// length alternatives always resolve the same way.
func (m *Molecule) shortestPathAvoiding(src, dst, skip int) []int {
	prev := make([]int, len(m.atoms))
	for i := range prev {
		prev[i] = -1
	}
	prev[src] = src
	queue := []int{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == dst {
			break
		}
		for _, next := range m.Neighbors(cur) {
			if prev[next] >= 0 || m.bondBetween(cur, next) == skip {
				continue
			}
			prev[next] = cur
			queue = append(queue, next)
		}
	}
	if prev[dst] < 0 {
		return nil
	}
	var path []int
	for at := dst; at != src; at = prev[at] {
		path = append(path, at)
	}
	path = append(path, src)
	return path
}

func ringKey(ring []int) string {
	sorted := append([]int(nil), ring...)
	sort.Ints(sorted)
	key := make([]byte, 0, len(sorted)*4)
	for _, v := range sorted {
		key = append(key, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return string(key)
}

func minInt(values []int) int {
	lowest := values[0]
	for _, v := range values[1:] {
		if v < lowest {
			lowest = v
		}
	}
	return lowest
}
