package mdc

import "sync"

// Cube corners are indexed 0..7 by bit pattern (x + 2y + 4z), x,y,z in
// {0,1}. Edges are indexed 0..11, grouped by axis:
//
//	X-edges: 0:(0,1)  1:(2,3)  2:(4,5)  3:(6,7)
//	Y-edges: 4:(0,2)  5:(1,3)  6:(4,6)  7:(5,7)
//	Z-edges: 8:(0,4)  9:(1,5) 10:(2,6) 11:(3,7)
const (
	numCorners = 8
	numEdges   = 12
)

// cornerOffset gives the (x,y,z) unit offset of corner index c.
var cornerOffset = [numCorners][3]int32{
	{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
}

// edgeCorners gives the two corner indices an edge connects.
var edgeCorners = [numEdges][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// faceLoop describes one of the cube's 6 faces as a cycle of 4 corners
// (c00, c10, c11, c01, matching the square boundary order) together with
// the 4 edges of that cycle in the same order (bottom, right, top,
// left).
type faceLoop struct {
	corners [4]int
	edges   [4]int
}

var faces = [6]faceLoop{
	{corners: [4]int{0, 1, 3, 2}, edges: [4]int{0, 5, 1, 4}},   // z-
	{corners: [4]int{4, 5, 7, 6}, edges: [4]int{2, 7, 3, 6}},   // z+
	{corners: [4]int{0, 1, 5, 4}, edges: [4]int{0, 9, 2, 8}},   // y-
	{corners: [4]int{2, 3, 7, 6}, edges: [4]int{1, 11, 3, 10}}, // y+
	{corners: [4]int{0, 2, 6, 4}, edges: [4]int{4, 10, 6, 8}},  // x-
	{corners: [4]int{1, 3, 7, 5}, edges: [4]int{5, 11, 7, 9}},  // x+
}

// cellConfig is the precomputed manifold decomposition for one of the
// 256 corner sign patterns: the active edges, grouped into the
// connected components that each receive their own dual vertex (spec
// §4.3). Components with zero edges never occur; an all-same-sign
// pattern has zero components.
type cellConfig struct {
	components [][]int // each inner slice holds edge indices in one component
}

var (
	cellConfigTable     [256]cellConfig
	cellConfigTableOnce sync.Once
)

// lookupCellConfig returns the precomputed manifold decomposition for
// the given corner sign mask (bit c set means corner c is outside, i.e.
// positive, per the spec's zero-is-outside tie-break).
func lookupCellConfig(mask uint8) cellConfig {
	cellConfigTableOnce.Do(buildCellConfigTable)
	return cellConfigTable[mask]
}

func buildCellConfigTable() {
	for mask := 0; mask < 256; mask++ {
		cellConfigTable[mask] = buildCellConfig(uint8(mask))
	}
}

// buildCellConfig computes the edge-component partition for one sign
// mask by unioning active edges that are connected across each of the
// cube's 6 faces, then grouping the result with a union-find structure.
//
// On a face, the number of active edges (sign changes walking the
// 4-cycle) is always 0, 2, or 4. With 2 active edges there is only one
// possible pairing. With 4 active edges the face sign pattern is the
// checkerboard ambiguity (diagonal corners share a sign, the other
// diagonal shares the opposite sign); the pairing is resolved by a
// fixed rule keyed on the sign of the face's first corner, so the
// result depends only on the corner signs and is reproducible without
// sampling the field's interior.
func buildCellConfig(mask uint8) cellConfig {
	uf := newUnionFind(numEdges)
	sign := func(corner int) bool { return mask&(1<<uint(corner)) != 0 }

	for _, f := range faces {
		active := make([]int, 0, 4)
		for i := 0; i < 4; i++ {
			a := f.corners[i]
			b := f.corners[(i+1)%4]
			if sign(a) != sign(b) {
				active = append(active, f.edges[i])
			}
		}
		switch len(active) {
		case 0:
			// no crossings on this face
		case 2:
			uf.union(active[0], active[1])
		case 4:
			// Checkerboard: edges are, in cycle order, bottom(0-1),
			// right(1-2), top(2-3), left(3-0). Pair (bottom,left) with
			// (top,right) when corner 0 of the face is outside,
			// otherwise pair (bottom,right) with (top,left).
			bottom, right, top, left := active[0], active[1], active[2], active[3]
			if sign(f.corners[0]) {
				uf.union(bottom, left)
				uf.union(top, right)
			} else {
				uf.union(bottom, right)
				uf.union(top, left)
			}
		default:
			// Every other face loop has an even number of sign changes;
			// this cannot happen for a 4-cycle.
			panic("mdc: face has odd crossing count")
		}
	}

	groups := map[int][]int{}
	var order []int
	for e := 0; e < numEdges; e++ {
		a, b := edgeCorners[e][0], edgeCorners[e][1]
		if sign(a) == sign(b) {
			continue // not an active edge
		}
		root := uf.find(e)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], e)
	}

	cfg := cellConfig{components: make([][]int, 0, len(order))}
	for _, root := range order {
		cfg.components = append(cfg.components, groups[root])
	}
	return cfg
}

// unionFind is a minimal disjoint-set structure over a fixed universe
// of small integers, used only while building the cell-config table.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
