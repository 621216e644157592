package mdc

import (
	"github.com/larsbrubaker/tessellation/internal/qef"

	sdf "github.com/larsbrubaker/tessellation"
)

// octreeNode is one collapsed (or collapsible) node of the adaptive
// octree: the merged QEF of everything beneath it, the vertex that QEF
// solves to, and whether the node actually represents its entire
// subtree as a single vertex.
type octreeNode struct {
	acc       qef.Accumulator
	vertex    sdf.Point3
	normal    sdf.Vector3
	residual  float32
	collapsed bool
}

// octree drives the bottom-up adaptive simplification pass described
// in spec §4.6: starting from the single-component leaf cells, it
// repeatedly tries to represent a group of 8 sibling nodes with one
// parent vertex, subject to a manifold test and an error-bound test.
// Multi-component leaf cells (where the surface's local topology
// genuinely needs more than one vertex) are never seeded and block
// collapse for every ancestor above them; a leaf cell with zero active
// components (fully one sign, no surface passes through it) is also
// never seeded but does NOT block collapse, since it contributes
// nothing to merge. A node only collapses once everything under it
// that actually carries surface already resolves to exactly one
// vertex.
type octree struct {
	fn             sdf.ImplicitFunction
	grid           *cornerGrid
	relativeError  float32
	maxDepth       int
	nodes          map[CellID]*octreeNode
	collapsedCount int
}

func newOctree(fn sdf.ImplicitFunction, g *cornerGrid, relativeError float32, maxDepth int) *octree {
	return &octree{fn: fn, grid: g, relativeError: relativeError, maxDepth: maxDepth, nodes: make(map[CellID]*octreeNode)}
}

// seedLeaf registers the single-component dual vertex already computed
// for leaf cell (i,j,k) as a level-0 octree node eligible for collapse.
// Cells with zero or more than one component are deliberately never
// seeded; an unseeded multi-component cell is what blocks collapse of
// its ancestors, while an unseeded zero-component cell does not (see
// resolveChild).
func (o *octree) seedLeaf(i, j, k int, acc qef.Accumulator, vertex sdf.Point3, normal sdf.Vector3, residual float32) {
	id := CellID{I: int32(i), J: int32(j), K: int32(k), Level: 0}
	o.nodes[id] = &octreeNode{acc: acc, vertex: vertex, normal: normal, residual: residual, collapsed: true}
}

// effectiveVertex climbs from a leaf cell's CellID to the highest
// ancestor that collapsed into a single vertex, returning that node.
// If the leaf itself never collapsed further (or was never seeded),
// its own node (or nil) is returned.
func (o *octree) effectiveVertex(leaf CellID) (CellID, *octreeNode) {
	id := leaf
	for {
		parent := id.Parent()
		node, ok := o.nodes[parent]
		if !ok || !node.collapsed {
			break
		}
		id = parent
	}
	return id, o.nodes[id]
}

// simplify attempts to collapse the octree level by level, from the
// leaves upward, stopping at maxDepth (if positive) or once a level
// produces no new collapses. It returns the first numerical failure a
// merged QEF solve reports (spec §7); an ordinary refusal to collapse
// (failed manifold or error-bound test) is not an error.
func (o *octree) simplify() error {
	level := uint8(0)
	for {
		if o.maxDepth > 0 && int(level) >= o.maxDepth {
			return nil
		}
		parents := o.candidateParents(level)
		if len(parents) == 0 {
			return nil
		}
		progressed := false
		for _, parentID := range parents {
			collapsed, err := o.tryCollapse(parentID)
			if err != nil {
				return err
			}
			if collapsed {
				progressed = true
			}
		}
		if !progressed {
			return nil
		}
		level++
	}
}

// candidateParents returns every CellID one level above level that has
// at least one existing child node, deduplicated.
func (o *octree) candidateParents(level uint8) []CellID {
	seen := map[CellID]bool{}
	var out []CellID
	for id := range o.nodes {
		if id.Level != level {
			continue
		}
		p := id.Parent()
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// tryCollapse attempts to represent parentID's 8 children as a single
// vertex. It returns true if the collapse succeeded (a new node for
// parentID was recorded). A non-nil error means a merged QEF solve
// hit a genuine numerical failure (spec §7), which must abort the
// whole tessellation rather than just refuse this one collapse.
func (o *octree) tryCollapse(parentID CellID) (bool, error) {
	if _, exists := o.nodes[parentID]; exists {
		return false, nil
	}

	var children []*octreeNode
	for c := 0; c < numCorners; c++ {
		off := cornerOffset[c]
		childID := parentID.Child(off[0], off[1], off[2])
		node, blocking := o.resolveChild(childID)
		if blocking {
			return false, nil
		}
		if node != nil {
			children = append(children, node)
		}
	}
	if len(children) == 0 {
		return false, nil
	}

	mask, ok := o.coarseCornerMask(parentID)
	if !ok {
		return false, nil
	}
	cfg := lookupCellConfig(mask)
	if len(cfg.components) != 1 {
		return false, nil
	}

	var merged qef.Accumulator
	for _, child := range children {
		merged.Merge(child.acc)
	}
	x, residual, err := merged.Solve()
	if err != nil {
		return false, newError(ErrNumericalFailure, "QEF solve failed while collapsing octree node %+v: %v", parentID, err)
	}

	edgeLength := o.grid.cellSize * float32(int32(1)<<(parentID.Level))
	threshold := (o.relativeError * edgeLength) * (o.relativeError * edgeLength)
	if residual > threshold {
		return false, nil
	}

	vertex := sdf.Point3{X: x.X, Y: x.Y, Z: x.Z}
	o.nodes[parentID] = &octreeNode{
		acc:       merged,
		vertex:    vertex,
		normal:    finalVertexNormal(o.fn, vertex, sumNormals(children)),
		residual:  residual,
		collapsed: true,
	}
	o.collapsedCount++
	return true, nil
}

// resolveChild looks up childID among the already-collapsed nodes. If
// it isn't there, a non-leaf childID always blocks the parent (an
// unresolved coarser subtree might still hide more than one vertex),
// but a leaf childID is resolved directly against the sampled grid: a
// leaf cell with zero active components has no surface passing
// through it at all, so it contributes nothing to the merge and must
// not block its parent from collapsing (this is the common case along
// any mostly-flat region of the surface). A leaf with one or more
// components that was nonetheless never seeded is a multi-component
// cell, which does block collapse.
func (o *octree) resolveChild(childID CellID) (node *octreeNode, blocking bool) {
	if node, ok := o.nodes[childID]; ok {
		if !node.collapsed {
			return nil, true
		}
		return node, false
	}
	if childID.Level != 0 {
		return nil, true
	}
	i, j, k := int(childID.I), int(childID.J), int(childID.K)
	if i < 0 || j < 0 || k < 0 || i >= o.grid.nx || j >= o.grid.ny || k >= o.grid.nz {
		return nil, true
	}
	cfg := lookupCellConfig(cellCornerMask(o.grid, i, j, k))
	if len(cfg.components) == 0 {
		return nil, false
	}
	return nil, true
}

// coarseCornerMask samples the parent cell's own 8 corners directly
// from the grid (they coincide with existing lattice samples, since
// the octree coarsens the mesh, not the sampling) and returns its sign
// mask, or ok=false if any corner lies outside the sampled grid.
func (o *octree) coarseCornerMask(id CellID) (mask uint8, ok bool) {
	scale := int32(1) << id.Level
	baseI, baseJ, baseK := id.I*scale, id.J*scale, id.K*scale
	for c := 0; c < numCorners; c++ {
		off := cornerOffset[c]
		i := int(baseI + off[0]*scale)
		j := int(baseJ + off[1]*scale)
		k := int(baseK + off[2]*scale)
		if i < 0 || j < 0 || k < 0 || i > o.grid.nx || j > o.grid.ny || k > o.grid.nz {
			return 0, false
		}
		if outside(o.grid.at(i, j, k)) {
			mask |= 1 << uint(c)
		}
	}
	return mask, true
}

// sumNormals adds up the already-computed normals of a collapsed
// node's surviving children, for use as finalVertexNormal's fallback
// when the merged vertex's own fn.Normal query is degenerate.
func sumNormals(nodes []*octreeNode) sdf.Vector3 {
	var sum sdf.Vector3
	for _, n := range nodes {
		sum.X += n.normal.X
		sum.Y += n.normal.Y
		sum.Z += n.normal.Z
	}
	return sum
}
