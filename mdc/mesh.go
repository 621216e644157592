package mdc

import (
	sdf "github.com/larsbrubaker/tessellation"
)

// quadCellRef names one of the (up to) 4 leaf cells surrounding a
// single active lattice edge, plus which of that cell's local edges
// the shared lattice edge corresponds to.
type quadCellRef struct {
	i, j, k   int
	localEdge int
}

// quadCellsForEdge returns the 4 leaf cells sharing the lattice edge
// of the given axis (0=X,1=Y,2=Z) with lower endpoint (i,j,k), in
// cyclic order around the edge, along with whether all 4 lie within
// the leaf grid. Standard dual contouring only emits geometry for
// edges with a complete ring of 4 cells; the one-cell margin added
// when the grid was built (spec §4.1) keeps every true surface
// crossing away from the grid boundary, so this never clips real
// geometry.
func quadCellsForEdge(axis, i, j, k, nx, ny, nz int) (refs [4]quadCellRef, complete bool) {
	// (d1, d2) walks the cycle (0,0) -> (1,0) -> (1,1) -> (0,1), matching
	// the c00,c10,c11,c01 face-loop convention used in cellconfig.go.
	cycle := [4][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for n, d := range cycle {
		d1, d2 := d[0], d[1]
		var ci, cj, ck, localEdge int
		switch axis {
		case 0:
			ci, cj, ck = i, j-d1, k-d2
			localEdge = d1 + 2*d2
		case 1:
			ci, cj, ck = i-d1, j, k-d2
			localEdge = 4 + d1 + 2*d2
		case 2:
			ci, cj, ck = i-d1, j-d2, k
			localEdge = 8 + d1 + 2*d2
		}
		if ci < 0 || cj < 0 || ck < 0 || ci >= nx || cj >= ny || ck >= nz {
			return refs, false
		}
		refs[n] = quadCellRef{i: ci, j: cj, k: ck, localEdge: localEdge}
	}
	return refs, true
}

// meshBuilder accumulates the final vertex buffer while faces are
// emitted, lazily assigning each distinct dual vertex (octree node or
// multi-component record) the first time a face references it.
type meshBuilder struct {
	mesh        Mesh
	octreeIndex map[CellID]int32
}

func newMeshBuilder() *meshBuilder {
	return &meshBuilder{octreeIndex: make(map[CellID]int32)}
}

func (b *meshBuilder) addVertex(p sdf.Point3, n sdf.Vector3) int32 {
	idx := int32(len(b.mesh.Vertices))
	b.mesh.Vertices = append(b.mesh.Vertices, p)
	b.mesh.Normals = append(b.mesh.Normals, n)
	return idx
}

// resolveVertex returns the global vertex index representing leaf cell
// (i,j,k)'s dual vertex on the side of localEdge, assigning it on
// first use. ok is false if the cell has no active component at all
// (shouldn't happen for a cell adjoining an active lattice edge, but
// guards against a malformed config).
func (b *meshBuilder) resolveVertex(st *buildState, ref quadCellRef) (int32, bool) {
	key := cellKey{int32(ref.i), int32(ref.j), int32(ref.k)}
	if records, ok := st.multi[key]; ok {
		for _, r := range records {
			if !containsEdge(r.edges, ref.localEdge) {
				continue
			}
			if r.globalIndex < 0 {
				r.globalIndex = b.addVertex(r.vertex, r.normal)
			}
			return r.globalIndex, true
		}
		return 0, false
	}

	leafID := CellID{I: int32(ref.i), J: int32(ref.j), K: int32(ref.k), Level: 0}
	effID, node := st.oct.effectiveVertex(leafID)
	if node == nil {
		return 0, false
	}
	idx, ok := b.octreeIndex[effID]
	if !ok {
		idx = b.addVertex(node.vertex, node.normal)
		b.octreeIndex[effID] = idx
	}
	return idx, true
}

// emitFaces walks every lattice edge of the grid, and for each one
// whose endpoints differ in sign, resolves the surrounding ring of 4
// dual vertices and emits two triangles, oriented consistently with
// the sign gradient along the edge (spec §4.5) and split along
// whichever diagonal is shorter to avoid thin slivers.
func emitFaces(st *buildState, b *meshBuilder) {
	g := st.grid
	for axis := 0; axis < 3; axis++ {
		nxL, nyL, nzL := edgeLatticeExtent(axis, g.nx, g.ny, g.nz)
		for k := 0; k <= nzL; k++ {
			for j := 0; j <= nyL; j++ {
				for i := 0; i <= nxL; i++ {
					emitEdgeFaces(st, b, axis, i, j, k)
				}
			}
		}
	}
}

// edgeLatticeExtent returns the inclusive upper loop bound for lattice
// points along each of the two axes perpendicular to axis, and the
// inclusive upper bound for the lower endpoint of an edge along axis
// itself (two less than the number of lattice points, since the last
// lattice point has no "next" point).
func edgeLatticeExtent(axis, nx, ny, nz int) (i, j, k int) {
	switch axis {
	case 0:
		return nx - 1, ny, nz
	case 1:
		return nx, ny - 1, nz
	default:
		return nx, ny, nz - 1
	}
}

func edgeEndpoints(g *cornerGrid, axis, i, j, k int) (va, vb float32) {
	va = g.at(i, j, k)
	switch axis {
	case 0:
		vb = g.at(i+1, j, k)
	case 1:
		vb = g.at(i, j+1, k)
	default:
		vb = g.at(i, j, k+1)
	}
	return va, vb
}

func emitEdgeFaces(st *buildState, b *meshBuilder, axis, i, j, k int) {
	g := st.grid
	va, vb := edgeEndpoints(g, axis, i, j, k)
	if outside(va) == outside(vb) {
		return
	}

	refs, complete := quadCellsForEdge(axis, i, j, k, g.nx, g.ny, g.nz)
	if !complete {
		return
	}

	var idx [4]int32
	for n, ref := range refs {
		v, ok := b.resolveVertex(st, ref)
		if !ok {
			return
		}
		idx[n] = v
	}

	// The ring from quadCellsForEdge winds right-handed about +axis for
	// X and Z edges, but left-handed for Y edges (its (d1,d2) walk x then
	// z, and x×z = -y). outside(va) true means the surface is crossed
	// going from outside to inside with increasing axis coordinate, so
	// the outward normal points along -axis. Reverse the ring whenever
	// its handedness disagrees with the outward direction.
	flip := outside(va)
	if axis == 1 {
		flip = !flip
	}
	if flip {
		idx[0], idx[1], idx[2], idx[3] = idx[3], idx[2], idx[1], idx[0]
	}

	appendQuad(b, idx)
}

// appendQuad splits the quad idx[0..3] into two triangles along
// whichever diagonal is shorter, dropping any triangle left degenerate
// by octree collapse.
//
// Collapse never changes which leaf cells border which lattice edges;
// it only merges some cells' effective vertex down to a shared coarse
// ancestor. A quad entirely inside a collapsed region ends up with all
// four corners equal to that ancestor (both triangles degenerate, no
// geometry needed there); a quad straddling the collapse boundary gets
// exactly one degenerate and one real triangle, and the real one is
// precisely the fan triangle connecting the coarse vertex to its
// finer neighbors. Every surviving triangle still borders its
// neighbors the same way the uncollapsed mesh did, so the mesh stays
// watertight without any separate T-junction stitching pass.
func appendQuad(b *meshBuilder, idx [4]int32) {
	p := b.mesh.Vertices
	d02 := sqDist(p[idx[0]], p[idx[2]])
	d13 := sqDist(p[idx[1]], p[idx[3]])
	var tris [2][3]int32
	if d13 < d02 {
		tris = [2][3]int32{{idx[0], idx[1], idx[3]}, {idx[1], idx[2], idx[3]}}
	} else {
		tris = [2][3]int32{{idx[0], idx[1], idx[2]}, {idx[0], idx[2], idx[3]}}
	}
	for _, tri := range tris {
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			continue
		}
		b.mesh.Faces = append(b.mesh.Faces, tri)
	}
}

func sqDist(a, b sdf.Point3) float32 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}
