// Package mdc implements Manifold Dual Contouring: converting an
// implicit surface (an sdf.ImplicitFunction) into a watertight,
// manifold triangle mesh with sharp features preserved, following
// Schaefer, Ju & Warren (2007). The engine samples a uniform grid,
// builds one dual vertex per topological sheet passing through each
// active cell, solves a quadratic error function per vertex, then
// simplifies the result with an adaptive octree collapse before
// emitting triangles. Adapted from the teacher's glrender package,
// generalized from its single-vertex-per-cell renderer to the
// multi-component manifold variant.
package mdc

import sdf "github.com/larsbrubaker/tessellation"

// CellID names a cube in the adaptive octree: (I, J, K) are the cube's
// integer coordinates at Level, where level 0 is the finest (leaf) grid
// and each increasing level doubles the cube's edge length. CellID is
// comparable and usable as a map key.
type CellID struct {
	I, J, K int32
	Level   uint8
}

// Child returns the CellID of this cell's child in octant (dx, dy, dz),
// each 0 or 1, one level below (finer). Level must be > 0.
func (c CellID) Child(dx, dy, dz int32) CellID {
	return CellID{
		I:     2*c.I + dx,
		J:     2*c.J + dy,
		K:     2*c.K + dz,
		Level: c.Level - 1,
	}
}

// Parent returns the CellID of the octree node one level above (coarser)
// that contains c.
func (c CellID) Parent() CellID {
	return CellID{I: floorDiv2(c.I), J: floorDiv2(c.J), K: floorDiv2(c.K), Level: c.Level + 1}
}

func floorDiv2(v int32) int32 {
	if v >= 0 {
		return v / 2
	}
	return -((-v + 1) / 2)
}

// Origin returns the minimum corner of the cell in grid-index units at
// level 0 (i.e. scaled by 2^Level).
func (c CellID) Origin() (i, j, k int32) {
	scale := int32(1) << c.Level
	return c.I * scale, c.J * scale, c.K * scale
}

// Mesh is the tessellation result: an indexed triangle list with one
// normal per vertex.
type Mesh struct {
	Vertices []sdf.Point3
	Normals  []sdf.Vector3
	Faces    [][3]int32

	// CollapsedNodes counts how many octree nodes the adaptive
	// simplification pass (spec §4.6) merged into a single vertex;
	// 0 when relativeError is 0. Mirrors the teacher's
	// Octree.TotalPruned counter idiom (glrender/octree.go).
	CollapsedNodes int
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return len(m.Faces) }

// Options configures a Tessellate call. The zero value is valid and
// selects the defaults documented on each field.
type Options struct {
	// BoundaryMargin extends the caller-supplied bounding box outward by
	// this many world units before the grid is laid out, in addition to
	// the one mandatory leaf-cell margin (so the surface never touches
	// the sampled region's boundary). Defaults to 0.
	BoundaryMargin float32

	// CrossingRefineIters is the number of bisection refinement steps
	// applied after the initial linear-interpolation estimate of an edge
	// crossing. 0 (the default) disables refinement and uses the linear
	// estimate directly, which is accurate enough for the smooth,
	// analytic SDFs this package targets.
	CrossingRefineIters int

	// MaxDepth bounds how many octree levels the adaptive collapse may
	// climb above the leaf grid. 0 means unbounded (collapse until the
	// manifold or error test first fails).
	MaxDepth int

	// Cancel, if non-nil, is polled between chunks of work; Tessellate
	// returns ErrCancelled promptly after it is closed.
	Cancel <-chan struct{}
}
