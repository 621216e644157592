package mdc

import (
	"github.com/larsbrubaker/tessellation/internal/qef"

	sdf "github.com/larsbrubaker/tessellation"
)

type cellKey struct{ I, J, K int32 }

// componentRecord is one dual vertex belonging to a multi-component
// leaf cell (a cell where the local topology genuinely needs more than
// one sheet, so it can never participate in octree collapse).
// globalIndex is -1 until the vertex is first referenced while
// emitting faces.
type componentRecord struct {
	edges       []int
	vertex      sdf.Point3
	normal      sdf.Vector3
	globalIndex int32
}

// buildState holds everything accumulated while walking the leaf grid:
// the octree of single-component cells (collapse candidates) and the
// multi-component cells that always render at full resolution.
type buildState struct {
	grid  *cornerGrid
	oct   *octree
	multi map[cellKey][]*componentRecord
}

func newBuildState(fn sdf.ImplicitFunction, g *cornerGrid, relativeError float32, maxDepth int) *buildState {
	return &buildState{
		grid:  g,
		oct:   newOctree(fn, g, relativeError, maxDepth),
		multi: make(map[cellKey][]*componentRecord),
	}
}

// buildLeafVertices walks every leaf cell, solving one QEF per
// manifold component and registering the result either as an octree
// collapse candidate (exactly one component) or as a fixed
// multi-component record. It stops and returns the first error a QEF
// solve reports; per-cell rank deficiency is already absorbed by
// qef.Accumulator.Solve's regularization, so an error here means the
// accumulated plane set was genuinely non-finite (spec §7).
func buildLeafVertices(fn sdf.ImplicitFunction, st *buildState, refineIters int) error {
	g := st.grid
	for k := 0; k < g.nz; k++ {
		for j := 0; j < g.ny; j++ {
			for i := 0; i < g.nx; i++ {
				mask := cellCornerMask(g, i, j, k)
				cfg := lookupCellConfig(mask)
				if len(cfg.components) == 0 {
					continue
				}
				if len(cfg.components) == 1 {
					acc, vertex, normal, residual, err := solveComponent(fn, g, i, j, k, cfg.components[0], refineIters)
					if err != nil {
						return err
					}
					st.oct.seedLeaf(i, j, k, acc, vertex, normal, residual)
					continue
				}
				records := make([]*componentRecord, 0, len(cfg.components))
				for _, edges := range cfg.components {
					_, vertex, normal, _, err := solveComponent(fn, g, i, j, k, edges, refineIters)
					if err != nil {
						return err
					}
					records = append(records, &componentRecord{edges: edges, vertex: vertex, normal: normal, globalIndex: -1})
				}
				st.multi[cellKey{int32(i), int32(j), int32(k)}] = records
			}
		}
	}
	return nil
}

// solveComponent assembles the QEF for one manifold component (a set
// of local edge indices active in leaf cell i,j,k) and solves it,
// clamping the result to the cell's slightly expanded bounding box
// (spec §4.4) so a poorly conditioned plane set can't eject the vertex
// far outside the cell it describes. Rank-deficient plane sets are
// already handled inside qef.Accumulator.Solve by regularizing toward
// the mass point, so an error here means the accumulated A matrix was
// genuinely non-finite; that is reported rather than papered over.
func solveComponent(fn sdf.ImplicitFunction, g *cornerGrid, i, j, k int, edges []int, refineIters int) (qef.Accumulator, sdf.Point3, sdf.Vector3, float32, error) {
	var acc qef.Accumulator
	var normalSum sdf.Vector3
	for _, e := range edges {
		xing := computeEdgeCrossing(fn, g, i, j, k, e, refineIters)
		acc.Add(qef.Plane{
			Point:  qef.Vec{X: xing.Point.X, Y: xing.Point.Y, Z: xing.Point.Z},
			Normal: qef.Vec{X: xing.Normal.X, Y: xing.Normal.Y, Z: xing.Normal.Z},
		})
		normalSum.X += xing.Normal.X
		normalSum.Y += xing.Normal.Y
		normalSum.Z += xing.Normal.Z
	}
	x, residual, err := acc.Solve()
	if err != nil {
		return qef.Accumulator{}, sdf.Point3{}, sdf.Vector3{}, 0,
			newError(ErrNumericalFailure, "QEF solve failed for cell (%d,%d,%d): %v", i, j, k, err)
	}
	vertex := clampToCellBox(sdf.Point3{X: x.X, Y: x.Y, Z: x.Z}, g, i, j, k)
	return acc, vertex, finalVertexNormal(fn, vertex, normalSum), residual, nil
}

// finalVertexNormal re-queries fn.Normal at the dual vertex's final
// (clamped) position, per spec §4.4/§4.7: per-vertex mesh normals come
// from the surface itself at the placed vertex, not from the edge
// crossings that produced it. If fn.Normal reports a degenerate zero
// gradient there, it falls back to the normalized sum of the
// component's crossing normals.
func finalVertexNormal(fn sdf.ImplicitFunction, vertex sdf.Point3, crossingSum sdf.Vector3) sdf.Vector3 {
	n := fn.Normal(vertex)
	if n.X != 0 || n.Y != 0 || n.Z != 0 {
		return normalizeOrZero(n)
	}
	return normalizeOrZero(crossingSum)
}

// clampExpand is the fraction of one cell's edge length the clamping
// box extends beyond the cell on every side, matching the spec's
// allowance for the solved vertex to land slightly outside the cell
// that produced it.
const clampExpand = 0.25

func clampToCellBox(p sdf.Point3, g *cornerGrid, i, j, k int) sdf.Point3 {
	lo := g.point(i, j, k)
	hi := g.point(i+1, j+1, k+1)
	margin := clampExpand * g.cellSize
	return sdf.Point3{
		X: clampF(p.X, lo.X-margin, hi.X+margin),
		Y: clampF(p.Y, lo.Y-margin, hi.Y+margin),
		Z: clampF(p.Z, lo.Z-margin, hi.Z+margin),
	}
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalizeOrZero(v sdf.Vector3) sdf.Vector3 {
	mag2 := v.X*v.X + v.Y*v.Y + v.Z*v.Z
	if mag2 == 0 {
		return v
	}
	inv := float32(1) / sqrtf(mag2)
	return sdf.Vector3{X: v.X * inv, Y: v.Y * inv, Z: v.Z * inv}
}

func containsEdge(edges []int, e int) bool {
	for _, x := range edges {
		if x == e {
			return true
		}
	}
	return false
}
