package mdc

import (
	sdf "github.com/larsbrubaker/tessellation"
)

// outside reports whether a sampled value counts as outside the
// surface. Zero is treated as outside per the tie-break convention, so
// a grid point that lands exactly on the surface never produces a
// degenerate zero-length active edge.
func outside(v float32) bool { return v >= 0 }

// cellCornerMask packs the 8 corner sign bits of the leaf cell whose
// minimum corner is grid lattice point (i,j,k) into the bit layout
// lookupCellConfig expects (bit c set means corner c, per
// cornerOffset, is outside).
func cellCornerMask(g *cornerGrid, i, j, k int) uint8 {
	var mask uint8
	for c := 0; c < numCorners; c++ {
		off := cornerOffset[c]
		v := g.at(i+int(off[0]), j+int(off[1]), k+int(off[2]))
		if outside(v) {
			mask |= 1 << uint(c)
		}
	}
	return mask
}

// edgeCrossing is a single zero-crossing sample: its world-space
// position and the surface normal there, used as one tangent-plane
// constraint fed into a cell component's QEF accumulator.
type edgeCrossing struct {
	Point  sdf.Point3
	Normal sdf.Vector3
}

// computeEdgeCrossing locates the zero crossing along the edge of leaf
// cell (i,j,k) identified by edge index e (see cellconfig.go for the
// indexing), starting from a linear interpolation of the two corner
// values and optionally refining with bisection.
func computeEdgeCrossing(fn sdf.ImplicitFunction, g *cornerGrid, i, j, k int, e int, refineIters int) edgeCrossing {
	ca, cb := edgeCorners[e][0], edgeCorners[e][1]
	oa, ob := cornerOffset[ca], cornerOffset[cb]
	pa := g.point(i+int(oa[0]), j+int(oa[1]), k+int(oa[2]))
	pb := g.point(i+int(ob[0]), j+int(ob[1]), k+int(ob[2]))
	va := g.at(i+int(oa[0]), j+int(oa[1]), k+int(oa[2]))
	vb := g.at(i+int(ob[0]), j+int(ob[1]), k+int(ob[2]))

	t := linearCrossing(va, vb)
	p := lerpPoint(pa, pb, t)

	if refineIters > 0 {
		p = refineCrossing(fn, pa, pb, va, vb, refineIters)
	}

	return edgeCrossing{Point: p, Normal: crossingNormal(fn, p, g.cellSize)}
}

// crossingNormal evaluates fn.Normal at p, falling back to a
// central-difference estimate of fn.Value (spec §4.2) when the
// implicit function reports a degenerate zero gradient there. If the
// fallback also vanishes, the zero vector is returned and the caller's
// QEF accumulator treats the crossing as contributing no plane, only a
// mass-point sample.
func crossingNormal(fn sdf.ImplicitFunction, p sdf.Point3, h float32) sdf.Vector3 {
	n := fn.Normal(p)
	if n.X != 0 || n.Y != 0 || n.Z != 0 {
		return n
	}
	step := h * 1e-3
	if step < 1e-9 {
		step = 1e-9
	}
	return sdf.CentralDifferenceNormal(fn.Value, p, step)
}

// linearCrossing returns the interpolation parameter t in [0,1] along
// an edge with endpoint values va, vb such that the linear
// interpolant is zero at t.
func linearCrossing(va, vb float32) float32 {
	d := va - vb
	if d == 0 {
		return 0.5
	}
	t := va / d
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t
}

func lerpPoint(a, b sdf.Point3, t float32) sdf.Point3 {
	return sdf.Point3{
		X: a.X + t*(b.X-a.X),
		Y: a.Y + t*(b.Y-a.Y),
		Z: a.Z + t*(b.Z-a.Z),
	}
}

// refineCrossing bisects the edge iters times, starting from the whole
// edge as its bracket, then linearly interpolates within the final
// bracket, to tighten the crossing location for surfaces with high
// curvature between grid points.
func refineCrossing(fn sdf.ImplicitFunction, a, b sdf.Point3, va, vb float32, iters int) sdf.Point3 {
	for n := 0; n < iters; n++ {
		mid := lerpPoint(a, b, 0.5)
		vm := fn.Value(mid)
		if outside(vm) == outside(va) {
			a, va = mid, vm
		} else {
			b, vb = mid, vm
		}
	}
	t := linearCrossing(va, vb)
	return lerpPoint(a, b, t)
}
