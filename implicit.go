package sdf

import "github.com/soypat/geometry/ms3"

// ImplicitFunction is the collaborator contract tessellate() consumes: any
// scalar field whose zero level set is the surface of interest, negative
// inside.
//
// Implementations must be safe for concurrent calls to Value: the grid
// sampler calls it from multiple goroutines with disjoint arguments.
// Edge crossings, normals and dual vertices are computed on a single
// goroutine; that stage is not parallelized.
type ImplicitFunction interface {
	// Bounds returns a conservative bounding box: the zero level set must
	// lie entirely within it.
	Bounds() BoundingBox
	// Value returns the signed distance (or any function sharing the same
	// zero set) at p. Negative means inside.
	Value(p Point3) float32
	// Normal returns an outward-pointing, not-necessarily-unit gradient
	// estimate at p. Callers normalize the result themselves.
	Normal(p Point3) Vector3
}

// GenericSDF adapts arbitrary user functions to the ImplicitFunction
// contract. NormalFn may be nil, in which case Normal falls back to a
// central-difference estimate of ValueFn.
type GenericSDF struct {
	BoundsFn func() BoundingBox
	ValueFn  func(p Point3) float32
	NormalFn func(p Point3) Vector3
	// NormalStep sets the central-difference step used when NormalFn is
	// nil. Defaults to 1e-4 if zero.
	NormalStep float32
}

func (g *GenericSDF) Bounds() BoundingBox { return g.BoundsFn() }

func (g *GenericSDF) Value(p Point3) float32 { return g.ValueFn(p) }

func (g *GenericSDF) Normal(p Point3) Vector3 {
	if g.NormalFn != nil {
		return g.NormalFn(p)
	}
	h := g.NormalStep
	if h == 0 {
		h = 1e-4
	}
	return CentralDifferenceNormal(g.ValueFn, p, h)
}

// CentralDifferenceNormal estimates the gradient of f at p using symmetric
// central differences with step h. It is exported so ImplicitFunction
// implementations (and the mdc package's fallback path) can share the same
// estimator the spec requires as a fallback when Normal returns zero.
func CentralDifferenceNormal(f func(Point3) float32, p Point3, h float32) Vector3 {
	hx := ms3.Vec{X: h}
	hy := ms3.Vec{Y: h}
	hz := ms3.Vec{Z: h}
	inv := 1 / (2 * h)
	return Vector3{
		X: (f(ms3.Add(p, hx)) - f(ms3.Sub(p, hx))) * inv,
		Y: (f(ms3.Add(p, hy)) - f(ms3.Sub(p, hy))) * inv,
		Z: (f(ms3.Add(p, hz)) - f(ms3.Sub(p, hz))) * inv,
	}
}
