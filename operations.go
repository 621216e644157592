package sdf

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// opUnion is the pointwise min() combinator. Adapted from the teacher's
// OpUnion/operations.go, stripped of GLSL shader generation.
type opUnion struct {
	a, b ImplicitFunction
}

// Union returns the shape occupied by a or b.
func Union(a, b ImplicitFunction) ImplicitFunction { return opUnion{a, b} }

func (u opUnion) Bounds() BoundingBox {
	return unionBounds(u.a.Bounds(), u.b.Bounds())
}

func (u opUnion) Value(p Point3) float32 {
	return math32.Min(u.a.Value(p), u.b.Value(p))
}

func (u opUnion) Normal(p Point3) Vector3 {
	if u.a.Value(p) <= u.b.Value(p) {
		return u.a.Normal(p)
	}
	return u.b.Normal(p)
}

// opIntersect is the pointwise max() combinator.
type opIntersect struct {
	a, b ImplicitFunction
}

// Intersection returns the shape occupied by both a and b.
func Intersection(a, b ImplicitFunction) ImplicitFunction { return opIntersect{a, b} }

func (u opIntersect) Bounds() BoundingBox {
	return intersectBounds(u.a.Bounds(), u.b.Bounds())
}

func (u opIntersect) Value(p Point3) float32 {
	return math32.Max(u.a.Value(p), u.b.Value(p))
}

func (u opIntersect) Normal(p Point3) Vector3 {
	if u.a.Value(p) >= u.b.Value(p) {
		return u.a.Normal(p)
	}
	return u.b.Normal(p)
}

// opDiff is max(a, -b). Adapted from the teacher's diff/operations.go.
type opDiff struct {
	a, b ImplicitFunction
}

// Difference returns the shape occupied by a but not by b.
func Difference(a, b ImplicitFunction) ImplicitFunction { return opDiff{a, b} }

func (u opDiff) Bounds() BoundingBox { return u.a.Bounds() }

func (u opDiff) Value(p Point3) float32 {
	return math32.Max(u.a.Value(p), -u.b.Value(p))
}

func (u opDiff) Normal(p Point3) Vector3 {
	if u.a.Value(p) >= -u.b.Value(p) {
		return u.a.Normal(p)
	}
	return ms3.Scale(-1, u.b.Normal(p))
}

// opTranslate delegates to shape with p shifted by -offset. Adapted from the
// teacher's translate/operations.go.
type opTranslate struct {
	shape  ImplicitFunction
	offset Vector3
}

// Translate returns shape moved by offset.
func Translate(shape ImplicitFunction, offset Vector3) ImplicitFunction {
	return opTranslate{shape: shape, offset: offset}
}

func (t opTranslate) Bounds() BoundingBox {
	bb := t.shape.Bounds()
	return BoundingBox{Min: ms3.Add(bb.Min, t.offset), Max: ms3.Add(bb.Max, t.offset)}
}

func (t opTranslate) Value(p Point3) float32 {
	return t.shape.Value(ms3.Sub(p, t.offset))
}

func (t opTranslate) Normal(p Point3) Vector3 {
	return t.shape.Normal(ms3.Sub(p, t.offset))
}

func unionBounds(a, b BoundingBox) BoundingBox {
	return BoundingBox{Min: ms3.MinElem(a.Min, b.Min), Max: ms3.MaxElem(a.Max, b.Max)}
}

func intersectBounds(a, b BoundingBox) BoundingBox {
	return BoundingBox{Min: ms3.MaxElem(a.Min, b.Min), Max: ms3.MinElem(a.Max, b.Max)}
}
