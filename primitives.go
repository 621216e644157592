package sdf

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Sphere is a ball of radius R centered at the origin. Adapted from the
// teacher's vectorized (*sphere).Evaluate in cpu_evaluators.go.
type Sphere struct {
	R float32
}

func (s Sphere) Bounds() BoundingBox {
	return ms3.NewCenteredBox(Point3{}, ms3.Vec{X: 2 * s.R, Y: 2 * s.R, Z: 2 * s.R})
}

func (s Sphere) Value(p Point3) float32 { return ms3.Norm(p) - s.R }

func (s Sphere) Normal(p Point3) Vector3 { return ms3.Unit(p) }

// RoundedBox is an axis-aligned box with half-extents Half, with edges
// rounded by Round (Round==0 gives sharp corners). Adapted from the
// teacher's (*box).Evaluate.
type RoundedBox struct {
	Half  Vector3
	Round float32
}

func (b RoundedBox) Bounds() BoundingBox {
	ext := ms3.AddScalar(b.Round, b.Half)
	return ms3.NewCenteredBox(Point3{}, ms3.Scale(2, ext))
}

func (b RoundedBox) Value(p Point3) float32 {
	q := ms3.AddScalar(b.Round, ms3.Sub(ms3.AbsElem(p), b.Half))
	outside := ms3.Norm(ms3.MaxElem(q, Vector3{}))
	inside := math32.Min(math32.Max(q.X, math32.Max(q.Y, q.Z)), 0)
	return outside + inside - b.Round
}

func (b RoundedBox) Normal(p Point3) Vector3 {
	return CentralDifferenceNormal(b.Value, p, 1e-4)
}

// Torus is centered on the origin with its axis of revolution along Z.
// RGreater is the distance from the origin to the tube center, RLesser is
// the tube radius. Adapted from the teacher's (*torus).Evaluate.
type Torus struct {
	RGreater, RLesser float32
}

func (t Torus) Bounds() BoundingBox {
	r := t.RGreater + t.RLesser
	return ms3.NewCenteredBox(Point3{}, Vector3{X: 2 * r, Y: 2 * r, Z: 2 * t.RLesser})
}

func (t Torus) Value(p Point3) float32 {
	q := Vector3{X: math32.Hypot(p.X, p.Y) - t.RGreater, Y: p.Z}
	return math32.Hypot(q.X, q.Y) - t.RLesser
}

func (t Torus) Normal(p Point3) Vector3 {
	return CentralDifferenceNormal(t.Value, p, 1e-4)
}

// Cylinder stands with its axis along Z, total height 2*HalfHeight, radius
// R, optionally rounded by Round. A nonzero Round rounds the rims and adds
// Round to each end, making the total height 2*(HalfHeight+Round) while
// the radius stays R. Adapted from the teacher's
// (*cylinder).Evaluate.
type Cylinder struct {
	R, HalfHeight, Round float32
}

func (c Cylinder) Bounds() BoundingBox {
	r := c.R + c.Round
	return ms3.NewCenteredBox(Point3{}, Vector3{X: 2 * r, Y: 2 * r, Z: 2 * (c.HalfHeight + c.Round)})
}

func (c Cylinder) Value(p Point3) float32 {
	r, h, round := c.R, c.HalfHeight, c.Round
	if round == 0 {
		dx := math32.Hypot(p.X, p.Y) - r
		dy := math32.Abs(p.Z) - h
		return math32.Min(0, math32.Max(dx, dy)) + math32.Hypot(math32.Max(0, dx), math32.Max(0, dy))
	}
	dx := math32.Hypot(p.X, p.Y) - r + round
	dy := math32.Abs(p.Z) - h
	return math32.Min(math32.Max(dx, dy), 0) + math32.Hypot(math32.Max(dx, 0), math32.Max(dy, 0)) - round
}

func (c Cylinder) Normal(p Point3) Vector3 {
	return CentralDifferenceNormal(c.Value, p, 1e-4)
}

// Gyroid is the triply-periodic minimal surface
// sin(x)cos(y) + sin(y)cos(z) + sin(z)cos(x) = 0, as used in spec's seed
// test. Thickness, if nonzero, shells the surface by that half-width.
type Gyroid struct {
	Thickness float32
}

func (g Gyroid) Bounds() BoundingBox {
	// Caller supplies the cell of periodicity via Translate/Intersection in
	// practice; a generous default covers a few periods.
	r := 2 * math32.Pi
	return ms3.NewCenteredBox(Point3{}, Vector3{X: 2 * r, Y: 2 * r, Z: 2 * r})
}

func (g Gyroid) Value(p Point3) float32 {
	v := math32.Sin(p.X)*math32.Cos(p.Y) + math32.Sin(p.Y)*math32.Cos(p.Z) + math32.Sin(p.Z)*math32.Cos(p.X)
	if g.Thickness == 0 {
		return v
	}
	return math32.Abs(v) - g.Thickness
}

func (g Gyroid) Normal(p Point3) Vector3 {
	return CentralDifferenceNormal(g.Value, p, 1e-4)
}

// SchwarzP is the triply-periodic minimal surface cos(x)+cos(y)+cos(z) = 0.
type SchwarzP struct {
	Thickness float32
}

func (s SchwarzP) Bounds() BoundingBox {
	r := 2 * math32.Pi
	return ms3.NewCenteredBox(Point3{}, Vector3{X: 2 * r, Y: 2 * r, Z: 2 * r})
}

func (s SchwarzP) Value(p Point3) float32 {
	v := math32.Cos(p.X) + math32.Cos(p.Y) + math32.Cos(p.Z)
	if s.Thickness == 0 {
		return v
	}
	return math32.Abs(v) - s.Thickness
}

func (s SchwarzP) Normal(p Point3) Vector3 {
	return CentralDifferenceNormal(s.Value, p, 1e-4)
}
