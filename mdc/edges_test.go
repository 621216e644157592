package mdc

import (
	"testing"

	sdf "github.com/larsbrubaker/tessellation"
)

func TestCrossingNormalFallsBackToCentralDifference(t *testing.T) {
	// A plane x=0 whose Normal always reports the zero vector: the
	// fallback must recover the analytic gradient (1,0,0) via
	// central differences of Value.
	fn := &sdf.GenericSDF{
		BoundsFn: func() sdf.BoundingBox { return sdf.BoundingBox{} },
		ValueFn:  func(p sdf.Point3) float32 { return p.X },
		NormalFn: func(p sdf.Point3) sdf.Vector3 { return sdf.Vector3{} },
	}
	n := crossingNormal(fn, sdf.Point3{}, 0.1)
	if n.X < 0.9 || n.X > 1.1 || n.Y != 0 || n.Z != 0 {
		t.Errorf("crossingNormal fallback = %+v, want ~(1,0,0)", n)
	}
}

func TestCrossingNormalPrefersReportedNormal(t *testing.T) {
	fn := &sdf.GenericSDF{
		BoundsFn: func() sdf.BoundingBox { return sdf.BoundingBox{} },
		ValueFn:  func(p sdf.Point3) float32 { return p.X },
		NormalFn: func(p sdf.Point3) sdf.Vector3 { return sdf.Vector3{X: 0, Y: 1, Z: 0} },
	}
	n := crossingNormal(fn, sdf.Point3{}, 0.1)
	if n.X != 0 || n.Y != 1 || n.Z != 0 {
		t.Errorf("crossingNormal = %+v, want the function's own (0,1,0)", n)
	}
}

func TestCrossingNormalDoubleFailureReturnsZero(t *testing.T) {
	fn := &sdf.GenericSDF{
		BoundsFn: func() sdf.BoundingBox { return sdf.BoundingBox{} },
		ValueFn:  func(p sdf.Point3) float32 { return 0 }, // constant: gradient is genuinely zero
		NormalFn: func(p sdf.Point3) sdf.Vector3 { return sdf.Vector3{} },
	}
	n := crossingNormal(fn, sdf.Point3{}, 0.1)
	if n.X != 0 || n.Y != 0 || n.Z != 0 {
		t.Errorf("crossingNormal = %+v, want zero vector when both estimators degenerate", n)
	}
}
