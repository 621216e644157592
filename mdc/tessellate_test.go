package mdc

import (
	"errors"
	"testing"

	sdf "github.com/larsbrubaker/tessellation"
)

func TestTessellateRejectsInvalidParameters(t *testing.T) {
	sphere := sdf.Sphere{R: 1}
	if _, err := Tessellate(sphere, 0, 0.1, Options{}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("cellSize=0: got %v, want ErrInvalidParameter", err)
	}
	if _, err := Tessellate(sphere, 0.1, -1, Options{}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("relativeError<0: got %v, want ErrInvalidParameter", err)
	}
	if _, err := Tessellate(nil, 0.1, 0.1, Options{}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("nil fn: got %v, want ErrInvalidParameter", err)
	}
}

func TestTessellateUnitSphereIsWatertight(t *testing.T) {
	sphere := sdf.Sphere{R: 1}
	mesh, err := Tessellate(sphere, 0.2, 0, Options{})
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(mesh.Faces) == 0 {
		t.Fatal("got an empty mesh for a unit sphere")
	}
	assertWatertight(t, mesh)
	assertVerticesNearSurface(t, mesh, sphere, 0.3)
}

func TestTessellateSphereCylinderDifference(t *testing.T) {
	shape := sdf.Difference(sdf.Sphere{R: 1}, sdf.Cylinder{R: 0.4, HalfHeight: 2})
	mesh, err := Tessellate(shape, 0.15, 0, Options{})
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(mesh.Faces) == 0 {
		t.Fatal("got an empty mesh for a drilled sphere")
	}
	assertWatertight(t, mesh)
}

func TestTessellateRoundedBox(t *testing.T) {
	shape := sdf.RoundedBox{Half: sdf.Vector3{X: 1, Y: 0.6, Z: 0.4}, Round: 0.1}
	mesh, err := Tessellate(shape, 0.2, 0, Options{})
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	assertWatertight(t, mesh)
}

func TestTessellateTranslatedSphereMatchesOffset(t *testing.T) {
	shape := sdf.Translate(sdf.Sphere{R: 1}, sdf.Vector3{X: 5, Y: 0, Z: 0})
	mesh, err := Tessellate(shape, 0.2, 0, Options{})
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	for _, v := range mesh.Vertices {
		if v.X < 3.5 || v.X > 6.5 {
			t.Fatalf("vertex %+v outside the expected translated bounds", v)
		}
	}
}

func TestTessellateSimplificationReducesTriangleCount(t *testing.T) {
	sphere := sdf.Sphere{R: 2}
	fine, err := Tessellate(sphere, 0.1, 0, Options{})
	if err != nil {
		t.Fatalf("Tessellate fine: %v", err)
	}
	simplified, err := Tessellate(sphere, 0.1, 0.2, Options{})
	if err != nil {
		t.Fatalf("Tessellate simplified: %v", err)
	}
	if simplified.TriangleCount() >= fine.TriangleCount() {
		t.Errorf("simplified mesh has %d triangles, fine mesh has %d; expected simplification to reduce count",
			simplified.TriangleCount(), fine.TriangleCount())
	}
	if simplified.CollapsedNodes == 0 {
		t.Error("CollapsedNodes = 0, want > 0 for a simplified sphere")
	}
	if fine.CollapsedNodes != 0 {
		t.Errorf("fine.CollapsedNodes = %d, want 0 when relativeError is 0", fine.CollapsedNodes)
	}
	assertWatertight(t, simplified)
}

func TestTessellateDetectsNonConservativeBounds(t *testing.T) {
	// The declared Bounds is a unit box, but the surface (the plane
	// x+z=1.9) actually crosses the grid's outer shell once the
	// mandatory one-cell margin is added: at the topmost Z lattice
	// layer, x+z still sweeps past 1.9 as x increases. Tessellate must
	// report ErrBoundingBoxTooSmall instead of silently emitting a
	// mesh with a hole where that edge got skipped.
	fn := &sdf.GenericSDF{
		BoundsFn: func() sdf.BoundingBox {
			return sdf.BoundingBox{Min: sdf.Point3{X: 0, Y: 0, Z: 0}, Max: sdf.Point3{X: 1, Y: 1, Z: 1}}
		},
		ValueFn:  func(p sdf.Point3) float32 { return p.X + p.Z - 1.9 },
		NormalFn: func(p sdf.Point3) sdf.Vector3 { return sdf.Vector3{X: 1, Y: 0, Z: 1} },
	}
	_, err := Tessellate(fn, 0.25, 0, Options{})
	if !errors.Is(err, ErrBoundingBoxTooSmall) {
		t.Errorf("got %v, want ErrBoundingBoxTooSmall", err)
	}
}

func TestTessellateFlatRegionsCollapseAggressively(t *testing.T) {
	shape := sdf.RoundedBox{Half: sdf.Vector3{X: 2, Y: 2, Z: 2}, Round: 0.05}
	fine, err := Tessellate(shape, 0.1, 0, Options{})
	if err != nil {
		t.Fatalf("Tessellate fine: %v", err)
	}
	simplified, err := Tessellate(shape, 0.1, 0.3, Options{})
	if err != nil {
		t.Fatalf("Tessellate simplified: %v", err)
	}
	assertWatertight(t, simplified)
	if simplified.TriangleCount() >= fine.TriangleCount()/2 {
		t.Errorf("simplified mesh has %d triangles, fine mesh has %d; expected a box's large flat faces to collapse aggressively even where surface cells border homogeneous (never-seeded) neighbors",
			simplified.TriangleCount(), fine.TriangleCount())
	}
}

func TestTessellateCancellation(t *testing.T) {
	cancel := make(chan struct{})
	close(cancel)
	_, err := Tessellate(sdf.Sphere{R: 1}, 0.2, 0, Options{Cancel: cancel})
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("got %v, want ErrCancelled", err)
	}
}

// assertWatertight checks the necessary condition for a manifold,
// closed mesh: every edge is shared by exactly two triangles.
func assertWatertight(t *testing.T, mesh *Mesh) {
	t.Helper()
	type edgeKey struct{ a, b int32 }
	counts := map[edgeKey]int{}
	for _, f := range mesh.Faces {
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			counts[edgeKey{a, b}]++
		}
	}
	for e, c := range counts {
		if c != 2 {
			t.Errorf("edge %v shared by %d triangles, want 2", e, c)
		}
	}
}

func assertVerticesNearSurface(t *testing.T, mesh *Mesh, fn sdf.ImplicitFunction, tol float32) {
	t.Helper()
	for _, v := range mesh.Vertices {
		if d := fn.Value(v); abs32(d) > tol {
			t.Errorf("vertex %+v has |value|=%v, want <= %v", v, d, tol)
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
