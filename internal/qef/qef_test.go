package qef

import "testing"

func almostEqual(a, b, tol float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestSolveSinglePlane(t *testing.T) {
	var q Accumulator
	q.Add(Plane{Point: Vec{0, 0, 0}, Normal: Vec{1, 0, 0}})
	x, _, err := q.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	// A single plane constrains only the X coordinate; Y,Z fall back to
	// the mass point (0,0,0) via regularization.
	if !almostEqual(x.X, 0, 1e-4) {
		t.Errorf("x.X = %v, want ~0", x.X)
	}
}

func TestSolveThreeOrthogonalPlanes(t *testing.T) {
	var q Accumulator
	q.Add(Plane{Point: Vec{1, 0, 0}, Normal: Vec{1, 0, 0}})
	q.Add(Plane{Point: Vec{0, 1, 0}, Normal: Vec{0, 1, 0}})
	q.Add(Plane{Point: Vec{0, 0, 1}, Normal: Vec{0, 0, 1}})
	x, residual, err := q.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	want := Vec{1, 1, 1}
	if !almostEqual(x.X, want.X, 1e-3) || !almostEqual(x.Y, want.Y, 1e-3) || !almostEqual(x.Z, want.Z, 1e-3) {
		t.Errorf("x = %+v, want %+v", x, want)
	}
	if !almostEqual(residual, 0, 1e-3) {
		t.Errorf("residual = %v, want ~0 (corner is exactly determined)", residual)
	}
}

func TestSolveCoincidentPlanesFallsBackToMassPoint(t *testing.T) {
	var q Accumulator
	// Two parallel (rank-deficient) planes: the normal direction is
	// determined, the two tangential directions are not and must fall
	// back to the mass point.
	q.Add(Plane{Point: Vec{2, 5, -3}, Normal: Vec{1, 0, 0}})
	q.Add(Plane{Point: Vec{2, -1, 9}, Normal: Vec{1, 0, 0}})
	x, _, err := q.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !almostEqual(x.X, 2, 1e-3) {
		t.Errorf("x.X = %v, want ~2", x.X)
	}
	mp := q.MassPoint()
	if !almostEqual(x.Y, mp.Y, 1e-3) || !almostEqual(x.Z, mp.Z, 1e-3) {
		t.Errorf("x = %+v, want tangential components to match mass point %+v", x, mp)
	}
}

func TestMergeIsAssociative(t *testing.T) {
	planes := []Plane{
		{Point: Vec{1, 0, 0}, Normal: Vec{1, 0, 0}},
		{Point: Vec{0, 1, 0}, Normal: Vec{0, 1, 0}},
		{Point: Vec{0, 0, 1}, Normal: Vec{0, 0, 1}},
	}
	var whole Accumulator
	for _, p := range planes {
		whole.Add(p)
	}

	var left, right Accumulator
	left.Add(planes[0])
	right.Add(planes[1])
	right.Add(planes[2])
	left.Merge(right)

	xw, _, _ := whole.Solve()
	xl, _, _ := left.Solve()
	if !almostEqual(xw.X, xl.X, 1e-4) || !almostEqual(xw.Y, xl.Y, 1e-4) || !almostEqual(xw.Z, xl.Z, 1e-4) {
		t.Errorf("merged solve = %+v, direct solve = %+v", xl, xw)
	}
}

func TestEmptyAccumulatorSolvesToOrigin(t *testing.T) {
	var q Accumulator
	x, residual, err := q.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if x != (Vec{}) || residual != 0 {
		t.Errorf("empty Solve() = %+v, %v; want zero value", x, residual)
	}
}

func TestDegenerateNormalContributesToMassPointOnly(t *testing.T) {
	var q Accumulator
	q.Add(Plane{Point: Vec{3, 4, 5}, Normal: Vec{}})
	if q.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", q.Count())
	}
	mp := q.MassPoint()
	if mp != (Vec{3, 4, 5}) {
		t.Errorf("MassPoint() = %+v, want (3,4,5)", mp)
	}
}
