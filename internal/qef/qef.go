// Package qef implements the Quadratic Error Function accumulator and
// minimizer used by the dual contouring core: given a set of tangent
// planes, find the point nearest all of them in the least-squares sense.
//
// The accumulator stays in float32 to match the rest of the tessellation
// pipeline; the solve itself is carried out in float64 via gonum's
// symmetric eigendecomposition, since the spec calls for eigenvalue-based
// rank-deficiency regularization that a plain float32 Cholesky/inverse
// cannot provide stably.
package qef

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vec is a minimal 3-vector kept independent of the root module's geometry
// package so this package has no dependency beyond gonum and the standard
// library.
type Vec struct {
	X, Y, Z float32
}

func sub(a, b Vec) Vec    { return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func add(a, b Vec) Vec    { return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func scale(s float32, v Vec) Vec { return Vec{s * v.X, s * v.Y, s * v.Z} }
func dot(a, b Vec) float32 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Plane is a hyperplane given by a point on it and its outward normal,
// which need not be unit length (Add normalizes it).
type Plane struct {
	Point  Vec
	Normal Vec
}

// Accumulator holds the additive QEF state: A = Σ nᵢnᵢᵀ, b = Σ nᵢ(nᵢ·pᵢ),
// c = Σ (nᵢ·pᵢ)², plus the running mass-point sum. Zero value is an empty
// accumulator.
type Accumulator struct {
	// axx, axy, axz, ayy, ayz, azz are the upper triangle of the symmetric
	// 3x3 matrix A.
	axx, axy, axz, ayy, ayz, azz float32
	b                            Vec
	c                            float32
	massSum                      Vec
	count                        int
}

// Add accumulates one plane's contribution. Normal need not be
// pre-normalized; Add normalizes a copy.
func (q *Accumulator) Add(p Plane) {
	n := p.Normal
	mag2 := dot(n, n)
	if mag2 == 0 {
		// A degenerate (zero) normal contributes nothing but its position
		// still biases the mass point so the cell isn't left without any
		// spatial information (spec §4.2 failure mode).
		q.massSum = add(q.massSum, p.Point)
		q.count++
		return
	}
	inv := 1 / float32(math.Sqrt(float64(mag2)))
	n = scale(inv, n)

	q.axx += n.X * n.X
	q.axy += n.X * n.Y
	q.axz += n.X * n.Z
	q.ayy += n.Y * n.Y
	q.ayz += n.Y * n.Z
	q.azz += n.Z * n.Z

	d := dot(n, p.Point)
	q.b = add(q.b, scale(d, n))
	q.c += d * d

	q.massSum = add(q.massSum, p.Point)
	q.count++
}

// Merge folds other's state into q, e.g. when combining children QEFs
// during octree collapse (spec §4.6, §9: addition is associative).
func (q *Accumulator) Merge(other Accumulator) {
	q.axx += other.axx
	q.axy += other.axy
	q.axz += other.axz
	q.ayy += other.ayy
	q.ayz += other.ayz
	q.azz += other.azz
	q.b = add(q.b, other.b)
	q.c += other.c
	q.massSum = add(q.massSum, other.massSum)
	q.count += other.count
}

// Count returns the number of planes (or degenerate contributions)
// accumulated so far.
func (q *Accumulator) Count() int { return q.count }

// MassPoint returns the centroid of every contributing position, or the
// zero vector if nothing was accumulated.
func (q *Accumulator) MassPoint() Vec {
	if q.count == 0 {
		return Vec{}
	}
	return scale(1/float32(q.count), q.massSum)
}

// rankTolerance is τ in spec §4.4: eigenvalues below τ·λmax are treated as
// numerically zero and dropped from the pseudo-inverse.
const rankTolerance = 1e-10

// Solve minimizes ‖A x − b‖² with Tikhonov-style regularization toward the
// mass point for directions where A is rank-deficient (spec §4.4):
//
//	x = massPoint + Σ (1/λᵢ) uᵢ uᵢᵀ (b − A·massPoint)
//
// summed over retained eigenpairs. Residual is the standard QEF residual
// xᵀAx − 2b·x + c evaluated at the returned x, used by octree collapse's
// error test (spec §4.6).
//
// Solve returns an error only if the eigendecomposition itself fails to
// converge (A contains non-finite entries), corresponding to the spec's
// NumericalFailure error kind.
func (q *Accumulator) Solve() (x Vec, residual float32, err error) {
	if q.count == 0 {
		return Vec{}, 0, nil
	}
	mp := q.MassPoint()
	A := mat.NewSymDense(3, []float64{
		float64(q.axx), float64(q.axy), float64(q.axz),
		float64(q.axy), float64(q.ayy), float64(q.ayz),
		float64(q.axz), float64(q.ayz), float64(q.azz),
	})
	var eig mat.EigenSym
	if !eig.Factorize(A, true) {
		return Vec{}, 0, errNumericalFailure
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	lambdaMax := 0.0
	for _, v := range values {
		if v < 0 {
			v = -v
		}
		if v > lambdaMax {
			lambdaMax = v
		}
	}
	if lambdaMax == 0 {
		// A is the zero matrix: no constraints at all, fall back to the
		// mass point outright.
		return mp, 0, nil
	}

	// r = b - A*massPoint, in float64.
	mpv := []float64{float64(mp.X), float64(mp.Y), float64(mp.Z)}
	Amp := mulSym3(A, mpv)
	bv := []float64{float64(q.b.X), float64(q.b.Y), float64(q.b.Z)}
	r := []float64{bv[0] - Amp[0], bv[1] - Amp[1], bv[2] - Amp[2]}

	delta := []float64{0, 0, 0}
	for i, lambda := range values {
		abs := lambda
		if abs < 0 {
			abs = -abs
		}
		if abs < rankTolerance*lambdaMax {
			continue
		}
		u := []float64{vecs.At(0, i), vecs.At(1, i), vecs.At(2, i)}
		proj := u[0]*r[0] + u[1]*r[1] + u[2]*r[2]
		coeff := proj / lambda
		delta[0] += coeff * u[0]
		delta[1] += coeff * u[1]
		delta[2] += coeff * u[2]
	}

	result := Vec{
		X: mp.X + float32(delta[0]),
		Y: mp.Y + float32(delta[1]),
		Z: mp.Z + float32(delta[2]),
	}

	// Residual = xᵀAx - 2b·x + c, using the float32 accumulator state
	// directly (cheap and the spec's tolerances are coarse, §8).
	Ax := Vec{
		X: q.axx*result.X + q.axy*result.Y + q.axz*result.Z,
		Y: q.axy*result.X + q.ayy*result.Y + q.ayz*result.Z,
		Z: q.axz*result.X + q.ayz*result.Y + q.azz*result.Z,
	}
	residual = dot(result, Ax) - 2*dot(q.b, result) + q.c
	if residual < 0 {
		// Round-off can push a true-zero residual slightly negative.
		residual = 0
	}
	return result, residual, nil
}

func mulSym3(A *mat.SymDense, v []float64) []float64 {
	return []float64{
		A.At(0, 0)*v[0] + A.At(0, 1)*v[1] + A.At(0, 2)*v[2],
		A.At(1, 0)*v[0] + A.At(1, 1)*v[1] + A.At(1, 2)*v[2],
		A.At(2, 0)*v[0] + A.At(2, 1)*v[1] + A.At(2, 2)*v[2],
	}
}
