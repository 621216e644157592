package mdc

import (
	"runtime"
	"sync"

	sdf "github.com/larsbrubaker/tessellation"
)

// cornerGrid holds the SDF value sampled at every lattice point of a
// nx*ny*nz grid of cells (so (nx+1)*(ny+1)*(nz+1) samples), plus the
// grid's origin and cell edge length. Adapted from the teacher's
// gleval buffer-backed sampling, generalized from a flat evaluation
// buffer to an addressable lattice the dual contouring core walks
// cell-by-cell.
type cornerGrid struct {
	origin     sdf.Point3
	cellSize   float32
	nx, ny, nz int // number of cells per axis
	values     []float32
}

// release returns the grid's backing array to cornerValuePool. The
// grid must not be used again afterward.
func (g *cornerGrid) release() {
	cornerValuePool.release(g.values)
	g.values = nil
}

func (g *cornerGrid) stride() (sy, sz int) {
	return g.nx + 1, (g.nx + 1) * (g.ny + 1)
}

func (g *cornerGrid) index(i, j, k int) int {
	sy, sz := g.stride()
	return i + j*sy + k*sz
}

func (g *cornerGrid) at(i, j, k int) float32 {
	return g.values[g.index(i, j, k)]
}

// point returns the world-space position of lattice point (i,j,k).
func (g *cornerGrid) point(i, j, k int) sdf.Point3 {
	return sdf.Point3{
		X: g.origin.X + float32(i)*g.cellSize,
		Y: g.origin.Y + float32(j)*g.cellSize,
		Z: g.origin.Z + float32(k)*g.cellSize,
	}
}

// buildCornerGrid samples fn on a uniform lattice spanning bb with the
// given cell size, dilated by one extra cell of margin on every side so
// the surface never touches the sampled volume's boundary (spec §4.1).
// Sampling is split into Z-slabs and evaluated by a fixed pool of
// worker goroutines; each worker writes a disjoint range of the values
// slice so no synchronization is needed beyond the WaitGroup, adapted
// from the teacher's gleval.SDF3CPU.Evaluate (gleval/cpu.go), which
// splits the same kind of flat evaluation buffer across GOMAXPROCS
// workers by contiguous range.
func buildCornerGrid(fn sdf.ImplicitFunction, bb sdf.BoundingBox, cellSize float32, cancel <-chan struct{}) (*cornerGrid, error) {
	margin := cellSize
	origin := sdf.Point3{X: bb.Min.X - margin, Y: bb.Min.Y - margin, Z: bb.Min.Z - margin}
	size := sdf.Vector3{X: bb.Max.X - bb.Min.X + 2*margin, Y: bb.Max.Y - bb.Min.Y + 2*margin, Z: bb.Max.Z - bb.Min.Z + 2*margin}

	nx := int(size.X/cellSize) + 1
	ny := int(size.Y/cellSize) + 1
	nz := int(size.Z/cellSize) + 1
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, newError(ErrInvalidParameter, "cellSize %g is too large for the sampled bounds", cellSize)
	}

	g := &cornerGrid{origin: origin, cellSize: cellSize, nx: nx, ny: ny, nz: nz}
	g.values = cornerValuePool.acquire((nx + 1) * (ny + 1) * (nz + 1))

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if workers > nz+1 {
		workers = nz + 1
	}

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	slabsPerWorker := (nz + 1 + workers - 1) / workers

	for w := 0; w < workers; w++ {
		kStart := w * slabsPerWorker
		kEnd := kStart + slabsPerWorker
		if kEnd > nz+1 {
			kEnd = nz + 1
		}
		if kStart >= kEnd {
			continue
		}
		wg.Add(1)
		go func(kStart, kEnd int) {
			defer wg.Done()
			for k := kStart; k < kEnd; k++ {
				select {
				case <-cancel:
					select {
					case errCh <- newError(ErrCancelled, "grid sampling interrupted"):
					default:
					}
					return
				default:
				}
				for j := 0; j <= ny; j++ {
					for i := 0; i <= nx; i++ {
						p := g.point(i, j, k)
						g.values[g.index(i, j, k)] = fn.Value(p)
					}
				}
			}
		}(kStart, kEnd)
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		g.release()
		return nil, err
	}
	return g, nil
}

// checkOuterShell scans the outermost layer of the sampled grid for an
// active edge: a lattice edge lying entirely on one of the grid's 6
// bounding planes whose endpoints have different signs. The one-cell
// margin buildCornerGrid adds is only a default guess at a safe
// dilation; if the surface still reaches that far out, standard dual
// contouring would silently drop a hole there instead of surfacing the
// problem (spec §4.1, §7), so this must run before any QEF work.
func (g *cornerGrid) checkOuterShell() error {
	check := func(axis, i, j, k int) error {
		var va, vb float32
		var i2, j2, k2 int
		switch axis {
		case 0:
			i2, j2, k2 = i+1, j, k
		case 1:
			i2, j2, k2 = i, j+1, k
		default:
			i2, j2, k2 = i, j, k+1
		}
		va, vb = g.at(i, j, k), g.at(i2, j2, k2)
		if outside(va) != outside(vb) {
			return newError(ErrBoundingBoxTooSmall,
				"active edge found on outer grid shell between (%d,%d,%d) and (%d,%d,%d); fn.Bounds() is not conservative at cell size %g",
				i, j, k, i2, j2, k2, g.cellSize)
		}
		return nil
	}

	// X-edges lying on the y or z boundary planes.
	for k := 0; k <= g.nz; k++ {
		if k != 0 && k != g.nz {
			continue
		}
		for j := 0; j <= g.ny; j++ {
			for i := 0; i < g.nx; i++ {
				if err := check(0, i, j, k); err != nil {
					return err
				}
			}
		}
	}
	for j := 0; j <= g.ny; j++ {
		if j != 0 && j != g.ny {
			continue
		}
		for k := 1; k < g.nz; k++ {
			for i := 0; i < g.nx; i++ {
				if err := check(0, i, j, k); err != nil {
					return err
				}
			}
		}
	}

	// Y-edges lying on the x or z boundary planes.
	for k := 0; k <= g.nz; k++ {
		if k != 0 && k != g.nz {
			continue
		}
		for i := 0; i <= g.nx; i++ {
			for j := 0; j < g.ny; j++ {
				if err := check(1, i, j, k); err != nil {
					return err
				}
			}
		}
	}
	for i := 0; i <= g.nx; i++ {
		if i != 0 && i != g.nx {
			continue
		}
		for k := 1; k < g.nz; k++ {
			for j := 0; j < g.ny; j++ {
				if err := check(1, i, j, k); err != nil {
					return err
				}
			}
		}
	}

	// Z-edges lying on the x or y boundary planes.
	for j := 0; j <= g.ny; j++ {
		if j != 0 && j != g.ny {
			continue
		}
		for i := 0; i <= g.nx; i++ {
			for k := 0; k < g.nz; k++ {
				if err := check(2, i, j, k); err != nil {
					return err
				}
			}
		}
	}
	for i := 0; i <= g.nx; i++ {
		if i != 0 && i != g.nx {
			continue
		}
		for j := 1; j < g.ny; j++ {
			for k := 0; k < g.nz; k++ {
				if err := check(2, i, j, k); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
