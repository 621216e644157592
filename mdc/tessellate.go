package mdc

import (
	sdf "github.com/larsbrubaker/tessellation"
)

// Tessellate converts fn into a manifold, watertight triangle mesh.
// cellSize is the edge length of the finest grid cell and must be
// positive; relativeError is the maximum allowed QEF residual during
// octree simplification, expressed as a fraction of a cell's edge
// length (0 disables simplification entirely, collapsing nothing).
//
// Tessellate samples fn.Bounds() (expanded by opts.BoundaryMargin) on
// a uniform grid, builds one dual vertex per manifold component of
// every active cell (Schaefer, Ju & Warren 2007), simplifies the
// result with an adaptive octree collapse, and emits a quad (split into
// two triangles) for every sign-changing lattice edge, joining the dual
// vertices of the four cells around it.
func Tessellate(fn sdf.ImplicitFunction, cellSize, relativeError float32, opts Options) (*Mesh, error) {
	if fn == nil {
		return nil, newError(ErrInvalidParameter, "implicit function is nil")
	}
	if cellSize <= 0 {
		return nil, newError(ErrInvalidParameter, "cellSize must be positive, got %g", cellSize)
	}
	if relativeError < 0 {
		return nil, newError(ErrInvalidParameter, "relativeError must be >= 0, got %g", relativeError)
	}

	bb := fn.Bounds()
	if !sdf.Valid(bb) {
		return nil, newError(ErrInvalidParameter, "implicit function returned an invalid bounding box")
	}
	if opts.BoundaryMargin > 0 {
		bb = sdf.Dilate(bb, opts.BoundaryMargin)
	}

	grid, err := buildCornerGrid(fn, bb, cellSize, opts.Cancel)
	if err != nil {
		return nil, err
	}
	defer grid.release()

	if err := grid.checkOuterShell(); err != nil {
		return nil, err
	}

	select {
	case <-opts.Cancel:
		return nil, newError(ErrCancelled, "cancelled before contouring")
	default:
	}

	st := newBuildState(fn, grid, relativeError, opts.MaxDepth)
	if err := buildLeafVertices(fn, st, opts.CrossingRefineIters); err != nil {
		return nil, err
	}
	if relativeError > 0 {
		if err := st.oct.simplify(); err != nil {
			return nil, err
		}
	}

	b := newMeshBuilder()
	emitFaces(st, b)

	mesh := b.mesh
	mesh.CollapsedNodes = st.oct.collapsedCount
	return &mesh, nil
}
