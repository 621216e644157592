// Command tessellate-demo builds one of a handful of seed implicit
// shapes, tessellates it with mdc.Tessellate, and writes the result as
// a Wavefront OBJ file. Adapted from the teacher's examples/bolt/main.go
// (flag-driven scene selection, build, measure, write-to-file), with the
// GPU preview/GLSL visualization path dropped since the interactive
// viewer is out of scope (spec §1).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	sdf "github.com/larsbrubaker/tessellation"
	"github.com/larsbrubaker/tessellation/mdc"
)

var (
	shapeName     = "sphere"
	cellSize      = float64(0.1)
	relativeError = float64(0)
	outPath       = "mesh.obj"
)

func init() {
	flag.StringVar(&shapeName, "shape", shapeName, "seed shape: sphere, drilled-sphere, box, gyroid, schwarzp")
	flag.Float64Var(&cellSize, "cell-size", cellSize, "leaf cell edge length")
	flag.Float64Var(&relativeError, "relative-error", relativeError, "adaptive simplification threshold (0 disables)")
	flag.StringVar(&outPath, "out", outPath, "output .obj path")
	flag.Parse()
}

func scene(name string) (sdf.ImplicitFunction, error) {
	switch name {
	case "sphere":
		return sdf.Sphere{R: 1}, nil
	case "drilled-sphere":
		return sdf.Difference(sdf.Sphere{R: 1}, sdf.Cylinder{R: 0.4, HalfHeight: 1}), nil
	case "box":
		return sdf.RoundedBox{Half: sdf.Vector3{X: 0.5, Y: 0.5, Z: 0.5}}, nil
	case "gyroid":
		bb := sdf.BoundingBox{Min: sdf.Point3{X: -3.14159, Y: -3.14159, Z: -3.14159}, Max: sdf.Point3{X: 3.14159, Y: 3.14159, Z: 3.14159}}
		return sdf.Intersection(sdf.Gyroid{}, boxClip{bb}), nil
	case "schwarzp":
		bb := sdf.BoundingBox{Min: sdf.Point3{X: -3.14159, Y: -3.14159, Z: -3.14159}, Max: sdf.Point3{X: 3.14159, Y: 3.14159, Z: 3.14159}}
		return sdf.Intersection(sdf.SchwarzP{}, boxClip{bb}), nil
	default:
		return nil, fmt.Errorf("unknown shape %q", name)
	}
}

// boxClip is a plain axis-aligned box used to bound the periodic
// surfaces (gyroid, Schwarz P), whose own Bounds() cover several
// periods by default.
type boxClip struct {
	bb sdf.BoundingBox
}

func (b boxClip) Bounds() sdf.BoundingBox { return b.bb }

func (b boxClip) Value(p sdf.Point3) float32 {
	return sdf.RoundedBox{Half: sdf.Vector3{
		X: (b.bb.Max.X - b.bb.Min.X) / 2,
		Y: (b.bb.Max.Y - b.bb.Min.Y) / 2,
		Z: (b.bb.Max.Z - b.bb.Min.Z) / 2,
	}}.Value(p)
}

func (b boxClip) Normal(p sdf.Point3) sdf.Vector3 {
	return sdf.CentralDifferenceNormal(b.Value, p, 1e-4)
}

func main() {
	fn, err := scene(shapeName)
	if err != nil {
		fmt.Println("error building scene:", err)
		os.Exit(1)
	}

	start := time.Now()
	mesh, err := mdc.Tessellate(fn, float32(cellSize), float32(relativeError), mdc.Options{})
	if err != nil {
		fmt.Println("error tessellating:", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	fp, err := os.Create(outPath)
	if err != nil {
		fmt.Println("error creating file:", err)
		os.Exit(1)
	}
	defer fp.Close()

	w := bufio.NewWriter(fp)
	if err := writeOBJ(w, mesh); err != nil {
		fmt.Println("error writing mesh:", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Println("error flushing file:", err)
		os.Exit(1)
	}

	fmt.Printf("tessellated %q in %s: %d vertices, %d triangles, %d octree nodes collapsed\n",
		shapeName, elapsed, len(mesh.Vertices), mesh.TriangleCount(), mesh.CollapsedNodes)
}

// writeOBJ emits mesh as a Wavefront OBJ: one "v" line per vertex, one
// "vn" line per normal, one "f" line per triangle (1-indexed, vertex
// and normal sharing an index since mdc.Mesh keeps them parallel).
func writeOBJ(w *bufio.Writer, mesh *mdc.Mesh) error {
	for _, v := range mesh.Vertices {
		if _, err := fmt.Fprintf(w, "v %g %g %g\n", v.X, v.Y, v.Z); err != nil {
			return err
		}
	}
	for _, n := range mesh.Normals {
		if _, err := fmt.Fprintf(w, "vn %g %g %g\n", n.X, n.Y, n.Z); err != nil {
			return err
		}
	}
	for _, f := range mesh.Faces {
		if _, err := fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n",
			f[0]+1, f[0]+1, f[1]+1, f[1]+1, f[2]+1, f[2]+1); err != nil {
			return err
		}
	}
	return nil
}
