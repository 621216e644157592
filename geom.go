// Package sdf defines implicit-function shapes and the geometric primitives
// used to describe a signed distance field over three-dimensional space.
//
// Tessellation of these fields into triangle meshes lives in the mdc
// subpackage.
package sdf

import "github.com/soypat/geometry/ms3"

// Point3 is a position in world space.
type Point3 = ms3.Vec

// Vector3 is a displacement or direction in world space.
type Vector3 = ms3.Vec

// BoundingBox is an axis-aligned box with Min <= Max componentwise.
type BoundingBox = ms3.Box

// Dilate returns bb expanded outward by d on every axis, keeping it centered
// on the same point. d must be >= 0.
func Dilate(bb BoundingBox, d float32) BoundingBox {
	return BoundingBox{
		Min: ms3.AddScalar(-d, bb.Min),
		Max: ms3.AddScalar(d, bb.Max),
	}
}

// Contains reports whether p lies within bb, inclusive of the boundary.
func Contains(bb BoundingBox, p Point3) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X &&
		p.Y >= bb.Min.Y && p.Y <= bb.Max.Y &&
		p.Z >= bb.Min.Z && p.Z <= bb.Max.Z
}

// Valid reports whether bb satisfies the BoundingBox invariant: Max-Min >= 0
// on every axis.
func Valid(bb BoundingBox) bool {
	sz := ms3.Sub(bb.Max, bb.Min)
	return sz.X >= 0 && sz.Y >= 0 && sz.Z >= 0
}
