// Package voxel defines the voxel-source abstraction at the heart of the
// isosurface extraction pipeline: a hexahedral cell with 8 corner samples,
// an opaque reference handle, and the Source capability interface that
// every concrete field representation implements.
package voxel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// Ref is an opaque handle identifying a single cell within the Source that
// produced it. It is a pure lookup key: the encoding (linear index, segment
// tag, resolution level) is private to the owning source, and a Ref from one
// source instance is meaningless to any other.
type Ref uint64

// Voxel is a single hexahedral cell: an axis-aligned bounding box plus 8
// corner scalar values on a 2x2x2 lattice. Corner order is x-fastest:
// index = x + 2*y + 4*z for (x,y,z) in {0,1}^3.
type Voxel struct {
	Bounds sdf.Box3
	Values [8]float64
}

// Value returns the corner sample at lattice position (x, y, z),
// each coordinate 0 or 1.
func (v *Voxel) Value(x, y, z int) float64 {
	return v.Values[x+2*y+4*z]
}

// MinValue returns the smallest corner value. NaN corners propagate.
func (v *Voxel) MinValue() float64 {
	m := v.Values[0]
	for _, val := range v.Values[1:] {
		m = math.Min(m, val)
	}
	return m
}

// MaxValue returns the largest corner value. NaN corners propagate.
func (v *Voxel) MaxValue() float64 {
	m := v.Values[0]
	for _, val := range v.Values[1:] {
		m = math.Max(m, val)
	}
	return m
}

// Straddles reports whether the cell straddles the given isovalue:
// min(values) <= iso <= max(values), both bounds inclusive. A cell with a
// NaN corner never straddles, so NaN from a degenerate import cannot leak
// into the active set.
func (v *Voxel) Straddles(iso float64) bool {
	return Straddles(v.Values, iso)
}

// Straddles is the straddling test on a bare corner-value lattice. This is
// the single correctness contract of the pipeline: every concrete source
// funnels its per-cell decision through here.
func Straddles(values [8]float64, iso float64) bool {
	if math.IsNaN(iso) {
		return false
	}
	lo, hi := values[0], values[0]
	for _, val := range values[1:] {
		lo = math.Min(lo, val)
		hi = math.Max(hi, val)
	}
	// NaN corners poison lo/hi and fail both comparisons.
	return lo <= iso && iso <= hi
}

// Source is the capability interface over a scalar field representation.
// A Source owns its field data for its lifetime and is exclusively owned by
// the geometry that created it; Refs it hands out stay resolvable until the
// source is discarded.
type Source interface {
	// ActiveVoxels returns a Ref for every cell in the field whose corner
	// values straddle iso. The result is freshly allocated on each call,
	// contains no duplicates, and its order is deterministic for a fixed
	// source and isovalue.
	ActiveVoxels(iso float64) ([]Ref, error)

	// VoxelBounds reconstructs the world-space bounds for a Ref in O(1),
	// without re-running the active search.
	VoxelBounds(ref Ref) (sdf.Box3, error)

	// Voxel reconstructs the full cell for a Ref. The corner values agree
	// exactly with those used by the straddling test that produced the Ref.
	Voxel(ref Ref) (Voxel, error)
}
