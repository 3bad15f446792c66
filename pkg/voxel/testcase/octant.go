// Package testcase provides synthetic non-uniform voxel sources: a flat
// octant list emulating local AMR-style refinement, and a small fixed
// two-level hierarchy with mixed cell sizes in the same region.
package testcase

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/impi/pkg/voxel"
)

// Compile-time interface check.
var _ voxel.Source = (*OctantSource)(nil)

// Octant is an independently sized and placed cell with its own 8 corner
// values. Octants in a list may nest inside each other's bounds to model
// local refinement; same-size overlaps are tolerated and never deduplicated.
type Octant struct {
	Bounds sdf.Box3
	Width  float64
	Values [8]float64
}

// NewOctant builds an octant from its center, edge width and corner values
// (x-fastest lattice order).
func NewOctant(center v3.Vec, width float64, values [8]float64) Octant {
	h := width / 2
	half := v3.Vec{X: h, Y: h, Z: h}
	return Octant{
		Bounds: sdf.Box3{Min: center.Sub(half), Max: center.Add(half)},
		Width:  width,
		Values: values,
	}
}

// LengthMismatchError reports octant parameter arrays whose lengths are
// inconsistent with the declared octant count. Construction fails rather
// than guessing which array to trust.
type LengthMismatchError struct {
	Array string
	Want  int
	Got   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("octant array %q length %d inconsistent with declared count (want %d)",
		e.Array, e.Got, e.Want)
}

// OctantSource evaluates the straddling test independently over a flat
// octant list. No merging or conflict resolution happens across overlapping
// octants; every octant is tested and reported on its own. The Ref of an
// octant is its index in the list.
type OctantSource struct {
	octants []Octant
}

// NewOctantSource creates a source over an octant list. The slice is
// borrowed, not copied.
func NewOctantSource(octants []Octant) *OctantSource {
	return &OctantSource{octants: octants}
}

// NewOctantSourceFromArrays builds the octant list from the parameter-array
// wire layout: widths[0] holds the octant count N, widths[1..N] the per-
// octant edge widths, points the N centers, and values the 8*N corner
// values in x-fastest lattice order.
func NewOctantSourceFromArrays(widths []float64, points []v3.Vec, values []float64) (*OctantSource, error) {
	if len(widths) < 1 {
		return nil, &LengthMismatchError{Array: "octantWidthArray", Want: 1, Got: 0}
	}
	n := int(widths[0])
	if n < 0 {
		return nil, fmt.Errorf("octant count %d is negative", n)
	}
	if len(widths) < n+1 {
		return nil, &LengthMismatchError{Array: "octantWidthArray", Want: n + 1, Got: len(widths)}
	}
	if len(points) < n {
		return nil, &LengthMismatchError{Array: "octantPointArray", Want: n, Got: len(points)}
	}
	if len(values) < 8*n {
		return nil, &LengthMismatchError{Array: "octantValueArray", Want: 8 * n, Got: len(values)}
	}

	octants := make([]Octant, n)
	for i := 0; i < n; i++ {
		var vals [8]float64
		copy(vals[:], values[8*i:8*i+8])
		octants[i] = NewOctant(points[i], widths[i+1], vals)
	}
	return NewOctantSource(octants), nil
}

// NumOctants returns the octant count.
func (s *OctantSource) NumOctants() int {
	return len(s.octants)
}

// ActiveVoxels tests every octant in list order and returns the indices of
// those that straddle iso.
func (s *OctantSource) ActiveVoxels(iso float64) ([]voxel.Ref, error) {
	refs := voxel.Scan(len(s.octants), func(i int) (voxel.Ref, bool) {
		return voxel.Ref(i), voxel.Straddles(s.octants[i].Values, iso)
	})
	return refs, nil
}

func (s *OctantSource) checkRef(ref voxel.Ref) (int, error) {
	if uint64(ref) >= uint64(len(s.octants)) {
		return 0, &voxel.InvalidRefError{
			Ref:    ref,
			Source: "octant source",
			Reason: "octant index out of range",
		}
	}
	return int(ref), nil
}

// VoxelBounds returns the bounds of the referenced octant.
func (s *OctantSource) VoxelBounds(ref voxel.Ref) (sdf.Box3, error) {
	i, err := s.checkRef(ref)
	if err != nil {
		return sdf.Box3{}, err
	}
	return s.octants[i].Bounds, nil
}

// Voxel returns the referenced octant as a voxel.
func (s *OctantSource) Voxel(ref voxel.Ref) (voxel.Voxel, error) {
	i, err := s.checkRef(ref)
	if err != nil {
		return voxel.Voxel{}, err
	}
	o := s.octants[i]
	return voxel.Voxel{Bounds: o.Bounds, Values: o.Values}, nil
}
