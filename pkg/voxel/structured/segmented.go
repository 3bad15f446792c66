package structured

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	"github.com/deadsy/sdfx/vec/v3i"

	"github.com/chazu/impi/pkg/voxel"
)

// Compile-time interface check.
var _ voxel.Source = (*SegmentedGridSource)(nil)

// LabelVolume is a dense per-sample segment label field with the same
// dimensions as the scalar volume it annotates.
type LabelVolume struct {
	dims v3i.Vec
	data []int32
}

// NewLabelVolume creates a zero-filled label volume.
func NewLabelVolume(dims v3i.Vec) *LabelVolume {
	return &LabelVolume{
		dims: dims,
		data: make([]int32, dims.X*dims.Y*dims.Z),
	}
}

// Dims returns the sample counts along each axis.
func (l *LabelVolume) Dims() v3i.Vec {
	return l.dims
}

// At returns the segment label at grid position (x, y, z).
func (l *LabelVolume) At(x, y, z int) int {
	return int(l.data[x+l.dims.X*(y+l.dims.Y*z)])
}

// Set stores a segment label at grid position (x, y, z).
func (l *LabelVolume) Set(x, y, z, seg int) {
	l.data[x+l.dims.X*(y+l.dims.Y*z)] = int32(seg)
}

// Segmented Refs pack the cell's segment id into the high bits of the
// handle so both accessors stay O(1) without consulting the label volume.
const segShift = 40

// SegmentedGridSource is a uniform grid paired with a segment label volume.
// Each cell belongs to the segment of its lower-corner sample; the
// straddling test itself is unchanged, but cells are classified per segment
// and a search can be restricted to one segment.
type SegmentedGridSource struct {
	grid        *UniformGridSource
	labels      *LabelVolume
	numSegments int
}

// NewSegmentedGridSource pairs a scalar volume with a label volume. The two
// must have identical dimensions, and every label must fall in
// [0, numSegments).
func NewSegmentedGridSource(vol *Volume, labels *LabelVolume, numSegments int) (*SegmentedGridSource, error) {
	if vol.Dims() != labels.Dims() {
		return nil, fmt.Errorf("segmented grid: scalar dims %v != label dims %v",
			vol.Dims(), labels.Dims())
	}
	if numSegments <= 0 {
		return nil, fmt.Errorf("segmented grid: segment count %d must be positive", numSegments)
	}
	return &SegmentedGridSource{
		grid:        NewUniformGridSource(vol),
		labels:      labels,
		numSegments: numSegments,
	}, nil
}

// NumSegments returns the declared segment count.
func (s *SegmentedGridSource) NumSegments() int {
	return s.numSegments
}

// cellSegment returns the segment of cell i: the label at the cell's
// lower-corner sample.
func (s *SegmentedGridSource) cellSegment(i int) int {
	ix, iy, iz := s.grid.cellCoord(i)
	return s.labels.At(ix, iy, iz)
}

func (s *SegmentedGridSource) makeRef(seg, i int) voxel.Ref {
	return voxel.Ref(seg)<<segShift | voxel.Ref(i)
}

// ActiveVoxels scans all cells across all segments, in ascending cell index
// order. Each Ref carries the cell's segment tag.
func (s *SegmentedGridSource) ActiveVoxels(iso float64) ([]voxel.Ref, error) {
	refs := voxel.Scan(s.grid.NumCells(), func(i int) (voxel.Ref, bool) {
		ix, iy, iz := s.grid.cellCoord(i)
		if !voxel.Straddles(s.grid.cellValues(ix, iy, iz), iso) {
			return 0, false
		}
		return s.makeRef(s.cellSegment(i), i), true
	})
	return refs, nil
}

// ActiveVoxelsInSegment restricts the search to cells belonging to the given
// segment, letting the caller drive different isovalues per segment.
func (s *SegmentedGridSource) ActiveVoxelsInSegment(iso float64, seg int) ([]voxel.Ref, error) {
	if seg < 0 || seg >= s.numSegments {
		return nil, fmt.Errorf("segmented grid: segment %d out of range [0,%d)", seg, s.numSegments)
	}
	refs := voxel.Scan(s.grid.NumCells(), func(i int) (voxel.Ref, bool) {
		if s.cellSegment(i) != seg {
			return 0, false
		}
		ix, iy, iz := s.grid.cellCoord(i)
		if !voxel.Straddles(s.grid.cellValues(ix, iy, iz), iso) {
			return 0, false
		}
		return s.makeRef(seg, i), true
	})
	return refs, nil
}

// checkRef unpacks a segmented Ref and verifies both the cell index range
// and that the segment tag matches the cell's actual segment.
func (s *SegmentedGridSource) checkRef(ref voxel.Ref) (int, error) {
	i := int(ref & (1<<segShift - 1))
	seg := int(ref >> segShift)
	if i >= s.grid.NumCells() {
		return 0, &voxel.InvalidRefError{
			Ref:    ref,
			Source: "segmented grid source",
			Reason: "cell index out of range",
		}
	}
	if seg >= s.numSegments || seg != s.cellSegment(i) {
		return 0, &voxel.InvalidRefError{
			Ref:    ref,
			Source: "segmented grid source",
			Reason: fmt.Sprintf("segment tag %d does not match cell", seg),
		}
	}
	return i, nil
}

// VoxelBounds reconstructs the world-space cell box for a Ref.
func (s *SegmentedGridSource) VoxelBounds(ref voxel.Ref) (sdf.Box3, error) {
	i, err := s.checkRef(ref)
	if err != nil {
		return sdf.Box3{}, err
	}
	return s.grid.VoxelBounds(voxel.Ref(i))
}

// Voxel reconstructs the full cell for a Ref.
func (s *SegmentedGridSource) Voxel(ref voxel.Ref) (voxel.Voxel, error) {
	i, err := s.checkRef(ref)
	if err != nil {
		return voxel.Voxel{}, err
	}
	return s.grid.Voxel(voxel.Ref(i))
}

// Segment extracts the segment tag from a Ref produced by this source.
func (s *SegmentedGridSource) Segment(ref voxel.Ref) int {
	return int(ref >> segShift)
}
