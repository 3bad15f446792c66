package testcase

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/impi/pkg/voxel"
)

// Compile-time interface check.
var _ voxel.Source = (*MultiResSource)(nil)

// MultiRes Refs pack the resolution level into the high bits and the cell
// index within the level into the low bits.
const levelShift = 32

// MultiResSource is a fixed two-level test hierarchy: a 2x2x2-cell coarse
// level of width-1 cells covering [0,2]^3, with the last coarse cell also
// refined into a 2x2x2 block of width-0.5 cells. Both levels are live at
// once, so extraction and bounds logic see two cell sizes in the same
// region. The field is the linear ramp f(p) = x+y+z sampled at cell
// corners, which makes expected active sets exactly computable.
type MultiResSource struct {
	cells []multiResCell
}

type multiResCell struct {
	level int
	box   sdf.Box3
}

// NewMultiResSource builds the fixed hierarchy.
func NewMultiResSource() *MultiResSource {
	s := &MultiResSource{}
	// Coarse level: 8 cells of width 1, x-fastest.
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				min := v3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}
				s.cells = append(s.cells, multiResCell{
					level: 0,
					box:   sdf.Box3{Min: min, Max: min.Add(v3.Vec{X: 1, Y: 1, Z: 1})},
				})
			}
		}
	}
	// Fine level: the coarse cell at [1,2]^3 refined into 8 cells of width 0.5.
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				min := v3.Vec{X: 1 + 0.5*float64(x), Y: 1 + 0.5*float64(y), Z: 1 + 0.5*float64(z)}
				s.cells = append(s.cells, multiResCell{
					level: 1,
					box:   sdf.Box3{Min: min, Max: min.Add(v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})},
				})
			}
		}
	}
	return s
}

// ramp is the synthetic field sampled at cell corners.
func ramp(p v3.Vec) float64 {
	return p.X + p.Y + p.Z
}

func cellValues(box sdf.Box3) [8]float64 {
	var vals [8]float64
	size := box.Max.Sub(box.Min)
	k := 0
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				p := v3.Vec{
					X: box.Min.X + float64(x)*size.X,
					Y: box.Min.Y + float64(y)*size.Y,
					Z: box.Min.Z + float64(z)*size.Z,
				}
				vals[k] = ramp(p)
				k++
			}
		}
	}
	return vals
}

// NumCells returns the total cell count across both levels.
func (s *MultiResSource) NumCells() int {
	return len(s.cells)
}

// ActiveVoxels tests every cell on both levels in level-major, x-fastest
// order. Coarse and fine cells covering the same region are reported
// independently, exactly like overlapping octants.
func (s *MultiResSource) ActiveVoxels(iso float64) ([]voxel.Ref, error) {
	refs := voxel.Scan(len(s.cells), func(i int) (voxel.Ref, bool) {
		c := s.cells[i]
		ok := voxel.Straddles(cellValues(c.box), iso)
		return s.makeRef(c.level, i), ok
	})
	return refs, nil
}

func (s *MultiResSource) makeRef(level, i int) voxel.Ref {
	// The index within the level is the slice index minus the cells of the
	// levels before it; with two fixed levels of 8 this is i%8.
	return voxel.Ref(level)<<levelShift | voxel.Ref(i%8)
}

func (s *MultiResSource) checkRef(ref voxel.Ref) (int, error) {
	level := int(ref >> levelShift)
	idx := int(ref & (1<<levelShift - 1))
	if level < 0 || level > 1 || idx < 0 || idx >= 8 {
		return 0, &voxel.InvalidRefError{
			Ref:    ref,
			Source: "multi-resolution source",
			Reason: "level or cell index out of range",
		}
	}
	return level*8 + idx, nil
}

// VoxelBounds returns the bounds of the referenced cell.
func (s *MultiResSource) VoxelBounds(ref voxel.Ref) (sdf.Box3, error) {
	i, err := s.checkRef(ref)
	if err != nil {
		return sdf.Box3{}, err
	}
	return s.cells[i].box, nil
}

// Voxel returns the referenced cell with its corner samples.
func (s *MultiResSource) Voxel(ref voxel.Ref) (voxel.Voxel, error) {
	i, err := s.checkRef(ref)
	if err != nil {
		return voxel.Voxel{}, err
	}
	c := s.cells[i]
	return voxel.Voxel{Bounds: c.box, Values: cellValues(c.box)}, nil
}

// Level extracts the resolution level from a Ref produced by this source.
func (s *MultiResSource) Level(ref voxel.Ref) int {
	return int(ref >> levelShift)
}
