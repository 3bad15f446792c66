package structured

import (
	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/impi/pkg/voxel"
)

// Compile-time interface check.
var _ voxel.Source = (*UniformGridSource)(nil)

// UniformGridSource exposes every unit cell of a dense volume as a voxel.
// A volume with nx*ny*nz samples has (nx-1)*(ny-1)*(nz-1) cells; the Ref of
// a cell is its flat index in x-fastest order.
type UniformGridSource struct {
	vol *Volume
	cx  int // cell counts per axis
	cy  int
	cz  int
}

// NewUniformGridSource creates a source over vol. The volume is borrowed for
// the lifetime of the source and must not be mutated while the source is in
// use. A volume with fewer than 2 samples along any axis has no cells.
func NewUniformGridSource(vol *Volume) *UniformGridSource {
	d := vol.Dims()
	cx, cy, cz := d.X-1, d.Y-1, d.Z-1
	if cx < 0 {
		cx = 0
	}
	if cy < 0 {
		cy = 0
	}
	if cz < 0 {
		cz = 0
	}
	return &UniformGridSource{vol: vol, cx: cx, cy: cy, cz: cz}
}

// NumCells returns the number of cells in the grid.
func (s *UniformGridSource) NumCells() int {
	return s.cx * s.cy * s.cz
}

func (s *UniformGridSource) cellCoord(i int) (ix, iy, iz int) {
	ix = i % s.cx
	iy = (i / s.cx) % s.cy
	iz = i / (s.cx * s.cy)
	return
}

// cellValues gathers the 8 corner samples of cell (ix, iy, iz) in the
// x-fastest lattice order used by voxel.Voxel.
func (s *UniformGridSource) cellValues(ix, iy, iz int) [8]float64 {
	var vals [8]float64
	k := 0
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				vals[k] = s.vol.At(ix+x, iy+y, iz+z)
				k++
			}
		}
	}
	return vals
}

// ActiveVoxels scans all cells and returns the flat indices of those that
// straddle iso, in ascending index order.
func (s *UniformGridSource) ActiveVoxels(iso float64) ([]voxel.Ref, error) {
	refs := voxel.Scan(s.NumCells(), func(i int) (voxel.Ref, bool) {
		ix, iy, iz := s.cellCoord(i)
		return voxel.Ref(i), voxel.Straddles(s.cellValues(ix, iy, iz), iso)
	})
	return refs, nil
}

func (s *UniformGridSource) checkRef(ref voxel.Ref) (int, error) {
	i := int(ref)
	if uint64(ref) >= uint64(s.NumCells()) {
		return 0, &voxel.InvalidRefError{
			Ref:    ref,
			Source: "uniform grid source",
			Reason: "cell index out of range",
		}
	}
	return i, nil
}

// VoxelBounds reconstructs the world-space cell box for a Ref.
func (s *UniformGridSource) VoxelBounds(ref voxel.Ref) (sdf.Box3, error) {
	i, err := s.checkRef(ref)
	if err != nil {
		return sdf.Box3{}, err
	}
	ix, iy, iz := s.cellCoord(i)
	return sdf.Box3{
		Min: s.vol.WorldPos(ix, iy, iz),
		Max: s.vol.WorldPos(ix+1, iy+1, iz+1),
	}, nil
}

// Voxel reconstructs the full cell for a Ref.
func (s *UniformGridSource) Voxel(ref voxel.Ref) (voxel.Voxel, error) {
	i, err := s.checkRef(ref)
	if err != nil {
		return voxel.Voxel{}, err
	}
	ix, iy, iz := s.cellCoord(i)
	return voxel.Voxel{
		Bounds: sdf.Box3{
			Min: s.vol.WorldPos(ix, iy, iz),
			Max: s.vol.WorldPos(ix+1, iy+1, iz+1),
		},
		Values: s.cellValues(ix, iy, iz),
	}, nil
}
