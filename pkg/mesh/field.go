package mesh

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/impi/pkg/voxel/structured"
)

// Compile-time interface check.
var _ sdf.SDF3 = (*FieldSDF3)(nil)

// FieldSDF3 adapts a structured volume plus an isovalue to the sdf.SDF3
// interface, so the stock sdfx renderers can march the implicit surface.
// The distance estimate is iso minus the trilinearly interpolated field
// value: negative where the field exceeds the isovalue ("inside").
type FieldSDF3 struct {
	vol *structured.Volume
	iso float64
}

// NewFieldSDF3 wraps a volume at the given isovalue.
func NewFieldSDF3(vol *structured.Volume, iso float64) *FieldSDF3 {
	return &FieldSDF3{vol: vol, iso: iso}
}

// BoundingBox returns the world-space extent of the sample lattice.
func (f *FieldSDF3) BoundingBox() sdf.Box3 {
	d := f.vol.Dims()
	return sdf.Box3{
		Min: f.vol.WorldPos(0, 0, 0),
		Max: f.vol.WorldPos(d.X-1, d.Y-1, d.Z-1),
	}
}

// Evaluate returns iso - field(p), with p clamped to the lattice and the
// field value reconstructed by trilinear interpolation.
func (f *FieldSDF3) Evaluate(p v3.Vec) float64 {
	d := f.vol.Dims()
	origin := f.vol.WorldPos(0, 0, 0)
	far := f.vol.WorldPos(d.X-1, d.Y-1, d.Z-1)

	gx := gridCoord(p.X, origin.X, far.X, d.X)
	gy := gridCoord(p.Y, origin.Y, far.Y, d.Y)
	gz := gridCoord(p.Z, origin.Z, far.Z, d.Z)

	ix, fx := splitCoord(gx, d.X)
	iy, fy := splitCoord(gy, d.Y)
	iz, fz := splitCoord(gz, d.Z)

	var val float64
	for z := 0; z < 2; z++ {
		wz := 1 - fz
		if z == 1 {
			wz = fz
		}
		for y := 0; y < 2; y++ {
			wy := 1 - fy
			if y == 1 {
				wy = fy
			}
			for x := 0; x < 2; x++ {
				wx := 1 - fx
				if x == 1 {
					wx = fx
				}
				val += wx * wy * wz * f.vol.At(ix+x, iy+y, iz+z)
			}
		}
	}
	return f.iso - val
}

// gridCoord maps a world coordinate into continuous grid space [0, n-1].
func gridCoord(w, lo, hi float64, n int) float64 {
	if hi <= lo {
		return 0
	}
	g := (w - lo) / (hi - lo) * float64(n-1)
	if g < 0 {
		return 0
	}
	if g > float64(n-1) {
		return float64(n - 1)
	}
	return g
}

// splitCoord splits a continuous grid coordinate into a cell index and the
// fractional offset within that cell, keeping the index a valid lower cell
// corner.
func splitCoord(g float64, n int) (int, float64) {
	i := int(g)
	if i > n-2 {
		i = n - 2
		if i < 0 {
			i = 0
		}
	}
	return i, g - float64(i)
}
