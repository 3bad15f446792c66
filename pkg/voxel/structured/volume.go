// Package structured implements voxel sources over dense structured grids:
// a uniform scalar volume and a segmented variant that pairs the scalars
// with a per-sample segment label volume.
package structured

import (
	"encoding/binary"
	"fmt"
	"os"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/deadsy/sdfx/vec/v3i"
)

// Volume is a dense nx*ny*nz scalar field with a fixed grid-to-world
// transform. Samples are stored as float32 (the on-disk RAW format) and
// widened to float64 on access.
type Volume struct {
	dims    v3i.Vec
	origin  v3.Vec
	spacing v3.Vec
	data    []float32
}

// NewVolume creates a zero-filled volume with unit spacing and the origin
// at (0,0,0).
func NewVolume(dims v3i.Vec) *Volume {
	return &Volume{
		dims:    dims,
		origin:  v3.Vec{},
		spacing: v3.Vec{X: 1, Y: 1, Z: 1},
		data:    make([]float32, dims.X*dims.Y*dims.Z),
	}
}

// SetTransform fixes the grid-to-world mapping: world = origin + idx*spacing.
func (v *Volume) SetTransform(origin, spacing v3.Vec) {
	v.origin = origin
	v.spacing = spacing
}

// Dims returns the sample counts along each axis.
func (v *Volume) Dims() v3i.Vec {
	return v.dims
}

func (v *Volume) index(x, y, z int) int {
	return x + v.dims.X*(y+v.dims.Y*z)
}

// At returns the sample at grid position (x, y, z).
func (v *Volume) At(x, y, z int) float64 {
	return float64(v.data[v.index(x, y, z)])
}

// Set stores a sample at grid position (x, y, z).
func (v *Volume) Set(x, y, z int, val float64) {
	v.data[v.index(x, y, z)] = float32(val)
}

// WorldPos maps a grid index to world space through the volume transform.
func (v *Volume) WorldPos(x, y, z int) v3.Vec {
	return v3.Vec{
		X: v.origin.X + float64(x)*v.spacing.X,
		Y: v.origin.Y + float64(y)*v.spacing.Y,
		Z: v.origin.Z + float64(z)*v.spacing.Z,
	}
}

// blob is a linear radial basis function: weight 1 at center falling to 0
// at radius r.
func blob(pos, center v3.Vec, r float64) float64 {
	dist := pos.Sub(center).Length()
	if dist > r {
		return 0
	}
	return 1 - dist/r
}

// NewBlobVolume generates the standard synthetic test field: a handful of
// radial blobs in the unit cube, sampled on an n^3 lattice. The transform is
// set so the volume spans [0,1]^3 in world space.
func NewBlobVolume(n int) *Volume {
	vol := NewVolume(v3i.Vec{X: n, Y: n, Z: n})
	inv := 1.0 / float64(n-1)
	vol.SetTransform(v3.Vec{}, v3.Vec{X: inv, Y: inv, Z: inv})

	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				pos := v3.Vec{X: float64(x) * inv, Y: float64(y) * inv, Z: float64(z) * inv}
				val := blob(pos, v3.Vec{X: .2, Y: .1, Z: .7}, .3) +
					blob(pos, v3.Vec{X: .3, Y: .3, Z: .2}, .2) +
					blob(pos, v3.Vec{X: .8, Y: .4, Z: .9}, .1) +
					blob(pos, v3.Vec{X: .5, Y: .5, Z: .5}, .4)
				vol.Set(x, y, z, val)
			}
		}
	}
	return vol
}

// LoadRAW reads a little-endian float32 raw volume with the given dims.
// Raw files carry no header; the caller supplies the dimensions, and a file
// shorter than dims.X*dims.Y*dims.Z samples is an error.
func LoadRAW(path string, dims v3i.Vec) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load raw volume: %w", err)
	}
	defer f.Close()

	vol := NewVolume(dims)
	if err := binary.Read(f, binary.LittleEndian, vol.data); err != nil {
		return nil, fmt.Errorf("load raw volume %q (%dx%dx%d): %w",
			path, dims.X, dims.Y, dims.Z, err)
	}
	return vol, nil
}
