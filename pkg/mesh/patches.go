package mesh

import (
	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/impi/pkg/impi"
)

// Patch is one implicit bilinear patch primitive: an axis-aligned cell box
// plus the eight corner scalars that define the trilinear field inside it.
// The surface is the level set field(p) == Iso restricted to Bounds; an
// intersector solves for the crossing along each ray instead of walking
// triangles.
type Patch struct {
	Bounds sdf.Box3
	Values [8]float64
	Iso    float64
}

// Patches materializes the active set into patch primitives, one per active
// cell, in the same order as the set's refs. Rays that hit Bounds are then
// tested against the trilinear level set.
func Patches(set *impi.ActiveSet) ([]Patch, error) {
	patches := make([]Patch, 0, len(set.Refs))
	for _, ref := range set.Refs {
		vox, err := set.Voxel(ref)
		if err != nil {
			return nil, err
		}
		patches = append(patches, Patch{
			Bounds: vox.Bounds,
			Values: vox.Values,
			Iso:    set.IsoValue,
		})
	}
	return patches, nil
}
