package mesh

import (
	"fmt"

	"github.com/deadsy/sdfx/render"

	"github.com/chazu/impi/pkg/voxel/structured"
)

// defaultPreviewCells controls marching cubes tessellation resolution.
const defaultPreviewCells = 64

// Preview extracts a triangle mesh approximation of the isosurface of a
// structured volume using marching cubes. It is a visual aid for checking
// a field before a full render; the implicit intersection path does not
// use it. cells <= 0 selects the default resolution.
func Preview(vol *structured.Volume, iso float64, cells int) (*Mesh, error) {
	if vol == nil {
		return nil, fmt.Errorf("preview: nil volume")
	}
	if cells <= 0 {
		cells = defaultPreviewCells
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(NewFieldSDF3(vol, iso), renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
