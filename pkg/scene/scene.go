// Package scene defines the scene description produced by the scripting
// engine and its lowering into commit-time parameters for the geometry
// driver. A Scene is a plain value: which source kind to bind, the
// isovalue, and the data (octant list or volume spec) the source needs.
package scene

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/deadsy/sdfx/vec/v3i"

	"github.com/chazu/impi/pkg/impi"
	"github.com/chazu/impi/pkg/voxel/structured"
)

// OctantSpec describes one octant: center, edge width, and 8 corner values
// in x-fastest lattice order.
type OctantSpec struct {
	Center v3.Vec
	Width  float64
	Values [8]float64
}

// VolumeKind distinguishes how a structured volume is obtained.
type VolumeKind int

const (
	VolumeBlob VolumeKind = iota // synthetic radial-blob test field
	VolumeRaw                    // little-endian float32 raw file
)

// VolumeSpec describes a structured volume to load or generate.
type VolumeSpec struct {
	Kind VolumeKind
	Path string  // raw file path, VolumeRaw only
	Dims v3i.Vec // sample counts per axis
}

// Scene is the full description a script evaluates to.
type Scene struct {
	Source      impi.SourceKind
	IsoValue    float64
	IsoSet      bool // distinguishes an explicit 0 from "use the default"
	Octants     []OctantSpec
	Volume      *VolumeSpec
	NumSegments int
}

// New returns an empty scene bound to the octant test source, matching the
// driver's historical default.
func New() *Scene {
	return &Scene{Source: impi.SourceOctant}
}

// Params lowers the scene to the commit-parameter layout the driver
// consumes. For the octant source this produces the three parallel arrays
// with the count header in octantWidthArray[0]; for grid sources it
// generates or loads the volume and attaches it as an object handle.
func (s *Scene) Params() (impi.Params, error) {
	p := impi.Params{}
	if s.IsoSet {
		p["isoValue"] = s.IsoValue
	}

	switch s.Source {
	case impi.SourceOctant:
		n := len(s.Octants)
		widths := make([]float64, 0, n+1)
		widths = append(widths, float64(n))
		points := make([]v3.Vec, 0, n)
		values := make([]float64, 0, 8*n)
		for _, o := range s.Octants {
			widths = append(widths, o.Width)
			points = append(points, o.Center)
			values = append(values, o.Values[:]...)
		}
		p["octantWidthArray"] = widths
		p["octantPointArray"] = points
		p["octantValueArray"] = values

	case impi.SourceUniform:
		vol, err := s.BuildVolume()
		if err != nil {
			return nil, err
		}
		p["volume"] = vol

	case impi.SourceSegmented:
		vol, err := s.BuildVolume()
		if err != nil {
			return nil, err
		}
		p["volume"] = vol
		p["segmentVolume"] = quantizeLabels(vol, s.NumSegments)
		p["numSegments"] = s.NumSegments

	case impi.SourceMultiRes:
		// The multi-resolution test source is self-contained.

	default:
		return nil, fmt.Errorf("scene: unknown source kind %v", s.Source)
	}
	return p, nil
}

// BuildVolume generates or loads the structured volume the scene names.
// Grid sources call this during Params; the preview path calls it directly
// to mesh the field.
func (s *Scene) BuildVolume() (*structured.Volume, error) {
	if s.Volume == nil {
		return nil, fmt.Errorf("scene: %s source needs a volume", s.Source)
	}
	switch s.Volume.Kind {
	case VolumeBlob:
		return structured.NewBlobVolume(s.Volume.Dims.X), nil
	case VolumeRaw:
		return structured.LoadRAW(s.Volume.Path, s.Volume.Dims)
	}
	return nil, fmt.Errorf("scene: unknown volume kind %v", s.Volume.Kind)
}

// quantizeLabels derives a segment label volume by bucketing each scalar
// sample into one of n equal-width value bands. This stands in for an
// externally supplied segmentation when none is loaded from disk.
func quantizeLabels(vol *structured.Volume, n int) *structured.LabelVolume {
	d := vol.Dims()
	labels := structured.NewLabelVolume(d)
	if n <= 1 {
		return labels
	}

	lo, hi := vol.At(0, 0, 0), vol.At(0, 0, 0)
	for z := 0; z < d.Z; z++ {
		for y := 0; y < d.Y; y++ {
			for x := 0; x < d.X; x++ {
				v := vol.At(x, y, z)
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
		}
	}
	if hi <= lo {
		return labels
	}

	scale := float64(n) / (hi - lo)
	for z := 0; z < d.Z; z++ {
		for y := 0; y < d.Y; y++ {
			for x := 0; x < d.X; x++ {
				seg := int((vol.At(x, y, z) - lo) * scale)
				if seg >= n {
					seg = n - 1
				}
				labels.Set(x, y, z, seg)
			}
		}
	}
	return labels
}
