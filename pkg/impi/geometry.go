package impi

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/impi/pkg/voxel"
	"github.com/chazu/impi/pkg/voxel/structured"
	"github.com/chazu/impi/pkg/voxel/testcase"
)

// DefaultIsoValue is used when no isoValue parameter is committed.
const DefaultIsoValue = 0.7

// SourceKind selects the concrete voxel source a geometry binds on its
// first commit. It is an explicit configuration value fixed at geometry
// construction.
type SourceKind int

const (
	SourceOctant SourceKind = iota
	SourceUniform
	SourceSegmented
	SourceMultiRes
)

func (k SourceKind) String() string {
	switch k {
	case SourceOctant:
		return "octant"
	case SourceUniform:
		return "uniform"
	case SourceSegmented:
		return "segmented"
	case SourceMultiRes:
		return "multires"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// State tracks the geometry lifecycle.
type State int

const (
	StateUninitialized State = iota // no source bound yet
	StateSourceBound                // source constructed, not yet finalized
	StateCommitted                  // at least one extraction has run
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSourceBound:
		return "source-bound"
	case StateCommitted:
		return "committed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ActiveSet is the extraction result handed to the external intersection
// builder: the ordered ref sequence for one isovalue, plus the accessor
// callbacks it invokes per voxel during acceleration-structure construction
// and traversal.
type ActiveSet struct {
	IsoValue float64
	Refs     []voxel.Ref
	Bounds   func(voxel.Ref) (sdf.Box3, error)
	Voxel    func(voxel.Ref) (voxel.Voxel, error)
}

// Geometry drives one voxel source through the commit/finalize lifecycle.
// The source is constructed exactly once, on the first commit, and owned
// exclusively by the geometry until it is discarded; re-finalizing with a
// new isovalue re-runs extraction over the same source. Finalize calls on
// one geometry must be serialized by the caller.
type Geometry struct {
	kind     SourceKind
	state    State
	source   voxel.Source
	isoValue float64
}

// NewGeometry creates an uninitialized geometry for the given source kind.
func NewGeometry(kind SourceKind) *Geometry {
	return &Geometry{kind: kind, isoValue: DefaultIsoValue}
}

// State returns the current lifecycle state.
func (g *Geometry) State() State {
	return g.state
}

// IsoValue returns the isovalue in effect for the next finalize.
func (g *Geometry) IsoValue() float64 {
	return g.isoValue
}

// Source returns the bound voxel source, nil before the first commit.
func (g *Geometry) Source() voxel.Source {
	return g.source
}

// Commit parses commit-time parameters. The first successful commit binds
// the concrete source; every commit re-reads the isovalue. A failed first
// commit leaves the geometry uninitialized.
func (g *Geometry) Commit(params Params) error {
	if g.source == nil {
		src, err := g.buildSource(params)
		if err != nil {
			return fmt.Errorf("bind %s source: %w", g.kind, err)
		}
		g.source = src
		g.state = StateSourceBound
	}
	g.isoValue = params.Float("isoValue", DefaultIsoValue)
	return nil
}

func (g *Geometry) buildSource(params Params) (voxel.Source, error) {
	switch g.kind {
	case SourceOctant:
		widths, err := params.Floats("octantWidthArray")
		if err != nil {
			return nil, err
		}
		points, err := params.Vec3s("octantPointArray")
		if err != nil {
			return nil, err
		}
		values, err := params.Floats("octantValueArray")
		if err != nil {
			return nil, err
		}
		return testcase.NewOctantSourceFromArrays(widths, points, values)

	case SourceUniform:
		vol, ok := params.Value("volume")
		if !ok {
			return nil, &MissingParamError{Name: "volume"}
		}
		v, ok := vol.(*structured.Volume)
		if !ok {
			return nil, fmt.Errorf("parameter %q is not a structured volume", "volume")
		}
		return structured.NewUniformGridSource(v), nil

	case SourceSegmented:
		vol, ok := params.Value("volume")
		if !ok {
			return nil, &MissingParamError{Name: "volume"}
		}
		v, ok := vol.(*structured.Volume)
		if !ok {
			return nil, fmt.Errorf("parameter %q is not a structured volume", "volume")
		}
		seg, ok := params.Value("segmentVolume")
		if !ok {
			return nil, &MissingParamError{Name: "segmentVolume"}
		}
		labels, ok := seg.(*structured.LabelVolume)
		if !ok {
			return nil, fmt.Errorf("parameter %q is not a label volume", "segmentVolume")
		}
		numSegments := params.Int("numSegments", 0)
		if numSegments <= 0 {
			return nil, &MissingParamError{Name: "numSegments"}
		}
		return structured.NewSegmentedGridSource(v, labels, numSegments)

	case SourceMultiRes:
		return testcase.NewMultiResSource(), nil
	}
	return nil, fmt.Errorf("unknown source kind %v", g.kind)
}

// Finalize runs the active-voxel extraction for the committed isovalue.
// On failure it returns an empty active set along with the diagnostic, so
// a malformed field degrades to "no geometry" instead of crashing the
// render. Each call recomputes the set from scratch.
func (g *Geometry) Finalize() (*ActiveSet, error) {
	empty := &ActiveSet{IsoValue: g.isoValue, Refs: []voxel.Ref{}}
	if g.source == nil {
		return empty, fmt.Errorf("finalize before commit: geometry is %s", g.state)
	}

	refs, err := g.source.ActiveVoxels(g.isoValue)
	if err != nil {
		return empty, fmt.Errorf("active voxel extraction: %w", err)
	}

	g.state = StateCommitted
	return &ActiveSet{
		IsoValue: g.isoValue,
		Refs:     refs,
		Bounds:   g.source.VoxelBounds,
		Voxel:    g.source.Voxel,
	}, nil
}
