package scene_test

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/deadsy/sdfx/vec/v3i"

	"github.com/chazu/impi/pkg/impi"
	"github.com/chazu/impi/pkg/scene"
)

func TestOctantParamLayout(t *testing.T) {
	s := scene.New()
	s.Octants = []scene.OctantSpec{
		{Center: v3.Vec{X: 1}, Width: 2.0, Values: [8]float64{0, 1, 2, 3, 4, 5, 6, 7}},
		{Center: v3.Vec{Y: 3}, Width: 0.5, Values: [8]float64{7, 6, 5, 4, 3, 2, 1, 0}},
	}

	p, err := s.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}

	widths, err := p.Floats("octantWidthArray")
	if err != nil {
		t.Fatalf("octantWidthArray: %v", err)
	}
	// Element 0 is the count header.
	if len(widths) != 3 || widths[0] != 2 || widths[1] != 2.0 || widths[2] != 0.5 {
		t.Errorf("width array %v, want [2 2 0.5]", widths)
	}

	points, err := p.Vec3s("octantPointArray")
	if err != nil {
		t.Fatalf("octantPointArray: %v", err)
	}
	if len(points) != 2 || points[0] != (v3.Vec{X: 1}) || points[1] != (v3.Vec{Y: 3}) {
		t.Errorf("point array %v", points)
	}

	values, err := p.Floats("octantValueArray")
	if err != nil {
		t.Fatalf("octantValueArray: %v", err)
	}
	if len(values) != 16 {
		t.Fatalf("value array length %d, want 16", len(values))
	}
	if values[0] != 0 || values[7] != 7 || values[8] != 7 || values[15] != 0 {
		t.Errorf("value array not flattened in octant order: %v", values)
	}
}

func TestIsoValueOnlyWhenSet(t *testing.T) {
	s := scene.New()
	p, err := s.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if p.Float("isoValue", impi.DefaultIsoValue) != impi.DefaultIsoValue {
		t.Error("unset isovalue should fall through to the driver default")
	}

	s.IsoValue = 0.0
	s.IsoSet = true
	p, err = s.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if p.Float("isoValue", impi.DefaultIsoValue) != 0.0 {
		t.Error("explicit isovalue 0 must survive lowering")
	}
}

func TestUniformSceneNeedsVolume(t *testing.T) {
	s := scene.New()
	s.Source = impi.SourceUniform
	if _, err := s.Params(); err == nil {
		t.Fatal("uniform scene without volume should fail to lower")
	}
}

func TestSceneToGeometryEndToEnd(t *testing.T) {
	s := scene.New()
	s.Source = impi.SourceUniform
	s.Volume = &scene.VolumeSpec{Kind: scene.VolumeBlob, Dims: v3i.Vec{X: 8, Y: 8, Z: 8}}
	s.IsoValue = 0.5
	s.IsoSet = true

	p, err := s.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}

	g := impi.NewGeometry(s.Source)
	if err := g.Commit(p); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	set, err := g.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(set.Refs) == 0 {
		t.Fatal("blob scene at iso=0.5 should produce active voxels")
	}
}

func TestSegmentedSceneEndToEnd(t *testing.T) {
	s := scene.New()
	s.Source = impi.SourceSegmented
	s.Volume = &scene.VolumeSpec{Kind: scene.VolumeBlob, Dims: v3i.Vec{X: 8, Y: 8, Z: 8}}
	s.NumSegments = 4
	s.IsoValue = 0.5
	s.IsoSet = true

	p, err := s.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}

	g := impi.NewGeometry(s.Source)
	if err := g.Commit(p); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	set, err := g.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(set.Refs) == 0 {
		t.Fatal("segmented blob scene at iso=0.5 should produce active voxels")
	}
}
