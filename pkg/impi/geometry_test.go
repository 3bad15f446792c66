package impi_test

import (
	"errors"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/deadsy/sdfx/vec/v3i"

	"github.com/chazu/impi/pkg/impi"
	"github.com/chazu/impi/pkg/voxel/structured"
	"github.com/chazu/impi/pkg/voxel/testcase"
)

// octantParams builds commit parameters for a single unit-width octant at
// the origin with the given constant corner value.
func octantParams(value float64) impi.Params {
	values := make([]float64, 8)
	for i := range values {
		values[i] = value
	}
	return impi.Params{
		"octantWidthArray": []float64{1, 1.0},
		"octantPointArray": []v3.Vec{{}},
		"octantValueArray": values,
	}
}

func TestGeometryLifecycle(t *testing.T) {
	g := impi.NewGeometry(impi.SourceOctant)
	if g.State() != impi.StateUninitialized {
		t.Fatalf("new geometry state %v, want uninitialized", g.State())
	}

	params := octantParams(2.0)
	params["isoValue"] = 2.0
	if err := g.Commit(params); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if g.State() != impi.StateSourceBound {
		t.Fatalf("state after commit %v, want source-bound", g.State())
	}

	set, err := g.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if g.State() != impi.StateCommitted {
		t.Fatalf("state after finalize %v, want committed", g.State())
	}
	if len(set.Refs) != 1 {
		t.Fatalf("iso=2.0 on constant-2 octant: got %d refs, want 1", len(set.Refs))
	}
}

func TestGeometryDefaultIsoValue(t *testing.T) {
	g := impi.NewGeometry(impi.SourceOctant)
	if err := g.Commit(octantParams(0.7)); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if g.IsoValue() != impi.DefaultIsoValue {
		t.Errorf("iso %v, want default %v", g.IsoValue(), impi.DefaultIsoValue)
	}

	set, err := g.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(set.Refs) != 1 {
		t.Errorf("default iso on constant-0.7 octant: got %d refs, want 1", len(set.Refs))
	}
}

func TestGeometryRecommitChangesIsoOnly(t *testing.T) {
	g := impi.NewGeometry(impi.SourceOctant)
	params := octantParams(2.0)
	params["isoValue"] = 2.0
	if err := g.Commit(params); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	src := g.Source()

	set, err := g.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(set.Refs) != 1 {
		t.Fatalf("iso=2.0: got %d refs, want 1", len(set.Refs))
	}

	// Second commit with a new isovalue must re-run extraction over the
	// same source, not rebuild it.
	if err := g.Commit(impi.Params{"isoValue": 2.1}); err != nil {
		t.Fatalf("re-Commit: %v", err)
	}
	if g.Source() != src {
		t.Fatal("re-commit rebuilt the source")
	}
	set, err = g.Finalize()
	if err != nil {
		t.Fatalf("re-Finalize: %v", err)
	}
	if len(set.Refs) != 0 {
		t.Fatalf("iso=2.1 above field: got %d refs, want 0", len(set.Refs))
	}
}

func TestGeometryMissingParameter(t *testing.T) {
	g := impi.NewGeometry(impi.SourceOctant)

	err := g.Commit(impi.Params{"isoValue": 0.5})
	var missing *impi.MissingParamError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParamError, got %v", err)
	}
	if g.State() != impi.StateUninitialized {
		t.Errorf("failed commit left state %v, want uninitialized", g.State())
	}

	// Finalize still must not crash: empty set plus diagnostic.
	set, err := g.Finalize()
	if err == nil {
		t.Fatal("Finalize before a successful commit should report an error")
	}
	if set == nil || len(set.Refs) != 0 {
		t.Fatalf("expected empty active set, got %v", set)
	}
}

func TestGeometryArrayLengthMismatch(t *testing.T) {
	g := impi.NewGeometry(impi.SourceOctant)

	// Declared two octants, supplied one center.
	params := impi.Params{
		"octantWidthArray": []float64{2, 1.0, 1.0},
		"octantPointArray": []v3.Vec{{}},
		"octantValueArray": make([]float64, 16),
	}
	err := g.Commit(params)
	var lenErr *testcase.LengthMismatchError
	if !errors.As(err, &lenErr) {
		t.Fatalf("expected LengthMismatchError, got %v", err)
	}

	set, err := g.Finalize()
	if err == nil {
		t.Fatal("Finalize after failed commit should report an error")
	}
	if len(set.Refs) != 0 {
		t.Fatalf("malformed input produced %d active voxels, want 0", len(set.Refs))
	}
}

func TestGeometryUniformSource(t *testing.T) {
	vol := structured.NewBlobVolume(8)
	g := impi.NewGeometry(impi.SourceUniform)
	if err := g.Commit(impi.Params{"volume": vol, "isoValue": 0.5}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	set, err := g.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(set.Refs) == 0 {
		t.Fatal("blob volume at iso=0.5 should have active voxels")
	}
	// Accessor callbacks resolve every returned ref.
	for _, ref := range set.Refs {
		if _, err := set.Voxel(ref); err != nil {
			t.Fatalf("Voxel callback failed for %#x: %v", uint64(ref), err)
		}
	}
}

func TestGeometrySegmentedSource(t *testing.T) {
	dims := v3i.Vec{X: 3, Y: 3, Z: 3}
	vol := structured.NewVolume(dims)
	labels := structured.NewLabelVolume(dims)
	for z := 0; z < 3; z++ {
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				vol.Set(x, y, z, float64(z))
			}
		}
	}

	g := impi.NewGeometry(impi.SourceSegmented)
	err := g.Commit(impi.Params{"volume": vol, "segmentVolume": labels})
	var missing *impi.MissingParamError
	if !errors.As(err, &missing) {
		t.Fatalf("missing segment count: expected MissingParamError, got %v", err)
	}

	if err := g.Commit(impi.Params{
		"volume":        vol,
		"segmentVolume": labels,
		"numSegments":   1,
		"isoValue":      0.5,
	}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	set, err := g.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(set.Refs) != 4 {
		t.Fatalf("got %d refs, want 4", len(set.Refs))
	}
}

func TestGeometryMultiResSource(t *testing.T) {
	g := impi.NewGeometry(impi.SourceMultiRes)
	if err := g.Commit(impi.Params{"isoValue": 4.0}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	set, err := g.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(set.Refs) == 0 {
		t.Fatal("multires source at iso=4.0 should have active cells")
	}
}
