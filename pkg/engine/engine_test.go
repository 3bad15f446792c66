package engine

import (
	"strings"
	"sync"
	"testing"

	"github.com/chazu/impi/pkg/impi"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	s, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil scene")
	}
	if s.Source != impi.SourceOctant {
		t.Errorf("default source %v, want octant", s.Source)
	}
	if s.IsoSet {
		t.Error("empty script should leave the isovalue unset")
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := NewEngine()

	s, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil scene")
	}
}

func TestEvaluateOctantScene(t *testing.T) {
	eng := NewEngine()

	src := `
; two octants, one nested inside the other
(iso-value 0.5)
(octant :center (vec3 0 0 0) :width 2.0 :values [0 0 0 0 1 1 1 1])
(octant :center (vec3 0.25 0.25 0.25) :width 0.5 :values [0.4 0.6 0.4 0.6 0.4 0.6 0.4 0.6])
`
	s, evalErrs, err := eng.Evaluate(src)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if !s.IsoSet || s.IsoValue != 0.5 {
		t.Errorf("iso = (%v, set=%v), want 0.5 set", s.IsoValue, s.IsoSet)
	}
	if len(s.Octants) != 2 {
		t.Fatalf("got %d octants, want 2", len(s.Octants))
	}
	if s.Octants[0].Width != 2.0 {
		t.Errorf("octant 0 width %v, want 2.0", s.Octants[0].Width)
	}
	if s.Octants[1].Center.X != 0.25 {
		t.Errorf("octant 1 center.X %v, want 0.25", s.Octants[1].Center.X)
	}
	if s.Octants[0].Values != [8]float64{0, 0, 0, 0, 1, 1, 1, 1} {
		t.Errorf("octant 0 values %v", s.Octants[0].Values)
	}
}

func TestEvaluateVolumeScene(t *testing.T) {
	eng := NewEngine()

	src := `
(source :uniform)
(blob-volume :dims 32)
(iso-value 0.5)
`
	s, evalErrs, err := eng.Evaluate(src)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s.Source != impi.SourceUniform {
		t.Errorf("source %v, want uniform", s.Source)
	}
	if s.Volume == nil || s.Volume.Dims.X != 32 {
		t.Fatalf("volume spec %+v, want 32^3 blob", s.Volume)
	}
}

func TestEvaluateSegmentedScene(t *testing.T) {
	eng := NewEngine()

	src := `
(source :segmented)
(raw-volume :file "density.raw" :dims [64 64 64])
(segment-count 128)
`
	s, evalErrs, err := eng.Evaluate(src)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s.Source != impi.SourceSegmented {
		t.Errorf("source %v, want segmented", s.Source)
	}
	if s.Volume == nil || s.Volume.Path != "density.raw" {
		t.Fatalf("volume spec %+v, want density.raw", s.Volume)
	}
	if s.NumSegments != 128 {
		t.Errorf("segment count %d, want 128", s.NumSegments)
	}
}

func TestEvaluateBadSourceKind(t *testing.T) {
	eng := NewEngine()

	_, evalErrs, err := eng.Evaluate(`(source :bogus)`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error for an unknown source kind")
	}
	if !strings.Contains(evalErrs[0].Message, "bogus") {
		t.Errorf("error %q should name the bad kind", evalErrs[0].Message)
	}
}

func TestEvaluateParseError(t *testing.T) {
	eng := NewEngine()

	_, evalErrs, err := eng.Evaluate(`(octant :width`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for unbalanced parens")
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	eng := NewEngine()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Concurrent evaluations may supersede each other; the only
			// requirement is no panic and no cross-talk in results.
			s, _, err := eng.Evaluate(`(iso-value 0.7)`)
			if err == nil && s != nil && s.IsoSet && s.IsoValue != 0.7 {
				t.Errorf("cross-talk: iso %v", s.IsoValue)
			}
		}()
	}
	wg.Wait()
}
