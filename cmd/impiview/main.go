// Command impiview evaluates a scene script, extracts the active voxels at
// the scene's isovalue, and reports what an intersector would consume. For
// structured volume scenes it can additionally write a marching cubes
// preview of the isosurface as an STL file.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/deadsy/sdfx/render"

	"github.com/chazu/impi/pkg/engine"
	"github.com/chazu/impi/pkg/impi"
	"github.com/chazu/impi/pkg/mesh"
	"github.com/chazu/impi/pkg/scene"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "scene script path, or - for stdin")
		isoFlag   = flag.Float64("iso", math.NaN(), "override the scene's isovalue")
		checkOnly = flag.Bool("check", false, "validate the scene and exit")
		stlPath   = flag.String("stl", "", "write an STL isosurface preview (volume scenes only)")
		cells     = flag.Int("cells", 64, "marching cubes resolution for the STL preview")
	)
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("impiview: ")

	if *scenePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	src, err := readScene(*scenePath)
	if err != nil {
		log.Fatalf("read scene: %v", err)
	}

	s, evalErrs, err := engine.NewEngine().Evaluate(src)
	if err != nil {
		log.Fatalf("evaluate scene: %v", err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Printf("scene error: %s", e.Error())
		}
		os.Exit(1)
	}

	if !math.IsNaN(*isoFlag) {
		s.IsoValue = *isoFlag
		s.IsoSet = true
	}

	findings := scene.Validate(s)
	for _, f := range findings {
		log.Printf("%s", f.Error())
	}
	if scene.HasErrors(findings) {
		os.Exit(1)
	}
	if *checkOnly {
		return
	}

	set, err := extract(s)
	if err != nil {
		log.Fatalf("extract: %v", err)
	}

	fmt.Printf("source:        %s\n", s.Source)
	fmt.Printf("isovalue:      %g\n", set.IsoValue)
	fmt.Printf("active voxels: %d\n", len(set.Refs))

	if len(set.Refs) > 0 {
		bounds, err := impi.WorldBounds(set)
		if err != nil {
			log.Fatalf("world bounds: %v", err)
		}
		fmt.Printf("bounds min:    (%g, %g, %g)\n", bounds.Min.X, bounds.Min.Y, bounds.Min.Z)
		fmt.Printf("bounds max:    (%g, %g, %g)\n", bounds.Max.X, bounds.Max.Y, bounds.Max.Z)

		patches, err := mesh.Patches(set)
		if err != nil {
			log.Fatalf("patches: %v", err)
		}
		fmt.Printf("patches:       %d\n", len(patches))
	}

	if *stlPath != "" {
		if err := writeSTL(s, set.IsoValue, *stlPath, *cells); err != nil {
			log.Fatalf("write stl: %v", err)
		}
		fmt.Printf("stl:           %s\n", *stlPath)
	}
}

// readScene loads the script from a file or stdin.
func readScene(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

// extract commits the scene and runs the active-voxel search.
func extract(s *scene.Scene) (*impi.ActiveSet, error) {
	params, err := s.Params()
	if err != nil {
		return nil, err
	}
	g := impi.NewGeometry(s.Source)
	if err := g.Commit(params); err != nil {
		return nil, err
	}
	return g.Finalize()
}

// writeSTL meshes the scene's structured field with marching cubes. Octant
// and multi-resolution scenes have no dense field to march.
func writeSTL(s *scene.Scene, iso float64, path string, cells int) error {
	if s.Volume == nil {
		return fmt.Errorf("scene has no structured volume to mesh")
	}
	vol, err := s.BuildVolume()
	if err != nil {
		return err
	}
	render.ToSTL(mesh.NewFieldSDF3(vol, iso), path, render.NewMarchingCubesUniform(cells))
	return nil
}
