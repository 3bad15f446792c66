package impi

import (
	"log"
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// WorldBounds returns the union of the bounds of every voxel in the active
// set. A non-finite extent (NaN or Inf leaking from a degenerate or empty
// import) is clamped to zero extent on the offending axes and logged; the
// downstream geometry must never see a NaN box.
func WorldBounds(set *ActiveSet) (sdf.Box3, error) {
	var out sdf.Box3
	first := true
	for _, ref := range set.Refs {
		b, err := set.Bounds(ref)
		if err != nil {
			return sdf.Box3{}, err
		}
		if first {
			out = b
			first = false
			continue
		}
		out.Min = out.Min.Min(b.Min)
		out.Max = out.Max.Max(b.Max)
	}
	if first {
		return sdf.Box3{}, nil
	}
	return clampDegenerate(out), nil
}

// clampDegenerate zeroes any axis whose extent is not finite.
func clampDegenerate(b sdf.Box3) sdf.Box3 {
	orig := b
	clamped := false
	lo := [3]*float64{&b.Min.X, &b.Min.Y, &b.Min.Z}
	hi := [3]*float64{&b.Max.X, &b.Max.Y, &b.Max.Z}
	for i := 0; i < 3; i++ {
		size := *hi[i] - *lo[i]
		if isFinite(size) {
			continue
		}
		clamped = true
		if isFinite(*lo[i]) {
			*hi[i] = *lo[i]
		} else if isFinite(*hi[i]) {
			*lo[i] = *hi[i]
		} else {
			*lo[i], *hi[i] = 0, 0
		}
	}
	if clamped {
		log.Printf("impi: degenerate field bounds clamped to zero extent (was %v..%v)", orig.Min, orig.Max)
	}
	return b
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
