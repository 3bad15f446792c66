package voxel

import "fmt"

// InvalidRefError reports a Ref that was not produced by the source it was
// handed to. Sources detect this by range/tag checking the handle before
// touching any backing array, so a stale or foreign Ref can never read
// out-of-bounds data or silently return garbage.
type InvalidRefError struct {
	Ref    Ref
	Source string // short source description for diagnostics
	Reason string
}

func (e *InvalidRefError) Error() string {
	return fmt.Sprintf("invalid voxel ref %#x for %s: %s", uint64(e.Ref), e.Source, e.Reason)
}
