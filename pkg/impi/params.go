// Package impi implements the isosurface geometry driver: it binds a
// concrete voxel source from commit-time parameters, runs the active-voxel
// extraction for the committed isovalue, and hands the result to the
// downstream intersection stage as a ref list plus accessor callbacks.
package impi

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Params is the commit-time key/value parameter store, the module's view of
// the host renderer's parameter system. Values are set by the application
// layer (scene scripts, CLI) and read once per commit.
type Params map[string]interface{}

// MissingParamError reports a required commit parameter that was not set.
// The commit fails and the geometry yields no active voxels.
type MissingParamError struct {
	Name string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("required parameter %q not set", e.Name)
}

// Float returns a float parameter, or def if unset.
func (p Params) Float(name string, def float64) float64 {
	if v, ok := p[name].(float64); ok {
		return v
	}
	return def
}

// Int returns an integer parameter, or def if unset.
func (p Params) Int(name string, def int) int {
	if v, ok := p[name].(int); ok {
		return v
	}
	return def
}

// Floats returns a required float-buffer parameter.
func (p Params) Floats(name string) ([]float64, error) {
	v, ok := p[name].([]float64)
	if !ok {
		return nil, &MissingParamError{Name: name}
	}
	return v, nil
}

// Vec3s returns a required vec3-buffer parameter.
func (p Params) Vec3s(name string) ([]v3.Vec, error) {
	v, ok := p[name].([]v3.Vec)
	if !ok {
		return nil, &MissingParamError{Name: name}
	}
	return v, nil
}

// Value returns a raw parameter value, for object handles such as volumes.
func (p Params) Value(name string) (interface{}, bool) {
	v, ok := p[name]
	return v, ok
}
