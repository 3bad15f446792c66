package structured_test

import v3 "github.com/deadsy/sdfx/vec/v3"

// vec3 is shorthand for building v3.Vec literals in tests.
func vec3(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}
