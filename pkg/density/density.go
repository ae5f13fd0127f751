// Package density provides the scalar fields that seed terrain solidity.
// A field is a pure function of a sample point; the terrain decides how to
// scale world coordinates into sample space and where the solidity
// threshold lies.
package density

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Func evaluates the density at a sample point. It must be deterministic.
type Func func(x, y, z float64) float64

// Constant returns a field with the same value everywhere.
func Constant(v float64) Func {
	return func(_, _, _ float64) float64 { return v }
}

// FromSDF adapts an sdfx solid into a density field. Sample points arrive
// in scaled space, so they are divided by scale to bring them back into the
// solid's voxel-unit coordinates. The signed distance is negative inside
// the solid, which matches the "solid below threshold" rule.
func FromSDF(s sdf.SDF3, scale float64) Func {
	if scale == 0 {
		scale = 1
	}
	return func(x, y, z float64) float64 {
		return s.Evaluate(v3.Vec{X: x / scale, Y: y / scale, Z: z / scale})
	}
}
