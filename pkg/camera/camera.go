// Package camera holds the viewer pose used to aim edits and order chunks
// for drawing. It is plain state owned by the caller.
package camera

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Per-input step sizes.
const (
	TurnStep = 0.01
	MoveStep = 1.0
)

// Camera is a position plus yaw (Theta) and pitch (Phi) in radians. The
// world is z-up.
type Camera struct {
	Position v3.Vec
	Theta    float64
	Phi      float64
}

// Default returns the starting pose, looking down at the world origin
// from above one corner.
func Default() Camera {
	return Camera{
		Position: v3.Vec{X: 200, Y: 200, Z: 200},
		Theta:    -2.7,
		Phi:      -0.7,
	}
}

// Direction returns the unit view direction.
func (c *Camera) Direction() v3.Vec {
	cp := math.Cos(c.Phi)
	return v3.Vec{
		X: math.Cos(c.Theta) * cp,
		Y: math.Sin(c.Theta) * cp,
		Z: math.Sin(c.Phi),
	}
}

// Turn adds d radians of yaw.
func (c *Camera) Turn(d float64) { c.Theta += d }

// Tilt adds d radians of pitch.
func (c *Camera) Tilt(d float64) { c.Phi += d }

// Advance moves d units along the view direction. Negative d moves back.
func (c *Camera) Advance(d float64) {
	c.Position = c.Position.Add(c.Direction().MulScalar(d))
}

// Ray returns the pick ray through the centre of the view.
func (c *Camera) Ray() (origin, dir v3.Vec) {
	return c.Position, c.Direction()
}
