package voxel

import (
	"math"

	"github.com/chazu/voxterrain/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Hit is the result of a voxel-level ray cast.
type Hit struct {
	Distance float64
	Point    v3.Vec
}

// IntersectRay returns the distance along dir to the chunk's bounds. It is 0
// when origin is inside the chunk and +Inf on a miss.
func (c *Chunk) IntersectRay(origin, dir v3.Vec) float64 {
	b := c.Bounds()
	if geom.Contains(b, origin) {
		return 0
	}
	return geom.IntersectBox(origin, dir, b)
}

// IntersectsSphere reports whether the sphere touches the chunk's bounds.
func (c *Chunk) IntersectsSphere(center v3.Vec, radius float64) bool {
	return geom.SphereDistance2(c.Bounds(), center) <= radius*radius
}

// IntersectVoxels casts a ray against every solid voxel and returns the
// nearest hit. If origin lies inside a solid voxel that voxel is returned
// immediately: Distance is measured to the voxel centre and Point is its
// minimum corner.
func (c *Chunk) IntersectVoxels(origin, dir v3.Vec) (Hit, bool) {
	best := math.Inf(1)
	found := false

	for x := 0; x < c.size; x++ {
		for y := 0; y < c.size; y++ {
			for z := 0; z < c.size; z++ {
				if c.voxels[(x*c.size+y)*c.size+z] == Empty {
					continue
				}
				lo := c.worldMin(x, y, z)
				box := geom.UnitBox(lo)
				if geom.Contains(box, origin) {
					center := lo.Add(v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
					return Hit{Distance: center.Sub(origin).Length(), Point: lo}, true
				}
				if d := geom.IntersectBox(origin, dir, box); !geom.Miss(d) && d < best {
					best = d
					found = true
				}
			}
		}
	}

	if !found {
		return Hit{}, false
	}
	return Hit{Distance: best, Point: origin.Add(dir.MulScalar(best))}, true
}

// Explode clears every solid voxel whose integer coordinate lies strictly
// within radius of center. It reports whether any voxel changed.
func (c *Chunk) Explode(center v3.Vec, radius float64) bool {
	lx := center.X - float64(c.origin[0])
	ly := center.Y - float64(c.origin[1])
	lz := center.Z - float64(c.origin[2])
	r2 := radius * radius

	changed := false
	for x := 0; x < c.size; x++ {
		dx := float64(x) - lx
		for y := 0; y < c.size; y++ {
			dy := float64(y) - ly
			for z := 0; z < c.size; z++ {
				dz := float64(z) - lz
				i := (x*c.size+y)*c.size + z
				if c.voxels[i] == Empty || dx*dx+dy*dy+dz*dz >= r2 {
					continue
				}
				c.voxels[i] = Empty
				changed = true
			}
		}
	}
	if changed {
		c.stale = true
	}
	return changed
}

// WorldToLocal converts a world point into local voxel coordinates. ok is
// false when the point lies outside the chunk.
func (c *Chunk) WorldToLocal(p v3.Vec) (x, y, z int, ok bool) {
	x = int(math.Floor(p.X)) - c.origin[0]
	y = int(math.Floor(p.Y)) - c.origin[1]
	z = int(math.Floor(p.Z)) - c.origin[2]
	ok = x >= 0 && x < c.size && y >= 0 && y < c.size && z >= 0 && z < c.size
	return x, y, z, ok
}

func (c *Chunk) worldMin(x, y, z int) v3.Vec {
	return v3.Vec{
		X: float64(c.origin[0] + x),
		Y: float64(c.origin[1] + y),
		Z: float64(c.origin[2] + z),
	}
}
