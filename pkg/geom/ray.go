// Package geom holds the analytic ray and box tests shared by chunk
// selection and voxel picking. Everything here is stateless.
package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// parallelEpsilon is the direction magnitude below which a ray is treated
// as parallel to an axis slab.
const parallelEpsilon = 1e-6

// IntersectBox returns the distance along dir from origin to the entry point
// of box, using the slab method. It returns +Inf when the ray misses, when
// the box lies behind the origin, or when the origin is on or past the near
// plane. Callers that need "origin inside box" semantics must check Contains
// first.
func IntersectBox(origin, dir v3.Vec, box sdf.Box3) float64 {
	tmin, tmax := math.Inf(-1), math.Inf(1)

	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}

	for i := 0; i < 3; i++ {
		if d[i] >= parallelEpsilon || d[i] <= -parallelEpsilon {
			t1 := (lo[i] - o[i]) / d[i]
			t2 := (hi[i] - o[i]) / d[i]
			tmin = math.Max(tmin, math.Min(t1, t2))
			tmax = math.Min(tmax, math.Max(t1, t2))
			continue
		}
		// Parallel to this slab: only a hit if the origin is within it.
		if o[i] < lo[i] || o[i] > hi[i] {
			return math.Inf(1)
		}
	}

	if tmax < tmin || tmax < 0 {
		return math.Inf(1)
	}
	if tmin > 0 {
		return tmin
	}
	return math.Inf(1)
}

// Contains reports whether p lies inside box, bounds included.
func Contains(box sdf.Box3, p v3.Vec) bool {
	return box.Min.X <= p.X && p.X <= box.Max.X &&
		box.Min.Y <= p.Y && p.Y <= box.Max.Y &&
		box.Min.Z <= p.Z && p.Z <= box.Max.Z
}

// Miss reports whether a distance returned by an intersection test should be
// discarded.
func Miss(d float64) bool {
	return math.IsInf(d, 1) || d < 0
}

// SphereDistance2 returns the squared distance from center to the closest
// point of box. It is zero when center is inside.
func SphereDistance2(box sdf.Box3, center v3.Vec) float64 {
	var d2 float64
	axis := func(c, lo, hi float64) {
		if c < lo {
			d2 += (c - lo) * (c - lo)
		} else if c > hi {
			d2 += (c - hi) * (c - hi)
		}
	}
	axis(center.X, box.Min.X, box.Max.X)
	axis(center.Y, box.Min.Y, box.Max.Y)
	axis(center.Z, box.Min.Z, box.Max.Z)
	return d2
}

// UnitBox returns the axis-aligned unit cube whose minimum corner is min.
func UnitBox(min v3.Vec) sdf.Box3 {
	return sdf.Box3{Min: min, Max: v3.Vec{X: min.X + 1, Y: min.Y + 1, Z: min.Z + 1}}
}
