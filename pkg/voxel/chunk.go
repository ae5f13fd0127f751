// Package voxel implements the fixed-size cubic chunk that terrain is built
// from. A chunk owns a dense grid of voxels at an integer world origin,
// answers ray and sphere queries against its bounds and its solid cells,
// and keeps the most recent mesh of its surface.
package voxel

import (
	"fmt"

	"github.com/chazu/voxterrain/pkg/density"
	"github.com/chazu/voxterrain/pkg/mesh"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Voxel is the material id of a single cell. Only zero vs non-zero matters
// to chunk logic.
type Voxel uint8

const (
	Empty Voxel = 0
	Solid Voxel = 1
)

// Size limits for New.
const (
	MinSizePow uint = 1
	MaxSizePow uint = 8

	// DefaultSizePow gives 64-voxel chunks.
	DefaultSizePow uint = 6
)

// GenParams controls how Init maps world coordinates into density samples.
type GenParams struct {
	// Scale multiplies world coordinates before sampling.
	Scale float64
	// Threshold is the density below which a cell becomes solid.
	Threshold float64
}

// DefaultGenParams are the generation parameters of the reference terrain.
var DefaultGenParams = GenParams{Scale: 0.01, Threshold: -0.1}

// Chunk is a cube of S = 1<<sizePow voxels on each side.
type Chunk struct {
	origin  [3]int
	sizePow uint
	size    int
	voxels  []Voxel

	mesh  *mesh.Mesh
	stale bool
}

var _ mesh.Grid = (*Chunk)(nil)

// New allocates an empty chunk. It panics if sizePow is outside
// [MinSizePow, MaxSizePow] or any origin component is not a multiple of the
// chunk size.
func New(origin [3]int, sizePow uint) *Chunk {
	if sizePow < MinSizePow || sizePow > MaxSizePow {
		panic(fmt.Sprintf("voxel.New: size pow %d outside [%d, %d]", sizePow, MinSizePow, MaxSizePow))
	}
	size := 1 << sizePow
	for i, o := range origin {
		if o%size != 0 {
			panic(fmt.Sprintf("voxel.New: origin[%d] = %d is not a multiple of %d", i, o, size))
		}
	}
	return &Chunk{
		origin:  origin,
		sizePow: sizePow,
		size:    size,
		voxels:  make([]Voxel, size*size*size),
		stale:   true,
	}
}

// Size returns the edge length in voxels.
func (c *Chunk) Size() int { return c.size }

// Origin returns the world coordinate of local voxel (0, 0, 0).
func (c *Chunk) Origin() [3]int { return c.origin }

// Center returns the world-space centre of the chunk.
func (c *Chunk) Center() v3.Vec {
	h := float64(c.size) / 2
	return v3.Vec{
		X: float64(c.origin[0]) + h,
		Y: float64(c.origin[1]) + h,
		Z: float64(c.origin[2]) + h,
	}
}

// Bounds returns the world-space box covered by the chunk.
func (c *Chunk) Bounds() sdf.Box3 {
	lo := v3.Vec{X: float64(c.origin[0]), Y: float64(c.origin[1]), Z: float64(c.origin[2])}
	s := float64(c.size)
	return sdf.Box3{Min: lo, Max: lo.Add(v3.Vec{X: s, Y: s, Z: s})}
}

func (c *Chunk) index(x, y, z int) int {
	if x < 0 || x >= c.size || y < 0 || y >= c.size || z < 0 || z >= c.size {
		panic(fmt.Sprintf("voxel: local coordinate (%d, %d, %d) outside chunk of size %d", x, y, z, c.size))
	}
	return (x*c.size+y)*c.size + z
}

// Get returns the voxel at local (x, y, z). It panics on out-of-range
// coordinates.
func (c *Chunk) Get(x, y, z int) Voxel {
	return c.voxels[c.index(x, y, z)]
}

// Set stores v at local (x, y, z) and marks the mesh stale. It does not
// remesh. It panics on out-of-range coordinates.
func (c *Chunk) Set(x, y, z int, v Voxel) {
	i := c.index(x, y, z)
	if c.voxels[i] != v {
		c.voxels[i] = v
		c.stale = true
	}
}

// Solid reports whether local (x, y, z) holds a non-empty voxel.
func (c *Chunk) Solid(x, y, z int) bool {
	return c.Get(x, y, z) != Empty
}

// Fill sets every voxel to v.
func (c *Chunk) Fill(v Voxel) {
	for i := range c.voxels {
		c.voxels[i] = v
	}
	c.stale = true
}

// Count returns the number of solid voxels.
func (c *Chunk) Count() int {
	n := 0
	for _, v := range c.voxels {
		if v != Empty {
			n++
		}
	}
	return n
}

// Init regenerates every voxel from fn. Each cell samples fn at its world
// coordinate times p.Scale and becomes solid when the sample is below
// p.Threshold. The world floor (z == 0) is always solid. NaN samples leave
// the cell empty.
func (c *Chunk) Init(fn density.Func, p GenParams) {
	k := p.Scale
	for x := 0; x < c.size; x++ {
		wx := c.origin[0] + x
		for y := 0; y < c.size; y++ {
			wy := c.origin[1] + y
			for z := 0; z < c.size; z++ {
				wz := c.origin[2] + z
				d := fn(float64(wx)*k, float64(wy)*k, float64(wz)*k)
				v := Empty
				if wz == 0 || d < p.Threshold {
					v = Solid
				}
				c.voxels[(x*c.size+y)*c.size+z] = v
			}
		}
	}
	c.stale = true
}

func (c *Chunk) String() string {
	return fmt.Sprintf("chunk%v/%d", c.origin, c.size)
}
