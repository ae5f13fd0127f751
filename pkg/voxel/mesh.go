package voxel

import "github.com/chazu/voxterrain/pkg/mesh"

// BuildMesh rebuilds the chunk's mesh with the default mesher.
func (c *Chunk) BuildMesh() *mesh.Mesh {
	return c.BuildMeshWith(mesh.Mesher{})
}

// BuildMeshWith rebuilds the chunk's mesh with m and replaces the stored
// mesh.
func (c *Chunk) BuildMeshWith(m mesh.Mesher) *mesh.Mesh {
	c.mesh = m.Build(c)
	c.stale = false
	return c.mesh
}

// Mesh returns the last built mesh, or nil if none has been built.
func (c *Chunk) Mesh() *mesh.Mesh { return c.mesh }

// Stale reports whether voxels changed since the last mesh build.
func (c *Chunk) Stale() bool { return c.stale }

// AppendLinear appends one byte per voxel to dst in 3D texture order: z
// outer, y middle, x inner.
func (c *Chunk) AppendLinear(dst []byte) []byte {
	s := c.size
	for z := 0; z < s; z++ {
		for y := 0; y < s; y++ {
			for x := 0; x < s; x++ {
				dst = append(dst, byte(c.voxels[(x*s+y)*s+z]))
			}
		}
	}
	return dst
}
