package terrain

import "github.com/chazu/voxterrain/pkg/voxel"

// Min returns the world coordinate of the lowest corner of the world.
func (t *Terrain) Min() [3]int {
	return ChunkOrigin(t.dim, t.sizePow, 0, 0, 0)
}

// VolumeOffset returns where chunk c starts inside a dense volume covering
// the whole world, in voxels. Chunk origins are centred on the world origin,
// so the offset shifts them by half the grid.
func (t *Terrain) VolumeOffset(c *voxel.Chunk) [3]int {
	o := c.Origin()
	return [3]int{
		o[0] + (t.dim.X/2)*t.size,
		o[1] + (t.dim.Y/2)*t.size,
		o[2] + (t.dim.Z/2)*t.size,
	}
}
