package terrain

import (
	"math"
	"sort"

	"github.com/chazu/voxterrain/pkg/geom"
	"github.com/chazu/voxterrain/pkg/voxel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Hit is a voxel picked by a terrain ray cast.
type Hit struct {
	Chunk    *voxel.Chunk
	Coord    Dim
	Distance float64
	Point    v3.Vec
}

type candidate struct {
	index int
	dist  float64
}

// IntersectRay returns the first solid voxel along the ray. Chunks are tried
// in order of their bounding-box distance and the first chunk with a voxel
// hit wins.
func (t *Terrain) IntersectRay(origin, dir v3.Vec) (Hit, bool) {
	var cands []candidate
	for i, c := range t.chunks {
		d := c.IntersectRay(origin, dir)
		if geom.Miss(d) {
			continue
		}
		cands = append(cands, candidate{index: i, dist: d})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	for _, cand := range cands {
		c := t.chunks[cand.index]
		h, ok := c.IntersectVoxels(origin, dir)
		if !ok {
			continue
		}
		return Hit{
			Chunk:    c,
			Coord:    t.coord(cand.index),
			Distance: h.Distance,
			Point:    h.Point,
		}, true
	}
	return Hit{}, false
}

// ChunksByDistance returns every chunk ordered by squared distance from
// viewpoint to the chunk centre, nearest first. Ties keep grid order.
func (t *Terrain) ChunksByDistance(viewpoint v3.Vec) []*voxel.Chunk {
	out := make([]*voxel.Chunk, len(t.chunks))
	copy(out, t.chunks)
	dist2 := func(c *voxel.Chunk) float64 {
		d := c.Center().Sub(viewpoint)
		return d.Dot(d)
	}
	sort.SliceStable(out, func(i, j int) bool { return dist2(out[i]) < dist2(out[j]) })
	return out
}

// ChunkAt returns the chunk containing world point p.
func (t *Terrain) ChunkAt(p v3.Vec) (*voxel.Chunk, bool) {
	lo := ChunkOrigin(t.dim, t.sizePow, 0, 0, 0)
	s := float64(t.size)
	cx := int(math.Floor((p.X - float64(lo[0])) / s))
	cy := int(math.Floor((p.Y - float64(lo[1])) / s))
	cz := int(math.Floor((p.Z - float64(lo[2])) / s))
	c := t.Chunk(cx, cy, cz)
	return c, c != nil
}

// VoxelAt returns the voxel containing world point p. ok is false outside
// the world.
func (t *Terrain) VoxelAt(p v3.Vec) (v voxel.Voxel, ok bool) {
	c, ok := t.ChunkAt(p)
	if !ok {
		return voxel.Empty, false
	}
	x, y, z, ok := c.WorldToLocal(p)
	if !ok {
		return voxel.Empty, false
	}
	return c.Get(x, y, z), true
}
