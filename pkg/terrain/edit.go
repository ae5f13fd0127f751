package terrain

import (
	"github.com/chazu/voxterrain/pkg/mesh"
	"github.com/chazu/voxterrain/pkg/voxel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Explode clears every solid voxel within radius of center across all chunks
// the sphere touches. Changed chunks are remeshed and passed to the Syncer.
// It returns the changed chunks in grid order. A radius of zero or less
// changes nothing.
func (t *Terrain) Explode(center v3.Vec, radius float64) []*voxel.Chunk {
	if radius <= 0 {
		return nil
	}

	var changed []*voxel.Chunk
	for _, c := range t.chunks {
		if !c.IntersectsSphere(center, radius) {
			continue
		}
		if c.Explode(center, radius) {
			changed = append(changed, c)
		}
	}

	for _, c := range changed {
		c.BuildMeshWith(t.mesher)
	}
	t.log.Info("boom", "center", center, "radius", radius, "changed_chunks", len(changed))

	if len(changed) > 0 && t.syncer != nil {
		t.syncer.SyncChunks(changed)
	}
	return changed
}

// ExplodeHit explodes around a ray-cast hit. A nil hit is a no-op.
func (t *Terrain) ExplodeHit(h *Hit, radius float64) []*voxel.Chunk {
	if h == nil {
		return nil
	}
	return t.Explode(h.Point, radius)
}

// Remesh rebuilds every chunk whose voxels changed since its last build and
// returns how many were rebuilt. Direct chunk edits are not synced.
func (t *Terrain) Remesh() int {
	n := 0
	for _, c := range t.chunks {
		if c.Stale() {
			c.BuildMeshWith(t.mesher)
			n++
		}
	}
	return n
}

// Meshes returns the current mesh of every chunk in grid order.
func (t *Terrain) Meshes() []*mesh.Mesh {
	out := make([]*mesh.Mesh, len(t.chunks))
	for i, c := range t.chunks {
		out[i] = c.Mesh()
	}
	return out
}

// VertexCount returns the total vertex count across all chunk meshes.
func (t *Terrain) VertexCount() int {
	n := 0
	for _, c := range t.chunks {
		if m := c.Mesh(); m != nil {
			n += m.VertexCount()
		}
	}
	return n
}
