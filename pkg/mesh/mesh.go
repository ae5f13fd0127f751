// Package mesh turns a chunk's voxel grid into a flat triangle buffer with
// per-vertex shading. Faces between two solid voxels are culled, and each
// vertex is darkened by a small ambient-occlusion heuristic.
package mesh

// Mesh is an unindexed triangle list suitable for direct upload.
// All arrays are flat with 3 floats per vertex: positions in world space,
// normals along one of the six axis directions, and shades holding an RGB
// colour already multiplied by the occlusion factor.
type Mesh struct {
	Positions []float32 `json:"positions"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`   // [nx0,ny0,nz0, ...]
	Shades    []float32 `json:"shades"`    // [r0,g0,b0, ...]
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return m.VertexCount() / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0
}
