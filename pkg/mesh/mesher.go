package mesh

import "github.com/go-gl/mathgl/mgl32"

// Grid is the read-only view of a cubic voxel grid the mesher needs.
// Local coordinates run over [0, Size()) on every axis.
type Grid interface {
	Size() int
	Origin() [3]int
	Solid(x, y, z int) bool
}

// Occlusion factors, from fully occluded to open.
const (
	OcclusionBothSides  float32 = 0.25
	OcclusionSideCorner float32 = 0.5
	OcclusionSingle     float32 = 0.75
	OcclusionNone       float32 = 1.0
)

// Mesher builds meshes from grids.
//
// LegacyOcclusion reproduces an early shading rule where a vertex with only
// its first side cell occupied stayed unoccluded. Leave it off unless output
// must match renders made with that rule.
type Mesher struct {
	LegacyOcclusion bool
}

// Build meshes g with the default Mesher.
func Build(g Grid) *Mesh {
	return Mesher{}.Build(g)
}

// Build walks every voxel of g and emits two triangles per visible face.
// Faces are visible when they sit on the grid boundary or face an empty
// cell. The result never aliases a previous mesh.
func (m Mesher) Build(g Grid) *Mesh {
	size := g.Size()
	origin := g.Origin()
	out := &Mesh{}

	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			for z := 0; z < size; z++ {
				if !g.Solid(x, y, z) {
					continue
				}

				var visible [6]bool
				visible[PosX] = x >= size-1 || !g.Solid(x+1, y, z)
				visible[NegX] = x <= 0 || !g.Solid(x-1, y, z)
				visible[PosY] = y >= size-1 || !g.Solid(x, y+1, z)
				visible[NegY] = y <= 0 || !g.Solid(x, y-1, z)
				visible[PosZ] = z >= size-1 || !g.Solid(x, y, z+1)
				visible[NegZ] = z <= 0 || !g.Solid(x, y, z-1)
				if !anyVisible(visible) {
					continue
				}

				world := mgl32.Vec3{
					float32(origin[0] + x),
					float32(origin[1] + y),
					float32(origin[2] + z),
				}
				color := voxelColor(g, x, y, z, origin[2]+z)

				for _, f := range Faces {
					if visible[f] {
						m.emitFace(out, g, f, x, y, z, world, color)
					}
				}
			}
		}
	}

	return out
}

// emitFace appends the six vertices of face f of the voxel at (x, y, z).
func (m Mesher) emitFace(out *Mesh, g Grid, f Face, x, y, z int, world, color mgl32.Vec3) {
	normal := faceNormals[f]
	ring := &aoRing[f]

	for _, q := range quadExpansion {
		p := cubeCorners[faceCorners[f][q]].Add(mgl32.Vec3{0.5, 0.5, 0.5}).Add(world)
		out.Positions = append(out.Positions, p[0], p[1], p[2])
		out.Normals = append(out.Normals, normal[0], normal[1], normal[2])

		sel := aoSelect[q]
		side1 := occupied(g, x, y, z, ring[sel[0]])
		corner := occupied(g, x, y, z, ring[sel[1]])
		side2 := occupied(g, x, y, z, ring[sel[2]])

		var ao float32
		if m.LegacyOcclusion {
			ao = legacyOcclusion(side1, corner, side2)
		} else {
			ao = Occlusion(side1, corner, side2)
		}

		shade := color.Mul(ao)
		out.Shades = append(out.Shades, shade[0], shade[1], shade[2])
	}
}

// Occlusion returns the shading factor of a vertex from its two side cells
// and its corner cell.
func Occlusion(side1, corner, side2 bool) float32 {
	switch {
	case side1 && side2:
		return OcclusionBothSides
	case side1 && corner, side2 && corner:
		return OcclusionSideCorner
	case side1 || side2 || corner:
		return OcclusionSingle
	default:
		return OcclusionNone
	}
}

// legacyOcclusion ignores a lone side1 cell.
func legacyOcclusion(side1, corner, side2 bool) float32 {
	switch {
	case side1 && side2:
		return OcclusionBothSides
	case side1 && corner, side2 && corner:
		return OcclusionSideCorner
	case side2 || corner:
		return OcclusionSingle
	default:
		return OcclusionNone
	}
}

// occupied reports whether the ring cell at offset d from (x, y, z) is
// inside the grid and solid. Cells across the grid boundary never occlude.
func occupied(g Grid, x, y, z int, d [3]int) bool {
	size := g.Size()
	inside := func(c, dc int) bool {
		return dc == 0 || (dc < 0 && c > 0) || (dc > 0 && c < size-1)
	}
	if !inside(x, d[0]) || !inside(y, d[1]) || !inside(z, d[2]) {
		return false
	}
	return g.Solid(x+d[0], y+d[1], z+d[2])
}

// voxelColor picks the material colour of a visible voxel. Grass takes
// precedence over rock whenever the cell above is open.
func voxelColor(g Grid, x, y, z, worldZ int) mgl32.Vec3 {
	color := ColorEarth
	if worldZ > RockHeight {
		color = ColorRock
	}
	if z+1 >= g.Size() || !g.Solid(x, y, z+1) {
		color = ColorGrass
	}
	return color
}

func anyVisible(v [6]bool) bool {
	for _, b := range v {
		if b {
			return true
		}
	}
	return false
}
