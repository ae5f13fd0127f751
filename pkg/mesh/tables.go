package mesh

import "github.com/go-gl/mathgl/mgl32"

// Face identifies one of the six axis-aligned faces of a voxel.
type Face int

const (
	PosX Face = iota // x>0 face
	NegX             // x<0 face
	PosY             // y>0 face
	NegY             // y<0 face
	PosZ             // z>0 face
	NegZ             // z<0 face
)

// Faces lists every face in emission order.
var Faces = [6]Face{PosX, NegX, PosY, NegY, PosZ, NegZ}

func (f Face) String() string {
	switch f {
	case PosX:
		return "+x"
	case NegX:
		return "-x"
	case PosY:
		return "+y"
	case NegY:
		return "-y"
	case PosZ:
		return "+z"
	case NegZ:
		return "-z"
	default:
		return "unknown"
	}
}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() mgl32.Vec3 {
	return faceNormals[f]
}

// Offset returns the integer step to the neighbouring cell across the face.
func (f Face) Offset() [3]int {
	n := faceNormals[f]
	return [3]int{int(n[0]), int(n[1]), int(n[2])}
}

// cubeCorners are the eight corners of a voxel centred on the origin.
var cubeCorners = [8]mgl32.Vec3{
	{0.5, 0.5, -0.5},
	{0.5, 0.5, 0.5},
	{0.5, -0.5, 0.5},
	{0.5, -0.5, -0.5},
	{-0.5, 0.5, -0.5},
	{-0.5, 0.5, 0.5},
	{-0.5, -0.5, 0.5},
	{-0.5, -0.5, -0.5},
}

var faceNormals = [6]mgl32.Vec3{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

// faceCorners picks the four cubeCorners of each face, in quad order.
var faceCorners = [6][4]int{
	{0, 1, 2, 3},
	{5, 4, 7, 6},
	{4, 5, 1, 0},
	{7, 3, 2, 6},
	{1, 5, 6, 2},
	{0, 3, 7, 4},
}

// quadExpansion turns a quad into two triangles.
var quadExpansion = [6]int{0, 1, 2, 2, 3, 0}

// aoRing lists, per face, the eight cells around the face in its outward
// plane: edge and corner neighbours alternating around the quad.
var aoRing = [6][8][3]int{
	{{+1, 0, -1}, {+1, +1, -1}, {+1, +1, 0}, {+1, +1, +1}, {+1, 0, +1}, {+1, -1, +1}, {+1, -1, 0}, {+1, -1, -1}},
	{{-1, 0, -1}, {-1, +1, -1}, {-1, +1, 0}, {-1, +1, +1}, {-1, 0, +1}, {-1, -1, +1}, {-1, -1, 0}, {-1, -1, -1}},
	{{0, +1, -1}, {-1, +1, -1}, {-1, +1, 0}, {-1, +1, +1}, {0, +1, +1}, {+1, +1, +1}, {+1, +1, 0}, {+1, +1, -1}},
	{{0, -1, -1}, {-1, -1, -1}, {-1, -1, 0}, {-1, -1, +1}, {0, -1, +1}, {+1, -1, +1}, {+1, -1, 0}, {+1, -1, -1}},
	{{+1, 0, +1}, {+1, +1, +1}, {0, +1, +1}, {-1, +1, +1}, {-1, 0, +1}, {-1, -1, +1}, {0, -1, +1}, {+1, -1, +1}},
	{{+1, 0, -1}, {+1, +1, -1}, {0, +1, -1}, {-1, +1, -1}, {-1, 0, -1}, {-1, -1, -1}, {0, -1, -1}, {+1, -1, -1}},
}

// aoSelect maps a quad corner (0-3) to its {side1, corner, side2} ring cells.
var aoSelect = [4][3]int{{0, 1, 2}, {2, 3, 4}, {4, 5, 6}, {6, 7, 0}}

// Material colours.
var (
	ColorEarth = mgl32.Vec3{0.5, 0.4, 0.3}
	ColorRock  = mgl32.Vec3{0.5, 0.5, 0.5}
	ColorGrass = mgl32.Vec3{0.1, 1, 0.2}
)

// RockHeight is the world z above which exposed voxels are coloured as rock.
const RockHeight = 30
