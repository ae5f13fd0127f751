// Package volume mirrors a terrain into one dense byte grid, laid out the
// way 3D textures are uploaded: x fastest, then y, then z.
package volume

import (
	"fmt"

	"github.com/chazu/voxterrain/pkg/voxel"
)

// Volume is a dense copy of every voxel in a world box. It implements
// terrain.Syncer.
type Volume struct {
	origin  [3]int
	dim     [3]int
	data    []byte
	scratch []byte
	updates int
}

// New allocates a zeroed volume covering extent voxels from world corner
// origin.
func New(origin, extent [3]int) *Volume {
	for i, e := range extent {
		if e <= 0 {
			panic(fmt.Sprintf("volume.New: extent[%d] = %d must be positive", i, e))
		}
	}
	return &Volume{
		origin: origin,
		dim:    extent,
		data:   make([]byte, extent[0]*extent[1]*extent[2]),
	}
}

// Extent returns the volume size in voxels.
func (v *Volume) Extent() [3]int { return v.dim }

// Offset returns where chunk c starts in volume coordinates.
func (v *Volume) Offset(c *voxel.Chunk) [3]int {
	o := c.Origin()
	return [3]int{o[0] - v.origin[0], o[1] - v.origin[1], o[2] - v.origin[2]}
}

// SyncChunks copies each chunk into the volume at its offset. Chunks that
// fall partly outside the volume are clipped.
func (v *Volume) SyncChunks(chunks []*voxel.Chunk) {
	for _, c := range chunks {
		v.scratch = c.AppendLinear(v.scratch[:0])
		v.write(v.Offset(c), c.Size(), v.scratch)
	}
	v.updates++
}

func (v *Volume) write(off [3]int, s int, src []byte) {
	i := 0
	for z := 0; z < s; z++ {
		vz := off[2] + z
		for y := 0; y < s; y++ {
			vy := off[1] + y
			for x := 0; x < s; x++ {
				vx := off[0] + x
				b := src[i]
				i++
				if !v.inside(vx, vy, vz) {
					continue
				}
				v.data[vx+v.dim[0]*(vy+v.dim[1]*vz)] = b
			}
		}
	}
}

func (v *Volume) inside(x, y, z int) bool {
	return x >= 0 && x < v.dim[0] && y >= 0 && y < v.dim[1] && z >= 0 && z < v.dim[2]
}

// At returns the byte at volume coordinate (x, y, z), or 0 outside.
func (v *Volume) At(x, y, z int) byte {
	if !v.inside(x, y, z) {
		return 0
	}
	return v.data[x+v.dim[0]*(y+v.dim[1]*z)]
}

// Bytes returns the backing buffer. It is shared with the volume.
func (v *Volume) Bytes() []byte { return v.data }

// Updates returns how many SyncChunks calls the volume has received.
func (v *Volume) Updates() int { return v.updates }

// Region copies the box at offset with the given size into a new buffer in
// the same layout, for sub-image uploads. The box must lie inside the
// volume.
func (v *Volume) Region(offset, size [3]int) ([]byte, error) {
	for i := 0; i < 3; i++ {
		if size[i] <= 0 || offset[i] < 0 || offset[i]+size[i] > v.dim[i] {
			return nil, fmt.Errorf("volume: region %v+%v outside %v", offset, size, v.dim)
		}
	}
	out := make([]byte, 0, size[0]*size[1]*size[2])
	for z := offset[2]; z < offset[2]+size[2]; z++ {
		for y := offset[1]; y < offset[1]+size[1]; y++ {
			row := offset[0] + v.dim[0]*(y+v.dim[1]*z)
			out = append(out, v.data[row:row+size[0]]...)
		}
	}
	return out, nil
}
