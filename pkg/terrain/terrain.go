// Package terrain arranges voxel chunks into a world. It generates every
// chunk from a density field at construction, routes ray and sphere queries
// to the chunks they touch, and reports edited chunks to a sync
// collaborator so mirrors such as a 3D texture stay current.
package terrain

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/voxterrain/pkg/density"
	"github.com/chazu/voxterrain/pkg/mesh"
	"github.com/chazu/voxterrain/pkg/voxel"
)

// Dim is a size or coordinate triple in chunk or voxel units.
type Dim struct {
	X, Y, Z int
}

// Syncer receives chunks whose voxels changed.
type Syncer interface {
	SyncChunks(chunks []*voxel.Chunk)
}

// Config describes a world to generate.
type Config struct {
	// Dim is the number of chunks per axis.
	Dim Dim
	// SizePow is log2 of the chunk edge length. Zero means
	// voxel.DefaultSizePow.
	SizePow uint
	// Density seeds solidity. Required.
	Density density.Func
	// Gen maps world coordinates to density samples. The zero value means
	// voxel.DefaultGenParams.
	Gen voxel.GenParams
	// Mesher builds chunk meshes.
	Mesher mesh.Mesher
	// Syncer, if set, receives the full chunk set after generation and the
	// changed chunks after every edit.
	Syncer Syncer
	// Logger receives generation and edit diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Terrain is a fixed grid of chunks. It is not safe for concurrent use.
type Terrain struct {
	dim     Dim
	sizePow uint
	size    int
	chunks  []*voxel.Chunk
	mesher  mesh.Mesher
	syncer  Syncer
	log     *slog.Logger
}

// New validates cfg, then generates and meshes every chunk.
func New(cfg Config) (*Terrain, error) {
	if cfg.Dim.X <= 0 || cfg.Dim.Y <= 0 || cfg.Dim.Z <= 0 {
		return nil, fmt.Errorf("terrain: dimensions must be positive, got %dx%dx%d", cfg.Dim.X, cfg.Dim.Y, cfg.Dim.Z)
	}
	if cfg.Density == nil {
		return nil, errors.New("terrain: density function is required")
	}
	pow := cfg.SizePow
	if pow == 0 {
		pow = voxel.DefaultSizePow
	}
	if pow < voxel.MinSizePow || pow > voxel.MaxSizePow {
		return nil, fmt.Errorf("terrain: chunk size pow %d outside [%d, %d]", pow, voxel.MinSizePow, voxel.MaxSizePow)
	}
	gen := cfg.Gen
	if gen == (voxel.GenParams{}) {
		gen = voxel.DefaultGenParams
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	t := &Terrain{
		dim:     cfg.Dim,
		sizePow: pow,
		size:    1 << pow,
		chunks:  make([]*voxel.Chunk, cfg.Dim.X*cfg.Dim.Y*cfg.Dim.Z),
		mesher:  cfg.Mesher,
		syncer:  cfg.Syncer,
		log:     log,
	}

	vertices := 0
	for cx := 0; cx < t.dim.X; cx++ {
		for cy := 0; cy < t.dim.Y; cy++ {
			for cz := 0; cz < t.dim.Z; cz++ {
				c := voxel.New(ChunkOrigin(t.dim, pow, cx, cy, cz), pow)
				c.Init(cfg.Density, gen)
				m := c.BuildMeshWith(t.mesher)
				vertices += m.VertexCount()
				t.chunks[t.index(cx, cy, cz)] = c
				log.Debug("chunk created", "chunk", Dim{cx, cy, cz}, "origin", c.Origin(), "vertices", m.VertexCount())
			}
		}
	}
	log.Info("terrain generated", "chunks", len(t.chunks), "chunk_size", t.size, "vertices", vertices)

	if t.syncer != nil {
		t.syncer.SyncChunks(t.chunks)
	}
	return t, nil
}

// ChunkOrigin returns the world origin of chunk (cx, cy, cz) in a grid of
// dim chunks centred on the world origin.
func ChunkOrigin(dim Dim, sizePow uint, cx, cy, cz int) [3]int {
	return [3]int{
		(cx - dim.X/2) << sizePow,
		(cy - dim.Y/2) << sizePow,
		(cz - dim.Z/2) << sizePow,
	}
}

func (t *Terrain) index(cx, cy, cz int) int {
	return (cx*t.dim.Y+cy)*t.dim.Z + cz
}

func (t *Terrain) coord(i int) Dim {
	cz := i % t.dim.Z
	cy := (i / t.dim.Z) % t.dim.Y
	cx := i / (t.dim.Z * t.dim.Y)
	return Dim{cx, cy, cz}
}

// Chunk returns the chunk at grid coordinate (cx, cy, cz), or nil when the
// coordinate is out of range.
func (t *Terrain) Chunk(cx, cy, cz int) *voxel.Chunk {
	if cx < 0 || cx >= t.dim.X || cy < 0 || cy >= t.dim.Y || cz < 0 || cz >= t.dim.Z {
		return nil
	}
	return t.chunks[t.index(cx, cy, cz)]
}

// Chunks returns every chunk in grid order (x outer, z inner). The slice is
// shared and must not be modified.
func (t *Terrain) Chunks() []*voxel.Chunk { return t.chunks }

// Dim returns the number of chunks per axis.
func (t *Terrain) Dim() Dim { return t.dim }

// ChunkSize returns the chunk edge length in voxels.
func (t *Terrain) ChunkSize() int { return t.size }

// Extent returns the world size in voxels.
func (t *Terrain) Extent() Dim {
	return Dim{t.dim.X * t.size, t.dim.Y * t.size, t.dim.Z * t.size}
}
