package terrain

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/chazu/voxterrain/pkg/density"
	"github.com/chazu/voxterrain/pkg/voxel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

type recordSyncer struct {
	calls [][]*voxel.Chunk
}

func (r *recordSyncer) SyncChunks(chunks []*voxel.Chunk) {
	r.calls = append(r.calls, append([]*voxel.Chunk(nil), chunks...))
}

func newFlat(t *testing.T, dim Dim, pow uint, s Syncer) *Terrain {
	t.Helper()
	tr, err := New(Config{Dim: dim, SizePow: pow, Density: density.Constant(1), Syncer: s})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"zero dim", Config{Dim: Dim{0, 1, 1}, Density: density.Constant(1)}, "dimensions"},
		{"negative dim", Config{Dim: Dim{1, 1, -2}, Density: density.Constant(1)}, "dimensions"},
		{"no density", Config{Dim: Dim{1, 1, 1}}, "density"},
		{"pow too large", Config{Dim: Dim{1, 1, 1}, SizePow: 9, Density: density.Constant(1)}, "size pow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestChunkOrigin(t *testing.T) {
	dim := Dim{3, 2, 1}
	tests := []struct {
		c    Dim
		want [3]int
	}{
		{Dim{0, 0, 0}, [3]int{-4, -4, 0}},
		{Dim{1, 1, 0}, [3]int{0, 0, 0}},
		{Dim{2, 0, 0}, [3]int{4, -4, 0}},
	}
	for _, tt := range tests {
		if got := ChunkOrigin(dim, 2, tt.c.X, tt.c.Y, tt.c.Z); got != tt.want {
			t.Errorf("ChunkOrigin(%v) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestChunksTileWorld(t *testing.T) {
	tr := newFlat(t, Dim{3, 2, 2}, 2, nil)
	if len(tr.Chunks()) != 12 {
		t.Fatalf("len(Chunks()) = %d, want 12", len(tr.Chunks()))
	}
	seen := map[[3]int]bool{}
	for cx := 0; cx < 3; cx++ {
		for cy := 0; cy < 2; cy++ {
			for cz := 0; cz < 2; cz++ {
				c := tr.Chunk(cx, cy, cz)
				o := c.Origin()
				if seen[o] {
					t.Fatalf("origin %v used twice", o)
				}
				seen[o] = true
				// Neighbours along each axis share a face.
				if n := tr.Chunk(cx+1, cy, cz); n != nil && n.Origin()[0] != o[0]+4 {
					t.Errorf("x neighbour of %v at %v", o, n.Origin())
				}
				if n := tr.Chunk(cx, cy, cz+1); n != nil && n.Origin()[2] != o[2]+4 {
					t.Errorf("z neighbour of %v at %v", o, n.Origin())
				}
			}
		}
	}
	if tr.Chunk(3, 0, 0) != nil || tr.Chunk(0, -1, 0) != nil {
		t.Error("out of range Chunk lookup returned a chunk")
	}
	if got, want := tr.Extent(), (Dim{12, 8, 8}); got != want {
		t.Errorf("Extent() = %v, want %v", got, want)
	}
	if got := tr.VolumeOffset(tr.Chunk(0, 0, 0)); got != [3]int{} {
		t.Errorf("VolumeOffset(first) = %v, want origin", got)
	}
	if got := tr.VolumeOffset(tr.Chunk(2, 1, 1)); got != [3]int{8, 4, 4} {
		t.Errorf("VolumeOffset(last) = %v, want [8 4 4]", got)
	}
}

func TestNewGeneratesAndMeshes(t *testing.T) {
	rec := &recordSyncer{}
	tr := newFlat(t, Dim{2, 1, 1}, 2, rec)
	for _, c := range tr.Chunks() {
		if c.Count() != 16 {
			t.Errorf("%v has %d solid voxels, want the 16 floor cells", c, c.Count())
		}
		if c.Stale() || c.Mesh() == nil || c.Mesh().IsEmpty() {
			t.Errorf("%v not meshed after New", c)
		}
	}
	if len(rec.calls) != 1 || len(rec.calls[0]) != 2 {
		t.Fatalf("syncer calls = %d, want one call with every chunk", len(rec.calls))
	}
	if len(tr.Meshes()) != 2 {
		t.Errorf("len(Meshes()) = %d, want 2", len(tr.Meshes()))
	}
	total := tr.Meshes()[0].VertexCount() + tr.Meshes()[1].VertexCount()
	if tr.VertexCount() != total {
		t.Errorf("VertexCount() = %d, want %d", tr.VertexCount(), total)
	}
}

func TestNewLogs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr, err := New(Config{Dim: Dim{1, 1, 1}, SizePow: 2, Density: density.Constant(1), Logger: log})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.Explode(v3.Vec{X: 0, Y: 0, Z: 0}, 1)

	out := buf.String()
	for _, want := range []string{"chunk created", "vertices=", "terrain generated", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
