package terrain

import (
	"testing"

	"github.com/chazu/voxterrain/pkg/voxel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// singleVoxelWorld returns a 2x2x1 world of 8-voxel chunks whose only solid
// voxel is at world (5, 5, 5).
func singleVoxelWorld(t *testing.T, s Syncer) *Terrain {
	t.Helper()
	tr := newFlat(t, Dim{2, 2, 1}, 3, s)
	for _, c := range tr.Chunks() {
		c.Fill(voxel.Empty)
	}
	tr.Chunk(1, 1, 0).Set(5, 5, 5, voxel.Solid)
	if n := tr.Remesh(); n != 4 {
		t.Fatalf("Remesh() = %d, want 4", n)
	}
	return tr
}

func TestExplodeSingleVoxel(t *testing.T) {
	rec := &recordSyncer{}
	tr := singleVoxelWorld(t, rec)
	target := tr.Chunk(1, 1, 0)
	if target.Mesh().VertexCount() != 36 {
		t.Fatalf("target mesh has %d vertices, want 36", target.Mesh().VertexCount())
	}

	changed := tr.Explode(v3.Vec{X: 5, Y: 5, Z: 5}, 1)
	if len(changed) != 1 || changed[0] != target {
		t.Fatalf("changed = %v, want only the target chunk", changed)
	}
	if target.Stale() || !target.Mesh().IsEmpty() {
		t.Errorf("target not remeshed empty: stale=%v vertices=%d", target.Stale(), target.Mesh().VertexCount())
	}
	if tr.VertexCount() != 0 {
		t.Errorf("VertexCount() = %d, want 0", tr.VertexCount())
	}

	// One sync from New, one for the edit.
	if len(rec.calls) != 2 {
		t.Fatalf("syncer calls = %d, want 2", len(rec.calls))
	}
	if last := rec.calls[1]; len(last) != 1 || last[0] != target {
		t.Errorf("edit sync = %v, want the target chunk", last)
	}
}

func TestExplodeNoChange(t *testing.T) {
	tests := []struct {
		name   string
		center v3.Vec
		radius float64
	}{
		{"sphere misses the voxel", v3.Vec{X: -5, Y: -5, Z: 5}, 2},
		{"zero radius on the voxel", v3.Vec{X: 5.5, Y: 5.5, Z: 5.5}, 0},
		{"negative radius on the voxel", v3.Vec{X: 5.5, Y: 5.5, Z: 5.5}, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordSyncer{}
			tr := singleVoxelWorld(t, rec)
			if changed := tr.Explode(tt.center, tt.radius); changed != nil {
				t.Fatalf("changed = %v, want nil", changed)
			}
			if v, _ := tr.VoxelAt(v3.Vec{X: 5.5, Y: 5.5, Z: 5.5}); v != voxel.Solid {
				t.Error("voxel was cleared")
			}
			if len(rec.calls) != 1 {
				t.Errorf("syncer called %d times, want only the initial sync", len(rec.calls))
			}
		})
	}
}

func TestExplodeSpansChunks(t *testing.T) {
	tr := newFlat(t, Dim{2, 2, 1}, 3, nil)
	// The floor sits at z = 0 in every chunk and the sphere touches all four.
	changed := tr.Explode(v3.Vec{X: 0, Y: 0, Z: 0}, 3)
	if len(changed) != 4 {
		t.Fatalf("changed %d chunks, want 4", len(changed))
	}
	if v, _ := tr.VoxelAt(v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}); v != voxel.Empty {
		t.Error("voxel near centre survived")
	}
	if v, _ := tr.VoxelAt(v3.Vec{X: 6.5, Y: 6.5, Z: 0.5}); v != voxel.Solid {
		t.Error("distant voxel was cleared")
	}
}

func TestExplodeHit(t *testing.T) {
	tr := newFlat(t, Dim{1, 1, 1}, 2, nil)
	if got := tr.ExplodeHit(nil, 5); got != nil {
		t.Fatalf("ExplodeHit(nil) = %v, want nil", got)
	}

	h, ok := tr.IntersectRay(v3.Vec{X: 2.5, Y: 2.5, Z: 10}, v3.Vec{Z: -1})
	if !ok {
		t.Fatal("ray missed the floor")
	}
	changed := tr.ExplodeHit(&h, 1.5)
	if len(changed) != 1 {
		t.Fatalf("changed = %d chunks, want 1", len(changed))
	}
	if v, _ := tr.VoxelAt(v3.Vec{X: 2.5, Y: 2.5, Z: 0.5}); v != voxel.Empty {
		t.Error("hit voxel survived")
	}
}

func TestRemeshOnlyStale(t *testing.T) {
	tr := newFlat(t, Dim{2, 1, 1}, 2, nil)
	if n := tr.Remesh(); n != 0 {
		t.Fatalf("Remesh() on fresh terrain = %d, want 0", n)
	}
	tr.Chunk(0, 0, 0).Set(1, 1, 1, voxel.Solid)
	if n := tr.Remesh(); n != 1 {
		t.Fatalf("Remesh() = %d, want 1", n)
	}
}
