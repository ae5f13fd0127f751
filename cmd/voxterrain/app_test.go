package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/voxterrain/pkg/config"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Dim = [3]int{2, 2, 1}
	cfg.ChunkSizePow = 3
	cfg.Seed = 1
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TestE2EGenerate exercises the full pipeline: config -> density -> terrain
// -> meshes -> volume mirror.
func TestE2EGenerate(t *testing.T) {
	app := newTestApp(t, smallConfig())
	s := app.Stats()

	if s.Chunks != 4 {
		t.Fatalf("expected 4 chunks, got %d", s.Chunks)
	}
	if s.Vertices == 0 {
		t.Error("expected a non-empty world mesh")
	}
	// Every chunk sits on the floor layer.
	if s.SolidVoxels < 4*8*8 {
		t.Errorf("expected at least the floor, got %d solid voxels", s.SolidVoxels)
	}
	if s.VolumeUpdates != 1 {
		t.Errorf("expected one initial volume sync, got %d", s.VolumeUpdates)
	}
}

func TestE2ESphereSource(t *testing.T) {
	cfg := smallConfig()
	cfg.Source = config.SourceSphere
	app := newTestApp(t, cfg)
	if got := app.Stats().SolidVoxels; got <= 4*8*8 {
		t.Errorf("sphere source produced only %d solid voxels", got)
	}
}

func TestE2EInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Dim[2] = 0
	if _, err := NewApp(cfg, slog.New(slog.DiscardHandler)); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t, smallConfig())
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Edits != 0 {
		t.Errorf("expected 0 edits, got %d", result.Edits)
	}
}

func TestE2EBoomSyncsVolume(t *testing.T) {
	app := newTestApp(t, smallConfig())
	result := app.Evaluate("(boom (vec3 0 0 0) :radius 4)")

	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	if result.Edits != 1 || result.Changed == 0 {
		t.Fatalf("result = %+v, want one edit changing chunks", result)
	}
	if got := app.Stats().VolumeUpdates; got != 2 {
		t.Errorf("volume updates = %d, want 2", got)
	}
	if v, ok := app.terrain.VoxelAt(v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}); !ok || v != 0 {
		t.Errorf("voxel at the blast centre = %d, %v", v, ok)
	}
}

func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t, smallConfig())
	result := app.Evaluate("(boom (vec3 0 0 0)")
	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
}

func TestE2EPick(t *testing.T) {
	app := newTestApp(t, smallConfig())
	app.camera.Position = v3.Vec{X: 0.5, Y: 0.5, Z: 50}
	app.camera.Phi = -math.Pi / 2

	if n := app.Pick(); n == 0 {
		t.Fatal("pick straight down changed no chunks")
	}
}

func TestE2EPickMiss(t *testing.T) {
	app := newTestApp(t, smallConfig())
	app.camera.Phi = math.Pi / 2 // straight up
	if n := app.Pick(); n != 0 {
		t.Fatalf("pick into the sky changed %d chunks", n)
	}
}

func TestE2EMeshesNearToFar(t *testing.T) {
	app := newTestApp(t, smallConfig())
	meshes := app.Meshes()
	if len(meshes) == 0 {
		t.Fatal("expected meshes")
	}

	pos := app.camera.Position
	prev := -1.0
	for _, m := range meshes {
		c := v3.Vec{X: float64(m.Origin[0]) + 4, Y: float64(m.Origin[1]) + 4, Z: float64(m.Origin[2]) + 4}
		d := c.Sub(pos).Length()
		if d < prev {
			t.Fatalf("mesh at %v out of order", m.Origin)
		}
		prev = d
		if len(m.Positions) == 0 || len(m.Normals) != len(m.Positions) || len(m.Shades) != len(m.Positions) {
			t.Errorf("mesh at %v has mismatched streams", m.Origin)
		}
	}
}

func TestE2ERunWritesMeshes(t *testing.T) {
	cfg := smallConfig()
	cfg.Script = writeTemp(t, "edit.zy", "(boom (vec3 0 0 0) :radius 3)")
	cfg.MeshOut = filepath.Join(t.TempDir(), "meshes.json")

	app := newTestApp(t, cfg)
	if err := app.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	raw, err := os.ReadFile(cfg.MeshOut)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var got []MeshData
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(got) != len(app.Meshes()) {
		t.Errorf("wrote %d meshes, want %d", len(got), len(app.Meshes()))
	}
}

func TestE2EWriteMeshesCompressed(t *testing.T) {
	app := newTestApp(t, smallConfig())
	path := filepath.Join(t.TempDir(), "out", "meshes.json.zst")
	if err := app.WriteMeshes(path); err != nil {
		t.Fatalf("WriteMeshes: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var got []MeshData
	if err := json.NewDecoder(dec).Decode(&got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(got) != len(app.Meshes()) {
		t.Errorf("wrote %d meshes, want %d", len(got), len(app.Meshes()))
	}
	// The stream must end on a complete frame.
	if _, err := io.ReadAll(dec); err != nil {
		t.Errorf("read to end of stream: %v", err)
	}
}

func TestE2EWriteMeshesFailures(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"path is a directory", dir},
		{"parent is a file", filepath.Join(blocker, "meshes.json")},
		{"compressed, parent is a file", filepath.Join(blocker, "meshes.json.zst")},
	}
	app := newTestApp(t, smallConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := app.WriteMeshes(tt.path); err == nil {
				t.Fatalf("WriteMeshes(%q) succeeded, want error", tt.path)
			}
		})
	}
}

func TestE2EMeshesMatchSchema(t *testing.T) {
	schema, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "meshes.schema.json"))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}

	app := newTestApp(t, smallConfig())
	path := filepath.Join(t.TempDir(), "meshes.json")
	if err := app.WriteMeshes(path); err != nil {
		t.Fatalf("WriteMeshes: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if err := schema.Validate(doc); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestE2ERunScriptFailures(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"missing file", filepath.Join(os.TempDir(), "does-not-exist", "edit.zy")},
		{"eval error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			cfg.Script = tt.script
			if cfg.Script == "" {
				cfg.Script = writeTemp(t, "bad.zy", "(vec3 1)")
			}
			if err := newTestApp(t, cfg).Run(); err == nil {
				t.Fatal("expected Run to fail")
			}
		})
	}
}

func TestE2EExampleScript(t *testing.T) {
	cfg := smallConfig()
	cfg.Script = filepath.Join("..", "..", "examples", "carve.zy")
	cfg.Pick = true
	if err := newTestApp(t, cfg).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestE2EExampleConfig(t *testing.T) {
	fromFile, err := config.Load(filepath.Join("..", "..", "examples", "world.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := fromFile.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDimFlag(t *testing.T) {
	var d [3]int
	f := dimFlag{&d}
	if err := f.Set("3, 2,1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if d != [3]int{3, 2, 1} || f.String() != "3,2,1" {
		t.Errorf("dim = %v, String() = %q", d, f.String())
	}
	for _, bad := range []string{"3,2", "a,b,c", ""} {
		if err := f.Set(bad); err == nil {
			t.Errorf("Set(%q) succeeded", bad)
		}
	}
	if (dimFlag{}).String() != "" {
		t.Error("zero dimFlag should print empty")
	}
}
