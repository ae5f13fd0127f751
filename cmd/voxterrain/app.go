package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/voxterrain/pkg/camera"
	"github.com/chazu/voxterrain/pkg/config"
	"github.com/chazu/voxterrain/pkg/density"
	"github.com/chazu/voxterrain/pkg/mesh"
	"github.com/chazu/voxterrain/pkg/script"
	"github.com/chazu/voxterrain/pkg/terrain"
	"github.com/chazu/voxterrain/pkg/volume"
	"github.com/deadsy/sdfx/sdf"
	"github.com/klauspost/compress/zstd"
)

// App owns one generated world and everything that edits or mirrors it.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	terrain *terrain.Terrain
	volume  *volume.Volume
	camera  *camera.Camera
	engine  *script.Engine
}

// MeshData is the JSON-serializable mesh of one chunk.
type MeshData struct {
	Origin    [3]int    `json:"origin"`
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals"`
	Shades    []float32 `json:"shades"`
}

// EvalErrorData is a JSON-serializable script error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the outcome of running one edit script.
type EvalResult struct {
	Hits    int             `json:"hits"`
	Edits   int             `json:"edits"`
	Changed int             `json:"changedChunks"`
	Result  string          `json:"result"`
	Errors  []EvalErrorData `json:"errors"`
}

// Stats summarises the world after a run.
type Stats struct {
	Chunks        int `json:"chunks"`
	Vertices      int `json:"vertices"`
	SolidVoxels   int `json:"solidVoxels"`
	VolumeUpdates int `json:"volumeUpdates"`
}

// NewApp generates the world described by cfg.
func NewApp(cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dim := terrain.Dim{X: cfg.Dim[0], Y: cfg.Dim[1], Z: cfg.Dim[2]}
	size := 1 << cfg.ChunkSizePow
	fn, err := densityFor(cfg, dim, size)
	if err != nil {
		return nil, err
	}

	vol := volume.New(
		terrain.ChunkOrigin(dim, cfg.ChunkSizePow, 0, 0, 0),
		[3]int{dim.X * size, dim.Y * size, dim.Z * size},
	)
	t, err := terrain.New(terrain.Config{
		Dim:     dim,
		SizePow: cfg.ChunkSizePow,
		Density: fn,
		Gen:     cfg.GenParams(),
		Mesher:  mesh.Mesher{LegacyOcclusion: cfg.LegacyOcclusion},
		Syncer:  vol,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("generate terrain: %w", err)
	}

	cam := camera.Default()
	eng := script.NewEngine(t)
	eng.Camera = &cam
	eng.Radius = cfg.ExplodeRadius
	eng.Logger = log

	return &App{
		cfg:     cfg,
		log:     log,
		terrain: t,
		volume:  vol,
		camera:  &cam,
		engine:  eng,
	}, nil
}

// densityFor builds the density source named by cfg.Source.
func densityFor(cfg *config.Config, dim terrain.Dim, size int) (density.Func, error) {
	switch cfg.Source {
	case config.SourceSphere:
		// A dome as wide as the smaller horizontal extent.
		r := float64(min(dim.X, dim.Y)*size) / 2
		s, err := sdf.Sphere3D(r)
		if err != nil {
			return nil, fmt.Errorf("sphere source: %w", err)
		}
		return density.FromSDF(s, cfg.Scale), nil
	default:
		return density.NewSimplex(cfg.Seed).Func(), nil
	}
}

// Pick casts the camera ray and explodes the first voxel it hits. It
// returns the number of changed chunks.
func (a *App) Pick() int {
	origin, dir := a.camera.Ray()
	h, ok := a.terrain.IntersectRay(origin, dir)
	if !ok {
		a.log.Info("pick missed", "origin", origin, "dir", dir)
		return 0
	}
	a.log.Info("pick", "chunk", h.Coord, "distance", h.Distance, "point", h.Point)
	return len(a.terrain.ExplodeHit(&h, a.cfg.ExplodeRadius))
}

// Evaluate runs an edit script against the world.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{Errors: []EvalErrorData{}}

	rep, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error("script fatal error", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    e.Line,
			Col:     e.Col,
			Message: e.Message,
		})
	}
	result.Hits = len(rep.Hits)
	result.Edits = len(rep.Edits)
	result.Changed = rep.ChangedChunks()
	result.Result = rep.Result
	return result
}

// EvaluateFile reads and runs the script at path.
func (a *App) EvaluateFile(path string) (EvalResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return EvalResult{}, fmt.Errorf("read script: %w", err)
	}
	return a.Evaluate(string(src)), nil
}

// Meshes returns every chunk mesh ordered nearest to farthest from the
// camera.
func (a *App) Meshes() []MeshData {
	out := []MeshData{}
	for _, c := range a.terrain.ChunksByDistance(a.camera.Position) {
		m := c.Mesh()
		if m == nil || m.IsEmpty() {
			continue
		}
		out = append(out, MeshData{
			Origin:    c.Origin(),
			Positions: m.Positions,
			Normals:   m.Normals,
			Shades:    m.Shades,
		})
	}
	return out
}

// WriteMeshes writes the ordered chunk meshes to path as JSON. A path ending
// in ".zst" is zstd-compressed.
func (a *App) WriteMeshes(path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write meshes: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("write meshes: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("write meshes: %w", cerr)
		}
	}()

	if !strings.HasSuffix(path, ".zst") {
		return encodeMeshes(f, a.Meshes())
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("write meshes: %w", err)
	}
	if err := encodeMeshes(enc, a.Meshes()); err != nil {
		enc.Close()
		return err
	}
	// Close writes the final frame.
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write meshes: zstd: %w", err)
	}
	return nil
}

func encodeMeshes(w io.Writer, meshes []MeshData) error {
	bw := bufio.NewWriterSize(w, 256*1024)
	if err := json.NewEncoder(bw).Encode(meshes); err != nil {
		return fmt.Errorf("encode meshes: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write meshes: %w", err)
	}
	return nil
}

// Stats reports the current world totals.
func (a *App) Stats() Stats {
	s := Stats{
		Chunks:        len(a.terrain.Chunks()),
		Vertices:      a.terrain.VertexCount(),
		VolumeUpdates: a.volume.Updates(),
	}
	for _, c := range a.terrain.Chunks() {
		s.SolidVoxels += c.Count()
	}
	return s
}

// Run performs the configured pick, script and export steps in order.
func (a *App) Run() error {
	if a.cfg.Pick {
		a.Pick()
	}

	if a.cfg.Script != "" {
		res, err := a.EvaluateFile(a.cfg.Script)
		if err != nil {
			return err
		}
		for _, e := range res.Errors {
			a.log.Warn("script error", "line", e.Line, "message", e.Message)
		}
		if n := len(res.Errors); n > 0 {
			return fmt.Errorf("script %s: %d errors, first: %s", a.cfg.Script, n, res.Errors[0].Message)
		}
		a.log.Info("script done", "hits", res.Hits, "edits", res.Edits, "changed_chunks", res.Changed)
	}

	s := a.Stats()
	a.log.Info("world ready",
		"chunks", s.Chunks, "vertices", s.Vertices,
		"solid_voxels", s.SolidVoxels, "volume_updates", s.VolumeUpdates,
		"volume_bytes", len(a.volume.Bytes()))

	if a.cfg.MeshOut != "" {
		if err := a.WriteMeshes(a.cfg.MeshOut); err != nil {
			return err
		}
		a.log.Info("meshes written", "path", a.cfg.MeshOut)
	}
	return nil
}
