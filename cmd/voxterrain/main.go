// Command voxterrain generates a voxel world, optionally edits it with a
// camera pick or an edit script, and exports the chunk meshes.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/voxterrain/pkg/config"
)

// dimFlag parses "X,Y,Z" into a chunk grid size.
type dimFlag struct {
	dim *[3]int
}

func (f dimFlag) String() string {
	if f.dim == nil {
		return ""
	}
	return fmt.Sprintf("%d,%d,%d", f.dim[0], f.dim[1], f.dim[2])
}

func (f dimFlag) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want X,Y,Z, got %q", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("dim %d: %w", i, err)
		}
		f.dim[i] = n
	}
	return nil
}

func main() {
	cfg := config.Default()
	configPath := flag.String("config", "", "YAML config file")

	flag.Var(dimFlag{&cfg.Dim}, "dim", "chunks per axis as X,Y,Z")
	flag.UintVar(&cfg.ChunkSizePow, "chunk-size-pow", cfg.ChunkSizePow, "chunk edge is 1<<pow voxels")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "noise seed")
	flag.StringVar(&cfg.Source, "source", cfg.Source, "density source: noise or sphere")
	flag.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "density below which a voxel is solid")
	flag.Float64Var(&cfg.Scale, "scale", cfg.Scale, "world to sample space scale")
	flag.BoolVar(&cfg.LegacyOcclusion, "legacy-occlusion", cfg.LegacyOcclusion, "use the old vertex occlusion rule")
	flag.Float64Var(&cfg.ExplodeRadius, "explode-radius", cfg.ExplodeRadius, "default explosion radius")
	flag.BoolVar(&cfg.Pick, "pick", cfg.Pick, "explode where the default camera looks")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.StringVar(&cfg.Script, "script", cfg.Script, "edit script to run")
	flag.StringVar(&cfg.MeshOut, "mesh-out", cfg.MeshOut, "write chunk meshes as JSON to this path (zstd when it ends in .zst)")
	flag.Parse()

	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		explicit := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		config.Merge(cfg, fromFile, explicit)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Error("startup", "error", err)
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		log.Error("run", "error", err)
		os.Exit(1)
	}
}
