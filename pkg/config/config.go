// Package config loads world generation settings from YAML and merges them
// with command-line overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/voxterrain/pkg/voxel"
)

// Density sources.
const (
	SourceNoise  = "noise"
	SourceSphere = "sphere"
)

// Config holds everything needed to build and edit a world.
type Config struct {
	Dim             [3]int  `yaml:"dim"`            // chunks per axis
	ChunkSizePow    uint    `yaml:"chunk_size_pow"` // chunk edge is 1<<pow voxels
	Seed            int64   `yaml:"seed"`
	Source          string  `yaml:"source"` // "noise" or "sphere"
	Threshold       float64 `yaml:"threshold"`
	Scale           float64 `yaml:"scale"`
	LegacyOcclusion bool    `yaml:"legacy_occlusion"`
	ExplodeRadius   float64 `yaml:"explode_radius"`
	Pick            bool    `yaml:"pick"` // explode where the default camera looks
	LogLevel        string  `yaml:"log_level"`
	Script          string  `yaml:"script"`   // path to an edit script
	MeshOut         string  `yaml:"mesh_out"` // path for JSON mesh export
}

// Default returns the reference world: 9x9x1 chunks of 64 voxels.
func Default() *Config {
	return &Config{
		Dim:           [3]int{9, 9, 1},
		ChunkSizePow:  voxel.DefaultSizePow,
		Source:        SourceNoise,
		Threshold:     voxel.DefaultGenParams.Threshold,
		Scale:         voxel.DefaultGenParams.Scale,
		ExplodeRadius: 10,
		LogLevel:      "info",
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies file-loaded values into cfg, but only for fields that were
// not explicitly set via CLI flags. explicitFlags holds the flag names given
// on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["dim"] {
		cfg.Dim = fromFile.Dim
	}
	if !explicitFlags["chunk-size-pow"] {
		cfg.ChunkSizePow = fromFile.ChunkSizePow
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["source"] {
		cfg.Source = fromFile.Source
	}
	if !explicitFlags["threshold"] {
		cfg.Threshold = fromFile.Threshold
	}
	if !explicitFlags["scale"] {
		cfg.Scale = fromFile.Scale
	}
	if !explicitFlags["legacy-occlusion"] {
		cfg.LegacyOcclusion = fromFile.LegacyOcclusion
	}
	if !explicitFlags["explode-radius"] {
		cfg.ExplodeRadius = fromFile.ExplodeRadius
	}
	if !explicitFlags["pick"] {
		cfg.Pick = fromFile.Pick
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	if !explicitFlags["script"] {
		cfg.Script = fromFile.Script
	}
	if !explicitFlags["mesh-out"] {
		cfg.MeshOut = fromFile.MeshOut
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	for i, d := range c.Dim {
		if d <= 0 {
			return fmt.Errorf("config: dim[%d] = %d must be positive", i, d)
		}
	}
	if c.ChunkSizePow < voxel.MinSizePow || c.ChunkSizePow > voxel.MaxSizePow {
		return fmt.Errorf("config: chunk_size_pow %d outside [%d, %d]", c.ChunkSizePow, voxel.MinSizePow, voxel.MaxSizePow)
	}
	if c.Scale <= 0 {
		return errors.New("config: scale must be positive")
	}
	if c.ExplodeRadius < 0 {
		return errors.New("config: explode_radius must not be negative")
	}
	switch c.Source {
	case SourceNoise, SourceSphere:
	default:
		return fmt.Errorf("config: unknown source %q", c.Source)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// GenParams returns the chunk generation parameters.
func (c *Config) GenParams() voxel.GenParams {
	return voxel.GenParams{Scale: c.Scale, Threshold: c.Threshold}
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}
