package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/voxterrain/pkg/terrain"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// errAborted is returned by builtins called after their evaluation timed
// out.
var errAborted = errors.New("evaluation aborted")

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpHit wraps a terrain ray hit so it can be consumed by boom and the hit
// accessors.
type sexpHit struct {
	hit terrain.Hit
}

func (h *sexpHit) SexpString(ps *zygo.PrintState) string {
	p := h.hit.Point
	return fmt.Sprintf("(hit %.3f (vec3 %g %g %g))", h.hit.Distance, p.X, p.Y, p.Z)
}
func (h *sexpHit) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toHit(s zygo.Sexp) (terrain.Hit, error) {
	if h, ok := s.(*sexpHit); ok {
		return h.hit, nil
	}
	return terrain.Hit{}, fmt.Errorf("expected hit, got %T (%s)", s, s.SexpString(nil))
}

// toTarget accepts a vec3 or a hit. ok is false for nil, which callers treat
// as an empty edit target.
func toTarget(s zygo.Sexp) (p v3.Vec, ok bool, err error) {
	switch v := s.(type) {
	case *sexpVec3:
		return v.vec, true, nil
	case *sexpHit:
		return v.hit.Point, true, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return v3.Vec{}, false, nil
		}
	}
	return v3.Vec{}, false, fmt.Errorf("expected vec3, hit or nil, got %T (%s)", s, s.SexpString(nil))
}

func floatSexp(f float64) zygo.Sexp { return &zygo.SexpFloat{Val: f} }
func intSexp(n int) zygo.Sexp       { return &zygo.SexpInt{Val: int64(n)} }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// guard runs fn under the engine's edit lock and the session lock, and
// rejects calls once the session is aborted. A stranded evaluation only ever
// holds the edit lock for the duration of one builtin.
func (s *session) guard(fn func() (zygo.Sexp, error)) (zygo.Sexp, error) {
	s.edit.Lock()
	defer s.edit.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aborted {
		return zygo.SexpNull, errAborted
	}
	return fn()
}

// castRay records and returns the terrain hit for a ray, or nil.
func (s *session) castRay(origin, dir v3.Vec) zygo.Sexp {
	h, ok := s.terrain.IntersectRay(origin, dir)
	if !ok {
		return zygo.SexpNull
	}
	s.report.Hits = append(s.report.Hits, h)
	return &sexpHit{hit: h}
}

// registerBuiltins installs the edit-script builtins into a zygomys
// environment. Source must be preprocessed with preprocessSource so that
// :keyword tokens arrive as recognisable string literals.
func registerBuiltins(env *zygo.Zlisp, s *session) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (ray (vec3 0 0 100) (vec3 0 0 -1)) -> hit or nil
	// -----------------------------------------------------------------------
	env.AddFunction("ray", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("ray requires an origin and a direction")
		}
		origin, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ray: origin: %w", err)
		}
		dir, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ray: direction: %w", err)
		}
		return s.guard(func() (zygo.Sexp, error) {
			return s.castRay(origin, dir), nil
		})
	})

	// -----------------------------------------------------------------------
	// (hit-point h) (hit-distance h)
	// -----------------------------------------------------------------------
	env.AddFunction("hit_point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("hit-point requires a hit argument")
		}
		h, err := toHit(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hit-point: %w", err)
		}
		return &sexpVec3{vec: h.Point}, nil
	})

	env.AddFunction("hit_distance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("hit-distance requires a hit argument")
		}
		h, err := toHit(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hit-distance: %w", err)
		}
		return floatSexp(h.Distance), nil
	})

	// -----------------------------------------------------------------------
	// (boom target :radius 5) -> number of changed chunks
	// -----------------------------------------------------------------------
	env.AddFunction("boom", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("boom requires a target (vec3, hit or nil)")
		}
		center, ok, err := toTarget(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("boom: target: %w", err)
		}
		radius := s.radius
		if v, found := pa.kw["radius"]; found {
			radius, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boom: radius: %w", err)
			}
			if radius < 0 {
				return zygo.SexpNull, fmt.Errorf("boom: radius must not be negative, got %g", radius)
			}
		}
		if !ok {
			return intSexp(0), nil
		}
		return s.guard(func() (zygo.Sexp, error) {
			changed := s.terrain.Explode(center, radius)
			s.report.Edits = append(s.report.Edits, Edit{Center: center, Radius: radius, Changed: len(changed)})
			return intSexp(len(changed)), nil
		})
	})

	// -----------------------------------------------------------------------
	// (voxel (vec3 1 2 0)) -> material id, or nil outside the world
	// -----------------------------------------------------------------------
	env.AddFunction("voxel", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("voxel requires a position")
		}
		p, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("voxel: %w", err)
		}
		return s.guard(func() (zygo.Sexp, error) {
			v, ok := s.terrain.VoxelAt(p)
			if !ok {
				return zygo.SexpNull, nil
			}
			return intSexp(int(v)), nil
		})
	})

	// -----------------------------------------------------------------------
	// (vertex-count)
	// -----------------------------------------------------------------------
	env.AddFunction("vertex_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return s.guard(func() (zygo.Sexp, error) {
			return intSexp(s.terrain.VertexCount()), nil
		})
	})

	registerCameraBuiltins(env, s)
}

// registerCameraBuiltins installs (look), (turn d), (tilt d) and
// (advance d). Without a camera they fail with an eval error.
func registerCameraBuiltins(env *zygo.Zlisp, s *session) {
	needCamera := func(name string) error {
		if s.camera == nil {
			return fmt.Errorf("%s: no camera attached", name)
		}
		return nil
	}

	env.AddFunction("look", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := needCamera("look"); err != nil {
			return zygo.SexpNull, err
		}
		return s.guard(func() (zygo.Sexp, error) {
			origin, dir := s.camera.Ray()
			return s.castRay(origin, dir), nil
		})
	})

	moves := map[string]func(float64){
		"turn":    func(d float64) { s.camera.Turn(d) },
		"tilt":    func(d float64) { s.camera.Tilt(d) },
		"advance": func(d float64) { s.camera.Advance(d) },
	}
	for fname, move := range moves {
		env.AddFunction(fname, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if err := needCamera(fname); err != nil {
				return zygo.SexpNull, err
			}
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires one number", fname)
			}
			d, err := toFloat64(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fname, err)
			}
			return s.guard(func() (zygo.Sexp, error) {
				move(d)
				return &sexpVec3{vec: s.camera.Position}, nil
			})
		})
	}
}
