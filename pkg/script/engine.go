// Package script runs edit scripts against a terrain. Scripts are zygomys
// Lisp evaluated in a sandbox with builtins for ray picking and explosions,
// so a sequence of edits can be replayed without an interactive viewer.
package script

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/voxterrain/pkg/camera"
	"github.com/chazu/voxterrain/pkg/terrain"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// DefaultRadius is the explosion radius used when a script omits :radius.
const DefaultRadius = 10.0

// EvalError is a non-fatal error in user code, such as a parse error or a
// builtin rejecting its arguments.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Edit records one explosion a script performed.
type Edit struct {
	Center  v3.Vec
	Radius  float64
	Changed int
}

// Report is what a script did to the terrain.
type Report struct {
	Hits   []terrain.Hit
	Edits  []Edit
	Result string // printed value of the last expression
}

// ChangedChunks returns the total number of chunk updates across all edits.
func (r *Report) ChangedChunks() int {
	n := 0
	for _, e := range r.Edits {
		n += e.Changed
	}
	return n
}

// Engine evaluates scripts against one terrain. Each evaluation gets a fresh
// sandbox; builtin calls that touch the terrain or camera are serialised
// across evaluations.
type Engine struct {
	// Camera, if set, backs the look, turn, tilt and advance builtins.
	Camera *camera.Camera
	// Radius is used by boom when no :radius is given. Zero means
	// DefaultRadius.
	Radius float64
	// Timeout bounds a single evaluation. Zero means EvalTimeout.
	Timeout time.Duration
	// Logger receives evaluation summaries. Nil discards them.
	Logger *slog.Logger

	terrain *terrain.Terrain

	mu         sync.Mutex
	generation uint64
	edit       sync.Mutex
}

// NewEngine creates an Engine that edits t.
func NewEngine(t *terrain.Terrain) *Engine {
	return &Engine{terrain: t}
}

// Evaluate runs source and reports the hits and edits it produced.
//
// Return semantics:
//   - On success: returns report + nil errors + nil error
//   - On parse/eval failure: returns the partial report + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
//
// After a timeout the abandoned evaluation can no longer touch the terrain.
func (e *Engine) Evaluate(source string) (*Report, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	s := e.newSession()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		rep, evalErrs, err := s.evaluate(source)
		ch <- evalResult{report: rep, errors: evalErrs, err: err}
	}()

	rep, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout())
	if err != nil {
		s.abort()
		return nil, nil, err
	}

	e.logger().Info("script evaluated",
		"hits", len(rep.Hits), "edits", len(rep.Edits),
		"changed_chunks", rep.ChangedChunks(), "errors", len(evalErrs))
	return rep, evalErrs, nil
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return EvalTimeout
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (e *Engine) newSession() *session {
	r := e.Radius
	if r <= 0 {
		r = DefaultRadius
	}
	return &session{
		terrain: e.terrain,
		camera:  e.Camera,
		radius:  r,
		report:  &Report{},
		edit:    &e.edit,
	}
}

// session is the state shared by the builtins of one evaluation.
type session struct {
	terrain *terrain.Terrain
	camera  *camera.Camera
	radius  float64
	report  *Report
	edit    *sync.Mutex // engine-wide, held around builtin bodies

	mu      sync.Mutex
	aborted bool
}

// abort stops every later builtin call from touching the terrain.
func (s *session) abort() {
	s.mu.Lock()
	s.aborted = true
	s.mu.Unlock()
}

// evaluate performs the zygomys evaluation in a fresh sandbox.
func (s *session) evaluate(source string) (*Report, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return s.report, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return s.report, parseZygomysError(err), nil
	}

	res, err := env.Run()
	if err != nil {
		return s.report, parseZygomysError(err), nil
	}
	if res != nil {
		s.report.Result = res.SexpString(nil)
	}
	return s.report, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values, keeping
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
