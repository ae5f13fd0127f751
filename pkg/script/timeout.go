package script

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// ErrTimeout is returned when an evaluation runs past its limit.
var ErrTimeout = errors.New("evaluation timed out")

// ErrSuperseded is returned when a newer evaluation started first.
var ErrSuperseded = errors.New("evaluation superseded by newer request")

type evalResult struct {
	report *Report
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns ErrTimeout if the
// evaluation exceeds limit. It uses a generation counter to discard stale
// results from previous evaluations.
//
// On timeout the goroutine may still be running; the caller must abort its
// session.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	limit time.Duration,
) (*Report, []EvalError, error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, ErrSuperseded
		}
		if res.err != nil {
			return nil, nil, res.err
		}
		return res.report, res.errors, nil

	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	}
}
