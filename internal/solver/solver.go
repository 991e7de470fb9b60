// Package solver integrates the complex-valued ordinary differential
// equations produced by Hamiltonian models. It exposes a single entry
// point, Solve, dispatching on a named method: an adaptive Dormand-Prince
// pair ("dopri5", the default) and fixed-step classical methods ("rk4",
// "euler").
package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/averyparr/qpulse/internal/quantum"
)

// RHS is the right-hand side of y' = f(t, y). Implementations must be pure:
// the solver may evaluate them at arbitrary times, repeatedly and out of
// order.
type RHS func(t float64, y quantum.State) quantum.State

// Options configures a solve. Zero values select defaults.
type Options struct {
	// Method names the integrator: "dopri5" (default), "rk4" or "euler".
	Method string

	// AbsTol and RelTol control the adaptive error estimate. Defaults are
	// 1e-10 and 1e-8.
	AbsTol float64
	RelTol float64

	// InitialStep seeds the adaptive step and fixes the step of the
	// non-adaptive methods. Default is 1/100 of the span.
	InitialStep float64

	// MaxStep caps the step size. Default is the full span.
	MaxStep float64

	// Eval lists times at which the solution must be reported. When nil,
	// every accepted step is reported. Times must be ascending and inside
	// the span.
	Eval []float64
}

// Solution holds the reported trajectory. States are in whatever frame the
// RHS evolves; Times[i] is the time of States[i].
type Solution struct {
	Times  []float64
	States []quantum.State
	Steps  int
}

// Final returns the state at the last reported time.
func (s *Solution) Final() quantum.State {
	return s.States[len(s.States)-1]
}

func (o Options) withDefaults(span float64) Options {
	if o.Method == "" {
		o.Method = "dopri5"
	}
	if o.AbsTol <= 0 {
		o.AbsTol = 1e-10
	}
	if o.RelTol <= 0 {
		o.RelTol = 1e-8
	}
	if o.InitialStep <= 0 {
		o.InitialStep = span / 100
	}
	if o.MaxStep <= 0 {
		o.MaxStep = span
	}
	return o
}

// Solve integrates rhs from tspan[0] to tspan[1] starting at y0. The
// context is checked between steps; cancellation aborts with ctx.Err().
func Solve(ctx context.Context, rhs RHS, y0 quantum.State, tspan [2]float64, opts Options) (*Solution, error) {
	t0, t1 := tspan[0], tspan[1]
	if !(t1 > t0) {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrBadTimeSpan, t0, t1)
	}
	if len(y0) == 0 {
		return nil, quantum.ErrInvalidState
	}
	opts = opts.withDefaults(t1 - t0)

	for i, te := range opts.Eval {
		if te < t0 || te > t1 {
			return nil, fmt.Errorf("%w: t=%g outside [%g, %g]", ErrBadEvalGrid, te, t0, t1)
		}
		if i > 0 && te <= opts.Eval[i-1] {
			return nil, fmt.Errorf("%w: times must be ascending", ErrBadEvalGrid)
		}
	}

	switch opts.Method {
	case "dopri5":
		return solveAdaptive(ctx, rhs, y0, t0, t1, opts)
	case "rk4":
		return solveFixed(ctx, rk4Step, rhs, y0, t0, t1, opts)
	case "euler":
		return solveFixed(ctx, eulerStep, rhs, y0, t0, t1, opts)
	default:
		return nil, fmt.Errorf("%q is %w", opts.Method, ErrUnknownMethod)
	}
}

// recorder accumulates the solution, honoring an optional evaluation grid.
type recorder struct {
	sol  *Solution
	eval []float64
}

func newRecorder(t0 float64, y0 quantum.State, opts Options) *recorder {
	r := &recorder{sol: &Solution{}, eval: opts.Eval}
	if r.eval == nil {
		r.record(t0, y0)
		return r
	}
	for len(r.eval) > 0 && r.eval[0] <= t0 {
		r.record(r.eval[0], y0)
		r.eval = r.eval[1:]
	}
	return r
}

func (r *recorder) record(t float64, y quantum.State) {
	r.sol.Times = append(r.sol.Times, t)
	r.sol.States = append(r.sol.States, y.Clone())
}

// next returns the time the integrator must land on exactly, or t1.
func (r *recorder) next(t1 float64) float64 {
	if len(r.eval) > 0 {
		return r.eval[0]
	}
	return t1
}

// accepted reports an accepted step ending at time t with state y. Grid
// times are matched with a small slack so a step that lands on a target up
// to rounding still consumes it.
func (r *recorder) accepted(t float64, y quantum.State) {
	if r.eval == nil {
		r.record(t, y)
		return
	}
	slack := 1e-12 * math.Max(1, math.Abs(t))
	for len(r.eval) > 0 && r.eval[0] <= t+slack {
		r.record(r.eval[0], y)
		r.eval = r.eval[1:]
	}
}

func solveFixed(ctx context.Context, step fixedStep, rhs RHS, y0 quantum.State, t0, t1 float64, opts Options) (*Solution, error) {
	rec := newRecorder(t0, y0, opts)
	y := y0.Clone()
	t := t0
	dt := math.Min(opts.InitialStep, opts.MaxStep)

	for t < t1 {
		select {
		case <-ctx.Done():
			return rec.sol, ctx.Err()
		default:
		}

		h := math.Min(dt, rec.next(t1)-t)
		if h <= 0 {
			h = dt
		}
		if t+h > t1 {
			h = t1 - t
		}

		y = step(rhs, y, t, h)
		t += h
		rec.sol.Steps++

		if !y.IsValid() {
			return rec.sol, fmt.Errorf("at t=%g: %w", t, quantum.ErrInvalidState)
		}
		rec.accepted(t, y)
	}
	return rec.sol, nil
}

func solveAdaptive(ctx context.Context, rhs RHS, y0 quantum.State, t0, t1 float64, opts Options) (*Solution, error) {
	rec := newRecorder(t0, y0, opts)
	y := y0.Clone()
	t := t0
	dt := math.Min(opts.InitialStep, opts.MaxStep)
	minStep := (t1 - t0) * 1e-14

	for t < t1 {
		select {
		case <-ctx.Done():
			return rec.sol, ctx.Err()
		default:
		}

		h := math.Min(dt, opts.MaxStep)
		if target := rec.next(t1); t+h > target {
			h = target - t
		}

		yNew, errNorm := dopri5Step(rhs, y, t, h, opts.AbsTol, opts.RelTol)

		if errNorm <= 1 {
			t += h
			y = yNew
			rec.sol.Steps++
			if !y.IsValid() {
				return rec.sol, fmt.Errorf("at t=%g: %w", t, quantum.ErrInvalidState)
			}
			rec.accepted(t, y)
		}

		dt = h * stepScale(errNorm)
		if t < t1 && dt < minStep {
			return rec.sol, fmt.Errorf("at t=%g: %w", t, ErrStepTooSmall)
		}
	}
	return rec.sol, nil
}

const (
	safety   = 0.9
	minScale = 0.2
	maxScale = 10.0
)

func stepScale(errNorm float64) float64 {
	if errNorm == 0 {
		return maxScale
	}
	scale := safety * math.Pow(errNorm, -0.2)
	if errNorm > 1 {
		scale = safety * math.Pow(errNorm, -0.25)
	}
	return math.Min(maxScale, math.Max(minScale, scale))
}
