// Package sim evaluates parameterized qubit pulse simulations. An Evaluator
// owns the fixed operator set, built once; every evaluation derives a fresh
// Hamiltonian value from the pulse parameters, delegates to the solver and
// projects out the requested result. Calls never share or mutate per-call
// state, so an Evaluator is safe to re-invoke in any order, including the
// repeated probing done by transformation wrappers.
package sim

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/averyparr/qpulse/internal/model"
	"github.com/averyparr/qpulse/internal/quantum"
	"github.com/averyparr/qpulse/internal/signal"
	"github.com/averyparr/qpulse/internal/solver"
	"github.com/averyparr/qpulse/internal/transform"
)

// Config fixes the physical setup and solver choice shared by all
// evaluations: a qubit of frequency Freq driven through an X term of
// strength Rabi, H(t) = 2*pi*Freq*Z/2 + 2*pi*Rabi*s(t)*X/2, evolved in the
// rotating frame of the drift over [0, Duration] with a resonant carrier.
type Config struct {
	Freq     float64 `yaml:"freq"`
	Rabi     float64 `yaml:"rabi"`
	Duration float64 `yaml:"duration"`

	Method string  `yaml:"method"`
	AbsTol float64 `yaml:"abs_tol"`
	RelTol float64 `yaml:"rel_tol"`

	// Points sizes the default trajectory grid.
	Points int `yaml:"points"`
}

func DefaultConfig() Config {
	return Config{
		Freq:     5.0,
		Rabi:     0.1,
		Duration: 32.0,
		Method:   "dopri5",
		AbsTol:   1e-10,
		RelTol:   1e-8,
		Points:   201,
	}
}

// PulseParams are the per-call scalars: Gaussian peak amplitude and width.
// Width must be positive; behavior for other widths is undefined.
type PulseParams struct {
	Amp   float64
	Width float64
}

// Evaluator holds the immutable operator set. It is read-only after New.
type Evaluator struct {
	cfg   Config
	drift *mat.CDense
	drive *mat.CDense
}

func New(cfg Config) (*Evaluator, error) {
	if cfg.Freq <= 0 || cfg.Rabi <= 0 || cfg.Duration <= 0 {
		return nil, fmt.Errorf("sim: freq, rabi and duration must be positive (%g, %g, %g)",
			cfg.Freq, cfg.Rabi, cfg.Duration)
	}
	if cfg.Points < 2 {
		cfg.Points = DefaultConfig().Points
	}
	return &Evaluator{
		cfg:   cfg,
		drift: quantum.Scaled(complex(2*math.Pi*cfg.Freq/2, 0), quantum.MustFromLabel("Z")),
		drive: quantum.Scaled(complex(2*math.Pi*cfg.Rabi/2, 0), quantum.MustFromLabel("X")),
	}, nil
}

func (e *Evaluator) Config() Config { return e.cfg }

// Grid returns the default evaluation grid over [0, Duration].
func (e *Evaluator) Grid() []float64 {
	grid := make([]float64, e.cfg.Points)
	floats.Span(grid, 0, e.cfg.Duration)
	return grid
}

// buildModel derives an independent per-call Hamiltonian from the shared
// operator set and the pulse parameters.
func (e *Evaluator) buildModel(p PulseParams) (*model.Hamiltonian, error) {
	pulse := signal.Gaussian(p.Amp, p.Width, e.cfg.Duration/2, e.cfg.Freq)
	return model.NewBuilder(e.drift).
		AddTerm(e.drive, pulse).
		InDriftFrame().
		Build()
}

func (e *Evaluator) solve(ctx context.Context, p PulseParams, eval []float64) (*model.Hamiltonian, *solver.Solution, error) {
	h, err := e.buildModel(p)
	if err != nil {
		return nil, nil, err
	}
	y0 := h.IntoFrame(0, quantum.Ket(0, 2))
	sol, err := solver.Solve(ctx, h.RHS, y0, [2]float64{0, e.cfg.Duration}, solver.Options{
		Method: e.cfg.Method,
		AbsTol: e.cfg.AbsTol,
		RelTol: e.cfg.RelTol,
		Eval:   eval,
	})
	if err != nil {
		return nil, nil, err
	}
	return h, sol, nil
}

// FinalState returns the lab-frame state at the end of the pulse window.
func (e *Evaluator) FinalState(ctx context.Context, p PulseParams) (quantum.State, error) {
	h, sol, err := e.solve(ctx, p, nil)
	if err != nil {
		return nil, err
	}
	return h.OutOfFrame(e.cfg.Duration, sol.Final()), nil
}

// Population returns the excited-state occupation |<1|psi(T)>|^2.
func (e *Evaluator) Population(ctx context.Context, p PulseParams) (float64, error) {
	final, err := e.FinalState(ctx, p)
	if err != nil {
		return 0, err
	}
	return final.Prob(1), nil
}

// Trajectory solves with an explicit evaluation grid and returns lab-frame
// states at each grid time. A nil grid selects the default Grid.
func (e *Evaluator) Trajectory(ctx context.Context, p PulseParams, grid []float64) (*solver.Solution, error) {
	if grid == nil {
		grid = e.Grid()
	}
	h, sol, err := e.solve(ctx, p, grid)
	if err != nil {
		return nil, err
	}
	out := &solver.Solution{
		Times:  sol.Times,
		States: make([]quantum.State, len(sol.States)),
		Steps:  sol.Steps,
	}
	for i, y := range sol.States {
		out.States[i] = h.OutOfFrame(sol.Times[i], y)
	}
	return out, nil
}

// ExcitedPopulations projects a trajectory onto |<1|psi(t)>|^2 per time.
func ExcitedPopulations(sol *solver.Solution) []float64 {
	out := make([]float64, len(sol.States))
	for i, y := range sol.States {
		out[i] = y.Prob(1)
	}
	return out
}

// Func adapts the evaluator to the transformation boundary: a pure scalar
// function of [amp, width] returning the excited-state population.
func (e *Evaluator) Func(ctx context.Context) transform.Func {
	return func(params []float64) (float64, error) {
		if len(params) != 2 {
			return 0, fmt.Errorf("sim: want [amp, width], got %d parameters", len(params))
		}
		return e.Population(ctx, PulseParams{Amp: params[0], Width: params[1]})
	}
}
