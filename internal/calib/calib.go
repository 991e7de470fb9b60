// Package calib calibrates pulse parameters against a scalar objective,
// typically the excited-state population of a pi pulse. The maximizer is an
// iterative grid refinement: each round evaluates a uniform grid over the
// current interval and shrinks the interval around the best point.
package calib

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/averyparr/qpulse/internal/transform"
)

// Point is one sweep sample.
type Point struct {
	Value     float64
	Objective float64
}

// Sweep evaluates fn([v, width]) over the given amplitude values.
func Sweep(ctx context.Context, fn transform.Func, width float64, values []float64) ([]Point, error) {
	out := make([]Point, len(values))
	for i, v := range values {
		select {
		case <-ctx.Done():
			return out[:i], ctx.Err()
		default:
		}
		obj, err := fn([]float64{v, width})
		if err != nil {
			return out[:i], fmt.Errorf("calib: sweep at %g: %w", v, err)
		}
		out[i] = Point{Value: v, Objective: obj}
	}
	return out, nil
}

// Range returns n evenly spaced values over [lo, hi].
func Range(lo, hi float64, n int) []float64 {
	grid := make([]float64, n)
	floats.Span(grid, lo, hi)
	return grid
}

// Options tunes Maximize. Zero values select defaults.
type Options struct {
	Rounds int // refinement rounds, default 6
	Points int // grid points per round, default 9
}

func (o Options) withDefaults() Options {
	if o.Rounds <= 0 {
		o.Rounds = 6
	}
	if o.Points < 3 {
		o.Points = 9
	}
	return o
}

// Maximize searches [lo, hi] for the amplitude maximizing fn([amp, width]).
// It returns the best amplitude and its objective. The final resolution is
// (hi-lo) * (2/(Points-1))^Rounds.
func Maximize(ctx context.Context, fn transform.Func, width, lo, hi float64, opts Options) (float64, float64, error) {
	opts = opts.withDefaults()
	if !(hi > lo) {
		return 0, 0, fmt.Errorf("calib: empty search interval [%g, %g]", lo, hi)
	}

	best, bestObj := lo, 0.0
	for round := 0; round < opts.Rounds; round++ {
		points, err := Sweep(ctx, fn, width, Range(lo, hi, opts.Points))
		if err != nil {
			return 0, 0, err
		}

		best, bestObj = points[0].Value, points[0].Objective
		for _, p := range points[1:] {
			if p.Objective > bestObj {
				best, bestObj = p.Value, p.Objective
			}
		}

		// Shrink to one grid cell on each side of the best point.
		cell := (hi - lo) / float64(opts.Points-1)
		lo, hi = best-cell, best+cell
	}
	return best, bestObj, nil
}
