package solver

import (
	"gonum.org/v1/gonum/cmplxs"

	"github.com/averyparr/qpulse/internal/quantum"
)

// fixedStep advances one step of a non-adaptive method.
type fixedStep func(rhs RHS, y quantum.State, t, dt float64) quantum.State

func eulerStep(rhs RHS, y quantum.State, t, dt float64) quantum.State {
	out := make(quantum.State, len(y))
	cmplxs.AddScaledTo(out, y, complex(dt, 0), rhs(t, y))
	return out
}

func rk4Step(rhs RHS, y quantum.State, t, dt float64) quantum.State {
	n := len(y)
	stage := make(quantum.State, n)

	k1 := rhs(t, y)
	cmplxs.AddScaledTo(stage, y, complex(dt/2, 0), k1)
	k2 := rhs(t+dt/2, stage)
	cmplxs.AddScaledTo(stage, y, complex(dt/2, 0), k2)
	k3 := rhs(t+dt/2, stage)
	cmplxs.AddScaledTo(stage, y, complex(dt, 0), k3)
	k4 := rhs(t+dt, stage)

	out := y.Clone()
	w := complex(dt/6, 0)
	cmplxs.AddScaled(out, w, k1)
	cmplxs.AddScaled(out, 2*w, k2)
	cmplxs.AddScaled(out, 2*w, k3)
	cmplxs.AddScaled(out, w, k4)
	return out
}
