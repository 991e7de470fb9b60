package solver

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/averyparr/qpulse/internal/quantum"
)

// rotation y' = -i*w*y has the exact solution y0*exp(-i*w*t).
func rotation(w float64) RHS {
	return func(t float64, y quantum.State) quantum.State {
		out := make(quantum.State, len(y))
		for i := range y {
			out[i] = complex(0, -w) * y[i]
		}
		return out
	}
}

// piFlip is the constant generator -i*pi*X; over [0,1] it maps y to -y.
func piFlip(t float64, y quantum.State) quantum.State {
	return quantum.State{
		complex(0, -math.Pi) * y[1],
		complex(0, -math.Pi) * y[0],
	}
}

func TestUnknownMethod(t *testing.T) {
	_, err := Solve(context.Background(), rotation(1), quantum.Ket(0, 2), [2]float64{0, 1}, Options{Method: "notamethod"})
	if !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestBadTimeSpan(t *testing.T) {
	_, err := Solve(context.Background(), rotation(1), quantum.Ket(0, 2), [2]float64{1, 1}, Options{})
	if !errors.Is(err, ErrBadTimeSpan) {
		t.Fatalf("expected ErrBadTimeSpan, got %v", err)
	}
}

func TestBadEvalGrid(t *testing.T) {
	_, err := Solve(context.Background(), rotation(1), quantum.Ket(0, 2), [2]float64{0, 1}, Options{Eval: []float64{0.5, 0.2}})
	if !errors.Is(err, ErrBadEvalGrid) {
		t.Fatalf("expected ErrBadEvalGrid for descending times, got %v", err)
	}

	_, err = Solve(context.Background(), rotation(1), quantum.Ket(0, 2), [2]float64{0, 1}, Options{Eval: []float64{2.0}})
	if !errors.Is(err, ErrBadEvalGrid) {
		t.Fatalf("expected ErrBadEvalGrid for out-of-span time, got %v", err)
	}
}

func TestDopri5Rotation(t *testing.T) {
	w := 3.0
	y0 := quantum.State{1, 0}
	sol, err := Solve(context.Background(), rotation(w), y0, [2]float64{0, 2}, Options{AbsTol: 1e-10, RelTol: 1e-10})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	want := cmplx.Exp(complex(0, -w*2))
	if cmplx.Abs(sol.Final()[0]-want) > 1e-8 {
		t.Errorf("final state %v, want %v", sol.Final()[0], want)
	}
}

func TestDopri5PiFlip(t *testing.T) {
	// exp(-i*pi*X) = -I, so the identity initial condition maps to -I
	// column by column.
	for k := 0; k < 2; k++ {
		y0 := quantum.Ket(k, 2)
		sol, err := Solve(context.Background(), piFlip, y0, [2]float64{0, 1}, Options{AbsTol: 1e-10, RelTol: 1e-10})
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		want := y0.Clone()
		want[k] = -1
		if !quantum.EqualApprox(sol.Final(), want, 1e-7) {
			t.Errorf("column %d: got %v, want %v", k, sol.Final(), want)
		}
	}
}

func TestQuadraticRHS(t *testing.T) {
	quad := func(t float64, y quantum.State) quantum.State {
		return quantum.State{complex(t*t, 0)}
	}
	for _, method := range []string{"dopri5", "rk4"} {
		sol, err := Solve(context.Background(), quad, quantum.State{0}, [2]float64{0, 1}, Options{
			Method: method, AbsTol: 1e-10, RelTol: 1e-10, InitialStep: 0.001,
		})
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		if math.Abs(real(sol.Final()[0])-1.0/3) > 1e-6 {
			t.Errorf("%s: integral of t^2 = %v, want 1/3", method, sol.Final()[0])
		}
	}
}

func TestEvalGridEndpoint(t *testing.T) {
	w := 2.0
	y0 := quantum.State{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)}

	grid := []float64{0, 0.5, 1.0, 1.7, 2.0}
	withGrid, err := Solve(context.Background(), rotation(w), y0, [2]float64{0, 2}, Options{Eval: grid})
	if err != nil {
		t.Fatalf("Solve with grid: %v", err)
	}
	if len(withGrid.Times) != len(grid) {
		t.Fatalf("expected %d reported states, got %d", len(grid), len(withGrid.Times))
	}

	noGrid, err := Solve(context.Background(), rotation(w), y0, [2]float64{0, 2}, Options{})
	if err != nil {
		t.Fatalf("Solve without grid: %v", err)
	}

	if !quantum.EqualApprox(withGrid.Final(), noGrid.Final(), 1e-6) {
		t.Errorf("grid endpoint %v differs from final-only solve %v", withGrid.Final(), noGrid.Final())
	}
}

func TestRK4MatchesAdaptive(t *testing.T) {
	w := 1.5
	y0 := quantum.Ket(0, 2)
	fixed, err := Solve(context.Background(), rotation(w), y0, [2]float64{0, 1}, Options{Method: "rk4", InitialStep: 1e-3})
	if err != nil {
		t.Fatalf("rk4: %v", err)
	}
	adaptive, err := Solve(context.Background(), rotation(w), y0, [2]float64{0, 1}, Options{})
	if err != nil {
		t.Fatalf("dopri5: %v", err)
	}
	if !quantum.EqualApprox(fixed.Final(), adaptive.Final(), 1e-6) {
		t.Errorf("rk4 %v vs dopri5 %v", fixed.Final(), adaptive.Final())
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Solve(ctx, rotation(1), quantum.Ket(0, 2), [2]float64{0, 1}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestInvalidStateDetected(t *testing.T) {
	blowup := func(t float64, y quantum.State) quantum.State {
		return quantum.State{complex(math.NaN(), 0)}
	}
	_, err := Solve(context.Background(), blowup, quantum.State{1}, [2]float64{0, 1}, Options{Method: "euler"})
	if !errors.Is(err, quantum.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
