package sim

import (
	"context"
	"math"
	"testing"

	"github.com/averyparr/qpulse/internal/model"
	"github.com/averyparr/qpulse/internal/quantum"
	"github.com/averyparr/qpulse/internal/signal"
	"github.com/averyparr/qpulse/internal/solver"
	"github.com/averyparr/qpulse/internal/transform"
)

func testEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	ev, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ev
}

// envelopeArea integrates the unit-amplitude Gaussian envelope over the
// pulse window by the trapezoid rule.
func envelopeArea(cfg Config, width float64) float64 {
	const n = 4001
	dt := cfg.Duration / (n - 1)
	sum := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		w := 1.0
		if i == 0 || i == n-1 {
			w = 0.5
		}
		sum += w * real(signal.GaussianEnvelope(1, width, cfg.Duration/2, t))
	}
	return sum * dt
}

// piAmp returns the amplitude for which the rotating-wave rotation angle of
// the pulse is pi, i.e. rabi * amp * area = 1.
func piAmp(cfg Config, width float64) float64 {
	return 1 / (cfg.Rabi * envelopeArea(cfg, width))
}

func TestPiPulsePopulation(t *testing.T) {
	ev := testEvaluator(t)
	width := 4.0
	p := PulseParams{Amp: piAmp(ev.Config(), width), Width: width}

	pop, err := ev.Population(context.Background(), p)
	if err != nil {
		t.Fatalf("Population: %v", err)
	}
	if pop < 0.99 {
		t.Errorf("pi pulse population %f, want > 0.99", pop)
	}
}

func TestDeterminism(t *testing.T) {
	ev := testEvaluator(t)
	p := PulseParams{Amp: 0.8, Width: 4.0}

	a, err := ev.FinalState(context.Background(), p)
	if err != nil {
		t.Fatalf("FinalState: %v", err)
	}
	b, err := ev.FinalState(context.Background(), p)
	if err != nil {
		t.Fatalf("FinalState: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("repeated evaluation differs at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestNonAliasing(t *testing.T) {
	ev := testEvaluator(t)
	pa := PulseParams{Amp: 0.5, Width: 4.0}
	pb := PulseParams{Amp: 1.5, Width: 2.0}

	first, err := ev.FinalState(context.Background(), pa)
	if err != nil {
		t.Fatalf("FinalState(A): %v", err)
	}
	if _, err := ev.FinalState(context.Background(), pb); err != nil {
		t.Fatalf("FinalState(B): %v", err)
	}
	again, err := ev.FinalState(context.Background(), pa)
	if err != nil {
		t.Fatalf("FinalState(A) again: %v", err)
	}

	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("call with B leaked into a later call with A: %v vs %v", first, again)
		}
	}
}

func TestTrajectoryEndpointMatchesFinalState(t *testing.T) {
	ev := testEvaluator(t)
	p := PulseParams{Amp: 1.0, Width: 4.0}

	sol, err := ev.Trajectory(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Trajectory: %v", err)
	}
	final, err := ev.FinalState(context.Background(), p)
	if err != nil {
		t.Fatalf("FinalState: %v", err)
	}

	if got := sol.Times[len(sol.Times)-1]; math.Abs(got-ev.Config().Duration) > 1e-9 {
		t.Fatalf("trajectory ends at t=%f, want %f", got, ev.Config().Duration)
	}
	if !quantum.EqualApprox(sol.Final(), final, 1e-4) {
		t.Errorf("trajectory endpoint %v differs from final-state mode %v", sol.Final(), final)
	}
}

func TestTrajectoryNormPreserved(t *testing.T) {
	ev := testEvaluator(t)
	sol, err := ev.Trajectory(context.Background(), PulseParams{Amp: 1.0, Width: 4.0}, nil)
	if err != nil {
		t.Fatalf("Trajectory: %v", err)
	}
	for i, y := range sol.States {
		if math.Abs(y.Norm()-1) > 1e-6 {
			t.Fatalf("norm drift at t=%f: %f", sol.Times[i], y.Norm())
		}
	}
}

func TestSmallestWidthDoesNotCrash(t *testing.T) {
	ev := testEvaluator(t)
	pop, err := ev.Population(context.Background(), PulseParams{Amp: 1.0, Width: math.SmallestNonzeroFloat64})
	if err != nil {
		t.Fatalf("Population: %v", err)
	}
	if math.IsNaN(pop) || math.IsInf(pop, 0) {
		t.Fatalf("population not finite: %f", pop)
	}
	if pop > 0.05 {
		t.Errorf("near-zero-support pulse moved population to %f", pop)
	}
}

func TestCompiledEvaluatorEquivalence(t *testing.T) {
	ev := testEvaluator(t)
	fn := ev.Func(context.Background())
	compiled := transform.Compile(fn)

	for _, params := range [][]float64{{0.5, 4.0}, {1.0, 4.0}} {
		direct, err := fn(params)
		if err != nil {
			t.Fatalf("direct: %v", err)
		}
		wrapped, err := compiled.Call(params)
		if err != nil {
			t.Fatalf("compiled: %v", err)
		}
		if math.Abs(direct-wrapped) > 1e-10 {
			t.Errorf("compiled %f differs from direct %f at %v", wrapped, direct, params)
		}
	}
}

func TestFuncRejectsWrongArity(t *testing.T) {
	ev := testEvaluator(t)
	if _, err := ev.Func(context.Background())([]float64{1.0}); err == nil {
		t.Error("expected an error for a single parameter")
	}
}

// A resonant constant-envelope drive of strength r flips the qubit over
// t = 1/r in the lab frame.
func TestResonantConstantDriveFlips(t *testing.T) {
	w, r := 2.0, 0.1
	drift := quantum.Scaled(complex(2*math.Pi*w/2, 0), quantum.MustFromLabel("Z"))
	drive := quantum.Scaled(complex(2*math.Pi*r/2, 0), quantum.MustFromLabel("X"))

	h, err := model.NewBuilder(drift).
		AddTerm(drive, signal.Signal{
			Envelope: func(float64) complex128 { return 1 },
			Freq:     w,
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sol, err := solver.Solve(context.Background(), h.RHS, quantum.Ket(1, 2), [2]float64{0, 1 / r}, solver.Options{
		AbsTol: 1e-9, RelTol: 1e-9,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if pop := sol.Final().Prob(0); pop < 0.999 {
		t.Errorf("ground population after pi rotation %f, want > 0.999", pop)
	}
}
