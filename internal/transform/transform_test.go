package transform

import (
	"errors"
	"math"
	"testing"
)

func square(params []float64) (float64, error) {
	return params[0] * params[0], nil
}

func TestCompiledMatchesUncompiled(t *testing.T) {
	c := Compile(square)
	for _, x := range []float64{-2, 0, 1.5, 3} {
		direct, _ := square([]float64{x})
		compiled, err := c.Call([]float64{x})
		if err != nil {
			t.Fatalf("Call(%f): %v", x, err)
		}
		if compiled != direct {
			t.Errorf("compiled %f != direct %f at x=%f", compiled, direct, x)
		}
	}
}

func TestCompiledCaches(t *testing.T) {
	calls := 0
	counted := func(params []float64) (float64, error) {
		calls++
		return params[0], nil
	}
	c := Compile(counted)
	for i := 0; i < 5; i++ {
		if _, err := c.Call([]float64{1.0}); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single underlying call, got %d", calls)
	}
}

func TestCompiledArityLocked(t *testing.T) {
	c := Compile(square)
	if _, err := c.Call([]float64{1}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Call([]float64{1, 2}); err == nil {
		t.Error("expected arity mismatch error")
	}
}

func TestCompiledPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	c := Compile(func([]float64) (float64, error) { return 0, boom })
	if _, err := c.Call([]float64{1}); !errors.Is(err, boom) {
		t.Errorf("expected underlying error, got %v", err)
	}
}

func TestSubmitWait(t *testing.T) {
	c := Compile(square)
	jobs := make([]*Job, 4)
	for i := range jobs {
		jobs[i] = c.Submit([]float64{float64(i)})
	}
	for i, j := range jobs {
		v, err := j.Wait()
		if err != nil {
			t.Fatalf("job %d: %v", i, err)
		}
		if v != float64(i*i) {
			t.Errorf("job %d: got %f, want %d", i, v, i*i)
		}
	}
}

func TestGradientQuadratic(t *testing.T) {
	grad, err := Gradient(square)([]float64{3})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(grad[0]-6) > 1e-6 {
		t.Errorf("d(x^2)/dx at 3 = %f, want 6", grad[0])
	}
}

func TestGradientMultiParam(t *testing.T) {
	f := func(p []float64) (float64, error) {
		return p[0]*p[0] + 3*p[1], nil
	}
	grad, err := Gradient(f)([]float64{2, 7})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(grad[0]-4) > 1e-6 || math.Abs(grad[1]-3) > 1e-6 {
		t.Errorf("gradient %v, want [4 3]", grad)
	}
}

func TestGradientLeavesParamsUntouched(t *testing.T) {
	params := []float64{1, 2}
	if _, err := Gradient(func(p []float64) (float64, error) { return p[0] + p[1], nil })(params); err != nil {
		t.Fatal(err)
	}
	if params[0] != 1 || params[1] != 2 {
		t.Errorf("gradient mutated caller parameters: %v", params)
	}
}
