package transform

// DefaultStep is the central-difference step. Simulation noise at the
// solver tolerance divides by the step, so it sits well above the square
// root of typical integration tolerances.
const DefaultStep = 1e-4

// GradFunc evaluates the gradient of a scalar function.
type GradFunc func(params []float64) ([]float64, error)

// Gradient differentiates fn by central differences with DefaultStep.
func Gradient(fn Func) GradFunc {
	return GradientStep(fn, DefaultStep)
}

// GradientStep differentiates fn by central differences with step h. Each
// coordinate is perturbed on a private copy of the parameters; fn is called
// twice per coordinate.
func GradientStep(fn Func, h float64) GradFunc {
	return func(params []float64) ([]float64, error) {
		grad := make([]float64, len(params))
		probe := append([]float64(nil), params...)
		for i := range params {
			probe[i] = params[i] + h
			hi, err := fn(probe)
			if err != nil {
				return nil, err
			}
			probe[i] = params[i] - h
			lo, err := fn(probe)
			if err != nil {
				return nil, err
			}
			probe[i] = params[i]
			grad[i] = (hi - lo) / (2 * h)
		}
		return grad, nil
	}
}

// Partial returns the scalar derivative of fn along coordinate i.
func Partial(fn Func, i int) Func {
	return func(params []float64) (float64, error) {
		grad, err := GradientStep(fn, DefaultStep)(params)
		if err != nil {
			return 0, err
		}
		return grad[i], nil
	}
}
