// Package signal provides time-dependent drive coefficients for Hamiltonian
// terms: a complex envelope modulated by a carrier, discrete sampled
// envelopes, and sums and lists of both.
//
// Envelope evaluation is branch-free in the time argument so that signals
// stay safe under transformation layers that re-execute them on arbitrary
// time grids.
package signal

import "math"

// Envelope is a complex-valued envelope of time.
type Envelope func(t float64) complex128

// Signal is an envelope modulated by a carrier: its real output at time t
// is Re[env(t) * exp(i*(2*pi*freq*t + phase))].
type Signal struct {
	Envelope Envelope
	Freq     float64
	Phase    float64
}

// At returns the real drive coefficient at time t.
func (s Signal) At(t float64) float64 {
	arg := 2*math.Pi*s.Freq*t + s.Phase
	v := s.Envelope(t)
	return real(v)*math.Cos(arg) - imag(v)*math.Sin(arg)
}

// Constant returns a carrier-free signal with fixed value v.
func Constant(v float64) Signal {
	return Signal{Envelope: func(float64) complex128 { return complex(v, 0) }}
}

// GaussianEnvelope evaluates a Gaussian bell of the given amplitude, width
// and center at time t. All parameters are explicit arguments; there is no
// captured state. The ratio (t-center)/width is formed first so the result
// stays finite for widths down to the smallest positive float64. Zero or
// negative width is out of contract.
func GaussianEnvelope(amp, width, center, t float64) complex128 {
	z := (t - center) / width
	return complex(amp*math.Exp(-z*z/2), 0)
}

// Gaussian returns a Gaussian pulse bound to a carrier frequency. The
// envelope parameters are copied into the signal at construction; the
// returned value is immutable.
func Gaussian(amp, width, center, freq float64) Signal {
	return Signal{
		Envelope: func(t float64) complex128 {
			return GaussianEnvelope(amp, width, center, t)
		},
		Freq: freq,
	}
}

// List is an ordered sequence of signals, one per Hamiltonian term.
type List []Signal

// At returns the drive coefficient of every signal at time t.
func (l List) At(t float64) []float64 {
	out := make([]float64, len(l))
	for i, s := range l {
		out[i] = s.At(t)
	}
	return out
}

// Sum is a signal whose output is the sum of its components.
type Sum []Signal

func (s Sum) At(t float64) float64 {
	total := 0.0
	for _, sig := range s {
		total += sig.At(t)
	}
	return total
}
