package signal

import "math"

// DiscreteSignal is a piecewise-constant envelope defined by evenly spaced
// samples, modulated by a carrier. Sample k covers [Start+k*Dt, Start+(k+1)*Dt).
type DiscreteSignal struct {
	Samples []complex128
	Dt      float64
	Start   float64
	Freq    float64
	Phase   float64
}

// envelope returns the sample covering time t, clamping out-of-range times
// to the first or last sample so lookup never branches on validity.
func (d DiscreteSignal) envelope(t float64) complex128 {
	if len(d.Samples) == 0 {
		return 0
	}
	k := int(math.Floor((t - d.Start) / d.Dt))
	if k < 0 {
		k = 0
	}
	if k >= len(d.Samples) {
		k = len(d.Samples) - 1
	}
	return d.Samples[k]
}

// At returns the real drive coefficient at time t.
func (d DiscreteSignal) At(t float64) float64 {
	arg := 2*math.Pi*d.Freq*t + d.Phase
	v := d.envelope(t)
	return real(v)*math.Cos(arg) - imag(v)*math.Sin(arg)
}

// Continuous wraps the discrete envelope as a Signal sharing the same
// carrier, for use where a Signal is required.
func (d DiscreteSignal) Continuous() Signal {
	return Signal{Envelope: d.envelope, Freq: d.Freq, Phase: d.Phase}
}

// Sample discretizes the envelope of s into n samples of spacing dt
// starting at start. The carrier is carried over unchanged.
func Sample(s Signal, start, dt float64, n int) DiscreteSignal {
	samples := make([]complex128, n)
	for k := range samples {
		samples[k] = s.Envelope(start + (float64(k)+0.5)*dt)
	}
	return DiscreteSignal{Samples: samples, Dt: dt, Start: start, Freq: s.Freq, Phase: s.Phase}
}
