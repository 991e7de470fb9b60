// Package analysis extracts oscillation frequencies from population
// trajectories, e.g. the Rabi frequency of a driven qubit.
package analysis

import (
	"math"
	"math/cmplx"
)

func fft(data []complex128) []complex128 {
	n := len(data)
	if n <= 1 {
		out := make([]complex128, n)
		copy(out, data)
		return out
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		out[k] = feven[k] + w*fodd[k]
		out[k+n/2] = feven[k] - w*fodd[k]
	}
	return out
}

// PowerSpectrum returns the magnitude of the first half of the DFT.
// Input is zero-padded to a power of two, with the mean removed so the
// DC bin does not swamp the oscillation peaks.
func PowerSpectrum(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	n := 1
	for n < len(values) {
		n *= 2
	}
	padded := make([]complex128, n)
	for i, v := range values {
		padded[i] = complex(v-mean, 0)
	}

	dft := fft(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(dft[i])
	}
	return ps
}

// DominantFreq returns the frequency of the strongest spectral peak in
// a uniformly sampled trajectory. Returns 0 when the input is too
// short to resolve a peak.
func DominantFreq(times, values []float64) float64 {
	if len(times) < 4 || len(times) != len(values) {
		return 0
	}
	dt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	if dt <= 0 {
		return 0
	}

	ps := PowerSpectrum(values)

	maxIdx := 0
	maxPower := 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 {
		return 0
	}

	n := len(ps) * 2
	return float64(maxIdx) / (float64(n) * dt)
}
