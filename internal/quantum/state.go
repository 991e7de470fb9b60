package quantum

import (
	"math"
	"math/cmplx"
)

// State is a complex amplitude vector.
type State []complex128

// Ket returns the computational basis state |k> of the given dimension.
func Ket(k, dim int) State {
	s := make(State, dim)
	s[k] = 1
	return s
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}

// Prob returns the occupation probability |s[k]|^2 of basis state k.
func (s State) Prob(k int) float64 {
	v := s[k]
	return real(v)*real(v) + imag(v)*imag(v)
}

// Inner returns <a|b>, conjugating a.
func Inner(a, b State) complex128 {
	var sum complex128
	for i := range a {
		sum += cmplx.Conj(a[i]) * b[i]
	}
	return sum
}

// EqualApprox reports whether a and b agree elementwise within tol.
func EqualApprox(a, b State, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if cmplx.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
