package quantum

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// FromLabel builds the single-qubit operator named by a Pauli label.
// Recognized labels are "I", "X", "Y" and "Z".
func FromLabel(label string) (*mat.CDense, error) {
	switch label {
	case "I":
		return mat.NewCDense(2, 2, []complex128{1, 0, 0, 1}), nil
	case "X":
		return mat.NewCDense(2, 2, []complex128{0, 1, 1, 0}), nil
	case "Y":
		return mat.NewCDense(2, 2, []complex128{0, -1i, 1i, 0}), nil
	case "Z":
		return mat.NewCDense(2, 2, []complex128{1, 0, 0, -1}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
}

// MustFromLabel is FromLabel for fixed labels known at compile time.
func MustFromLabel(label string) *mat.CDense {
	op, err := FromLabel(label)
	if err != nil {
		panic(err)
	}
	return op
}

// Scaled returns c*a as a new matrix.
func Scaled(c complex128, a mat.CMatrix) *mat.CDense {
	r, cols := a.Dims()
	out := mat.NewCDense(r, cols, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, c*a.At(i, j))
		}
	}
	return out
}

// AddScaled accumulates dst += c*a in place.
func AddScaled(dst *mat.CDense, c complex128, a mat.CMatrix) {
	r, cols := dst.Dims()
	ar, ac := a.Dims()
	if ar != r || ac != cols {
		panic(ErrDimensionMismatch)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			dst.Set(i, j, dst.At(i, j)+c*a.At(i, j))
		}
	}
}

// Apply returns a*y as a new state.
func Apply(a mat.CMatrix, y State) State {
	r, c := a.Dims()
	if c != len(y) {
		panic(ErrDimensionMismatch)
	}
	out := make(State, r)
	for i := 0; i < r; i++ {
		var sum complex128
		for j := 0; j < c; j++ {
			sum += a.At(i, j) * y[j]
		}
		out[i] = sum
	}
	return out
}

// Mul returns the matrix product a*b as a new matrix.
func Mul(a, b mat.CMatrix) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		panic(ErrDimensionMismatch)
	}
	out := mat.NewCDense(ar, bc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < bc; j++ {
			var sum complex128
			for k := 0; k < ac; k++ {
				sum += a.At(i, k) * b.At(k, j)
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// Clone returns an independent copy of a.
func Clone(a mat.CMatrix) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, a.At(i, j))
		}
	}
	return out
}

// Dagger returns the conjugate transpose of a as a new matrix.
func Dagger(a mat.CMatrix) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(c, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(j, i, cmplx.Conj(a.At(i, j)))
		}
	}
	return out
}

// IsHermitian reports whether a equals its conjugate transpose within tol.
func IsHermitian(a mat.CMatrix, tol float64) bool {
	r, c := a.Dims()
	if r != c {
		return false
	}
	for i := 0; i < r; i++ {
		for j := i; j < c; j++ {
			if cmplx.Abs(a.At(i, j)-cmplx.Conj(a.At(j, i))) > tol {
				return false
			}
		}
	}
	return true
}

// IsDiagonal reports whether every off-diagonal entry of a is below tol.
func IsDiagonal(a mat.CMatrix, tol float64) bool {
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if i != j && cmplx.Abs(a.At(i, j)) > tol {
				return false
			}
		}
	}
	return true
}

// OperatorsEqualApprox reports elementwise agreement of a and b within tol.
func OperatorsEqualApprox(a, b mat.CMatrix, tol float64) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			if cmplx.Abs(a.At(i, j)-b.At(i, j)) > tol {
				return false
			}
		}
	}
	return true
}
