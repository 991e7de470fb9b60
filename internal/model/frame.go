package model

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/averyparr/qpulse/internal/quantum"
)

const hermTol = 1e-10

// phase returns exp(i*x).
func phase(x float64) complex128 {
	return complex(math.Cos(x), math.Sin(x))
}

// Frame is a rotating reference frame defined by a Hermitian operator H_f.
// States are mapped into the frame by exp(+i*H_f*t) and generators pick up
// the corresponding rotation. The frame is stored diagonalized: diag holds
// the (real) eigenvalues and basis the eigenvector columns, with a nil
// basis when H_f was already diagonal.
type Frame struct {
	diag  []float64
	basis *mat.CDense
}

// FrameFromOperator diagonalizes a frame operator. Diagonal operators of
// any dimension and Hermitian 2x2 operators are supported; anything else is
// a configuration error reported here, at construction time.
func FrameFromOperator(op mat.CMatrix) (*Frame, error) {
	r, c := op.Dims()
	if r != c {
		return nil, fmt.Errorf("model: frame operator %dx%d: %w", r, c, quantum.ErrDimensionMismatch)
	}
	if !quantum.IsHermitian(op, hermTol) {
		return nil, fmt.Errorf("model: frame operator: %w", quantum.ErrNotHermitian)
	}

	if quantum.IsDiagonal(op, hermTol) {
		diag := make([]float64, r)
		for i := range diag {
			diag[i] = real(op.At(i, i))
		}
		return &Frame{diag: diag}, nil
	}

	if r != 2 {
		return nil, fmt.Errorf("model: %w (dim %d)", ErrFrameDiagonalization, r)
	}
	return frame2x2(op), nil
}

// frame2x2 computes the eigendecomposition of a non-diagonal Hermitian 2x2
// operator in closed form.
func frame2x2(op mat.CMatrix) *Frame {
	a := real(op.At(0, 0))
	c := real(op.At(1, 1))
	b := op.At(0, 1)

	mean := (a + c) / 2
	half := (a - c) / 2
	radius := math.Sqrt(half*half + real(b)*real(b) + imag(b)*imag(b))
	hi := mean + radius
	lo := mean - radius

	// Eigenvector for hi is (b, hi-a); its orthogonal complement spans lo.
	v1 := quantum.State{b, complex(hi-a, 0)}
	v2 := quantum.State{complex(-(hi - a), 0), cmplx.Conj(b)}
	n1 := complex(1/v1.Norm(), 0)
	n2 := complex(1/v2.Norm(), 0)

	basis := mat.NewCDense(2, 2, []complex128{
		n1 * v1[0], n2 * v2[0],
		n1 * v1[1], n2 * v2[1],
	})
	return &Frame{diag: []float64{hi, lo}, basis: basis}
}

func (f *Frame) Dim() int { return len(f.diag) }

// intoBasis rotates an operator into the frame eigenbasis: V^dag * a * V.
func (f *Frame) intoBasis(a mat.CMatrix) *mat.CDense {
	if f.basis == nil {
		return quantum.Clone(a)
	}
	return quantum.Mul(quantum.Dagger(f.basis), quantum.Mul(a, f.basis))
}

// IntoFrame maps a lab-frame state into the rotating frame at time t.
func (f *Frame) IntoFrame(t float64, y quantum.State) quantum.State {
	out := y.Clone()
	if f.basis != nil {
		out = quantum.Apply(quantum.Dagger(f.basis), out)
	}
	for i := range out {
		out[i] *= cmplx.Exp(complex(0, f.diag[i]*t))
	}
	return out
}

// OutOfFrame maps a rotating-frame state back to the lab frame at time t.
func (f *Frame) OutOfFrame(t float64, y quantum.State) quantum.State {
	out := y.Clone()
	for i := range out {
		out[i] *= cmplx.Exp(complex(0, -f.diag[i]*t))
	}
	if f.basis != nil {
		out = quantum.Apply(f.basis, out)
	}
	return out
}
