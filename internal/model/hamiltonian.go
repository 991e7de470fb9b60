// Package model assembles Hamiltonians from a static operator, signal-driven
// control terms and an optional rotating frame, and exposes the resulting
// Schrodinger generator -i*H(t) to the solver.
//
// A Hamiltonian is an immutable value produced by a Builder. Evaluation
// functions that need a per-call configuration build a fresh value each
// call; nothing here is shared or mutated after Build, which is what makes
// repeated and out-of-order re-execution by transformation wrappers safe.
package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/averyparr/qpulse/internal/quantum"
	"github.com/averyparr/qpulse/internal/signal"
)

// Hamiltonian is H(t) = H_static + sum_j s_j(t) * H_j, optionally expressed
// in a rotating frame. All operators are stored in the frame eigenbasis.
type Hamiltonian struct {
	dim    int
	static *mat.CDense
	terms  []*mat.CDense
	sigs   signal.List
	frame  *Frame
}

// Builder accumulates the pieces of a Hamiltonian and validates them in
// Build. The zero Builder is ready to use.
type Builder struct {
	static     mat.CMatrix
	terms      []mat.CMatrix
	sigs       []signal.Signal
	frameOp    mat.CMatrix
	driftFrame bool
}

// NewBuilder starts a build from the static (drift) operator. A nil static
// term is allowed when drive terms are added.
func NewBuilder(static mat.CMatrix) *Builder {
	return &Builder{static: static}
}

// AddTerm appends a drive term with its signal.
func (b *Builder) AddTerm(op mat.CMatrix, s signal.Signal) *Builder {
	b.terms = append(b.terms, op)
	b.sigs = append(b.sigs, s)
	return b
}

// InFrame requests a rotating frame defined by the given Hermitian operator.
func (b *Builder) InFrame(op mat.CMatrix) *Builder {
	b.frameOp = op
	b.driftFrame = false
	return b
}

// InDriftFrame requests the rotating frame of the static operator.
func (b *Builder) InDriftFrame() *Builder {
	b.driftFrame = true
	b.frameOp = nil
	return b
}

// Build validates dimensions, Hermiticity and the frame choice, and returns
// an independent Hamiltonian value. Operators are copied; the caller's
// matrices are never retained.
func (b *Builder) Build() (*Hamiltonian, error) {
	if b.static == nil && len(b.terms) == 0 {
		return nil, ErrNoOperators
	}
	if len(b.sigs) != len(b.terms) {
		return nil, ErrSignalCount
	}

	dim := 0
	if b.static != nil {
		r, c := b.static.Dims()
		if r != c {
			return nil, fmt.Errorf("model: static operator %dx%d: %w", r, c, quantum.ErrDimensionMismatch)
		}
		if !quantum.IsHermitian(b.static, hermTol) {
			return nil, fmt.Errorf("model: static operator: %w", quantum.ErrNotHermitian)
		}
		dim = r
	}
	for i, op := range b.terms {
		r, c := op.Dims()
		if r != c {
			return nil, fmt.Errorf("model: operator %d is %dx%d: %w", i, r, c, quantum.ErrDimensionMismatch)
		}
		if dim == 0 {
			dim = r
		}
		if r != dim {
			return nil, fmt.Errorf("model: operator %d dim %d, want %d: %w", i, r, dim, quantum.ErrDimensionMismatch)
		}
		if !quantum.IsHermitian(op, hermTol) {
			return nil, fmt.Errorf("model: operator %d: %w", i, quantum.ErrNotHermitian)
		}
	}

	h := &Hamiltonian{dim: dim, sigs: append(signal.List(nil), b.sigs...)}

	frameOp := b.frameOp
	if b.driftFrame {
		if b.static == nil {
			return nil, fmt.Errorf("model: drift frame requested without a static operator: %w", ErrNoOperators)
		}
		frameOp = b.static
	}
	if frameOp != nil {
		frame, err := FrameFromOperator(frameOp)
		if err != nil {
			return nil, err
		}
		if frame.Dim() != dim {
			return nil, fmt.Errorf("model: frame dim %d, want %d: %w", frame.Dim(), dim, quantum.ErrDimensionMismatch)
		}
		h.frame = frame
	}

	copyIn := func(op mat.CMatrix) *mat.CDense {
		if h.frame != nil {
			return h.frame.intoBasis(op)
		}
		return quantum.Clone(op)
	}
	if b.static != nil {
		h.static = copyIn(b.static)
	}
	h.terms = make([]*mat.CDense, len(b.terms))
	for i, op := range b.terms {
		h.terms[i] = copyIn(op)
	}
	return h, nil
}

func (h *Hamiltonian) Dim() int { return h.dim }

// Frame returns the rotating frame, or nil when evolving in the lab frame.
func (h *Hamiltonian) Frame() *Frame { return h.frame }

// Generator evaluates the Schrodinger generator at time t: -i*H(t) rotated
// into the frame, in the frame eigenbasis. A new matrix is returned on
// every call.
func (h *Hamiltonian) Generator(t float64) *mat.CDense {
	gen := mat.NewCDense(h.dim, h.dim, nil)
	if h.static != nil {
		quantum.AddScaled(gen, -1i, h.static)
	}
	for j, op := range h.terms {
		quantum.AddScaled(gen, complex(0, -h.sigs[j].At(t)), op)
	}

	if h.frame == nil {
		return gen
	}

	// exp(+iFt) * gen * exp(-iFt) + iF, elementwise for a diagonal frame.
	d := h.frame.diag
	for j := 0; j < h.dim; j++ {
		for k := 0; k < h.dim; k++ {
			gen.Set(j, k, phase((d[j]-d[k])*t)*gen.At(j, k))
		}
		gen.Set(j, j, gen.At(j, j)+complex(0, d[j]))
	}
	return gen
}

// RHS evaluates the right-hand side of the Schrodinger equation,
// y' = Generator(t)*y. It is a pure function of its arguments.
func (h *Hamiltonian) RHS(t float64, y quantum.State) quantum.State {
	return quantum.Apply(h.Generator(t), y)
}

// IntoFrame maps a lab-frame state into the model's frame at time t.
func (h *Hamiltonian) IntoFrame(t float64, y quantum.State) quantum.State {
	if h.frame == nil {
		return y.Clone()
	}
	return h.frame.IntoFrame(t, y)
}

// OutOfFrame maps a frame state back to the lab frame at time t.
func (h *Hamiltonian) OutOfFrame(t float64, y quantum.State) quantum.State {
	if h.frame == nil {
		return y.Clone()
	}
	return h.frame.OutOfFrame(t, y)
}
