package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Activation kind tags as they appear in persisted network files.
const (
	ActivationLinear = "linear"
	ActivationTanh   = "tanh"
	ActivationReLU   = "relu"
)

// Activation is an element-wise function applied to a layer's
// pre-activation vector, together with its tangent-linear and adjoint
// operators.
//
// Forward evaluates the function and, for nonlinear variants, caches
// the local derivative at the evaluation point for the given ensemble
// member. TangentLinear and Adjoint multiply by that cached derivative;
// since the Jacobian of an element-wise map is diagonal, the two are
// the same multiplication and the operator is self-transpose.
//
// TangentLinear and Adjoint for member m are only meaningful after a
// Forward call for m; the owning layer enforces this pre-condition.
//
// All three operators accept dst aliasing src.
type Activation interface {
	// Kind returns the persisted tag ("linear", "tanh" or "relu").
	Kind() string

	// Forward computes y = A(z) element-wise and caches A'(z) for member.
	Forward(member int, z, y []float64)

	// TangentLinear computes dy = A'(z) * dz element-wise, where A'(z)
	// was cached by the last Forward call for member.
	TangentLinear(member int, dz, dy []float64)

	// Adjoint computes dz = A'(z) * dy element-wise. The diagonal
	// Jacobian makes this identical to TangentLinear.
	Adjoint(member int, dy, dz []float64)
}

// NewActivation constructs an activation by its persisted tag.
//
// Returns ErrUnknownActivationKind for unrecognized tags.
func NewActivation(kind string, size, batchCapacity int) (Activation, error) {
	switch kind {
	case ActivationLinear:
		return NewIdentity(), nil
	case ActivationTanh:
		return NewTanh(size, batchCapacity), nil
	case ActivationReLU:
		return NewReLU(size, batchCapacity), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivationKind, kind)
	}
}

// Identity is the linear (pass-through) activation.
//
// Its derivative is 1 everywhere, so it keeps no linearization cache
// and all three operators are plain copies.
type Identity struct{}

// NewIdentity creates a new Identity activation.
func NewIdentity() *Identity {
	return &Identity{}
}

// Kind returns the persisted tag.
func (*Identity) Kind() string { return ActivationLinear }

// Forward copies z into y.
func (*Identity) Forward(_ int, z, y []float64) {
	copy(y, z)
}

// TangentLinear copies dz into dy.
func (*Identity) TangentLinear(_ int, dz, dy []float64) {
	copy(dy, dz)
}

// Adjoint copies dy into dz.
func (*Identity) Adjoint(_ int, dy, dz []float64) {
	copy(dz, dy)
}

// Tanh is the hyperbolic tangent activation.
//
// Forward caches the derivative 1 - tanh(z)^2 per ensemble member; the
// tangent-linear and adjoint operators multiply by that cache.
type Tanh struct {
	linearization [][]float64 // [batchCapacity][size], A'(z) at the last Forward per member
}

// NewTanh creates a new Tanh activation with per-member derivative
// storage for the given feature size and batch capacity.
func NewTanh(size, batchCapacity int) *Tanh {
	lin := make([][]float64, batchCapacity)
	for m := range lin {
		lin[m] = make([]float64, size)
	}
	return &Tanh{linearization: lin}
}

// Kind returns the persisted tag.
func (*Tanh) Kind() string { return ActivationTanh }

// Forward computes y = tanh(z) and caches 1 - y^2 for member.
func (t *Tanh) Forward(member int, z, y []float64) {
	lin := t.linearization[member]
	for i, zi := range z {
		yi := math.Tanh(zi)
		y[i] = yi
		lin[i] = 1 - yi*yi
	}
}

// TangentLinear computes dy = (1 - tanh(z)^2) * dz.
func (t *Tanh) TangentLinear(member int, dz, dy []float64) {
	floats.MulTo(dy, t.linearization[member], dz)
}

// Adjoint computes dz = (1 - tanh(z)^2) * dy.
func (t *Tanh) Adjoint(member int, dy, dz []float64) {
	floats.MulTo(dz, t.linearization[member], dy)
}

// ReLU is the rectified linear activation, y = max(z, 0).
//
// The cached derivative is 1 where z > 0 and 0 elsewhere. The
// subgradient at exactly z == 0 is taken as 0: the non-differentiable
// point is assigned to the "off" branch. This is a boundary policy,
// kept for compatibility with the models this package loads.
type ReLU struct {
	linearization [][]float64 // [batchCapacity][size]
}

// NewReLU creates a new ReLU activation with per-member derivative
// storage for the given feature size and batch capacity.
func NewReLU(size, batchCapacity int) *ReLU {
	lin := make([][]float64, batchCapacity)
	for m := range lin {
		lin[m] = make([]float64, size)
	}
	return &ReLU{linearization: lin}
}

// Kind returns the persisted tag.
func (*ReLU) Kind() string { return ActivationReLU }

// Forward computes y = max(z, 0) and caches the branch indicator for member.
func (r *ReLU) Forward(member int, z, y []float64) {
	lin := r.linearization[member]
	for i, zi := range z {
		if zi > 0 {
			y[i] = zi
			lin[i] = 1
		} else {
			y[i] = 0
			lin[i] = 0
		}
	}
}

// TangentLinear zeroes dz where the forward input was non-positive.
func (r *ReLU) TangentLinear(member int, dz, dy []float64) {
	floats.MulTo(dy, r.linearization[member], dz)
}

// Adjoint zeroes dy where the forward input was non-positive.
func (r *ReLU) Adjoint(member int, dy, dz []float64) {
	floats.MulTo(dz, r.linearization[member], dy)
}
