package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// KindNormalisation is the persisted tag for Normalisation layers.
const KindNormalisation = "normalisation"

// Normalisation applies the affine rescaling y = alpha*x + beta
// element-wise, typically to map physical units onto the range the
// network was trained on (and back).
//
// alpha and beta are fixed configuration, not trainable parameters:
// ParameterCount is 0. The layer is exact at every point, so it keeps
// no linearization state and its tangent-linear and adjoint operators
// are valid without a prior Forward call.
type Normalisation struct {
	size          int
	batchCapacity int
	alpha         float64
	beta          float64
}

// NewNormalisation creates a Normalisation layer. Input and output
// dimensions are both size.
func NewNormalisation(size int, alpha, beta float64, batchCapacity int) (*Normalisation, error) {
	if size <= 0 || batchCapacity <= 0 {
		return nil, fmt.Errorf("NewNormalisation: size %d with batch capacity %d must be positive: %w",
			size, batchCapacity, ErrShapeMismatch)
	}
	return &Normalisation{
		size:          size,
		batchCapacity: batchCapacity,
		alpha:         alpha,
		beta:          beta,
	}, nil
}

// Kind returns the persisted tag.
func (n *Normalisation) Kind() string { return KindNormalisation }

// InputSize returns the feature dimension.
func (n *Normalisation) InputSize() int { return n.size }

// OutputSize returns the feature dimension.
func (n *Normalisation) OutputSize() int { return n.size }

// BatchCapacity returns the number of ensemble member columns.
func (n *Normalisation) BatchCapacity() int { return n.batchCapacity }

// ParameterCount returns 0.
func (n *Normalisation) ParameterCount() int { return 0 }

// Alpha returns the scale factor.
func (n *Normalisation) Alpha() float64 { return n.alpha }

// Beta returns the offset.
func (n *Normalisation) Beta() float64 { return n.beta }

// Parameters returns an empty vector.
func (n *Normalisation) Parameters() []float64 { return []float64{} }

// SetParameters accepts only an empty vector.
func (n *Normalisation) SetParameters(p []float64) error {
	return checkLen("Normalisation.SetParameters", "p", p, 0)
}

// Forward computes y = alpha*x + beta. y may alias x.
func (n *Normalisation) Forward(_ bool, member int, x, y []float64) error {
	const op = "Normalisation.Forward"
	if err := checkMember(op, member, n.batchCapacity); err != nil {
		return err
	}
	if err := checkLen(op, "x", x, n.size); err != nil {
		return err
	}
	if err := checkLen(op, "y", y, n.size); err != nil {
		return err
	}
	floats.ScaleTo(y, n.alpha, x)
	floats.AddConst(n.beta, y)
	return nil
}

// TangentLinear computes dy = alpha*dx. dp must be empty.
func (n *Normalisation) TangentLinear(member int, dp, dx, dy []float64) error {
	const op = "Normalisation.TangentLinear"
	if err := checkMember(op, member, n.batchCapacity); err != nil {
		return err
	}
	if err := checkLen(op, "dp", dp, 0); err != nil {
		return err
	}
	if err := checkLen(op, "dx", dx, n.size); err != nil {
		return err
	}
	if err := checkLen(op, "dy", dy, n.size); err != nil {
		return err
	}
	floats.ScaleTo(dy, n.alpha, dx)
	return nil
}

// Adjoint computes dx = alpha*dy. dp must be empty. dy is left intact:
// the operator is its own transpose up to the roles of dx and dy.
func (n *Normalisation) Adjoint(member int, dy, dp, dx []float64) error {
	const op = "Normalisation.Adjoint"
	if err := checkMember(op, member, n.batchCapacity); err != nil {
		return err
	}
	if err := checkLen(op, "dy", dy, n.size); err != nil {
		return err
	}
	if err := checkLen(op, "dp", dp, 0); err != nil {
		return err
	}
	if err := checkLen(op, "dx", dx, n.size); err != nil {
		return err
	}
	floats.ScaleTo(dx, n.alpha, dy)
	return nil
}
