package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// KindDropout is the persisted tag for Dropout layers.
const KindDropout = "dropout"

// Dropout applies stochastic masking with inverted scaling.
//
// In training mode Forward draws an i.i.d. mask per feature: each
// entry is 0 with probability rate, and 1/(1-rate) otherwise, so the
// expectation of the masked signal equals the unmasked one. In
// inference mode the mask is all ones and Forward is deterministic.
//
// The realized mask is cached per ensemble member and reused by
// TangentLinear and Adjoint, which are linear in the perturbation once
// the mask is fixed. Calling either before a Forward for the same
// member fails with ErrUnpreparedState rather than reading a stale or
// zero mask.
//
// ParameterCount is 0: the rate is configuration, not trainable.
type Dropout struct {
	size          int
	batchCapacity int
	rate          float64

	mask     [][]float64 // [batchCapacity][size], realized keep/drop multipliers
	prepared []bool
}

// NewDropout creates a Dropout layer. Input and output dimensions are
// both size; rate must lie in [0, 1).
func NewDropout(size int, rate float64, batchCapacity int) (*Dropout, error) {
	if size <= 0 || batchCapacity <= 0 {
		return nil, fmt.Errorf("NewDropout: size %d with batch capacity %d must be positive: %w",
			size, batchCapacity, ErrShapeMismatch)
	}
	if rate < 0 || rate >= 1 {
		return nil, fmt.Errorf("NewDropout: rate %v outside [0, 1)", rate)
	}
	return &Dropout{
		size:          size,
		batchCapacity: batchCapacity,
		rate:          rate,
		mask:          makeColumns(batchCapacity, size),
		prepared:      make([]bool, batchCapacity),
	}, nil
}

// Kind returns the persisted tag.
func (d *Dropout) Kind() string { return KindDropout }

// InputSize returns the feature dimension.
func (d *Dropout) InputSize() int { return d.size }

// OutputSize returns the feature dimension.
func (d *Dropout) OutputSize() int { return d.size }

// BatchCapacity returns the number of ensemble member columns.
func (d *Dropout) BatchCapacity() int { return d.batchCapacity }

// ParameterCount returns 0.
func (d *Dropout) ParameterCount() int { return 0 }

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 { return d.rate }

// Parameters returns an empty vector.
func (d *Dropout) Parameters() []float64 { return []float64{} }

// SetParameters accepts only an empty vector.
func (d *Dropout) SetParameters(p []float64) error {
	return checkLen("Dropout.SetParameters", "p", p, 0)
}

// Forward draws a fresh mask for the member (all ones when train is
// false) and computes y = mask*x element-wise. y may alias x.
func (d *Dropout) Forward(train bool, member int, x, y []float64) error {
	const op = "Dropout.Forward"
	if err := checkMember(op, member, d.batchCapacity); err != nil {
		return err
	}
	if err := checkLen(op, "x", x, d.size); err != nil {
		return err
	}
	if err := checkLen(op, "y", y, d.size); err != nil {
		return err
	}

	mask := d.mask[member]
	if train {
		keep := 1 / (1 - d.rate)
		for i := range mask {
			//nolint:gosec // math/rand is fine for dropout masks (not security-critical)
			if rand.Float64() < d.rate {
				mask[i] = 0
			} else {
				mask[i] = keep
			}
		}
	} else {
		for i := range mask {
			mask[i] = 1
		}
	}

	floats.MulTo(y, mask, x)
	d.prepared[member] = true
	return nil
}

// TangentLinear computes dy = mask*dx with the mask drawn by the
// preceding Forward for this member. dp must be empty.
func (d *Dropout) TangentLinear(member int, dp, dx, dy []float64) error {
	const op = "Dropout.TangentLinear"
	if err := checkMember(op, member, d.batchCapacity); err != nil {
		return err
	}
	if !d.prepared[member] {
		return fmt.Errorf("%s: member %d: %w", op, member, ErrUnpreparedState)
	}
	if err := checkLen(op, "dp", dp, 0); err != nil {
		return err
	}
	if err := checkLen(op, "dx", dx, d.size); err != nil {
		return err
	}
	if err := checkLen(op, "dy", dy, d.size); err != nil {
		return err
	}
	floats.MulTo(dy, d.mask[member], dx)
	return nil
}

// Adjoint computes dx = mask*dy; the diagonal mask is self-transpose.
// dp must be empty.
func (d *Dropout) Adjoint(member int, dy, dp, dx []float64) error {
	const op = "Dropout.Adjoint"
	if err := checkMember(op, member, d.batchCapacity); err != nil {
		return err
	}
	if !d.prepared[member] {
		return fmt.Errorf("%s: member %d: %w", op, member, ErrUnpreparedState)
	}
	if err := checkLen(op, "dy", dy, d.size); err != nil {
		return err
	}
	if err := checkLen(op, "dp", dp, 0); err != nil {
		return err
	}
	if err := checkLen(op, "dx", dx, d.size); err != nil {
		return err
	}
	floats.MulTo(dx, d.mask[member], dy)
	return nil
}
