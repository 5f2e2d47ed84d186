package nn

import (
	"fmt"
	"math/rand"
)

// Parameter initialisation policies.
const (
	// InitZero sets every parameter to 0.
	InitZero = "zero"
	// InitUniform draws every parameter from U[0, 1).
	InitUniform = "uniform"
)

// initialiseVector fills p according to the named policy.
func initialiseVector(p []float64, policy string) error {
	switch policy {
	case InitZero:
		for i := range p {
			p[i] = 0
		}
	case InitUniform:
		for i := range p {
			//nolint:gosec // math/rand is fine for weight initialization (not security-critical)
			p[i] = rand.Float64()
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownInitPolicy, policy)
	}
	return nil
}
