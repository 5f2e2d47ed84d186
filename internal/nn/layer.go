// Package nn implements a sequential feed-forward network together
// with its tangent-linear and adjoint operators.
//
// This package provides the building blocks for embedding a trained
// network inside a numerical optimization loop (such as variational
// data assimilation) that needs exact directional derivatives and
// their transposes with respect to both the input state and the
// trainable parameters:
//   - Layer interface: the capability set every layer variant supplies
//   - Dense: fully connected layer with an owned activation
//   - Normalisation: affine rescaling, no trainable parameters
//   - Dropout: stochastic masking, no trainable parameters
//   - Activations: Identity, Tanh, ReLU
//   - Network: an ordered chain of layers with a flat parameter vector
//
// Every component exposes three mutually consistent operators: the
// forward evaluation, its tangent-linear (directional derivative), and
// the adjoint, which is the exact transpose of the tangent-linear with
// respect to the standard inner product.
package nn

// Layer is the base interface for all layer variants.
//
// A layer maps an input vector of length InputSize to an output vector
// of length OutputSize, and owns a flat slice of ParameterCount
// trainable parameters (possibly empty). All per-call state is indexed
// by an ensemble member: an independent slot in a batch dimension of
// BatchCapacity columns, letting many input vectors be processed
// against the same layer without reallocation.
//
// The three operators are mathematically paired. TangentLinear is the
// directional derivative of Forward with respect to a joint
// perturbation (dp, dx) of parameters and input, evaluated at the
// point captured by the preceding Forward call for the same member.
// Adjoint is its exact transpose: it decomposes an output-space
// perturbation dy into parameter- and input-space contributions.
//
// Columns indexed by different members are logically independent and
// may be driven by different goroutines, provided each goroutine holds
// exclusive use of its member across a Forward→TangentLinear/Adjoint
// sequence. The parameter slice is shared and must not be written
// concurrently with any operator call.
type Layer interface {
	// Kind returns the persisted tag ("dense", "normalisation" or "dropout").
	Kind() string

	// InputSize returns the input feature dimension.
	InputSize() int

	// OutputSize returns the output feature dimension.
	OutputSize() int

	// BatchCapacity returns the number of ensemble member columns.
	BatchCapacity() int

	// ParameterCount returns the number of trainable parameters.
	ParameterCount() int

	// Parameters returns a copy of the flat parameter vector.
	Parameters() []float64

	// SetParameters overwrites the flat parameter vector.
	//
	// Returns ErrShapeMismatch if len(p) != ParameterCount().
	SetParameters(p []float64) error

	// Forward computes y from x for the given member and caches the
	// linearization point needed by TangentLinear and Adjoint. The
	// train flag only affects stochastic layers (Dropout). y may alias x.
	Forward(train bool, member int, x, y []float64) error

	// TangentLinear computes dy, the directional derivative of Forward
	// at the member's cached linearization point, for a joint
	// perturbation (dp, dx). dp must have length ParameterCount().
	//
	// Returns ErrUnpreparedState if the layer caches state and no
	// Forward call has populated it for this member.
	TangentLinear(member int, dp, dx, dy []float64) error

	// Adjoint decomposes the output-space perturbation dy into the
	// parameter-space contribution dp and the input-space contribution
	// dx. dy is consumed: its contents are overwritten during the call
	// and must not be relied upon afterwards.
	//
	// Same pre-condition as TangentLinear.
	Adjoint(member int, dy, dp, dx []float64) error
}
