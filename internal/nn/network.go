package nn

import (
	"fmt"
)

// Network is an ordered chain of layers driven as one operator.
//
// The network owns the global flat parameter vector addressing scheme:
// each layer is assigned a contiguous address range by a left-to-right
// scan accumulating parameter counts, and Parameters/SetParameters
// gather and scatter across those ranges. Layers with no trainable
// parameters contribute empty ranges.
//
// The three operators compose the per-layer operators along the chain.
// Forward and TangentLinear run front to back; Adjoint runs back to
// front, collecting each layer's parameter contribution and threading
// the state perturbation backward to the network input. Intermediate
// vectors at each layer boundary live in arenas owned by the network,
// indexed by (boundary, member), so no layer ever writes into another
// layer's storage.
//
// Members are processed one at a time: a TangentLinear or Adjoint call
// for member m linearizes around the state captured by the last
// Forward call for m, and is only valid while the parameters and that
// forward state are unchanged. Different members are independent and
// may be driven by different goroutines (one goroutine per member);
// the parameter vector is the only shared state and must not be
// written concurrently with operator calls.
type Network struct {
	batchCapacity  int
	layers         []Layer
	offsets        []int // offsets[i] is the parameter range start of layer i; len(layers)+1 entries
	parameterCount int

	// Boundary arenas: buffer k holds layer k's output (= layer k+1's
	// input) for a member. One arena per operator so the three chains
	// never clobber each other's intermediates.
	forwardBuffers [][][]float64
	tangentBuffers [][][]float64
	adjointBuffers [][][]float64

	prepared []bool
}

// NewNetwork assembles a network from explicit layers.
//
// Every layer must have been built with the same batch capacity, and
// consecutive layers must chain: layers[i].OutputSize() ==
// layers[i+1].InputSize(). Violations fail with ErrShapeMismatch.
func NewNetwork(batchCapacity int, layers ...Layer) (*Network, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("NewNetwork: no layers: %w", ErrShapeMismatch)
	}
	if batchCapacity <= 0 {
		return nil, fmt.Errorf("NewNetwork: batch capacity %d must be positive: %w", batchCapacity, ErrShapeMismatch)
	}

	for i, layer := range layers {
		if layer.BatchCapacity() != batchCapacity {
			return nil, fmt.Errorf("NewNetwork: layer %d has batch capacity %d, network has %d: %w",
				i, layer.BatchCapacity(), batchCapacity, ErrShapeMismatch)
		}
		if i > 0 && layers[i-1].OutputSize() != layer.InputSize() {
			return nil, fmt.Errorf("NewNetwork: layer %d output size %d does not chain to layer %d input size %d: %w",
				i-1, layers[i-1].OutputSize(), i, layer.InputSize(), ErrShapeMismatch)
		}
	}

	offsets := make([]int, len(layers)+1)
	for i, layer := range layers {
		offsets[i+1] = offsets[i] + layer.ParameterCount()
	}

	n := &Network{
		batchCapacity:  batchCapacity,
		layers:         layers,
		offsets:        offsets,
		parameterCount: offsets[len(layers)],
		forwardBuffers: makeBoundaryArena(layers, batchCapacity),
		tangentBuffers: makeBoundaryArena(layers, batchCapacity),
		adjointBuffers: makeBoundaryArena(layers, batchCapacity),
		prepared:       make([]bool, batchCapacity),
	}
	return n, nil
}

// NewDenseNetwork builds a chain of Dense layers programmatically.
//
// sizes lists the feature dimensions along the chain, so len(sizes)-1
// layers are built: sizes[i] -> sizes[i+1]. activations and inits name
// the activation kind and initialisation policy per layer and must
// each have len(sizes)-1 entries.
//
// Example:
//
//	net, err := nn.NewDenseNetwork(8,
//	    []int{3, 4, 2},
//	    []string{nn.ActivationTanh, nn.ActivationLinear},
//	    []string{nn.InitUniform, nn.InitZero})
func NewDenseNetwork(batchCapacity int, sizes []int, activations, inits []string) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("NewDenseNetwork: need at least 2 sizes, got %d: %w", len(sizes), ErrShapeMismatch)
	}
	numLayers := len(sizes) - 1
	if len(activations) != numLayers {
		return nil, fmt.Errorf("NewDenseNetwork: %d activations for %d layers: %w", len(activations), numLayers, ErrShapeMismatch)
	}
	if len(inits) != numLayers {
		return nil, fmt.Errorf("NewDenseNetwork: %d initialisation policies for %d layers: %w", len(inits), numLayers, ErrShapeMismatch)
	}

	layers := make([]Layer, numLayers)
	for i := 0; i < numLayers; i++ {
		dense, err := NewDense(sizes[i], sizes[i+1], activations[i], batchCapacity)
		if err != nil {
			return nil, fmt.Errorf("NewDenseNetwork: layer %d: %w", i, err)
		}
		if err := dense.Initialise(inits[i]); err != nil {
			return nil, fmt.Errorf("NewDenseNetwork: layer %d: %w", i, err)
		}
		layers[i] = dense
	}
	return NewNetwork(batchCapacity, layers...)
}

// InputSize returns the first layer's input dimension.
func (n *Network) InputSize() int { return n.layers[0].InputSize() }

// OutputSize returns the last layer's output dimension.
func (n *Network) OutputSize() int { return n.layers[len(n.layers)-1].OutputSize() }

// BatchCapacity returns the number of ensemble member columns.
func (n *Network) BatchCapacity() int { return n.batchCapacity }

// ParameterCount returns the total number of trainable parameters.
func (n *Network) ParameterCount() int { return n.parameterCount }

// Len returns the number of layers.
func (n *Network) Len() int { return len(n.layers) }

// Layer returns the layer at the given index.
//
// Panics if index is out of bounds.
func (n *Network) Layer(index int) Layer {
	if index < 0 || index >= len(n.layers) {
		panic("Network.Layer: index out of bounds")
	}
	return n.layers[index]
}

// ParameterRange returns the [start, end) address range of the layer's
// parameters within the global flat vector. Layers with no trainable
// parameters have start == end.
func (n *Network) ParameterRange(index int) (start, end int) {
	if index < 0 || index >= len(n.layers) {
		panic("Network.ParameterRange: index out of bounds")
	}
	return n.offsets[index], n.offsets[index+1]
}

// Parameters gathers the per-layer parameter slices into one flat
// vector of length ParameterCount().
func (n *Network) Parameters() []float64 {
	out := make([]float64, n.parameterCount)
	for i, layer := range n.layers {
		copy(out[n.offsets[i]:n.offsets[i+1]], layer.Parameters())
	}
	return out
}

// SetParameters scatters the flat vector across the layers' address
// ranges.
func (n *Network) SetParameters(p []float64) error {
	if err := checkLen("Network.SetParameters", "p", p, n.parameterCount); err != nil {
		return err
	}
	for i, layer := range n.layers {
		if err := layer.SetParameters(p[n.offsets[i]:n.offsets[i+1]]); err != nil {
			return fmt.Errorf("Network.SetParameters: layer %d: %w", i, err)
		}
	}
	return nil
}

// KerasParameters returns the parameters in the training framework's
// export order, layer by layer (kernel before bias within each Dense
// layer). Layers without trainable parameters contribute nothing.
func (n *Network) KerasParameters() []float64 {
	out := make([]float64, 0, n.parameterCount)
	for _, layer := range n.layers {
		if dense, ok := layer.(*Dense); ok {
			out = append(out, dense.KerasParameters()...)
		}
	}
	return out
}

// Initialise applies a parameter initialisation policy to every layer
// that has trainable parameters.
func (n *Network) Initialise(policy string) error {
	for i, layer := range n.layers {
		init, ok := layer.(interface{ Initialise(string) error })
		if !ok {
			continue
		}
		if err := init.Initialise(policy); err != nil {
			return fmt.Errorf("Network.Initialise: layer %d: %w", i, err)
		}
	}
	return nil
}

// Forward chains the layers' forward operators for one member,
// populating every layer's linearization caches along the way. The
// train flag only affects stochastic layers.
func (n *Network) Forward(train bool, member int, x, y []float64) error {
	const op = "Network.Forward"
	if err := checkMember(op, member, n.batchCapacity); err != nil {
		return err
	}
	if err := checkLen(op, "x", x, n.InputSize()); err != nil {
		return err
	}
	if err := checkLen(op, "y", y, n.OutputSize()); err != nil {
		return err
	}

	last := len(n.layers) - 1
	if last == 0 {
		if err := n.layers[0].Forward(train, member, x, y); err != nil {
			return err
		}
		n.prepared[member] = true
		return nil
	}

	cur := x
	for k, layer := range n.layers {
		dst := y
		if k < last {
			dst = n.forwardBuffers[k][member]
		}
		if err := layer.Forward(train, member, cur, dst); err != nil {
			return fmt.Errorf("%s: layer %d: %w", op, k, err)
		}
		cur = dst
	}
	n.prepared[member] = true
	return nil
}

// TangentLinear computes dy, the directional derivative of the whole
// chain for a joint perturbation (dp, dx), where dp spans the global
// flat parameter vector and is sliced per layer's address range.
//
// Pre-condition: Forward already ran for this member with the current
// parameter values; otherwise ErrUnpreparedState.
func (n *Network) TangentLinear(member int, dp, dx, dy []float64) error {
	const op = "Network.TangentLinear"
	if err := checkMember(op, member, n.batchCapacity); err != nil {
		return err
	}
	if !n.prepared[member] {
		return fmt.Errorf("%s: member %d: %w", op, member, ErrUnpreparedState)
	}
	if err := checkLen(op, "dp", dp, n.parameterCount); err != nil {
		return err
	}
	if err := checkLen(op, "dx", dx, n.InputSize()); err != nil {
		return err
	}
	if err := checkLen(op, "dy", dy, n.OutputSize()); err != nil {
		return err
	}

	last := len(n.layers) - 1
	if last == 0 {
		return n.layers[0].TangentLinear(member, dp, dx, dy)
	}

	cur := dx
	for k, layer := range n.layers {
		dst := dy
		if k < last {
			dst = n.tangentBuffers[k][member]
		}
		if err := layer.TangentLinear(member, dp[n.offsets[k]:n.offsets[k+1]], cur, dst); err != nil {
			return fmt.Errorf("%s: layer %d: %w", op, k, err)
		}
		cur = dst
	}
	return nil
}

// Adjoint decomposes the output-space perturbation dy into the
// parameter-space contribution dp and the input-space contribution dx
// by running the chain in reverse layer order. Each layer's dp slice
// is written exactly once; the state perturbation threads backward
// through the boundary arena until the first layer yields dx.
//
// dy is consumed: the per-layer adjoints overwrite it in place.
//
// Same pre-condition as TangentLinear.
func (n *Network) Adjoint(member int, dy, dp, dx []float64) error {
	const op = "Network.Adjoint"
	if err := checkMember(op, member, n.batchCapacity); err != nil {
		return err
	}
	if !n.prepared[member] {
		return fmt.Errorf("%s: member %d: %w", op, member, ErrUnpreparedState)
	}
	if err := checkLen(op, "dy", dy, n.OutputSize()); err != nil {
		return err
	}
	if err := checkLen(op, "dp", dp, n.parameterCount); err != nil {
		return err
	}
	if err := checkLen(op, "dx", dx, n.InputSize()); err != nil {
		return err
	}

	last := len(n.layers) - 1
	if last == 0 {
		return n.layers[0].Adjoint(member, dy, dp, dx)
	}

	cur := dy
	for k := last; k >= 0; k-- {
		dst := dx
		if k > 0 {
			dst = n.adjointBuffers[k-1][member]
		}
		if err := n.layers[k].Adjoint(member, cur, dp[n.offsets[k]:n.offsets[k+1]], dst); err != nil {
			return fmt.Errorf("%s: layer %d: %w", op, k, err)
		}
		cur = dst
	}
	return nil
}

// makeBoundaryArena allocates one per-member buffer per layer
// boundary; boundary k is sized to layer k's output.
func makeBoundaryArena(layers []Layer, batchCapacity int) [][][]float64 {
	if len(layers) < 2 {
		return nil
	}
	arena := make([][][]float64, len(layers)-1)
	for k := range arena {
		arena[k] = makeColumns(batchCapacity, layers[k].OutputSize())
	}
	return arena
}
