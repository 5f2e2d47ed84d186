package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KindDense is the persisted tag for Dense layers.
const KindDense = "dense"

// Dense implements a fully connected layer with an owned activation.
//
// Performs the transformation: y = A(W·x + b)
// where:
//   - x is the input vector of length inputSize
//   - W is the weight matrix with shape (outputSize, inputSize)
//   - b is the bias vector of length outputSize
//   - A is the element-wise activation (Identity, Tanh or ReLU)
//
// The trainable parameters live in one flat vector of length
// (inputSize+1)*outputSize: the bias first, then the weight matrix
// flattened row-major. The weight view held by the layer wraps that
// slice directly, so SetParameters never reallocates.
//
// Forward stores the input vector as the member's linearization point;
// TangentLinear and Adjoint for that member differentiate around it.
//
// Example:
//
//	layer, err := nn.NewDense(3, 4, nn.ActivationTanh, 8)
//	if err != nil { ... }
//	y := make([]float64, 4)
//	err = layer.Forward(false, 0, []float64{1, 2, 3}, y)
type Dense struct {
	inputSize      int
	outputSize     int
	batchCapacity  int
	parameterCount int

	params     []float64  // [bias | row-major weights]
	bias       []float64  // view over params[:outputSize]
	weights    *mat.Dense // view over params[outputSize:], (outputSize, inputSize)
	activation Activation

	forwardCache [][]float64 // [batchCapacity][inputSize], linearization point per member
	tangentWork  [][]float64 // [batchCapacity][outputSize]
	tangentTerm  [][]float64 // [batchCapacity][outputSize]
	adjointWork  [][]float64 // [batchCapacity][inputSize]
	prepared     []bool
}

// NewDense creates a Dense layer with zero-initialized parameters.
//
// Parameters:
//   - inputSize: input feature dimension
//   - outputSize: output feature dimension
//   - activationKind: "linear", "tanh" or "relu"
//   - batchCapacity: number of ensemble member columns
//
// Returns ErrUnknownActivationKind for an unrecognized activation tag
// and ErrShapeMismatch for non-positive sizes.
func NewDense(inputSize, outputSize int, activationKind string, batchCapacity int) (*Dense, error) {
	if inputSize <= 0 || outputSize <= 0 || batchCapacity <= 0 {
		return nil, fmt.Errorf("NewDense: sizes (%d, %d) with batch capacity %d must be positive: %w",
			inputSize, outputSize, batchCapacity, ErrShapeMismatch)
	}

	activation, err := NewActivation(activationKind, outputSize, batchCapacity)
	if err != nil {
		return nil, fmt.Errorf("NewDense: %w", err)
	}

	parameterCount := (inputSize + 1) * outputSize
	params := make([]float64, parameterCount)

	d := &Dense{
		inputSize:      inputSize,
		outputSize:     outputSize,
		batchCapacity:  batchCapacity,
		parameterCount: parameterCount,
		params:         params,
		bias:           params[:outputSize],
		weights:        mat.NewDense(outputSize, inputSize, params[outputSize:]),
		activation:     activation,
		forwardCache:   makeColumns(batchCapacity, inputSize),
		tangentWork:    makeColumns(batchCapacity, outputSize),
		tangentTerm:    makeColumns(batchCapacity, outputSize),
		adjointWork:    makeColumns(batchCapacity, inputSize),
		prepared:       make([]bool, batchCapacity),
	}
	return d, nil
}

// Kind returns the persisted tag.
func (d *Dense) Kind() string { return KindDense }

// InputSize returns the input feature dimension.
func (d *Dense) InputSize() int { return d.inputSize }

// OutputSize returns the output feature dimension.
func (d *Dense) OutputSize() int { return d.outputSize }

// BatchCapacity returns the number of ensemble member columns.
func (d *Dense) BatchCapacity() int { return d.batchCapacity }

// ParameterCount returns (inputSize+1)*outputSize.
func (d *Dense) ParameterCount() int { return d.parameterCount }

// Activation returns the owned activation.
func (d *Dense) Activation() Activation { return d.activation }

// Parameters returns a copy of the flat parameter vector,
// bias first, then the row-major weight matrix.
func (d *Dense) Parameters() []float64 {
	out := make([]float64, d.parameterCount)
	copy(out, d.params)
	return out
}

// SetParameters overwrites the flat parameter vector in place.
func (d *Dense) SetParameters(p []float64) error {
	if err := checkLen("Dense.SetParameters", "p", p, d.parameterCount); err != nil {
		return err
	}
	copy(d.params, p)
	return nil
}

// KerasParameters returns the parameters reordered for comparison with
// the training framework's export: the kernel flattened with shape
// (inputSize, outputSize) in row-major order, followed by the bias.
func (d *Dense) KerasParameters() []float64 {
	out := make([]float64, d.parameterCount)
	k := 0
	for j := 0; j < d.inputSize; j++ {
		for i := 0; i < d.outputSize; i++ {
			out[k] = d.weights.At(i, j)
			k++
		}
	}
	copy(out[d.inputSize*d.outputSize:], d.bias)
	return out
}

// Initialise applies a parameter initialisation policy
// ("zero" or "uniform").
func (d *Dense) Initialise(policy string) error {
	return initialiseVector(d.params, policy)
}

// Forward computes y = A(W·x + b) and stores x as the member's
// linearization point. y may alias x: the cache copy happens before y
// is written.
func (d *Dense) Forward(_ bool, member int, x, y []float64) error {
	const op = "Dense.Forward"
	if err := checkMember(op, member, d.batchCapacity); err != nil {
		return err
	}
	if err := checkLen(op, "x", x, d.inputSize); err != nil {
		return err
	}
	if err := checkLen(op, "y", y, d.outputSize); err != nil {
		return err
	}

	xc := d.forwardCache[member]
	copy(xc, x)

	yv := mat.NewVecDense(d.outputSize, y)
	yv.MulVec(d.weights, mat.NewVecDense(d.inputSize, xc))
	floats.Add(y, d.bias)

	d.activation.Forward(member, y, y)
	d.prepared[member] = true
	return nil
}

// TangentLinear computes dy = A'(z)*(W·dx + dW·x + db), the directional
// derivative of Forward at the member's cached input x, where the
// perturbation dp decomposes into (db, dW) with the same layout as the
// parameter vector.
func (d *Dense) TangentLinear(member int, dp, dx, dy []float64) error {
	const op = "Dense.TangentLinear"
	if err := checkMember(op, member, d.batchCapacity); err != nil {
		return err
	}
	if !d.prepared[member] {
		return fmt.Errorf("%s: member %d: %w", op, member, ErrUnpreparedState)
	}
	if err := checkLen(op, "dp", dp, d.parameterCount); err != nil {
		return err
	}
	if err := checkLen(op, "dx", dx, d.inputSize); err != nil {
		return err
	}
	if err := checkLen(op, "dy", dy, d.outputSize); err != nil {
		return err
	}

	db := dp[:d.outputSize]
	dw := mat.NewDense(d.outputSize, d.inputSize, dp[d.outputSize:])

	acc := d.tangentWork[member]
	term := d.tangentTerm[member]

	mat.NewVecDense(d.outputSize, acc).MulVec(d.weights, mat.NewVecDense(d.inputSize, dx))
	mat.NewVecDense(d.outputSize, term).MulVec(dw, mat.NewVecDense(d.inputSize, d.forwardCache[member]))
	floats.Add(acc, term)
	floats.Add(acc, db)

	d.activation.TangentLinear(member, acc, acc)
	copy(dy, acc)
	return nil
}

// Adjoint decomposes dy into (dp, dx):
//
//	dz = A'(z)*dy
//	db = dz
//	dW = outer(dz, x)
//	dx = Wᵗ·dz
//
// dy is consumed: it holds dz after the call.
func (d *Dense) Adjoint(member int, dy, dp, dx []float64) error {
	const op = "Dense.Adjoint"
	if err := checkMember(op, member, d.batchCapacity); err != nil {
		return err
	}
	if !d.prepared[member] {
		return fmt.Errorf("%s: member %d: %w", op, member, ErrUnpreparedState)
	}
	if err := checkLen(op, "dy", dy, d.outputSize); err != nil {
		return err
	}
	if err := checkLen(op, "dp", dp, d.parameterCount); err != nil {
		return err
	}
	if err := checkLen(op, "dx", dx, d.inputSize); err != nil {
		return err
	}

	d.activation.Adjoint(member, dy, dy)

	copy(dp[:d.outputSize], dy)

	dw := mat.NewDense(d.outputSize, d.inputSize, dp[d.outputSize:])
	dw.Outer(1, mat.NewVecDense(d.outputSize, dy), mat.NewVecDense(d.inputSize, d.forwardCache[member]))

	work := d.adjointWork[member]
	mat.NewVecDense(d.inputSize, work).MulVec(d.weights.T(), mat.NewVecDense(d.outputSize, dy))
	copy(dx, work)
	return nil
}

// makeColumns allocates a [batchCapacity][size] cache.
func makeColumns(batchCapacity, size int) [][]float64 {
	cols := make([][]float64, batchCapacity)
	for m := range cols {
		cols[m] = make([]float64, size)
	}
	return cols
}
