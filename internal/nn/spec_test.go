package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnn-ml/fnn/internal/nn"
)

const sampleSpec = `
layers:
  - kind: normalisation
    input_size: 3
    alpha: 0.5
    beta: 1.0
  - kind: dense
    input_size: 3
    output_size: 4
    activation: tanh
    init: uniform
  - kind: dropout
    input_size: 4
    rate: 0.25
  - kind: dense
    input_size: 4
    output_size: 2
`

// TestParseSpec_Build decodes a YAML architecture and builds it.
func TestParseSpec_Build(t *testing.T) {
	spec, err := nn.ParseSpec([]byte(sampleSpec))
	require.NoError(t, err)
	require.Len(t, spec.Layers, 4)

	net, err := spec.Build(4)
	require.NoError(t, err)

	assert.Equal(t, 3, net.InputSize())
	assert.Equal(t, 2, net.OutputSize())
	assert.Equal(t, 4, net.Len())
	assert.Equal(t, 4, net.BatchCapacity())
	assert.Equal(t, (3+1)*4+(4+1)*2, net.ParameterCount())

	norm, ok := net.Layer(0).(*nn.Normalisation)
	require.True(t, ok)
	assert.Equal(t, 0.5, norm.Alpha())
	assert.Equal(t, 1.0, norm.Beta())

	drop, ok := net.Layer(2).(*nn.Dropout)
	require.True(t, ok)
	assert.Equal(t, 0.25, drop.Rate())

	// The last dense layer's activation defaults to linear and its
	// parameters default to zero.
	dense, ok := net.Layer(3).(*nn.Dense)
	require.True(t, ok)
	assert.Equal(t, nn.ActivationLinear, dense.Activation().Kind())
	for _, p := range dense.Parameters() {
		assert.Zero(t, p)
	}
}

// TestParseSpec_Errors covers malformed documents and unknown kinds.
func TestParseSpec_Errors(t *testing.T) {
	_, err := nn.ParseSpec([]byte("layers: {not: [a, list"))
	require.Error(t, err)

	spec, err := nn.ParseSpec([]byte("layers:\n  - kind: recurrent\n    input_size: 3\n"))
	require.NoError(t, err)
	_, err = spec.Build(1)
	require.ErrorIs(t, err, nn.ErrUnknownLayerKind)

	spec, err = nn.ParseSpec([]byte("layers: []\n"))
	require.NoError(t, err)
	_, err = spec.Build(1)
	require.ErrorIs(t, err, nn.ErrShapeMismatch)

	// A broken size chain surfaces at assembly.
	broken := `
layers:
  - kind: dense
    input_size: 3
    output_size: 4
  - kind: dense
    input_size: 5
    output_size: 2
`
	spec, err = nn.ParseSpec([]byte(broken))
	require.NoError(t, err)
	_, err = spec.Build(1)
	require.ErrorIs(t, err, nn.ErrShapeMismatch)
}
