// Copyright 2025 the fnn authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnn-ml/fnn/nn"
)

// TestPublicSurface exercises the binding surface end to end: build,
// persist, reload, and run the three operators through the public
// package.
func TestPublicSurface(t *testing.T) {
	net, err := nn.NewDenseNetwork(2,
		[]int{3, 4, 2},
		[]string{nn.ActivationTanh, nn.ActivationLinear},
		[]string{nn.InitUniform, nn.InitUniform})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.txt")
	require.NoError(t, nn.Save(net, path))

	loaded, err := nn.Load(path, 2)
	require.NoError(t, err)

	assert.Equal(t, net.InputSize(), loaded.InputSize())
	assert.Equal(t, net.OutputSize(), loaded.OutputSize())
	assert.Equal(t, net.ParameterCount(), loaded.ParameterCount())
	assert.Equal(t, net.Parameters(), loaded.Parameters())

	x := []float64{0.1, -0.2, 0.3}
	y := make([]float64, 2)
	require.NoError(t, loaded.Forward(false, 0, x, y))

	dp := make([]float64, loaded.ParameterCount())
	dx := make([]float64, 3)
	dy := []float64{1, 0}
	require.NoError(t, loaded.Adjoint(0, dy, dp, dx))

	dyTL := make([]float64, 2)
	require.NoError(t, loaded.TangentLinear(0, dp, dx, dyTL))
}

// TestPublicErrors checks the re-exported error values.
func TestPublicErrors(t *testing.T) {
	_, err := nn.NewDense(3, 4, "softmax", 1)
	require.ErrorIs(t, err, nn.ErrUnknownActivationKind)

	net, err := nn.NewDenseNetwork(1,
		[]int{2, 2},
		[]string{nn.ActivationLinear},
		[]string{nn.InitZero})
	require.NoError(t, err)

	dp := make([]float64, net.ParameterCount())
	v := make([]float64, 2)
	require.ErrorIs(t, net.TangentLinear(0, dp, v, v), nn.ErrUnpreparedState)
	require.ErrorIs(t, net.Forward(false, 3, v, v), nn.ErrMemberOutOfRange)
}
