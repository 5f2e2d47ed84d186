// Copyright 2025 the fnn authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/fnn-ml/fnn/internal/nn"
	"github.com/fnn-ml/fnn/internal/serialization"
)

// Layer is the common interface over all layer variants.
type Layer = nn.Layer

// Activation is the common interface over all activation variants.
type Activation = nn.Activation

// Network is an ordered chain of layers exposing the forward,
// tangent-linear and adjoint operators.
type Network = nn.Network

// Layers

// Dense is a fully connected layer with an owned activation.
type Dense = nn.Dense

// NewDense creates a Dense layer with zero-initialized parameters.
//
// Example:
//
//	layer, err := nn.NewDense(3, 4, nn.ActivationTanh, 8)
func NewDense(inputSize, outputSize int, activationKind string, batchCapacity int) (*Dense, error) {
	return nn.NewDense(inputSize, outputSize, activationKind, batchCapacity)
}

// Normalisation is an affine rescaling layer, y = alpha*x + beta.
type Normalisation = nn.Normalisation

// NewNormalisation creates a Normalisation layer.
func NewNormalisation(size int, alpha, beta float64, batchCapacity int) (*Normalisation, error) {
	return nn.NewNormalisation(size, alpha, beta, batchCapacity)
}

// Dropout is a stochastic masking layer with inverted scaling.
type Dropout = nn.Dropout

// NewDropout creates a Dropout layer with drop probability rate in [0, 1).
func NewDropout(size int, rate float64, batchCapacity int) (*Dropout, error) {
	return nn.NewDropout(size, rate, batchCapacity)
}

// Activations

// Identity is the linear (pass-through) activation.
type Identity = nn.Identity

// Tanh is the hyperbolic tangent activation.
type Tanh = nn.Tanh

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// NewActivation constructs an activation by its persisted tag
// ("linear", "tanh" or "relu").
func NewActivation(kind string, size, batchCapacity int) (Activation, error) {
	return nn.NewActivation(kind, size, batchCapacity)
}

// Persisted tags and initialisation policies.
const (
	ActivationLinear = nn.ActivationLinear
	ActivationTanh   = nn.ActivationTanh
	ActivationReLU   = nn.ActivationReLU

	KindDense         = nn.KindDense
	KindNormalisation = nn.KindNormalisation
	KindDropout       = nn.KindDropout

	InitZero    = nn.InitZero
	InitUniform = nn.InitUniform
)

// Networks

// NewNetwork assembles a network from explicit layers.
func NewNetwork(batchCapacity int, layers ...Layer) (*Network, error) {
	return nn.NewNetwork(batchCapacity, layers...)
}

// NewDenseNetwork builds a chain of Dense layers from size,
// activation and initialisation lists.
//
// Example:
//
//	net, err := nn.NewDenseNetwork(8,
//	    []int{3, 4, 2},
//	    []string{nn.ActivationTanh, nn.ActivationLinear},
//	    []string{nn.InitUniform, nn.InitZero})
func NewDenseNetwork(batchCapacity int, sizes []int, activations, inits []string) (*Network, error) {
	return nn.NewDenseNetwork(batchCapacity, sizes, activations, inits)
}

// Architecture specs

// LayerSpec describes one layer of a declarative architecture.
type LayerSpec = nn.LayerSpec

// NetworkSpec is a declarative architecture, typically decoded from YAML.
type NetworkSpec = nn.NetworkSpec

// ParseSpec decodes a YAML architecture document.
func ParseSpec(data []byte) (*NetworkSpec, error) {
	return nn.ParseSpec(data)
}

// Persistence

// Save writes a network to a file in the persisted text format.
func Save(net *Network, path string) error {
	return serialization.EncodeFile(path, net)
}

// Load reads a persisted network from a file and builds it with the
// given batch capacity.
func Load(path string, batchCapacity int) (*Network, error) {
	return serialization.DecodeFile(path, batchCapacity)
}

// Errors

// Re-exported error values; see the internal package for the taxonomy.
var (
	ErrShapeMismatch         = nn.ErrShapeMismatch
	ErrUnpreparedState       = nn.ErrUnpreparedState
	ErrMemberOutOfRange      = nn.ErrMemberOutOfRange
	ErrUnknownActivationKind = nn.ErrUnknownActivationKind
	ErrUnknownLayerKind      = nn.ErrUnknownLayerKind
	ErrUnknownInitPolicy     = nn.ErrUnknownInitPolicy
	ErrUnknownNetworkKind    = serialization.ErrUnknownNetworkKind
)
