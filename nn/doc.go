// Copyright 2025 the fnn authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a sequential feed-forward network with exact
// tangent-linear and adjoint operators.
//
// # Overview
//
// This package contains:
//   - Layers: Dense, Normalisation, Dropout
//   - Activations: Identity (linear), Tanh, ReLU
//   - Network: an ordered chain of layers with a flat parameter vector
//   - Save/Load: the persisted text format
//
// # Basic Usage
//
//	import "github.com/fnn-ml/fnn/nn"
//
//	func main() {
//	    net, err := nn.Load("model.txt", 16)
//	    if err != nil { ... }
//
//	    m := 0 // ensemble member column
//	    y := make([]float64, net.OutputSize())
//	    if err := net.Forward(false, m, x, y); err != nil { ... }
//
//	    // Adjoint of the chain at the point captured by Forward:
//	    dp := make([]float64, net.ParameterCount())
//	    dx := make([]float64, net.InputSize())
//	    if err := net.Adjoint(m, dy, dp, dx); err != nil { ... }
//	}
//
// # The three operators
//
// Forward evaluates the network and caches the linearization point for
// the given ensemble member. TangentLinear applies the directional
// derivative with respect to a joint (parameter, input) perturbation
// at that point. Adjoint applies the exact transpose, decomposing an
// output-space vector into parameter- and input-space contributions.
// For every member m and all (dp, dx, dy):
//
//	⟨TangentLinear(dp, dx), dy⟩ == ⟨(dp, dx), Adjoint(dy)⟩
//
// TangentLinear and Adjoint are only valid after a Forward call for
// the same member with the current parameters; violations fail with
// ErrUnpreparedState.
//
// # Ensemble members
//
// A network is allocated with a fixed batch capacity. Each member
// index addresses an independent column of every internal cache, so
// many inputs can be processed against one network without
// reallocation, including from different goroutines with one member
// per goroutine.
package nn
