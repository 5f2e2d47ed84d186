package nn

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LayerSpec describes one layer of a network architecture.
//
// Which fields apply depends on Kind:
//   - "dense": InputSize, OutputSize, Activation (default "linear"),
//     Init (default "zero")
//   - "normalisation": InputSize, Alpha, Beta
//   - "dropout": InputSize, Rate
type LayerSpec struct {
	Kind       string  `yaml:"kind"`
	InputSize  int     `yaml:"input_size"`
	OutputSize int     `yaml:"output_size,omitempty"`
	Activation string  `yaml:"activation,omitempty"`
	Init       string  `yaml:"init,omitempty"`
	Alpha      float64 `yaml:"alpha,omitempty"`
	Beta       float64 `yaml:"beta,omitempty"`
	Rate       float64 `yaml:"rate,omitempty"`
}

// NetworkSpec is a declarative network architecture, typically decoded
// from a YAML document:
//
//	layers:
//	  - kind: normalisation
//	    input_size: 3
//	    alpha: 0.5
//	    beta: 1.0
//	  - kind: dense
//	    input_size: 3
//	    output_size: 4
//	    activation: tanh
//	    init: uniform
//	  - kind: dense
//	    input_size: 4
//	    output_size: 2
type NetworkSpec struct {
	Layers []LayerSpec `yaml:"layers"`
}

// ParseSpec decodes a YAML architecture document.
func ParseSpec(data []byte) (*NetworkSpec, error) {
	var spec NetworkSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("ParseSpec: %w", err)
	}
	return &spec, nil
}

// Build constructs a network from the spec with the given batch
// capacity. Unknown layer or activation kinds and broken size chains
// fail with the corresponding typed errors.
func (s *NetworkSpec) Build(batchCapacity int) (*Network, error) {
	if len(s.Layers) == 0 {
		return nil, fmt.Errorf("NetworkSpec.Build: no layers: %w", ErrShapeMismatch)
	}

	layers := make([]Layer, len(s.Layers))
	for i, ls := range s.Layers {
		layer, err := ls.build(batchCapacity)
		if err != nil {
			return nil, fmt.Errorf("NetworkSpec.Build: layer %d: %w", i, err)
		}
		layers[i] = layer
	}
	return NewNetwork(batchCapacity, layers...)
}

// build constructs one layer from its spec.
func (ls *LayerSpec) build(batchCapacity int) (Layer, error) {
	switch ls.Kind {
	case KindDense:
		activation := ls.Activation
		if activation == "" {
			activation = ActivationLinear
		}
		dense, err := NewDense(ls.InputSize, ls.OutputSize, activation, batchCapacity)
		if err != nil {
			return nil, err
		}
		policy := ls.Init
		if policy == "" {
			policy = InitZero
		}
		if err := dense.Initialise(policy); err != nil {
			return nil, err
		}
		return dense, nil
	case KindNormalisation:
		return NewNormalisation(ls.InputSize, ls.Alpha, ls.Beta, batchCapacity)
	case KindDropout:
		return NewDropout(ls.InputSize, ls.Rate, batchCapacity)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayerKind, ls.Kind)
	}
}
