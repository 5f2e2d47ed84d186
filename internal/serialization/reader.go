// Package serialization implements the line-oriented text format used
// to persist sequential networks.
//
// The format is a whitespace-separated token stream:
//
//	sequential
//	<num_layers>
//	<layer_1_kind>
//	  ...layer_1_fields...
//	<layer_2_kind>
//	  ...
//
// Layer kinds and their field order:
//   - dense: input_size, output_size, the (input_size+1)*output_size
//     parameters (bias then row-major weights), activation kind
//   - normalisation: input_size, alpha, beta
//   - dropout: input_size, rate
//
// Unknown network, layer or activation tags fail with typed errors;
// nothing is silently defaulted.
package serialization

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fnn-ml/fnn/internal/nn"
)

// NetworkKindSequential is the only supported top-level tag.
const NetworkKindSequential = "sequential"

// Decode reads a persisted network and builds it with the given batch
// capacity.
func Decode(r io.Reader, batchCapacity int) (*nn.Network, error) {
	tokens := newTokenReader(r)

	kind, err := tokens.next()
	if err != nil {
		return nil, fmt.Errorf("decode: network kind: %w", err)
	}
	if kind != NetworkKindSequential {
		return nil, fmt.Errorf("decode: %w: %q", ErrUnknownNetworkKind, kind)
	}

	numLayers, err := tokens.nextInt()
	if err != nil {
		return nil, fmt.Errorf("decode: layer count: %w", err)
	}
	if numLayers <= 0 {
		return nil, fmt.Errorf("decode: layer count %d: %w", numLayers, ErrBadToken)
	}

	// Grown per decoded record rather than sized from the header, so a
	// corrupt layer count cannot drive a huge allocation before the
	// first record fails to parse.
	var layers []nn.Layer
	for i := 0; i < numLayers; i++ {
		layer, err := decodeLayer(tokens, batchCapacity)
		if err != nil {
			return nil, fmt.Errorf("decode: layer %d: %w", i, err)
		}
		layers = append(layers, layer)
	}

	return nn.NewNetwork(batchCapacity, layers...)
}

// DecodeFile reads a persisted network from a file.
func DecodeFile(path string, batchCapacity int) (*nn.Network, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Decode(file, batchCapacity)
}

// decodeLayer reads one layer record, dispatching on its kind tag.
func decodeLayer(tokens *tokenReader, batchCapacity int) (nn.Layer, error) {
	kind, err := tokens.next()
	if err != nil {
		return nil, fmt.Errorf("layer kind: %w", err)
	}

	switch kind {
	case nn.KindDense:
		return decodeDense(tokens, batchCapacity)
	case nn.KindNormalisation:
		return decodeNormalisation(tokens, batchCapacity)
	case nn.KindDropout:
		return decodeDropout(tokens, batchCapacity)
	default:
		return nil, fmt.Errorf("%w: %q", nn.ErrUnknownLayerKind, kind)
	}
}

func decodeDense(tokens *tokenReader, batchCapacity int) (nn.Layer, error) {
	inputSize, err := tokens.nextInt()
	if err != nil {
		return nil, fmt.Errorf("dense input size: %w", err)
	}
	outputSize, err := tokens.nextInt()
	if err != nil {
		return nil, fmt.Errorf("dense output size: %w", err)
	}
	if inputSize <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("dense sizes (%d, %d): %w", inputSize, outputSize, ErrBadToken)
	}

	params := make([]float64, (inputSize+1)*outputSize)
	for i := range params {
		params[i], err = tokens.nextFloat()
		if err != nil {
			return nil, fmt.Errorf("dense parameter %d of %d: %w", i, len(params), err)
		}
	}

	activation, err := tokens.next()
	if err != nil {
		return nil, fmt.Errorf("dense activation: %w", err)
	}

	dense, err := nn.NewDense(inputSize, outputSize, activation, batchCapacity)
	if err != nil {
		return nil, err
	}
	if err := dense.SetParameters(params); err != nil {
		return nil, err
	}
	return dense, nil
}

func decodeNormalisation(tokens *tokenReader, batchCapacity int) (nn.Layer, error) {
	size, err := tokens.nextInt()
	if err != nil {
		return nil, fmt.Errorf("normalisation size: %w", err)
	}
	alpha, err := tokens.nextFloat()
	if err != nil {
		return nil, fmt.Errorf("normalisation alpha: %w", err)
	}
	beta, err := tokens.nextFloat()
	if err != nil {
		return nil, fmt.Errorf("normalisation beta: %w", err)
	}
	return nn.NewNormalisation(size, alpha, beta, batchCapacity)
}

func decodeDropout(tokens *tokenReader, batchCapacity int) (nn.Layer, error) {
	size, err := tokens.nextInt()
	if err != nil {
		return nil, fmt.Errorf("dropout size: %w", err)
	}
	rate, err := tokens.nextFloat()
	if err != nil {
		return nil, fmt.Errorf("dropout rate: %w", err)
	}
	return nn.NewDropout(size, rate, batchCapacity)
}

// tokenReader yields whitespace-separated tokens from the stream.
type tokenReader struct {
	scanner *bufio.Scanner
}

func newTokenReader(r io.Reader) *tokenReader {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	return &tokenReader{scanner: scanner}
}

// next returns the next token, or ErrTruncated at end of input.
func (t *tokenReader) next() (string, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrTruncated
	}
	return t.scanner.Text(), nil
}

// nextInt parses the next token as a decimal integer.
func (t *tokenReader) nextInt() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrBadToken, tok)
	}
	return n, nil
}

// nextFloat parses the next token as a float. Any float syntax
// accepted by strconv is accepted here, matching the loadtxt-style
// readers this format has historically been consumed by.
func (t *tokenReader) nextFloat() (float64, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a float", ErrBadToken, tok)
	}
	return f, nil
}
