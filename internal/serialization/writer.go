package serialization

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fnn-ml/fnn/internal/nn"
)

// Integers are right-aligned to match the converter tooling that
// produces these files; parameter rows are tab-joined.
const intFormat = "%7d"

// formatFloat emits the shortest scientific-notation text that parses
// back to the exact same float64, so a decoded network carries
// bit-identical parameters.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'e', -1, 64)
}

// Encode writes a network in the persisted text format.
//
// Files written here decode back to a network with identical
// parameters and identical forward outputs.
func Encode(w io.Writer, net *nn.Network) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, NetworkKindSequential)
	fmt.Fprintf(bw, intFormat+"\n", net.Len())

	for i := 0; i < net.Len(); i++ {
		if err := encodeLayer(bw, net.Layer(i)); err != nil {
			return fmt.Errorf("encode: layer %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// EncodeFile writes a network to a file in the persisted text format.
func EncodeFile(path string, net *nn.Network) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Encode(file, net); err != nil {
		_ = file.Close() // Best effort close on error
		return err
	}
	return file.Close()
}

// encodeLayer writes one layer record, dispatching on the concrete
// layer type (the inverse of decodeLayer's tag dispatch).
func encodeLayer(w io.Writer, layer nn.Layer) error {
	switch l := layer.(type) {
	case *nn.Dense:
		fmt.Fprintln(w, nn.KindDense)
		fmt.Fprintf(w, intFormat+"\n", l.InputSize())
		fmt.Fprintf(w, intFormat+"\n", l.OutputSize())
		fmt.Fprintln(w, joinFloats(l.Parameters()))
		fmt.Fprintln(w, l.Activation().Kind())
	case *nn.Normalisation:
		fmt.Fprintln(w, nn.KindNormalisation)
		fmt.Fprintf(w, intFormat+"\n", l.InputSize())
		fmt.Fprintln(w, formatFloat(l.Alpha()))
		fmt.Fprintln(w, formatFloat(l.Beta()))
	case *nn.Dropout:
		fmt.Fprintln(w, nn.KindDropout)
		fmt.Fprintf(w, intFormat+"\n", l.InputSize())
		fmt.Fprintln(w, formatFloat(l.Rate()))
	default:
		return fmt.Errorf("%w: %q", nn.ErrUnknownLayerKind, layer.Kind())
	}
	return nil
}

// joinFloats formats a parameter vector as one tab-joined row.
func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, "\t")
}
