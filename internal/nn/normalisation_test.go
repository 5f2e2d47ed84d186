package nn

import (
	"errors"
	"testing"
)

// TestNormalisation_Forward tests y = alpha*x + beta.
func TestNormalisation_Forward(t *testing.T) {
	n, err := NewNormalisation(3, 2, -1, 1)
	if err != nil {
		t.Fatalf("NewNormalisation: %v", err)
	}

	if n.InputSize() != 3 || n.OutputSize() != 3 {
		t.Errorf("sizes = (%d, %d), want (3, 3)", n.InputSize(), n.OutputSize())
	}
	if n.ParameterCount() != 0 {
		t.Errorf("ParameterCount() = %d, want 0", n.ParameterCount())
	}

	y := make([]float64, 3)
	if err := n.Forward(false, 0, []float64{0, 1, -2}, y); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	want := []float64{-1, 1, -5}
	for i := range want {
		if y[i] != want[i] {
			t.Errorf("Forward[%d] = %v, want %v", i, y[i], want[i])
		}
	}

	// In-place application.
	x := []float64{0, 1, -2}
	if err := n.Forward(false, 0, x, x); err != nil {
		t.Fatalf("Forward in place: %v", err)
	}
	for i := range want {
		if x[i] != want[i] {
			t.Errorf("in-place Forward[%d] = %v, want %v", i, x[i], want[i])
		}
	}
}

// TestNormalisation_Operators tests the scaled tangent-linear and
// adjoint, valid without a prior forward pass.
func TestNormalisation_Operators(t *testing.T) {
	n, err := NewNormalisation(2, 0.5, 3, 1)
	if err != nil {
		t.Fatalf("NewNormalisation: %v", err)
	}

	dy := make([]float64, 2)
	if err := n.TangentLinear(0, nil, []float64{2, -4}, dy); err != nil {
		t.Fatalf("TangentLinear: %v", err)
	}
	if dy[0] != 1 || dy[1] != -2 {
		t.Errorf("TangentLinear = %v, want [1 -2]", dy)
	}

	dx := make([]float64, 2)
	if err := n.Adjoint(0, []float64{2, -4}, nil, dx); err != nil {
		t.Fatalf("Adjoint: %v", err)
	}
	if dx[0] != 1 || dx[1] != -2 {
		t.Errorf("Adjoint = %v, want [1 -2]", dx)
	}

	// The affine offset must not leak into the derivative operators.
	if err := n.TangentLinear(0, []float64{1}, []float64{2, -4}, dy); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("TangentLinear non-empty dp error = %v, want ErrShapeMismatch", err)
	}
}

// TestNormalisation_SetParameters accepts only an empty vector.
func TestNormalisation_SetParameters(t *testing.T) {
	n, err := NewNormalisation(2, 1, 0, 1)
	if err != nil {
		t.Fatalf("NewNormalisation: %v", err)
	}

	if err := n.SetParameters(nil); err != nil {
		t.Errorf("SetParameters(nil): %v", err)
	}
	if err := n.SetParameters([]float64{}); err != nil {
		t.Errorf("SetParameters(empty): %v", err)
	}
	if err := n.SetParameters([]float64{1}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("SetParameters([1]) error = %v, want ErrShapeMismatch", err)
	}
	if len(n.Parameters()) != 0 {
		t.Errorf("Parameters() length = %d, want 0", len(n.Parameters()))
	}
}
