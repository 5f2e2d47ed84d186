package nn

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/stat"
)

// TestDropout_InferenceDeterminism tests the all-ones mask outside of
// training.
func TestDropout_InferenceDeterminism(t *testing.T) {
	d, err := NewDropout(4, 0.5, 1)
	if err != nil {
		t.Fatalf("NewDropout: %v", err)
	}

	x := []float64{1, -2, 3, 0.5}
	first := make([]float64, 4)
	second := make([]float64, 4)

	if err := d.Forward(false, 0, x, first); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if err := d.Forward(false, 0, x, second); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	for i := range x {
		if first[i] != x[i] {
			t.Errorf("inference Forward[%d] = %v, want %v", i, first[i], x[i])
		}
		if first[i] != second[i] {
			t.Errorf("repeated Forward differs at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

// TestDropout_MaskValues tests that training masks only take the
// values 0 and 1/(1-rate).
func TestDropout_MaskValues(t *testing.T) {
	const rate = 0.3
	d, err := NewDropout(64, rate, 1)
	if err != nil {
		t.Fatalf("NewDropout: %v", err)
	}

	x := make([]float64, 64)
	for i := range x {
		x[i] = 1
	}
	y := make([]float64, 64)
	if err := d.Forward(true, 0, x, y); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	keep := 1 / (1 - rate)
	for i, v := range y {
		if v != 0 && !floatEqual(v, keep, 1e-15) {
			t.Errorf("mask value[%d] = %v, want 0 or %v", i, v, keep)
		}
	}
}

// TestDropout_MaskExpectation tests that the empirical mask mean
// converges to 1 (inverted scaling).
func TestDropout_MaskExpectation(t *testing.T) {
	const rate = 0.4
	d, err := NewDropout(1000, rate, 1)
	if err != nil {
		t.Fatalf("NewDropout: %v", err)
	}

	x := make([]float64, 1000)
	for i := range x {
		x[i] = 1
	}
	y := make([]float64, 1000)

	samples := make([]float64, 0, 50*1000)
	for draw := 0; draw < 50; draw++ {
		if err := d.Forward(true, 0, x, y); err != nil {
			t.Fatalf("Forward: %v", err)
		}
		samples = append(samples, y...)
	}

	mean := stat.Mean(samples, nil)
	if !floatEqual(mean, 1, 0.02) {
		t.Errorf("empirical mask mean = %v, want 1±0.02", mean)
	}
}

// TestDropout_OperatorsReuseMask tests that TangentLinear and Adjoint
// apply the mask realized by the preceding Forward, not a fresh draw.
func TestDropout_OperatorsReuseMask(t *testing.T) {
	d, err := NewDropout(32, 0.5, 1)
	if err != nil {
		t.Fatalf("NewDropout: %v", err)
	}

	ones := make([]float64, 32)
	for i := range ones {
		ones[i] = 1
	}

	// With x = 1, the forward output is the realized mask itself.
	mask := make([]float64, 32)
	if err := d.Forward(true, 0, ones, mask); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	dy := make([]float64, 32)
	if err := d.TangentLinear(0, nil, ones, dy); err != nil {
		t.Fatalf("TangentLinear: %v", err)
	}
	dx := make([]float64, 32)
	if err := d.Adjoint(0, ones, nil, dx); err != nil {
		t.Fatalf("Adjoint: %v", err)
	}

	for i := range mask {
		if dy[i] != mask[i] {
			t.Errorf("TangentLinear[%d] = %v, want mask value %v", i, dy[i], mask[i])
		}
		if dx[i] != mask[i] {
			t.Errorf("Adjoint[%d] = %v, want mask value %v", i, dx[i], mask[i])
		}
	}
}

// TestDropout_UnpreparedState tests fail-fast before any forward pass.
func TestDropout_UnpreparedState(t *testing.T) {
	d, err := NewDropout(4, 0.2, 2)
	if err != nil {
		t.Fatalf("NewDropout: %v", err)
	}

	v := make([]float64, 4)
	if err := d.TangentLinear(0, nil, v, v); !errors.Is(err, ErrUnpreparedState) {
		t.Errorf("TangentLinear before Forward error = %v, want ErrUnpreparedState", err)
	}
	if err := d.Adjoint(1, v, nil, v); !errors.Is(err, ErrUnpreparedState) {
		t.Errorf("Adjoint before Forward error = %v, want ErrUnpreparedState", err)
	}
}

// TestDropout_RateValidation rejects rates outside [0, 1).
func TestDropout_RateValidation(t *testing.T) {
	if _, err := NewDropout(4, 1.0, 1); err == nil {
		t.Error("NewDropout(rate=1.0) should fail")
	}
	if _, err := NewDropout(4, -0.1, 1); err == nil {
		t.Error("NewDropout(rate=-0.1) should fail")
	}
	if _, err := NewDropout(4, 0, 1); err != nil {
		t.Errorf("NewDropout(rate=0): %v", err)
	}
}
