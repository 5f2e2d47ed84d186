package nn

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrShapeMismatch         = errors.New("shape mismatch")
	ErrUnpreparedState       = errors.New("unprepared state: no forward pass for this member")
	ErrMemberOutOfRange      = errors.New("ensemble member out of range")
	ErrUnknownActivationKind = errors.New("unknown activation kind")
	ErrUnknownLayerKind      = errors.New("unknown layer kind")
	ErrUnknownInitPolicy     = errors.New("unknown initialisation policy")
)

// ShapeError reports a vector or matrix dimension disagreement.
//
// It unwraps to ErrShapeMismatch so callers can test the whole class
// with errors.Is.
type ShapeError struct {
	Op   string // Operation that detected the mismatch (e.g., "Dense.Forward")
	Arg  string // Argument name (e.g., "x", "dp")
	Want int    // Expected length
	Got  int    // Actual length
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s has length %d, want %d", e.Op, e.Arg, e.Got, e.Want)
}

// Unwrap makes errors.Is(err, ErrShapeMismatch) succeed.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// checkLen validates the length of a caller-supplied vector.
func checkLen(op, arg string, v []float64, want int) error {
	if len(v) != want {
		return &ShapeError{Op: op, Arg: arg, Want: want, Got: len(v)}
	}
	return nil
}

// checkMember validates an ensemble member index against the batch capacity.
func checkMember(op string, member, batchCapacity int) error {
	if member < 0 || member >= batchCapacity {
		return fmt.Errorf("%s: member %d with batch capacity %d: %w", op, member, batchCapacity, ErrMemberOutOfRange)
	}
	return nil
}
