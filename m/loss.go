package m

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SquaredError returns ½·Σ (output - target)², the loss whose gradient
// Backpropagate computes.
func SquaredError(output, target []float64) (float64, error) {
	if len(output) != len(target) {
		return 0, fmt.Errorf("%w: output has %d values, target has %d", ErrDimensionMismatch, len(output), len(target))
	}
	diff := make([]float64, len(output))
	floats.SubTo(diff, output, target)
	return 0.5 * floats.Dot(diff, diff), nil
}
