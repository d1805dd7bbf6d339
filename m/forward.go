package m

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Propagate feeds input through the network and returns the activation
// vector of every layer. Each vector starts with the bias value 1.0,
// followed by the layer's neuron outputs; vector 0 is the input itself.
func Propagate(topology Topology, weights *WeightStore, input []float64, mode Mode) ([][]float64, error) {
	if err := mode.valid(); err != nil {
		return nil, err
	}
	if err := weights.checkShape(topology); err != nil {
		return nil, err
	}
	if len(input) != topology.Inputs() {
		return nil, fmt.Errorf("%w: input has %d values, input layer has %d neurons",
			ErrDimensionMismatch, len(input), topology.Inputs())
	}

	last := topology.last()
	activations := make([][]float64, len(topology))
	activations[0] = prefixBias(input)

	for l := 1; l <= last; l++ {
		// sums[j] = Σ_i w(l, i, j) · a(l-1, i)
		sums := mat.NewVecDense(topology[l]+1, nil)
		sums.MulVec(weights.matrices[l].T(), asVector(activations[l-1]))

		act := activatorFor(mode, l, last)
		out := make([]float64, topology[l]+1)
		out[0] = bias
		for j := 1; j < len(out); j++ {
			out[j] = act.Activate(sums.AtVec(j))
		}
		activations[l] = out
	}

	return activations, nil
}

// checkLayerVectors verifies that vs holds one vector per layer, sized to
// the layer plus its bias unit. Vectors below layer from are not checked.
func checkLayerVectors(topology Topology, vs [][]float64, from int, what string) error {
	if len(vs) != len(topology) {
		return fmt.Errorf("%w: %d %s vectors for %d layers", ErrDimensionMismatch, len(vs), what, len(topology))
	}
	for l := from; l < len(topology); l++ {
		if len(vs[l]) != topology[l]+1 {
			return fmt.Errorf("%w: %s vector of layer %d has %d values, want %d",
				ErrDimensionMismatch, what, l, len(vs[l]), topology[l]+1)
		}
	}
	return nil
}
