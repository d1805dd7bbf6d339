package m

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Backpropagate computes the delta of every neuron from the activations of
// a forward pass and the expected output. The returned slice is indexed by
// layer like the activations; layer 0 has no deltas and is left nil.
//
// The output layer's bias slot has no target and its delta is 0. Hidden
// bias slots get a delta like any other neuron; since their activation is
// fixed at 1.0 the tanh derivative makes it 0 as well.
func Backpropagate(topology Topology, weights *WeightStore, activations [][]float64, target []float64, mode Mode) ([][]float64, error) {
	if err := mode.valid(); err != nil {
		return nil, err
	}
	if err := weights.checkShape(topology); err != nil {
		return nil, err
	}
	if err := checkLayerVectors(topology, activations, 0, "activation"); err != nil {
		return nil, err
	}
	if len(target) != topology.Outputs() {
		return nil, fmt.Errorf("%w: target has %d values, output layer has %d neurons",
			ErrDimensionMismatch, len(target), topology.Outputs())
	}

	last := topology.last()
	deltas := make([][]float64, len(topology))

	out := activations[last]
	act := activatorFor(mode, last, last)
	d := make([]float64, len(out))
	for j := 1; j < len(out); j++ {
		d[j] = act.Deactivate(out[j]) * (out[j] - target[j-1])
	}
	deltas[last] = d

	hidden := Tanh{}
	for l := last - 1; l >= 1; l-- {
		// sums[i] = Σ_j w(l+1, i, j) · δ(l+1, j), bias slot of l+1 included
		sums := mat.NewVecDense(topology[l]+1, nil)
		sums.MulVec(weights.matrices[l+1], asVector(deltas[l+1]))

		a := activations[l]
		d := make([]float64, len(a))
		for i := range d {
			d[i] = hidden.Deactivate(a[i]) * sums.AtVec(i)
		}
		deltas[l] = d
	}

	return deltas, nil
}

// Update applies one gradient-descent step to every weight:
//
//	w(l, i, j) -= learningRate · a(l-1, i) · δ(l, j)
func Update(topology Topology, weights *WeightStore, activations, deltas [][]float64, learningRate float64) error {
	if err := weights.checkShape(topology); err != nil {
		return err
	}
	if err := checkLayerVectors(topology, activations, 0, "activation"); err != nil {
		return err
	}
	if err := checkLayerVectors(topology, deltas, 1, "delta"); err != nil {
		return err
	}

	for l := 1; l < len(topology); l++ {
		w := weights.matrices[l]
		w.RankOne(w, -learningRate, asVector(activations[l-1]), asVector(deltas[l]))
	}
	return nil
}
