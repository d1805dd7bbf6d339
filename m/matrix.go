package m

import (
	"gonum.org/v1/gonum/mat"
)

// bias is the constant output of the pseudo-neuron at index 0 of every layer.
const bias = 1.0

// prefixBias returns a copy of v with the bias value in front.
func prefixBias(v []float64) []float64 {
	out := make([]float64, len(v)+1)
	out[0] = bias
	copy(out[1:], v)
	return out
}

// dropBias returns a copy of v without its bias slot.
func dropBias(v []float64) []float64 {
	return append([]float64(nil), v[1:]...)
}

// asVector wraps v as a column vector without copying it.
func asVector(v []float64) *mat.VecDense {
	return mat.NewVecDense(len(v), v)
}

func cloneVectors(vs [][]float64) [][]float64 {
	out := make([][]float64, len(vs))
	for i, v := range vs {
		if v != nil {
			out[i] = append([]float64(nil), v...)
		}
	}
	return out
}
