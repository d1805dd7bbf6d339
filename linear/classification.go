// Package linear holds the single-layer models: a perceptron classifier and
// a closed-form least-squares regressor.
package linear

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"pmc_lib/m"
)

// Alpha is the perceptron learning rate.
const Alpha = 0.1

var ErrInvalidLabel = errors.New("label must be -1 or 1")

// Classifier is a perceptron separating two classes labelled -1 and 1.
// weights[0] is the bias.
type Classifier struct {
	weights *mat.VecDense
}

// NewClassifier returns a perceptron over inputs features with weights drawn
// uniformly from [-1, 1).
func NewClassifier(inputs int, src rand.Source) (*Classifier, error) {
	if inputs <= 0 {
		return nil, fmt.Errorf("%w: classifier needs at least one input, got %d", m.ErrInvalidTopology, inputs)
	}
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	dist := distuv.Uniform{Min: -1, Max: 1, Src: src}

	data := make([]float64, inputs+1)
	for i := range data {
		data[i] = dist.Rand()
	}
	return &Classifier{weights: mat.NewVecDense(len(data), data)}, nil
}

func (c *Classifier) Inputs() int {
	return c.weights.Len() - 1
}

func (c *Classifier) Weight(i int) (float64, error) {
	if i < 0 || i >= c.weights.Len() {
		return 0, fmt.Errorf("%w: weight %d of %d", m.ErrIndexOutOfBounds, i, c.weights.Len())
	}
	return c.weights.AtVec(i), nil
}

func (c *Classifier) withBias(x []float64) (*mat.VecDense, error) {
	if len(x) != c.Inputs() {
		return nil, fmt.Errorf("%w: got %d features, classifier takes %d", m.ErrDimensionMismatch, len(x), c.Inputs())
	}
	v := mat.NewVecDense(len(x)+1, nil)
	v.SetVec(0, 1)
	for i, xi := range x {
		v.SetVec(i+1, xi)
	}
	return v, nil
}

// Predict returns 1 when the weighted sum is strictly positive, -1 otherwise.
func (c *Classifier) Predict(x []float64) (int, error) {
	v, err := c.withBias(x)
	if err != nil {
		return 0, err
	}
	return sign(mat.Dot(c.weights, v)), nil
}

// Train applies the perceptron rule to one sample. Weights only move when
// the sample is misclassified; the returned bool reports whether they did.
func (c *Classifier) Train(x []float64, expected int) (bool, error) {
	if expected != -1 && expected != 1 {
		return false, fmt.Errorf("%w: got %d", ErrInvalidLabel, expected)
	}
	v, err := c.withBias(x)
	if err != nil {
		return false, err
	}
	actual := sign(mat.Dot(c.weights, v))
	if actual == expected {
		return false, nil
	}
	c.weights.AddScaledVec(c.weights, Alpha*float64(expected-actual), v)
	return true, nil
}

func sign(sum float64) int {
	if sum > 0 {
		return 1
	}
	return -1
}
