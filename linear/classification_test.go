package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmc_lib/m"
)

func TestNewClassifier(t *testing.T) {
	c, err := NewClassifier(2, m.NewSource(1))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Inputs())

	for i := 0; i < 3; i++ {
		w, err := c.Weight(i)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, w, -1.0)
		assert.Less(t, w, 1.0)
	}
	_, err = c.Weight(3)
	assert.ErrorIs(t, err, m.ErrIndexOutOfBounds)

	_, err = NewClassifier(0, nil)
	assert.ErrorIs(t, err, m.ErrInvalidTopology)
}

func TestClassifierUpdateRule(t *testing.T) {
	c, err := NewClassifier(2, m.NewSource(3))
	require.NoError(t, err)
	before := []float64{c.weights.AtVec(0), c.weights.AtVec(1), c.weights.AtVec(2)}

	x, y := 2.0, -3.0
	predicted, err := c.Predict([]float64{x, y})
	require.NoError(t, err)

	// a correctly classified sample leaves the weights alone
	moved, err := c.Train([]float64{x, y}, predicted)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = c.Train([]float64{x, y}, -predicted)
	require.NoError(t, err)
	assert.True(t, moved)

	diff := float64(-predicted - predicted)
	assert.InDelta(t, before[0]+Alpha*diff, c.weights.AtVec(0), 1e-15)
	assert.InDelta(t, before[1]+Alpha*diff*x, c.weights.AtVec(1), 1e-15)
	assert.InDelta(t, before[2]+Alpha*diff*y, c.weights.AtVec(2), 1e-15)
}

func TestClassifierConvergesOnSeparableData(t *testing.T) {
	type sample struct {
		x     []float64
		label int
	}
	// separated by x + y = 1
	samples := []sample{
		{[]float64{1, 1}, 1},
		{[]float64{2, 3}, 1},
		{[]float64{3, 0.5}, 1},
		{[]float64{0, 0}, -1},
		{[]float64{-1, 0.5}, -1},
		{[]float64{0.2, -2}, -1},
	}

	c, err := NewClassifier(2, m.NewSource(17))
	require.NoError(t, err)

	converged := false
	for epoch := 0; epoch < 10000 && !converged; epoch++ {
		converged = true
		for _, s := range samples {
			moved, err := c.Train(s.x, s.label)
			require.NoError(t, err)
			if moved {
				converged = false
			}
		}
	}
	require.True(t, converged)

	for _, s := range samples {
		got, err := c.Predict(s.x)
		require.NoError(t, err)
		assert.Equal(t, s.label, got, "%v", s.x)
	}
}

func TestClassifierErrors(t *testing.T) {
	c, err := NewClassifier(2, m.NewSource(1))
	require.NoError(t, err)

	_, err = c.Predict([]float64{1})
	assert.ErrorIs(t, err, m.ErrDimensionMismatch)

	_, err = c.Train([]float64{1, 2, 3}, 1)
	assert.ErrorIs(t, err, m.ErrDimensionMismatch)

	_, err = c.Train([]float64{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidLabel)
}
