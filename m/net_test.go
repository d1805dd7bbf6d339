package m

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newTestNetwork(t *testing.T, topology Topology, seed uint64) *Network {
	t.Helper()
	net, err := NewNetwork(Config{Topology: topology, Source: NewSource(seed)})
	require.NoError(t, err)
	return net
}

func TestNewNetworkInvalid(t *testing.T) {
	_, err := NewNetwork(Config{Topology: Topology{4}})
	assert.ErrorIs(t, err, ErrInvalidTopology)

	_, err = NewNetwork(Config{Topology: Topology{2, 0}})
	assert.ErrorIs(t, err, ErrInvalidTopology)

	_, err = NewNetwork(Config{Topology: Topology{2, 1}, LearningRate: -0.5})
	assert.Error(t, err)
}

func TestNetworkOwnsTopology(t *testing.T) {
	topology := Topology{2, 3, 1}
	net := newTestNetwork(t, topology, 1)
	topology[1] = 10

	assert.Equal(t, Topology{2, 3, 1}, net.Topology())
	got := net.Topology()
	got[0] = 99
	assert.Equal(t, Topology{2, 3, 1}, net.Topology())
	assert.Equal(t, DefaultLearningRate, net.LearningRate())
}

func TestTrainChangesWeights(t *testing.T) {
	net := newTestNetwork(t, Topology{2, 3, 1}, 2024)
	initial := net.Weights().Clone()
	input := []float64{1.0, 2.0}

	require.NoError(t, net.Train(input, []float64{1.0}, Classification))

	out, err := net.Compute(input, Classification)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.GreaterOrEqual(t, out[0], -1.0)
	assert.LessOrEqual(t, out[0], 1.0)

	diff, err := net.Weights().MaxAbsDiff(initial)
	require.NoError(t, err)
	assert.Greater(t, diff, 1e-12)
}

func TestComputeIsPure(t *testing.T) {
	net := newTestNetwork(t, Topology{3, 4, 2}, 9)
	input := []float64{0.1, -0.2, 0.3}

	for _, mode := range []Mode{Classification, Regression} {
		first, err := net.Compute(input, mode)
		require.NoError(t, err)
		second, err := net.Compute(input, mode)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestTrainDecreasesSquaredError(t *testing.T) {
	rng := rand.New(NewSource(123))
	topology := Topology{2, 3, 1}

	for seed := uint64(1); seed <= 50; seed++ {
		for _, mode := range []Mode{Classification, Regression} {
			net, err := NewNetwork(Config{Topology: topology, Source: NewSource(seed), LearningRate: 1e-3})
			require.NoError(t, err)

			input := []float64{rng.Float64()*2 - 1, rng.Float64()*2 - 1}
			target := []float64{rng.Float64()*1.6 - 0.8}

			before, err := net.Compute(input, mode)
			require.NoError(t, err)
			errBefore, err := SquaredError(before, target)
			require.NoError(t, err)

			require.NoError(t, net.Train(input, target, mode))

			after, err := net.Compute(input, mode)
			require.NoError(t, err)
			errAfter, err := SquaredError(after, target)
			require.NoError(t, err)

			assert.Less(t, errAfter, errBefore, "seed %d, %v", seed, mode)
		}
	}
}

func TestTrainDimensionMismatchLeavesWeights(t *testing.T) {
	net := newTestNetwork(t, Topology{2, 3, 1}, 5)
	before := net.Weights().Clone()

	tests := []struct {
		input, target []float64
	}{
		{[]float64{1}, []float64{1}},
		{[]float64{1, 2, 3}, []float64{1}},
		{[]float64{1, 2}, nil},
		{[]float64{1, 2}, []float64{1, 0}},
	}
	for _, tc := range tests {
		err := net.Train(tc.input, tc.target, Classification)
		assert.ErrorIs(t, err, ErrDimensionMismatch, "input %v target %v", tc.input, tc.target)
	}
	_, err := net.Compute([]float64{1, 2, 3}, Regression)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	diff, err := net.Weights().MaxAbsDiff(before)
	require.NoError(t, err)
	assert.Zero(t, diff)
}

func TestTrainLearnsXOR(t *testing.T) {
	samples := []Line{
		{Inputs: []float64{-1, -1}, Targets: []float64{-1}},
		{Inputs: []float64{-1, 1}, Targets: []float64{1}},
		{Inputs: []float64{1, -1}, Targets: []float64{1}},
		{Inputs: []float64{1, 1}, Targets: []float64{-1}},
	}

	// a single initialisation can land in a local minimum; one of a few must not
	solved := false
	for seed := uint64(1); seed <= 5 && !solved; seed++ {
		net := newTestNetwork(t, Topology{2, 4, 1}, seed)
		for epoch := 0; epoch < 2000; epoch++ {
			for _, s := range samples {
				require.NoError(t, net.Train(s.Inputs, s.Targets, Classification))
			}
		}

		solved = true
		for _, s := range samples {
			out, err := net.Compute(s.Inputs, Classification)
			require.NoError(t, err)
			if math.Signbit(out[0]) != math.Signbit(s.Targets[0]) {
				solved = false
			}
		}
	}
	assert.True(t, solved, "no initialisation learned XOR")
}

func TestTrainFitsLineInRegression(t *testing.T) {
	net := newTestNetwork(t, Topology{1, 1}, 77)
	xs := []float64{-1, -0.5, 0, 0.5, 1}

	for epoch := 0; epoch < 1000; epoch++ {
		for _, x := range xs {
			require.NoError(t, net.Train([]float64{x}, []float64{2*x + 1}, Regression))
		}
	}

	out, err := net.Compute([]float64{0.25}, Regression)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, out[0], 1e-3)

	out, err = net.Compute([]float64{3}, Regression)
	require.NoError(t, err)
	assert.InDelta(t, 7, out[0], 1e-2)
}

func TestSetLearningRate(t *testing.T) {
	net := newTestNetwork(t, Topology{1, 1}, 1)

	require.NoError(t, net.SetLearningRate(0.5))
	assert.Equal(t, 0.5, net.LearningRate())

	for _, lr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.Error(t, net.SetLearningRate(lr), "lr %v", lr)
	}
	assert.Equal(t, 0.5, net.LearningRate())
}

func TestObserverSeesEveryLayer(t *testing.T) {
	topology := Topology{2, 3, 2, 1}
	var events []LayerEvent
	net, err := NewNetwork(Config{
		Topology: topology,
		Source:   NewSource(4),
		Observer: ObserverFunc(func(e LayerEvent) { events = append(events, e) }),
	})
	require.NoError(t, err)

	require.NoError(t, net.Train([]float64{0.5, 0.5}, []float64{1}, Regression))

	var forward, backward []int
	for _, e := range events {
		assert.Equal(t, Regression, e.Mode)
		assert.Len(t, e.Values, topology[e.Layer]+1)
		switch e.Phase {
		case PhaseForward:
			forward = append(forward, e.Layer)
		case PhaseBackward:
			backward = append(backward, e.Layer)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3}, forward)
	assert.Equal(t, []int{1, 2, 3}, backward)

	// events hold copies
	events[0].Values[0] = 42
	out, err := net.Compute([]float64{0.5, 0.5}, Regression)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 1.0, events[len(events)-4].Values[0])

	net.SetObserver(nil)
	n := len(events)
	_, err = net.Compute([]float64{0.5, 0.5}, Regression)
	require.NoError(t, err)
	assert.Len(t, events, n)
}

func TestSquaredError(t *testing.T) {
	loss, err := SquaredError([]float64{1, 2}, []float64{0, 4})
	require.NoError(t, err)
	assert.Equal(t, 2.5, loss)

	_, err = SquaredError([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
