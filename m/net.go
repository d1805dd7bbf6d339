package m

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// DefaultLearningRate is used when Config.LearningRate is zero.
const DefaultLearningRate = 0.1

type Config struct {
	Topology Topology
	// LearningRate of every Train call; zero selects DefaultLearningRate.
	LearningRate float64
	// Source drives weight initialisation; nil selects a time-seeded source.
	Source   rand.Source
	Observer Observer
}

// Network is a multi-layer perceptron with tanh hidden layers. It is not
// safe for concurrent use: callers must serialise Train and Compute on the
// same Network.
type Network struct {
	topology     Topology
	weights      *WeightStore
	learningRate float64
	observer     Observer
}

func NewNetwork(c Config) (*Network, error) {
	topology := c.Topology.clone()
	weights, err := NewWeightStore(topology, c.Source)
	if err != nil {
		return nil, err
	}

	net := &Network{
		topology:     topology,
		weights:      weights,
		learningRate: DefaultLearningRate,
		observer:     c.Observer,
	}
	if c.LearningRate != 0 {
		if err := net.SetLearningRate(c.LearningRate); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Topology returns a copy of the layer sizes.
func (net *Network) Topology() Topology {
	return net.topology.clone()
}

// Weights exposes the network's weight store. Mutating it between calls is
// allowed; mutating it during one is not.
func (net *Network) Weights() *WeightStore {
	return net.weights
}

func (net *Network) LearningRate() float64 {
	return net.learningRate
}

func (net *Network) SetLearningRate(lr float64) error {
	if lr <= 0 || math.IsInf(lr, 0) || math.IsNaN(lr) {
		return fmt.Errorf("learning rate must be positive and finite, got %v", lr)
	}
	net.learningRate = lr
	return nil
}

func (net *Network) SetObserver(o Observer) {
	net.observer = o
}

// Train runs one stochastic gradient step on a single sample: forward pass,
// backpropagation, then weight update. The weights are left untouched if
// input or target do not fit the topology.
func (net *Network) Train(input, target []float64, mode Mode) error {
	activations, err := Propagate(net.topology, net.weights, input, mode)
	if err != nil {
		return fmt.Errorf("forward pass: %w", err)
	}
	notifyObserver(net.observer, PhaseForward, mode, activations)

	deltas, err := Backpropagate(net.topology, net.weights, activations, target, mode)
	if err != nil {
		return fmt.Errorf("backpropagation: %w", err)
	}
	notifyObserver(net.observer, PhaseBackward, mode, deltas)

	if err := Update(net.topology, net.weights, activations, deltas, net.learningRate); err != nil {
		return fmt.Errorf("weight update: %w", err)
	}
	return nil
}

// Compute returns the output layer's activations for input, bias excluded.
func (net *Network) Compute(input []float64, mode Mode) ([]float64, error) {
	activations, err := Propagate(net.topology, net.weights, input, mode)
	if err != nil {
		return nil, err
	}
	notifyObserver(net.observer, PhaseForward, mode, activations)
	return dropBias(activations[net.topology.last()]), nil
}
