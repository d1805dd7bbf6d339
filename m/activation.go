package m

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects how the output layer of a network behaves.
type Mode int

const (
	// Classification squashes every layer, the output one included, with tanh.
	Classification Mode = iota
	// Regression keeps tanh on hidden layers but leaves the output layer linear.
	Regression
)

func (mode Mode) String() string {
	switch mode {
	case Classification:
		return "classification"
	case Regression:
		return "regression"
	default:
		return fmt.Sprintf("Mode(%d)", int(mode))
	}
}

func (mode Mode) valid() error {
	if mode != Classification && mode != Regression {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
	return nil
}

// ParseMode accepts "classification"/"c" and "regression"/"r", case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classification", "c":
		return Classification, nil
	case "regression", "r":
		return Regression, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Activator is the non-linearity applied to a neuron's weighted sum.
// Deactivate returns the derivative expressed in terms of the activation
// output, which is what backpropagation has at hand.
type Activator interface {
	Activate(sum float64) float64
	Deactivate(out float64) float64
	fmt.Stringer
}

var ActivatorLookup = map[string]Activator{
	"tanh":     Tanh{},
	"identity": Identity{},
}

type Tanh struct{}

func (t Tanh) Activate(sum float64) float64 {
	return math.Tanh(sum)
}

func (t Tanh) Deactivate(out float64) float64 {
	return 1 - out*out
}

func (t Tanh) String() string {
	return "tanh"
}

type Identity struct{}

func (i Identity) Activate(sum float64) float64 {
	return sum
}

func (i Identity) Deactivate(out float64) float64 {
	return 1
}

func (i Identity) String() string {
	return "identity"
}

// activatorFor returns the activator of layer l in a network whose output
// layer is last. Only a regression output layer is linear.
func activatorFor(mode Mode, l, last int) Activator {
	if mode == Regression && l == last {
		return Identity{}
	}
	return Tanh{}
}
