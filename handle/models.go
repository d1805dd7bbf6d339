package handle

import (
	"pmc_lib/m"
)

// Models is the handle surface of the multi-layer perceptron.
type Models struct {
	table *Table[*m.Network]
}

func NewModels() *Models {
	return &Models{table: NewTable[*m.Network]()}
}

// Create builds a network of the given layer sizes. A nil seed draws the
// initial weights from a time-seeded source.
func (ms *Models) Create(topology []int32, seed *uint64) (ID, error) {
	layers := make(m.Topology, len(topology))
	for i, size := range topology {
		layers[i] = int(size)
	}
	c := m.Config{Topology: layers}
	if seed != nil {
		c.Source = m.NewSource(*seed)
	}
	net, err := m.NewNetwork(c)
	if err != nil {
		return 0, err
	}
	return ms.table.Insert(net), nil
}

func (ms *Models) Train(id ID, input, target []float64, mode m.Mode) error {
	return ms.table.With(id, func(net *m.Network) error {
		return net.Train(input, target, mode)
	})
}

func (ms *Models) Compute(id ID, input []float64, mode m.Mode) ([]float64, error) {
	var out []float64
	err := ms.table.With(id, func(net *m.Network) error {
		var err error
		out, err = net.Compute(input, mode)
		return err
	})
	return out, err
}

// Weight reads one connection weight, see m.WeightStore.At.
func (ms *Models) Weight(id ID, l, i, j int) (float64, error) {
	var w float64
	err := ms.table.With(id, func(net *m.Network) error {
		var err error
		w, err = net.Weights().At(l, i, j)
		return err
	})
	return w, err
}

func (ms *Models) SetLearningRate(id ID, lr float64) error {
	return ms.table.With(id, func(net *m.Network) error {
		return net.SetLearningRate(lr)
	})
}

func (ms *Models) Destroy(id ID) error {
	return ms.table.Remove(id)
}

func (ms *Models) Len() int {
	return ms.table.Len()
}
