package m

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Bounds of the uniform distribution new weights are drawn from. The range
// is deliberately not centred on zero.
const (
	InitMin = -0.9
	InitMax = 1.1
)

// MaxWeights caps the number of weights a topology may allocate, bias
// connections included.
const MaxWeights = 1 << 26

// Topology lists the neuron count of every layer, input layer first, bias
// units excluded.
type Topology []int

// Validate checks that t has an input and an output layer, no empty layer,
// and no more than MaxWeights weights in total.
func (t Topology) Validate() error {
	if len(t) < 2 {
		return fmt.Errorf("%w: need at least 2 layers, got %d", ErrInvalidTopology, len(t))
	}
	for l, size := range t {
		if size <= 0 || size >= MaxWeights {
			return fmt.Errorf("%w: layer %d has size %d", ErrInvalidTopology, l, size)
		}
	}
	total := 0
	for l := 1; l < len(t); l++ {
		rows, cols := t[l-1]+1, t[l]+1
		if rows > MaxWeights/cols || total+rows*cols > MaxWeights {
			return fmt.Errorf("%w: more than %d weights", ErrInvalidTopology, MaxWeights)
		}
		total += rows * cols
	}
	return nil
}

func (t Topology) Inputs() int  { return t[0] }
func (t Topology) Outputs() int { return t[len(t)-1] }
func (t Topology) last() int    { return len(t) - 1 }

func (t Topology) clone() Topology {
	return append(Topology(nil), t...)
}

// WeightStore holds one dense matrix per layer transition. Matrix l connects
// layer l-1 (rows) to layer l (columns); row 0 and column 0 belong to the
// bias units. Matrix 0 is an empty placeholder so that weight and layer
// indices line up.
type WeightStore struct {
	matrices []*mat.Dense
}

// NewSource returns a seeded source suitable for NewWeightStore.
func NewSource(seed uint64) rand.Source {
	return rand.NewSource(seed)
}

// NewWeightStore allocates the matrices of topology and fills them from a
// uniform distribution over [InitMin, InitMax) driven by src. A nil src
// is replaced by a time-seeded one.
func NewWeightStore(topology Topology, src rand.Source) (*WeightStore, error) {
	if err := topology.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	dist := distuv.Uniform{Min: InitMin, Max: InitMax, Src: src}

	ws := &WeightStore{matrices: make([]*mat.Dense, len(topology))}
	ws.matrices[0] = &mat.Dense{}
	for l := 1; l < len(topology); l++ {
		rows := topology[l-1] + 1
		cols := topology[l] + 1
		ws.matrices[l] = mat.NewDense(rows, cols, randomArray(rows*cols, dist))
	}
	return ws, nil
}

func randomArray(size int, dist distuv.Uniform) []float64 {
	data := make([]float64, size)
	for i := range data {
		data[i] = dist.Rand()
	}
	return data
}

// Layers returns the number of matrices, placeholder included.
func (ws *WeightStore) Layers() int {
	return len(ws.matrices)
}

// Dims returns the shape of matrix l, or 0, 0 if l does not exist.
func (ws *WeightStore) Dims(l int) (r, c int) {
	if l < 0 || l >= len(ws.matrices) {
		return 0, 0
	}
	return ws.matrices[l].Dims()
}

func (ws *WeightStore) checkIndex(l, i, j int) error {
	if l < 1 || l >= len(ws.matrices) {
		return fmt.Errorf("%w: layer %d not in [1, %d)", ErrIndexOutOfBounds, l, len(ws.matrices))
	}
	r, c := ws.matrices[l].Dims()
	if i < 0 || i >= r || j < 0 || j >= c {
		return fmt.Errorf("%w: (%d, %d) outside %dx%d matrix of layer %d", ErrIndexOutOfBounds, i, j, r, c, l)
	}
	return nil
}

// At returns the weight from neuron i of layer l-1 to neuron j of layer l.
func (ws *WeightStore) At(l, i, j int) (float64, error) {
	if err := ws.checkIndex(l, i, j); err != nil {
		return 0, err
	}
	return ws.matrices[l].At(i, j), nil
}

// Set overwrites the weight from neuron i of layer l-1 to neuron j of layer l.
func (ws *WeightStore) Set(l, i, j int, v float64) error {
	if err := ws.checkIndex(l, i, j); err != nil {
		return err
	}
	ws.matrices[l].Set(i, j, v)
	return nil
}

// Values returns matrix l flattened in row-major order.
func (ws *WeightStore) Values(l int) ([]float64, error) {
	if l < 0 || l >= len(ws.matrices) {
		return nil, fmt.Errorf("%w: layer %d not in [0, %d)", ErrIndexOutOfBounds, l, len(ws.matrices))
	}
	if ws.matrices[l].IsEmpty() {
		return []float64{}, nil
	}
	return mat.DenseCopyOf(ws.matrices[l]).RawMatrix().Data, nil
}

// Clone returns a deep copy of ws.
func (ws *WeightStore) Clone() *WeightStore {
	out := &WeightStore{matrices: make([]*mat.Dense, len(ws.matrices))}
	for l, w := range ws.matrices {
		if w.IsEmpty() {
			out.matrices[l] = &mat.Dense{}
			continue
		}
		out.matrices[l] = mat.DenseCopyOf(w)
	}
	return out
}

// MaxAbsDiff returns the largest absolute difference between corresponding
// weights of ws and other, which must have the same shape.
func (ws *WeightStore) MaxAbsDiff(other *WeightStore) (float64, error) {
	if len(ws.matrices) != len(other.matrices) {
		return 0, fmt.Errorf("%w: %d vs %d matrices", ErrDimensionMismatch, len(ws.matrices), len(other.matrices))
	}
	largest := 0.0
	for l := 1; l < len(ws.matrices); l++ {
		r, c := ws.matrices[l].Dims()
		or, oc := other.matrices[l].Dims()
		if r != or || c != oc {
			return 0, fmt.Errorf("%w: layer %d is %dx%d vs %dx%d", ErrDimensionMismatch, l, r, c, or, oc)
		}
		var diff mat.Dense
		diff.Sub(ws.matrices[l], other.matrices[l])
		diff.Apply(func(_, _ int, v float64) float64 { return math.Abs(v) }, &diff)
		largest = math.Max(largest, mat.Max(&diff))
	}
	return largest, nil
}

// checkShape verifies that every matrix matches the layer sizes of topology.
func (ws *WeightStore) checkShape(topology Topology) error {
	if len(ws.matrices) != len(topology) {
		return fmt.Errorf("%w: %d weight matrices for %d layers", ErrIndexOutOfBounds, len(ws.matrices), len(topology))
	}
	for l := 1; l < len(topology); l++ {
		r, c := ws.matrices[l].Dims()
		if r != topology[l-1]+1 || c != topology[l]+1 {
			return fmt.Errorf("%w: layer %d matrix is %dx%d, topology needs %dx%d",
				ErrIndexOutOfBounds, l, r, c, topology[l-1]+1, topology[l]+1)
		}
	}
	return nil
}
