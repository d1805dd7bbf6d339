package linear

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"pmc_lib/m"
)

// PseudoInverseEpsilon is the absolute floor under which singular values are
// treated as zero when inverting XᵀX.
const PseudoInverseEpsilon = 1e-48

var errFactorize = errors.New("SVD factorization failed")

// Regressor is an ordinary least-squares model. Row 0 of weights is the
// intercept, column k holds the coefficients of output k.
type Regressor struct {
	weights *mat.Dense
}

// Fit solves W = (XᵀX)⁺·Xᵀ·Y. Each row of inputs is one sample and is
// expected to start with a constant 1 column for the intercept; outputs has
// one row per sample and one column per target.
func Fit(inputs, outputs mat.Matrix) (*Regressor, error) {
	xr, xc := inputs.Dims()
	yr, _ := outputs.Dims()
	if xr != yr {
		return nil, fmt.Errorf("%w: %d input rows, %d output rows", m.ErrDimensionMismatch, xr, yr)
	}
	if xc < 2 {
		return nil, fmt.Errorf("%w: inputs need an intercept column and at least one feature, got %d columns",
			m.ErrDimensionMismatch, xc)
	}

	var xtx mat.Dense
	xtx.Mul(inputs.T(), inputs)

	pinv, err := pseudoInverse(&xtx)
	if err != nil {
		return nil, err
	}

	var proj, w mat.Dense
	proj.Mul(pinv, inputs.T())
	w.Mul(&proj, outputs)
	return &Regressor{weights: &w}, nil
}

// FitRowMajor is Fit over flat row-major buffers, as they cross the C boundary.
func FitRowMajor(inputs []float64, inputRows, inputCols int, outputs []float64, outputRows, outputCols int) (*Regressor, error) {
	if inputRows <= 0 || inputCols <= 0 || outputRows <= 0 || outputCols <= 0 {
		return nil, fmt.Errorf("%w: empty matrix", m.ErrDimensionMismatch)
	}
	if len(inputs) != inputRows*inputCols {
		return nil, fmt.Errorf("%w: %d input values for a %dx%d matrix", m.ErrDimensionMismatch, len(inputs), inputRows, inputCols)
	}
	if len(outputs) != outputRows*outputCols {
		return nil, fmt.Errorf("%w: %d output values for a %dx%d matrix", m.ErrDimensionMismatch, len(outputs), outputRows, outputCols)
	}
	return Fit(
		mat.NewDense(inputRows, inputCols, inputs),
		mat.NewDense(outputRows, outputCols, outputs),
	)
}

// pseudoInverse returns the Moore-Penrose inverse of a through its SVD.
// Singular values below max(PseudoInverseEpsilon, σmax·n·ε) are dropped.
func pseudoInverse(a mat.Matrix) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, errFactorize
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	r, c := a.Dims()
	cutoff := PseudoInverseEpsilon
	if len(values) > 0 {
		cutoff = math.Max(cutoff, values[0]*float64(max(r, c))*epsilon)
	}

	inv := mat.NewDense(len(values), len(values), nil)
	for i, s := range values {
		if s > cutoff {
			inv.Set(i, i, 1/s)
		}
	}

	var vs mat.Dense
	vs.Mul(&v, inv)
	pinv := mat.NewDense(c, r, nil)
	pinv.Mul(&vs, u.T())
	return pinv, nil
}

// epsilon is the float64 machine epsilon.
const epsilon = 2.220446049250313e-16

// Outputs returns the number of targets the model predicts.
func (r *Regressor) Outputs() int {
	_, c := r.weights.Dims()
	return c
}

// Features returns the number of inputs Predict expects, intercept excluded.
func (r *Regressor) Features() int {
	rows, _ := r.weights.Dims()
	return rows - 1
}

// Coefficients returns intercept then feature weights of output k.
func (r *Regressor) Coefficients(k int) ([]float64, error) {
	if k < 0 || k >= r.Outputs() {
		return nil, fmt.Errorf("%w: output %d of %d", m.ErrIndexOutOfBounds, k, r.Outputs())
	}
	return mat.Col(nil, k, r.weights), nil
}

// Predict evaluates w0 + Σ x_i·w_{i+1} for every output. x carries the
// features only, without the intercept column.
func (r *Regressor) Predict(x []float64) ([]float64, error) {
	if len(x) != r.Features() {
		return nil, fmt.Errorf("%w: got %d features, model takes %d", m.ErrDimensionMismatch, len(x), r.Features())
	}
	out := make([]float64, r.Outputs())
	for k := range out {
		acc := r.weights.At(0, k)
		for i, xi := range x {
			acc += xi * r.weights.At(i+1, k)
		}
		out[k] = acc
	}
	return out, nil
}
