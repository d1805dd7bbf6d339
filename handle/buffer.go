package handle

import (
	"fmt"
	"unsafe"

	"pmc_lib/m"
)

// ReadFloat64s copies n values starting at p. The copy never aliases the
// caller's memory. A zero length accepts a nil p.
func ReadFloat64s(p *float64, n int32) ([]float64, error) {
	switch {
	case n < 0:
		return nil, fmt.Errorf("%w: negative length %d", m.ErrDimensionMismatch, n)
	case n == 0:
		return []float64{}, nil
	case p == nil:
		return nil, fmt.Errorf("%w: null buffer of length %d", m.ErrDimensionMismatch, n)
	}
	return append([]float64(nil), unsafe.Slice(p, int(n))...), nil
}

// ReadLayers copies the n layer sizes starting at p. Malformed buffers are
// topology errors.
func ReadLayers(p *int32, n int32) ([]int32, error) {
	switch {
	case n < 0:
		return nil, fmt.Errorf("%w: negative layer count %d", m.ErrInvalidTopology, n)
	case n == 0:
		return []int32{}, nil
	case p == nil:
		return nil, fmt.Errorf("%w: null buffer of %d layers", m.ErrInvalidTopology, n)
	}
	return append([]int32(nil), unsafe.Slice(p, int(n))...), nil
}

// WriteFloat64s copies values into the caller's buffer of length n, which
// must match len(values) exactly. Nothing is written on error.
func WriteFloat64s(p *float64, n int32, values []float64) error {
	if int(n) != len(values) || (n > 0 && p == nil) {
		return fmt.Errorf("%w: output buffer holds %d values, result has %d", m.ErrDimensionMismatch, n, len(values))
	}
	if n > 0 {
		copy(unsafe.Slice(p, int(n)), values)
	}
	return nil
}
