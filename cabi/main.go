// Command cabi exports the models as a C shared library:
//
//	go build -buildmode=c-shared -o libpmc.so ./cabi
//
// Every model lives behind an opaque uint64 handle; 0 is never a valid
// handle. Functions returning int32_t report a handle.Status, and the
// message of the last failure is available from pmc_last_error. Buffers
// passed in are copied before use and never retained. Modes are 0 for
// classification and 1 for regression. A Go panic is reported as the
// internal error status and never reaches the host.
//
// The last error is one slot for the whole library, not one per thread or
// per handle. Hosts calling from several threads get correct status codes,
// but must serialise a failing call with its pmc_last_error read to be
// sure the message belongs to it.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"golang.org/x/exp/rand"

	"pmc_lib/handle"
	"pmc_lib/linear"
	"pmc_lib/m"
)

var (
	models      = handle.NewModels()
	classifiers = handle.NewTable[*linear.Classifier]()
	regressors  = handle.NewTable[*linear.Regressor]()

	errMu   sync.Mutex
	lastErr string
)

func status(err error) C.int32_t {
	errMu.Lock()
	lastErr = ""
	if err != nil {
		lastErr = err.Error()
	}
	errMu.Unlock()
	return C.int32_t(handle.StatusOf(err))
}

func float64s(p *C.double, n C.int32_t) ([]float64, error) {
	return handle.ReadFloat64s((*float64)(unsafe.Pointer(p)), int32(n))
}

func writeFloat64s(p *C.double, n C.int32_t, values []float64) error {
	return handle.WriteFloat64s((*float64)(unsafe.Pointer(p)), int32(n), values)
}

func seedOf(hasSeed C.int32_t, seed C.uint64_t) *uint64 {
	if hasSeed == 0 {
		return nil
	}
	s := uint64(seed)
	return &s
}

//export pmc_create
func pmc_create(nbLayers C.int32_t, layers *C.int32_t, hasSeed C.int32_t, seed C.uint64_t) C.uint64_t {
	var id handle.ID
	status(handle.Protect(func() error {
		topology, err := handle.ReadLayers((*int32)(unsafe.Pointer(layers)), int32(nbLayers))
		if err != nil {
			return err
		}
		id, err = models.Create(topology, seedOf(hasSeed, seed))
		return err
	}))
	return C.uint64_t(id)
}

//export pmc_train
func pmc_train(h C.uint64_t, inputs *C.double, inputsSize C.int32_t, targets *C.double, targetsSize C.int32_t, mode C.int32_t) C.int32_t {
	return status(handle.Protect(func() error {
		in, err := float64s(inputs, inputsSize)
		if err != nil {
			return err
		}
		target, err := float64s(targets, targetsSize)
		if err != nil {
			return err
		}
		return models.Train(handle.ID(h), in, target, m.Mode(mode))
	}))
}

//export pmc_compute
func pmc_compute(h C.uint64_t, inputs *C.double, inputsSize C.int32_t, mode C.int32_t, out *C.double, outSize C.int32_t) C.int32_t {
	return status(handle.Protect(func() error {
		in, err := float64s(inputs, inputsSize)
		if err != nil {
			return err
		}
		result, err := models.Compute(handle.ID(h), in, m.Mode(mode))
		if err != nil {
			return err
		}
		return writeFloat64s(out, outSize, result)
	}))
}

//export pmc_weight
func pmc_weight(h C.uint64_t, layer, i, j C.int32_t, out *C.double) C.int32_t {
	return status(handle.Protect(func() error {
		w, err := models.Weight(handle.ID(h), int(layer), int(i), int(j))
		if err != nil {
			return err
		}
		return writeFloat64s(out, 1, []float64{w})
	}))
}

//export pmc_set_learning_rate
func pmc_set_learning_rate(h C.uint64_t, lr C.double) C.int32_t {
	return status(handle.Protect(func() error {
		return models.SetLearningRate(handle.ID(h), float64(lr))
	}))
}

//export pmc_destroy
func pmc_destroy(h C.uint64_t) C.int32_t {
	return status(handle.Protect(func() error {
		return models.Destroy(handle.ID(h))
	}))
}

//export classification_create
func classification_create(inputs C.int32_t, hasSeed C.int32_t, seed C.uint64_t) C.uint64_t {
	var id handle.ID
	status(handle.Protect(func() error {
		var src rand.Source
		if s := seedOf(hasSeed, seed); s != nil {
			src = m.NewSource(*s)
		}
		c, err := linear.NewClassifier(int(inputs), src)
		if err != nil {
			return err
		}
		id = classifiers.Insert(c)
		return nil
	}))
	return C.uint64_t(id)
}

//export classification_train
func classification_train(h C.uint64_t, x *C.double, n C.int32_t, expected C.int32_t) C.int32_t {
	return status(handle.Protect(func() error {
		features, err := float64s(x, n)
		if err != nil {
			return err
		}
		return classifiers.With(handle.ID(h), func(c *linear.Classifier) error {
			_, err := c.Train(features, int(expected))
			return err
		})
	}))
}

//export classification_predict
func classification_predict(h C.uint64_t, x *C.double, n C.int32_t, out *C.int32_t) C.int32_t {
	return status(handle.Protect(func() error {
		features, err := float64s(x, n)
		if err != nil {
			return err
		}
		if out == nil {
			return fmt.Errorf("%w: null output", m.ErrDimensionMismatch)
		}
		return classifiers.With(handle.ID(h), func(c *linear.Classifier) error {
			label, err := c.Predict(features)
			if err != nil {
				return err
			}
			*out = C.int32_t(label)
			return nil
		})
	}))
}

//export classification_weight
func classification_weight(h C.uint64_t, index C.int32_t, out *C.double) C.int32_t {
	return status(handle.Protect(func() error {
		return classifiers.With(handle.ID(h), func(c *linear.Classifier) error {
			w, err := c.Weight(int(index))
			if err != nil {
				return err
			}
			return writeFloat64s(out, 1, []float64{w})
		})
	}))
}

//export classification_destroy
func classification_destroy(h C.uint64_t) C.int32_t {
	return status(handle.Protect(func() error {
		return classifiers.Remove(handle.ID(h))
	}))
}

//export regression_fit
func regression_fit(inputRows, inputCols C.int32_t, inputs *C.double, outputRows, outputCols C.int32_t, outputs *C.double) C.uint64_t {
	var id handle.ID
	status(handle.Protect(func() error {
		if inputRows <= 0 || inputCols <= 0 || outputRows <= 0 || outputCols <= 0 ||
			int64(inputRows)*int64(inputCols) > math.MaxInt32 || int64(outputRows)*int64(outputCols) > math.MaxInt32 {
			return fmt.Errorf("%w: matrix shapes %dx%d and %dx%d", m.ErrDimensionMismatch,
				int32(inputRows), int32(inputCols), int32(outputRows), int32(outputCols))
		}
		x, err := float64s(inputs, inputRows*inputCols)
		if err != nil {
			return err
		}
		y, err := float64s(outputs, outputRows*outputCols)
		if err != nil {
			return err
		}
		r, err := linear.FitRowMajor(x, int(inputRows), int(inputCols), y, int(outputRows), int(outputCols))
		if err != nil {
			return err
		}
		id = regressors.Insert(r)
		return nil
	}))
	return C.uint64_t(id)
}

//export regression_predict
func regression_predict(h C.uint64_t, x *C.double, n C.int32_t, out *C.double, outSize C.int32_t) C.int32_t {
	return status(handle.Protect(func() error {
		features, err := float64s(x, n)
		if err != nil {
			return err
		}
		return regressors.With(handle.ID(h), func(r *linear.Regressor) error {
			result, err := r.Predict(features)
			if err != nil {
				return err
			}
			return writeFloat64s(out, outSize, result)
		})
	}))
}

//export regression_destroy
func regression_destroy(h C.uint64_t) C.int32_t {
	return status(handle.Protect(func() error {
		return regressors.Remove(handle.ID(h))
	}))
}

// pmc_last_error returns the message of the last failed call, or an empty
// string. The caller releases it with pmc_free_string.
//
//export pmc_last_error
func pmc_last_error() *C.char {
	errMu.Lock()
	defer errMu.Unlock()
	return C.CString(lastErr)
}

//export pmc_free_string
func pmc_free_string(str *C.char) {
	C.free(unsafe.Pointer(str))
}

func main() {}
