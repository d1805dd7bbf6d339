package handle

import (
	"errors"
	"fmt"

	"pmc_lib/m"
)

// Status is the error code reported across the C boundary.
type Status int32

const (
	StatusOK Status = iota
	StatusInvalidTopology
	StatusDimensionMismatch
	StatusIndexOutOfBounds
	StatusUninitializedHandle
	StatusUseAfterDestroy
	StatusInvalidArgument
	StatusInternal
)

// ErrInternal marks a panic recovered by Protect.
var ErrInternal = errors.New("internal error")

var statusNames = [...]string{
	StatusOK:                  "ok",
	StatusInvalidTopology:     "invalid topology",
	StatusDimensionMismatch:   "dimension mismatch",
	StatusIndexOutOfBounds:    "index out of bounds",
	StatusUninitializedHandle: "uninitialized handle",
	StatusUseAfterDestroy:     "use after destroy",
	StatusInvalidArgument:     "invalid argument",
	StatusInternal:            "internal error",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown status"
	}
	return statusNames[s]
}

// StatusOf classifies err. Anything that is not a known kind, such as an
// unknown mode or a bad label, is an invalid argument.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, m.ErrInvalidTopology):
		return StatusInvalidTopology
	case errors.Is(err, m.ErrDimensionMismatch):
		return StatusDimensionMismatch
	case errors.Is(err, m.ErrIndexOutOfBounds):
		return StatusIndexOutOfBounds
	case errors.Is(err, ErrUninitializedHandle):
		return StatusUninitializedHandle
	case errors.Is(err, ErrUseAfterDestroy):
		return StatusUseAfterDestroy
	case errors.Is(err, ErrInternal):
		return StatusInternal
	default:
		return StatusInvalidArgument
	}
}

// Protect runs fn and reports a panic inside it as an ErrInternal error.
// Calls made on behalf of a C host go through it: a Go panic crossing the
// boundary would abort the host.
func Protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()
	return fn()
}
