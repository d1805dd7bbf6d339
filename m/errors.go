package m

import "errors"

var (
	// ErrInvalidTopology reports a topology with fewer than two layers or a
	// non-positive layer size.
	ErrInvalidTopology = errors.New("invalid topology")

	// ErrDimensionMismatch reports an input or target whose length does not
	// match the layer it is fed to.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIndexOutOfBounds reports an access past an allocated weight matrix.
	// It means the topology and the weights went out of sync and is a
	// programming error on the caller's side.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	ErrInvalidMode = errors.New("invalid mode")
)
