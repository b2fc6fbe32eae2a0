package cellseg

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates no weight file exists for the model.
	ErrModelNotFound = errors.New("cellseg: model weights not found")

	// ErrInvalidModel indicates the weight file exists but could not be
	// loaded into an inference session.
	ErrInvalidModel = errors.New("cellseg: invalid model format")

	// ErrUnsupportedDevice indicates a device other than CPU was
	// requested.
	ErrUnsupportedDevice = errors.New("cellseg: unsupported execution device")
)
