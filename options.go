package cellseg

import (
	"log/slog"
	"runtime"

	"github.com/jamesainslie/go-cellseg/imgio"
	"github.com/jamesainslie/go-cellseg/masks"
)

// Device selects where inference runs.
type Device int

const (
	// DeviceCPU runs inference on the CPU. The only supported device.
	DeviceCPU Device = iota

	// DeviceCUDA is declared for configuration completeness; requesting
	// it fails with ErrUnsupportedDevice.
	DeviceCUDA
)

func (d Device) String() string {
	switch d {
	case DeviceCPU:
		return "cpu"
	case DeviceCUDA:
		return "cuda"
	default:
		return "unknown"
	}
}

// Option configures a Segmenter.
type Option func(*config)

type config struct {
	diameter  float64
	params    masks.Params
	device    Device
	colorMode imgio.ColorMode
	modelDir  string
	poolSize  int
	logger    *slog.Logger
}

func defaultConfig() config {
	return config{
		diameter:  0, // auto-estimate
		params:    masks.DefaultParams(),
		device:    DeviceCPU,
		colorMode: imgio.ColorAuto,
		poolSize:  runtime.NumCPU(),
		logger:    slog.Default(),
	}
}

// WithDiameter sets the expected object diameter in pixels. Zero requests
// automatic estimation (the default).
func WithDiameter(d float64) Option {
	return func(c *config) {
		if d >= 0 {
			c.diameter = d
		}
	}
}

// WithFlowThreshold sets the flow-consistency threshold (default: 0.4).
// Values <= 0 disable the filter.
func WithFlowThreshold(t float32) Option {
	return func(c *config) {
		c.params.FlowThreshold = t
	}
}

// WithCellProbThreshold sets the cell-probability logit threshold
// (default: 0.0).
func WithCellProbThreshold(t float32) Option {
	return func(c *config) {
		c.params.CellProbThreshold = t
	}
}

// WithMinSize sets the smallest mask kept, in pixels (default: 15).
func WithMinSize(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.params.MinSize = n
		}
	}
}

// WithDevice sets the execution device (default: DeviceCPU).
func WithDevice(d Device) Option {
	return func(c *config) {
		c.device = d
	}
}

// WithColorMode sets how multi-channel inputs are reduced to grayscale
// (default: imgio.ColorAuto).
func WithColorMode(m imgio.ColorMode) Option {
	return func(c *config) {
		c.colorMode = m
	}
}

// WithModelDir sets the weight directory (default: ~/.cellseg/models).
func WithModelDir(dir string) Option {
	return func(c *config) {
		c.modelDir = dir
	}
}

// WithPoolSize sets the ONNX session pool size (default: runtime.NumCPU()).
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
