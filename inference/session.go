// Package inference provides ONNX Runtime integration for Cellpose model
// inference.
package inference

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// initORT initializes ONNX Runtime environment once.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// Output holds the network's raw predictions for one image: a 2D flow
// field, per-pixel cell-probability logits, and the style vector.
type Output struct {
	FlowY    []float32 // H*W, vertical flow component
	FlowX    []float32 // H*W, horizontal flow component
	CellProb []float32 // H*W, logits
	Style    []float32 // per-image style embedding
	H, W     int
}

// Session wraps an ONNX Runtime session for Cellpose inference. Execution
// is CPU-only: no execution providers are appended to the session options.
type Session struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	closed  bool
}

// NewSession creates a new ONNX session from a model weight file.
func NewSession(modelPath string) (*Session, error) {
	// Check file exists
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	// Create session options
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }() // Cleanup error doesn't affect success

	// Define input/output names (from model inspection)
	inputNames := []string{"input"}
	outputNames := []string{"output", "style"}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session}, nil
}

// Infer runs the network on a two-channel image of h rows and w columns.
// chans holds the channels planar: chans[0:h*w] is the target channel,
// chans[h*w:2*h*w] the optional nuclear channel (zeros when absent).
func (s *Session) Infer(ctx context.Context, chans []float32, h, w int) (*Output, error) {
	// Check context before expensive operation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(chans) != 2*h*w {
		return nil, fmt.Errorf("input length %d does not match 2x%dx%d", len(chans), h, w)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}

	inputTensor, err := ort.NewTensor(
		ort.NewShape(1, 2, int64(h), int64(w)),
		chans,
	)
	if err != nil {
		return nil, fmt.Errorf("creating input tensor: %w", err)
	}
	defer func() { _ = inputTensor.Destroy() }()

	inputs := []ort.Value{inputTensor}

	// Output entries are nil so Run allocates them.
	outputs := []ort.Value{nil, nil}

	if err := s.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}
	for _, o := range outputs {
		if o != nil {
			defer func(v ort.Value) { _ = v.Destroy() }(o)
		}
	}

	if outputs[0] == nil {
		return nil, fmt.Errorf("no output produced")
	}

	predTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}
	pred := predTensor.GetData()
	plane := h * w
	if len(pred) < 3*plane {
		return nil, fmt.Errorf("output has %d values, want %d", len(pred), 3*plane)
	}

	out := &Output{
		FlowY:    make([]float32, plane),
		FlowX:    make([]float32, plane),
		CellProb: make([]float32, plane),
		H:        h,
		W:        w,
	}
	copy(out.FlowY, pred[:plane])
	copy(out.FlowX, pred[plane:2*plane])
	copy(out.CellProb, pred[2*plane:3*plane])

	if outputs[1] != nil {
		if styleTensor, ok := outputs[1].(*ort.Tensor[float32]); ok {
			style := styleTensor.GetData()
			out.Style = make([]float32, len(style))
			copy(out.Style, style)
		}
	}

	return out, nil
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
