package cellseg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jamesainslie/go-cellseg/imgio"
	"github.com/jamesainslie/go-cellseg/inference"
	"github.com/jamesainslie/go-cellseg/masks"
	"github.com/jamesainslie/go-cellseg/models"
)

// networkStride is the downsampling factor of the network. Spatial
// dimensions are padded to multiples of it before inference.
const networkStride = 16

// maxRescale bounds the upscale factor derived from small diameter hints;
// the working image grows quadratically with it.
const maxRescale = 10.0

// Segmenter detects cells in 2D images using pretrained Cellpose ONNX
// models. It is safe for concurrent use.
type Segmenter struct {
	model     models.Model
	pool      *inference.Pool
	params    masks.Params
	diameter  float64
	colorMode imgio.ColorMode
	logger    *slog.Logger
}

// Result holds the outcome of segmenting one image.
type Result struct {
	// Labels is the label map on the input grid: 0 background, each
	// positive value one object.
	Labels *imgio.LabelMap

	// Count is the number of detected objects.
	Count int

	// Diameter is the object diameter actually used, in pixels. Differs
	// from the configured hint only when auto-estimation ran.
	Diameter float64
}

// New creates a Segmenter for the given pretrained model variant.
func New(model models.Model, opts ...Option) (*Segmenter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.device != DeviceCPU {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDevice, cfg.device)
	}

	weights, err := models.Resolve(model, cfg.modelDir)
	if err != nil {
		if errors.Is(err, models.ErrWeightsNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, model)
		}
		return nil, fmt.Errorf("resolving model weights: %w", err)
	}

	pool, err := inference.NewPool(weights, cfg.poolSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	return &Segmenter{
		model:     model,
		pool:      pool,
		params:    cfg.params,
		diameter:  cfg.diameter,
		colorMode: cfg.colorMode,
		logger:    cfg.logger,
	}, nil
}

// Segment runs the model on img and reconstructs the label map. Flow
// fields and style vectors are internal to the evaluation and not
// returned.
func (s *Segmenter) Segment(ctx context.Context, img *imgio.Image) (*Result, error) {
	if img == nil || img.W == 0 || img.H == 0 {
		return nil, fmt.Errorf("%w: empty image", imgio.ErrUnsupportedImage)
	}

	gray, err := img.Gray(s.colorMode)
	if err != nil {
		return nil, err
	}
	norm := gray.Normalize()

	// One session serves both the sizing pass and the final pass.
	session, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(session)

	diameter := s.diameter
	if diameter == 0 {
		diameter, err = s.estimateDiameter(ctx, session, norm)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("estimated diameter",
			"model", s.model.Name, "diameter", diameter)
	}

	rescale := rescaleFor(s.model.DiamMean(), diameter)
	lm, err := s.eval(ctx, session, norm, rescale)
	if err != nil {
		return nil, err
	}

	// Downsampling back to the input grid can drop small objects, so the
	// count and the dense numbering come from the resized map.
	labels := lm.ResizeLabels(img.W, img.H)
	labels.Renumber()
	count := int(labels.Max())

	return &Result{Labels: labels, Count: count, Diameter: diameter}, nil
}

// estimateDiameter runs a sizing pass at native scale and takes the median
// object diameter. Falls back to the model's training diameter when the
// pass finds nothing.
func (s *Segmenter) estimateDiameter(ctx context.Context, session *inference.Session, norm *imgio.Image) (float64, error) {
	lm, err := s.eval(ctx, session, norm, 1.0)
	if err != nil {
		return 0, err
	}

	if est := masks.EstimateDiameter(lm); est > 0 {
		return est, nil
	}
	return s.model.DiamMean(), nil
}

// eval rescales, pads, runs the network, and reconstructs masks at the
// working scale.
func (s *Segmenter) eval(ctx context.Context, session *inference.Session, norm *imgio.Image, rescale float64) (*imgio.LabelMap, error) {
	work := norm
	if rescale != 1 {
		rw := int(math.Round(float64(norm.W) * rescale))
		rh := int(math.Round(float64(norm.H) * rescale))
		if rw < networkStride {
			rw = networkStride
		}
		if rh < networkStride {
			rh = networkStride
		}
		work = norm.Resize(rw, rh)
	}

	ph := padTo(work.H, networkStride)
	pw := padTo(work.W, networkStride)

	// Two planar channels: intensities, then an all-zero nuclear channel.
	chans := make([]float32, 2*ph*pw)
	for y := 0; y < work.H; y++ {
		copy(chans[y*pw:y*pw+work.W], work.Pix[y*work.W:(y+1)*work.W])
	}

	out, err := session.Infer(ctx, chans, ph, pw)
	if err != nil {
		return nil, fmt.Errorf("evaluating model: %w", err)
	}

	return masks.Compute(cropOutput(out, work.H, work.W), s.params), nil
}

// cropOutput trims padding from the network output.
func cropOutput(out *inference.Output, h, w int) *inference.Output {
	if out.H == h && out.W == w {
		return out
	}

	c := &inference.Output{
		FlowY:    make([]float32, h*w),
		FlowX:    make([]float32, h*w),
		CellProb: make([]float32, h*w),
		Style:    out.Style,
		H:        h,
		W:        w,
	}
	for y := 0; y < h; y++ {
		copy(c.FlowY[y*w:(y+1)*w], out.FlowY[y*out.W:y*out.W+w])
		copy(c.FlowX[y*w:(y+1)*w], out.FlowX[y*out.W:y*out.W+w])
		copy(c.CellProb[y*w:(y+1)*w], out.CellProb[y*out.W:y*out.W+w])
	}
	return c
}

// rescaleFor maps a diameter hint to the working-scale factor, capped at
// maxRescale.
func rescaleFor(diamMean, diameter float64) float64 {
	r := diamMean / diameter
	if r > maxRescale {
		return maxRescale
	}
	return r
}

func padTo(n, multiple int) int {
	if r := n % multiple; r != 0 {
		return n + multiple - r
	}
	return n
}

// Close releases all resources.
func (s *Segmenter) Close() error {
	if s.pool != nil {
		return s.pool.Close()
	}
	return nil
}
