// Package masks reconstructs label masks from network flow fields and
// cell-probability maps.
//
// Pixels above the cell-probability threshold are advected along the flow
// field; pixels that converge to the same sink belong to the same object.
// Masks whose flow is inconsistent with their shape are removed, as are
// masks below the minimum size.
package masks

import (
	"github.com/jamesainslie/go-cellseg/imgio"
	"github.com/jamesainslie/go-cellseg/inference"
)

// Params controls mask reconstruction.
type Params struct {
	// CellProbThreshold is the logit threshold for candidate foreground
	// pixels. Higher values shrink masks.
	CellProbThreshold float32

	// FlowThreshold is the maximum allowed flow-consistency error per
	// mask. Values <= 0 disable the filter.
	FlowThreshold float32

	// MinSize is the smallest mask kept, in pixels.
	MinSize int

	// Iterations is the number of Euler steps when following flows.
	Iterations int
}

// DefaultParams returns the reconstruction defaults used by the pretrained
// models.
func DefaultParams() Params {
	return Params{
		CellProbThreshold: 0.0,
		FlowThreshold:     0.4,
		MinSize:           15,
		Iterations:        200,
	}
}

// Compute reconstructs a label map from network output.
func Compute(out *inference.Output, p Params) *imgio.LabelMap {
	if p.Iterations <= 0 {
		p.Iterations = DefaultParams().Iterations
	}

	h, w := out.H, out.W
	lm := &imgio.LabelMap{Pix: make([]int32, h*w), W: w, H: h}

	// Candidate foreground pixels.
	candidates := make([]int, 0, h*w/4)
	for i, logit := range out.CellProb {
		if logit > p.CellProbThreshold {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return lm
	}

	sinks := followFlows(out, candidates, p.Iterations)
	assignLabels(lm, candidates, sinks)

	if p.FlowThreshold > 0 {
		removeInconsistent(lm, out, p.FlowThreshold)
	}
	removeSmall(lm, p.MinSize)
	lm.Renumber()

	return lm
}

// followFlows advects each candidate pixel along the flow field and returns
// the index of the pixel it converges to.
func followFlows(out *inference.Output, candidates []int, iterations int) []int {
	h, w := out.H, out.W
	sinks := make([]int, len(candidates))

	for ci, idx := range candidates {
		y := float32(idx / w)
		x := float32(idx % w)

		for step := 0; step < iterations; step++ {
			dy := sampleBilinear(out.FlowY, h, w, y, x)
			dx := sampleBilinear(out.FlowX, h, w, y, x)

			y = clamp(y+dy, 0, float32(h-1))
			x = clamp(x+dx, 0, float32(w-1))
		}

		sy := int(y + 0.5)
		sx := int(x + 0.5)
		if sy > h-1 {
			sy = h - 1
		}
		if sx > w-1 {
			sx = w - 1
		}
		sinks[ci] = sy*w + sx
	}

	return sinks
}

// sampleBilinear reads the field at a fractional position.
func sampleBilinear(field []float32, h, w int, y, x float32) float32 {
	y0 := int(y)
	x0 := int(x)
	if y0 < 0 {
		y0 = 0
	} else if y0 > h-1 {
		y0 = h - 1
	}
	if x0 < 0 {
		x0 = 0
	} else if x0 > w-1 {
		x0 = w - 1
	}
	y1 := y0 + 1
	if y1 > h-1 {
		y1 = h - 1
	}
	x1 := x0 + 1
	if x1 > w-1 {
		x1 = w - 1
	}

	fy := clamp(y-float32(y0), 0, 1)
	fx := clamp(x-float32(x0), 0, 1)

	v00 := field[y0*w+x0]
	v01 := field[y0*w+x1]
	v10 := field[y1*w+x0]
	v11 := field[y1*w+x1]

	return v00*(1-fy)*(1-fx) + v01*(1-fy)*fx + v10*fy*(1-fx) + v11*fy*fx
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
