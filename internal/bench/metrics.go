package bench

import (
	"context"
	"fmt"

	cellseg "github.com/jamesainslie/go-cellseg"
	"github.com/jamesainslie/go-cellseg/imgio"
)

// Config holds evaluation parameters.
type Config struct {
	IoUThreshold    float64 // minimum overlap for a predicted/truth match
	PrecisionWeight float64
	RecallWeight    float64
}

// DefaultConfig returns default evaluation configuration.
func DefaultConfig() Config {
	return Config{
		IoUThreshold:    0.5,
		PrecisionWeight: 1.0,
		RecallWeight:    1.0,
	}
}

// Metrics holds evaluation results.
type Metrics struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
	WeightedScore  float64
}

// Summarize derives the rate metrics from raw counts.
func Summarize(tp, fp, fn int, cfg Config) Metrics {
	m := Metrics{
		TruePositives:  tp,
		FalsePositives: fp,
		FalseNegatives: fn,
	}

	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	wp := cfg.PrecisionWeight
	wr := cfg.RecallWeight
	if wp+wr > 0 {
		m.WeightedScore = (wp*m.Precision + wr*m.Recall) / (wp + wr)
	}

	return m
}

// Evaluate matches predicted objects against ground truth.
// Uses greedy matching in label order: a predicted object matches the first
// unmatched truth object it overlaps with IoU at or above the threshold.
func Evaluate(pred, truth *imgio.LabelMap, cfg Config) (Metrics, error) {
	if pred.W != truth.W || pred.H != truth.H {
		return Metrics{}, fmt.Errorf("grid mismatch: predicted %dx%d, truth %dx%d",
			pred.W, pred.H, truth.W, truth.H)
	}

	nPred := int(pred.Max())
	nTruth := int(truth.Max())

	predArea := make([]int, nPred+1)
	truthArea := make([]int, nTruth+1)
	overlap := make(map[[2]int32]int)
	for i := range pred.Pix {
		p, t := pred.Pix[i], truth.Pix[i]
		if p != 0 {
			predArea[p]++
		}
		if t != 0 {
			truthArea[t]++
		}
		if p != 0 && t != 0 {
			overlap[[2]int32{p, t}]++
		}
	}

	matched := make([]bool, nTruth+1)
	tp := 0
	for p := int32(1); p <= int32(nPred); p++ {
		for t := int32(1); t <= int32(nTruth); t++ {
			if matched[t] {
				continue
			}
			inter := overlap[[2]int32{p, t}]
			if inter == 0 {
				continue
			}
			union := predArea[p] + truthArea[t] - inter
			if float64(inter)/float64(union) >= cfg.IoUThreshold {
				matched[t] = true
				tp++
				break
			}
		}
	}

	return Summarize(tp, nPred-tp, nTruth-tp, cfg), nil
}

// EvaluatePair segments a corpus image and scores it against its truth.
func EvaluatePair(ctx context.Context, seg *cellseg.Segmenter, pair Pair, cfg Config) (Metrics, error) {
	img, err := imgio.Read(pair.ImagePath)
	if err != nil {
		return Metrics{}, fmt.Errorf("reading %s: %w", pair.ID, err)
	}

	res, err := seg.Segment(ctx, img)
	if err != nil {
		return Metrics{}, fmt.Errorf("segmenting %s: %w", pair.ID, err)
	}

	truth, err := imgio.ReadLabels(pair.TruthPath)
	if err != nil {
		return Metrics{}, fmt.Errorf("reading truth for %s: %w", pair.ID, err)
	}

	return Evaluate(res.Labels, truth, cfg)
}
