package bench

import (
	"testing"

	"github.com/jamesainslie/go-cellseg/imgio"
)

// lm builds a 4x4 label map from 16 values.
func lm(vals ...int32) *imgio.LabelMap {
	return &imgio.LabelMap{Pix: vals, W: 4, H: 4}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		pred   *imgio.LabelMap
		truth  *imgio.LabelMap
		iou    float64
		wantTP int
		wantFP int
		wantFN int
	}{
		{
			name: "perfect match",
			pred: lm(
				1, 1, 0, 0,
				1, 1, 0, 0,
				0, 0, 2, 2,
				0, 0, 2, 2,
			),
			truth: lm(
				1, 1, 0, 0,
				1, 1, 0, 0,
				0, 0, 2, 2,
				0, 0, 2, 2,
			),
			iou:    0.5,
			wantTP: 2,
		},
		{
			name: "partial overlap above threshold",
			pred: lm(
				1, 1, 1, 0,
				1, 1, 1, 0,
				0, 0, 0, 0,
				0, 0, 0, 0,
			),
			truth: lm(
				1, 1, 0, 0,
				1, 1, 0, 0,
				0, 0, 0, 0,
				0, 0, 0, 0,
			),
			iou:    0.5,
			wantTP: 1,
		},
		{
			name: "overlap below threshold",
			pred: lm(
				1, 0, 0, 0,
				0, 0, 0, 0,
				0, 0, 0, 0,
				0, 0, 0, 0,
			),
			truth: lm(
				1, 1, 1, 1,
				1, 1, 1, 1,
				0, 0, 0, 0,
				0, 0, 0, 0,
			),
			iou:    0.5,
			wantFP: 1,
			wantFN: 1,
		},
		{
			name: "spurious prediction",
			pred: lm(
				1, 1, 0, 0,
				1, 1, 0, 0,
				0, 0, 2, 0,
				0, 0, 0, 0,
			),
			truth: lm(
				1, 1, 0, 0,
				1, 1, 0, 0,
				0, 0, 0, 0,
				0, 0, 0, 0,
			),
			iou:    0.5,
			wantTP: 1,
			wantFP: 1,
		},
		{
			name: "missed object",
			pred: lm(
				0, 0, 0, 0,
				0, 0, 0, 0,
				0, 0, 0, 0,
				0, 0, 0, 0,
			),
			truth: lm(
				1, 1, 0, 0,
				1, 1, 0, 0,
				0, 0, 0, 0,
				0, 0, 0, 0,
			),
			iou:    0.5,
			wantFN: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.IoUThreshold = tc.iou

			m, err := Evaluate(tc.pred, tc.truth, cfg)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}

			if m.TruePositives != tc.wantTP {
				t.Errorf("TP = %d, want %d", m.TruePositives, tc.wantTP)
			}
			if m.FalsePositives != tc.wantFP {
				t.Errorf("FP = %d, want %d", m.FalsePositives, tc.wantFP)
			}
			if m.FalseNegatives != tc.wantFN {
				t.Errorf("FN = %d, want %d", m.FalseNegatives, tc.wantFN)
			}
		})
	}
}

func TestEvaluate_GridMismatch(t *testing.T) {
	pred := &imgio.LabelMap{Pix: make([]int32, 4), W: 2, H: 2}
	truth := &imgio.LabelMap{Pix: make([]int32, 9), W: 3, H: 3}

	if _, err := Evaluate(pred, truth, DefaultConfig()); err == nil {
		t.Error("expected error for mismatched grids")
	}
}

func TestSummarize(t *testing.T) {
	cfg := DefaultConfig()

	m := Summarize(8, 2, 2, cfg)

	if m.Precision != 0.8 {
		t.Errorf("Precision = %v, want 0.8", m.Precision)
	}
	if m.Recall != 0.8 {
		t.Errorf("Recall = %v, want 0.8", m.Recall)
	}
	if m.F1 < 0.79 || m.F1 > 0.81 {
		t.Errorf("F1 = %v, want ~0.8", m.F1)
	}
}

func TestSummarize_ZeroCounts(t *testing.T) {
	m := Summarize(0, 0, 0, DefaultConfig())
	if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 || m.WeightedScore != 0 {
		t.Errorf("expected zero metrics, got %+v", m)
	}
}
