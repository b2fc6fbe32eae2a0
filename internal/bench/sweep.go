package bench

import (
	"context"
	"sort"

	cellseg "github.com/jamesainslie/go-cellseg"
	"github.com/jamesainslie/go-cellseg/models"
)

// SweepResult holds metrics for one cell-probability threshold value.
type SweepResult struct {
	Threshold float32
	Metrics   Metrics
}

// SweepThresholds generates threshold values from min to max with given step.
func SweepThresholds(min, max, step float32) []float32 {
	var thresholds []float32
	for t := min; t < max; t += step {
		thresholds = append(thresholds, t)
	}
	return thresholds
}

// Sweep evaluates the corpus at multiple cell-probability thresholds and
// returns results sorted by weighted score.
func Sweep(ctx context.Context, pairs []Pair, model models.Model, modelDir string, cfg Config, diameter float64, thresholds []float32) ([]SweepResult, error) {
	var results []SweepResult

	for _, threshold := range thresholds {
		seg, err := cellseg.New(model,
			cellseg.WithModelDir(modelDir),
			cellseg.WithDiameter(diameter),
			cellseg.WithCellProbThreshold(threshold),
		)
		if err != nil {
			return nil, err
		}

		// Aggregate counts across all pairs
		var totalTP, totalFP, totalFN int
		for _, pair := range pairs {
			m, err := EvaluatePair(ctx, seg, pair, cfg)
			if err != nil {
				_ = seg.Close()
				return nil, err
			}
			totalTP += m.TruePositives
			totalFP += m.FalsePositives
			totalFN += m.FalseNegatives
		}

		_ = seg.Close()

		results = append(results, SweepResult{
			Threshold: threshold,
			Metrics:   Summarize(totalTP, totalFP, totalFN, cfg),
		})
	}

	// Sort by weighted score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Metrics.WeightedScore > results[j].Metrics.WeightedScore
	})

	return results, nil
}
