// Command cellseg-bench evaluates segmentation quality against a corpus of
// images with ground-truth label rasters.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	cellseg "github.com/jamesainslie/go-cellseg"
	"github.com/jamesainslie/go-cellseg/internal/bench"
	"github.com/jamesainslie/go-cellseg/models"
)

func main() {
	var (
		model     = flag.String("model", "cyto", "Pretrained model name")
		modelDir  = flag.String("model-dir", "", "Model weight directory (default ~/.cellseg/models)")
		corpusDir = flag.String("corpus", "testdata/corpus", "Directory containing image/_masks pairs")
		diameter  = flag.Float64("diameter", 0, "Object diameter in pixels (0 = auto)")
		cellprob  = flag.Float64("cellprob", 0.0, "Cell-probability threshold")
		iou       = flag.Float64("iou", 0.5, "IoU threshold for object matching")
		wp        = flag.Float64("wp", 1.0, "Precision weight")
		wr        = flag.Float64("wr", 1.0, "Recall weight")
		sweep     = flag.Bool("sweep", false, "Run cell-probability threshold sweep")
		sweepMin  = flag.Float64("sweep-min", -4.0, "Sweep minimum threshold")
		sweepMax  = flag.Float64("sweep-max", 4.0, "Sweep maximum threshold")
		sweepStep = flag.Float64("sweep-step", 0.5, "Sweep step size")
		compare   = flag.String("models", "", "Comma-separated model names for comparison")
	)
	flag.Parse()

	// Load corpus
	pairs, err := bench.LoadCorpus(*corpusDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d image pairs from %s\n\n", len(pairs), *corpusDir)

	cfg := bench.Config{
		IoUThreshold:    *iou,
		PrecisionWeight: *wp,
		RecallWeight:    *wr,
	}

	ctx := context.Background()

	if *compare != "" {
		// Model comparison mode
		names := strings.Split(*compare, ",")
		runModelComparison(ctx, names, *modelDir, pairs, cfg, *diameter, *sweep, float32(*sweepMin), float32(*sweepMax), float32(*sweepStep))
	} else if *sweep {
		// Single model sweep mode
		runSweep(ctx, *model, *modelDir, pairs, cfg, *diameter, float32(*sweepMin), float32(*sweepMax), float32(*sweepStep))
	} else {
		// Single threshold evaluation
		runSingle(ctx, *model, *modelDir, pairs, cfg, *diameter, float32(*cellprob))
	}
}

func runSingle(ctx context.Context, name, modelDir string, pairs []bench.Pair, cfg bench.Config, diameter float64, cellprob float32) {
	seg, err := cellseg.New(models.Parse(name),
		cellseg.WithModelDir(modelDir),
		cellseg.WithDiameter(diameter),
		cellseg.WithCellProbThreshold(cellprob),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating segmenter: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = seg.Close() }()

	var totalTP, totalFP, totalFN int
	for _, pair := range pairs {
		m, err := bench.EvaluatePair(ctx, seg, pair, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error evaluating %s: %v\n", pair.ID, err)
			os.Exit(1)
		}
		totalTP += m.TruePositives
		totalFP += m.FalsePositives
		totalFN += m.FalseNegatives
	}

	m := bench.Summarize(totalTP, totalFP, totalFN, cfg)
	fmt.Printf("Precision: %.2f  Recall: %.2f  F1: %.2f  Weighted: %.2f\n",
		m.Precision, m.Recall, m.F1, m.WeightedScore)
	fmt.Printf("(TP: %d, FP: %d, FN: %d)\n", totalTP, totalFP, totalFN)
}

func runSweep(ctx context.Context, name, modelDir string, pairs []bench.Pair, cfg bench.Config, diameter float64, min, max, step float32) {
	thresholds := bench.SweepThresholds(min, max, step)

	fmt.Printf("Cell-Probability Threshold Sweep (wp=%.1f, wr=%.1f)\n", cfg.PrecisionWeight, cfg.RecallWeight)
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("%-8s %-8s %-8s %-8s %-8s\n", "Thresh", "Prec", "Rec", "F1", "Weighted")

	results, err := bench.Sweep(ctx, pairs, models.Parse(name), modelDir, cfg, diameter, thresholds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error during sweep: %v\n", err)
		os.Exit(1)
	}

	// Print sorted by threshold for readability
	for _, t := range thresholds {
		for _, r := range results {
			if r.Threshold == t {
				fmt.Printf("%-8.2f %-8.2f %-8.2f %-8.2f %-8.2f\n",
					r.Threshold, r.Metrics.Precision, r.Metrics.Recall, r.Metrics.F1, r.Metrics.WeightedScore)
				break
			}
		}
	}

	fmt.Println(strings.Repeat("-", 50))
	if len(results) > 0 {
		best := results[0]
		fmt.Printf("Optimal: %.2f (Weighted: %.2f)\n", best.Threshold, best.Metrics.WeightedScore)
	}
}

func runModelComparison(ctx context.Context, names []string, modelDir string, pairs []bench.Pair, cfg bench.Config, diameter float64, sweep bool, min, max, step float32) {
	fmt.Printf("Model Comparison (wp=%.1f, wr=%.1f)\n", cfg.PrecisionWeight, cfg.RecallWeight)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("%-20s %-8s %-8s %-8s\n", "Model", "Thresh", "F1", "Weighted")

	for _, name := range names {
		var bestThreshold float32
		var bestMetrics bench.Metrics

		if sweep {
			thresholds := bench.SweepThresholds(min, max, step)
			results, err := bench.Sweep(ctx, pairs, models.Parse(name), modelDir, cfg, diameter, thresholds)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error with %s: %v\n", name, err)
				continue
			}
			if len(results) > 0 {
				bestThreshold = results[0].Threshold
				bestMetrics = results[0].Metrics
			}
		} else {
			seg, err := cellseg.New(models.Parse(name),
				cellseg.WithModelDir(modelDir),
				cellseg.WithDiameter(diameter),
			)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error with %s: %v\n", name, err)
				continue
			}
			var totalTP, totalFP, totalFN int
			for _, pair := range pairs {
				m, _ := bench.EvaluatePair(ctx, seg, pair, cfg)
				totalTP += m.TruePositives
				totalFP += m.FalsePositives
				totalFN += m.FalseNegatives
			}
			_ = seg.Close()

			bestMetrics = bench.Summarize(totalTP, totalFP, totalFN, cfg)
		}

		fmt.Printf("%-20s %-8.2f %-8.2f %-8.2f\n", name, bestThreshold, bestMetrics.F1, bestMetrics.WeightedScore)
	}
}
