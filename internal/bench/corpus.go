// Package bench provides evaluation utilities for cell segmentation.
package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// truthSuffix marks ground-truth label rasters: <stem>_masks.<ext>.
const truthSuffix = "_masks"

var rasterExts = map[string]bool{
	".png":  true,
	".tif":  true,
	".tiff": true,
}

// Pair is one evaluation case: an input image and its ground-truth labels.
type Pair struct {
	ID        string // filename stem of the input image
	ImagePath string
	TruthPath string
}

// LoadCorpus scans dir for raster images paired with <stem>_masks ground
// truth. Images without a truth file are an error; truth files without an
// image are ignored.
func LoadCorpus(dir string) ([]Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var pairs []Pair
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !rasterExts[ext] {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if strings.HasSuffix(stem, truthSuffix) {
			continue
		}

		truth, err := findTruth(dir, stem)
		if err != nil {
			return nil, fmt.Errorf("pairing %s: %w", entry.Name(), err)
		}

		pairs = append(pairs, Pair{
			ID:        stem,
			ImagePath: filepath.Join(dir, entry.Name()),
			TruthPath: truth,
		})
	}

	return pairs, nil
}

func findTruth(dir, stem string) (string, error) {
	for ext := range rasterExts {
		p := filepath.Join(dir, stem+truthSuffix+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no %s%s raster found", stem, truthSuffix)
}
