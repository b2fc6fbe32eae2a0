//go:build ignore

// Generate a synthetic evaluation corpus: images of bright discs on a dark
// background, paired with ground-truth label rasters.
// Usage: go run ./scripts/gen-corpus.go
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/jamesainslie/go-cellseg/imgio"
)

const (
	outDir    = "testdata/corpus"
	numImages = 5
	size      = 256
	cells     = 12
	radiusMin = 8
	radiusMax = 16
)

func main() {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outDir, err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(42))

	for n := 0; n < numImages; n++ {
		img := image.NewGray16(image.Rect(0, 0, size, size))
		truth := &imgio.LabelMap{Pix: make([]int32, size*size), W: size, H: size}

		label := int32(0)
		for c := 0; c < cells; c++ {
			cy := radiusMax + rng.Intn(size-2*radiusMax)
			cx := radiusMax + rng.Intn(size-2*radiusMax)
			r := float64(radiusMin) + rng.Float64()*float64(radiusMax-radiusMin)

			// Skip discs that would merge with an existing one.
			if truth.Pix[cy*size+cx] != 0 {
				continue
			}
			label++

			for y := cy - int(r); y <= cy+int(r); y++ {
				for x := cx - int(r); x <= cx+int(r); x++ {
					if y < 0 || y >= size || x < 0 || x >= size {
						continue
					}
					d := math.Hypot(float64(y-cy), float64(x-cx))
					if d > r {
						continue
					}
					// Soft intensity falloff toward the rim.
					v := uint16(50000 * (1 - 0.5*d/r))
					img.SetGray16(x, y, color.Gray16{Y: v})
					truth.Pix[y*size+x] = label
				}
			}
		}

		stem := fmt.Sprintf("synthetic%02d", n)

		f, err := os.Create(filepath.Join(outDir, stem+".png"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := png.Encode(f, img); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding %s: %v\n", stem, err)
			os.Exit(1)
		}
		_ = f.Close()

		if err := imgio.WriteLabels(filepath.Join(outDir, stem+"_masks.png"), truth); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing truth for %s: %v\n", stem, err)
			os.Exit(1)
		}

		fmt.Printf("Wrote %s: %d cells\n", stem, label)
	}
}
