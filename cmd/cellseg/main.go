// Command cellseg segments a single image with a pretrained Cellpose model
// and writes the label image to disk. It is invoked as a subprocess by
// image-analysis hosts:
//
//	cellseg <input> <output> <diameter> <model> <flow_threshold> <cellprob_threshold>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	cellseg "github.com/jamesainslie/go-cellseg"
	"github.com/jamesainslie/go-cellseg/imgio"
	"github.com/jamesainslie/go-cellseg/models"
)

const usage = "Usage: cellseg <input> <output> <diameter> <model> <flow_threshold> <cellprob_threshold>"

var errUsage = errors.New("wrong argument count")

type args struct {
	inputPath  string
	outputPath string
	diameter   float64
	model      string
	flowThresh float64
	probThresh float64
}

func parseArgs(argv []string) (args, error) {
	if len(argv) != 6 {
		return args{}, errUsage
	}

	a := args{
		inputPath:  argv[0],
		outputPath: argv[1],
		model:      argv[3],
	}

	var err error
	if a.diameter, err = strconv.ParseFloat(argv[2], 64); err != nil {
		return args{}, fmt.Errorf("diameter %q: not a number", argv[2])
	}
	if a.diameter < 0 {
		return args{}, fmt.Errorf("diameter %q: must be >= 0", argv[2])
	}
	if a.flowThresh, err = strconv.ParseFloat(argv[4], 64); err != nil {
		return args{}, fmt.Errorf("flow_threshold %q: not a number", argv[4])
	}
	if a.probThresh, err = strconv.ParseFloat(argv[5], 64); err != nil {
		return args{}, fmt.Errorf("cellprob_threshold %q: not a number", argv[5])
	}

	return a, nil
}

func run(argv []string) int {
	a, err := parseArgs(argv)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		fmt.Println(usage)
		return 1
	}

	if err := segment(a); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}

func segment(a args) error {
	fmt.Printf("Loading image from %s\n", a.inputPath)
	img, err := imgio.Read(a.inputPath)
	if err != nil {
		return err
	}
	fmt.Printf("Image size: %dx%d, channels: %d\n", img.W, img.H, img.Channels)
	fmt.Printf("Running segmentation with model=%s, diameter=%g\n", a.model, a.diameter)

	seg, err := cellseg.New(models.Parse(a.model),
		cellseg.WithDiameter(a.diameter),
		cellseg.WithFlowThreshold(float32(a.flowThresh)),
		cellseg.WithCellProbThreshold(float32(a.probThresh)),
		cellseg.WithPoolSize(1),
	)
	if err != nil {
		return err
	}
	defer func() { _ = seg.Close() }() // Cleanup error ignored in CLI

	res, err := seg.Segment(context.Background(), img)
	if err != nil {
		return err
	}
	fmt.Printf("Segmentation complete. Found %d objects.\n", res.Count)

	if res.Labels.Clipped() {
		fmt.Fprintln(os.Stderr, "WARNING: more than 65535 objects; labels wrap in the 16-bit output")
	}
	if err := imgio.WriteLabels(a.outputPath, res.Labels); err != nil {
		return err
	}
	fmt.Printf("Saved label image to %s\n", a.outputPath)

	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}
