// Package cellseg provides Cellpose-style cell segmentation using pretrained
// ONNX models.
//
// # Quick Start
//
//	seg, err := cellseg.New(models.Parse("cyto"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer seg.Close()
//
//	img, err := imgio.Read("cells.tif")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := seg.Segment(ctx, img)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Found %d objects\n", res.Count)
//
// # Thread Safety
//
// Segmenter is safe for concurrent use. It manages an internal pool of ONNX
// sessions, configurable via WithPoolSize.
//
// # Model Files
//
// Weight files are ONNX exports of the Cellpose pretrained models (cyto,
// nuclei, cyto2), resolved from the model directory as <name>.onnx or via
// an optional manifest.yaml. Inference is CPU-only.
package cellseg
