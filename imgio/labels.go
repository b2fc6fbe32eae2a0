package imgio

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// LabelMap is a 2D integer raster: 0 is background, each positive value is
// one detected object's identity.
type LabelMap struct {
	Pix  []int32
	W, H int
}

// Max returns the largest label value, which for densely numbered maps is
// the object count.
func (lm *LabelMap) Max() int32 {
	var max int32
	for _, v := range lm.Pix {
		if v > max {
			max = v
		}
	}
	return max
}

// Renumber relabels objects densely from 1 in scan order. Operations that
// can drop whole labels, such as downsampling, leave gaps this closes.
func (lm *LabelMap) Renumber() {
	max := lm.Max()
	if max == 0 {
		return
	}

	remap := make([]int32, max+1)
	next := int32(1)
	for i, label := range lm.Pix {
		if label == 0 {
			continue
		}
		if remap[label] == 0 {
			remap[label] = next
			next++
		}
		lm.Pix[i] = remap[label]
	}
}

// Clipped reports whether any label exceeds the 16-bit output range and
// would wrap on encode.
func (lm *LabelMap) Clipped() bool {
	for _, v := range lm.Pix {
		if v > 65535 {
			return true
		}
	}
	return false
}

// WriteLabels encodes lm as an unsigned 16-bit raster at path, chosen by
// extension (.png, .tif, .tiff). Label values are written exactly as they
// are, with no contrast stretch or rescaling; values above 65535 wrap.
func WriteLabels(path string, lm *LabelMap) error {
	dst := image.NewGray16(image.Rect(0, 0, lm.W, lm.H))
	for y := 0; y < lm.H; y++ {
		for x := 0; x < lm.W; x++ {
			v := uint16(lm.Pix[y*lm.W+x])
			off := y*dst.Stride + x*2
			dst.Pix[off] = uint8(v >> 8)
			dst.Pix[off+1] = uint8(v)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating label image: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		err = tiff.Encode(f, dst, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(f, dst)
	}
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding label image: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("writing label image: %w", err)
	}
	return nil
}

// ReadLabels decodes a label raster written by WriteLabels.
func ReadLabels(path string) (*LabelMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening label image: %w", err)
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding label image %s: %w", path, err)
	}

	b := src.Bounds()
	lm := &LabelMap{Pix: make([]int32, b.Dx()*b.Dy()), W: b.Dx(), H: b.Dy()}
	for y := 0; y < lm.H; y++ {
		for x := 0; x < lm.W; x++ {
			// Gray16 round-trips through the red channel at full depth.
			r, _, _, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			lm.Pix[y*lm.W+x] = int32(r)
		}
	}
	return lm, nil
}
