// Package imgio handles raster decode, color reduction, and label image
// persistence for cell segmentation.
package imgio

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sort"

	// Registered decoders. BMP and TIFF come from golang.org/x/image;
	// PNG, JPEG and GIF from the standard library.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"gonum.org/v1/gonum/stat"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrUnsupportedImage indicates the decoded raster cannot be used as
	// segmentation input (for example a multi-channel image forced into
	// grayscale mode).
	ErrUnsupportedImage = errors.New("imgio: unsupported image layout")
)

// ColorMode controls how a decoded raster is reduced to a single intensity
// channel before segmentation.
type ColorMode int

const (
	// ColorAuto averages the first three channels when the image carries a
	// trailing channel axis of size 3 or 4, and passes single-channel
	// images through. Other channel counts are rejected. This mirrors the
	// shape heuristic of the upstream tooling and cannot distinguish a
	// color image from a 3-plane stack.
	ColorAuto ColorMode = iota

	// ColorRGB asserts the image is color and always averages the first
	// three channels. Fails on images with fewer than 3 channels.
	ColorRGB

	// ColorGray asserts the image is already grayscale. Fails on images
	// with a channel axis.
	ColorGray
)

func (m ColorMode) String() string {
	switch m {
	case ColorAuto:
		return "auto"
	case ColorRGB:
		return "rgb"
	case ColorGray:
		return "gray"
	default:
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
}

// Image is a decoded raster: row-major, channel-interleaved float32 samples.
// Intensities keep the range of the source (0-255 for 8-bit sources,
// 0-65535 for 16-bit sources).
type Image struct {
	Pix      []float32
	W, H     int
	Channels int
}

// At returns the sample at (x, y) for channel c. No bounds checking.
func (im *Image) At(x, y, c int) float32 {
	return im.Pix[(y*im.W+x)*im.Channels+c]
}

// Read decodes the raster at path into an Image.
func Read(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}

	return fromImage(src), nil
}

// fromImage converts a decoded image.Image, preserving 16-bit depth where
// the source carries it.
func fromImage(src image.Image) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch t := src.(type) {
	case *image.Gray:
		im := &Image{Pix: make([]float32, w*h), W: w, H: h, Channels: 1}
		for y := 0; y < h; y++ {
			row := t.Pix[y*t.Stride : y*t.Stride+w]
			for x, v := range row {
				im.Pix[y*w+x] = float32(v)
			}
		}
		return im

	case *image.Gray16:
		im := &Image{Pix: make([]float32, w*h), W: w, H: h, Channels: 1}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := y*t.Stride + x*2
				v := uint16(t.Pix[off])<<8 | uint16(t.Pix[off+1])
				im.Pix[y*w+x] = float32(v)
			}
		}
		return im

	case *image.NRGBA:
		im := &Image{Pix: make([]float32, w*h*4), W: w, H: h, Channels: 4}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := y*t.Stride + x*4
				for c := 0; c < 4; c++ {
					im.Pix[(y*w+x)*4+c] = float32(t.Pix[off+c])
				}
			}
		}
		return im

	default:
		// Generic path: 3 channels at 16-bit depth via RGBA().
		im := &Image{Pix: make([]float32, w*h*3), W: w, H: h, Channels: 3}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bb, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
				off := (y*w + x) * 3
				im.Pix[off] = float32(r >> 8)
				im.Pix[off+1] = float32(g >> 8)
				im.Pix[off+2] = float32(bb >> 8)
			}
		}
		return im
	}
}

// Gray reduces the image to a single intensity channel according to mode.
// Color images are reduced by averaging the first three channels; a fourth
// (alpha) channel is ignored, not weighted.
func (im *Image) Gray(mode ColorMode) (*Image, error) {
	switch mode {
	case ColorAuto:
		switch im.Channels {
		case 1:
			return im, nil
		case 3, 4:
		default:
			return nil, fmt.Errorf("%w: %d-channel image", ErrUnsupportedImage, im.Channels)
		}
	case ColorRGB:
		if im.Channels < 3 {
			return nil, fmt.Errorf("%w: rgb mode on %d-channel image", ErrUnsupportedImage, im.Channels)
		}
	case ColorGray:
		if im.Channels != 1 {
			return nil, fmt.Errorf("%w: gray mode on %d-channel image", ErrUnsupportedImage, im.Channels)
		}
		return im, nil
	default:
		return nil, fmt.Errorf("%w: unknown color mode %v", ErrUnsupportedImage, mode)
	}

	out := &Image{Pix: make([]float32, im.W*im.H), W: im.W, H: im.H, Channels: 1}
	for i := 0; i < im.W*im.H; i++ {
		off := i * im.Channels
		out.Pix[i] = (im.Pix[off] + im.Pix[off+1] + im.Pix[off+2]) / 3
	}
	return out, nil
}

// Normalize stretches a single-channel image to [0, 1] between the 1st and
// 99th intensity percentiles. Constant images normalize to all zeros.
func (im *Image) Normalize() *Image {
	sorted := make([]float64, len(im.Pix))
	for i, v := range im.Pix {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	lo := stat.Quantile(0.01, stat.Empirical, sorted, nil)
	hi := stat.Quantile(0.99, stat.Empirical, sorted, nil)

	out := &Image{Pix: make([]float32, len(im.Pix)), W: im.W, H: im.H, Channels: im.Channels}
	if hi <= lo {
		return out
	}
	scale := float32(1 / (hi - lo))
	for i, v := range im.Pix {
		n := (v - float32(lo)) * scale
		if n < 0 {
			n = 0
		} else if n > 1 {
			n = 1
		}
		out.Pix[i] = n
	}
	return out
}
