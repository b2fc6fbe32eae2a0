package imgio

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resize scales a single-channel image to w x h with bilinear interpolation.
// The image is expected to be normalized to [0, 1]; interpolation happens at
// 16-bit depth.
func (im *Image) Resize(w, h int) *Image {
	if w == im.W && h == im.H {
		return im
	}

	src := image.NewGray16(image.Rect(0, 0, im.W, im.H))
	for y := 0; y < im.H; y++ {
		for x := 0; x < im.W; x++ {
			v := im.Pix[y*im.W+x]
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			u := uint16(v * 65535)
			off := y*src.Stride + x*2
			src.Pix[off] = uint8(u >> 8)
			src.Pix[off+1] = uint8(u)
		}
	}

	dst := image.NewGray16(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	out := &Image{Pix: make([]float32, w*h), W: w, H: h, Channels: 1}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*dst.Stride + x*2
			u := uint16(dst.Pix[off])<<8 | uint16(dst.Pix[off+1])
			out.Pix[y*w+x] = float32(u) / 65535
		}
	}
	return out
}

// ResizeLabels scales a label map to w x h with nearest-neighbor sampling.
// Label identities are preserved exactly; no interpolation between labels.
func (lm *LabelMap) ResizeLabels(w, h int) *LabelMap {
	if w == lm.W && h == lm.H {
		return lm
	}

	out := &LabelMap{Pix: make([]int32, w*h), W: w, H: h}
	for y := 0; y < h; y++ {
		sy := y * lm.H / h
		for x := 0; x < w; x++ {
			sx := x * lm.W / w
			out.Pix[y*w+x] = lm.Pix[sy*lm.W+sx]
		}
	}
	return out
}
