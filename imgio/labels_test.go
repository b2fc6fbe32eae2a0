package imgio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadLabels_RoundTrip(t *testing.T) {
	lm := &LabelMap{
		Pix: []int32{
			0, 1, 1,
			0, 0, 2,
			3, 0, 2,
		},
		W: 3,
		H: 3,
	}

	for _, ext := range []string{".png", ".tif"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "labels"+ext)
			if err := WriteLabels(path, lm); err != nil {
				t.Fatalf("WriteLabels failed: %v", err)
			}

			got, err := ReadLabels(path)
			if err != nil {
				t.Fatalf("ReadLabels failed: %v", err)
			}

			if got.W != lm.W || got.H != lm.H {
				t.Fatalf("got %dx%d, want %dx%d", got.W, got.H, lm.W, lm.H)
			}
			for i := range lm.Pix {
				if got.Pix[i] != lm.Pix[i] {
					t.Errorf("Pix[%d] = %d, want %d", i, got.Pix[i], lm.Pix[i])
				}
			}
		})
	}
}

func TestWriteLabels_NoNormalization(t *testing.T) {
	// Sparse high labels must survive exactly; an encoder that stretched
	// contrast would rescale them.
	lm := &LabelMap{Pix: []int32{0, 5000, 0, 60000}, W: 2, H: 2}

	path := filepath.Join(t.TempDir(), "labels.png")
	if err := WriteLabels(path, lm); err != nil {
		t.Fatalf("WriteLabels failed: %v", err)
	}

	got, err := ReadLabels(path)
	if err != nil {
		t.Fatalf("ReadLabels failed: %v", err)
	}
	if got.Pix[1] != 5000 || got.Pix[3] != 60000 {
		t.Errorf("labels rescaled: got %v", got.Pix)
	}
}

func TestWriteLabels_BadPath(t *testing.T) {
	lm := &LabelMap{Pix: []int32{0}, W: 1, H: 1}
	err := WriteLabels(filepath.Join(t.TempDir(), "missing", "labels.png"), lm)
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestLabelMap_Max(t *testing.T) {
	tests := []struct {
		name string
		pix  []int32
		want int32
	}{
		{"empty background", []int32{0, 0, 0, 0}, 0},
		{"labels", []int32{0, 3, 1, 2}, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lm := &LabelMap{Pix: tc.pix, W: 2, H: 2}
			if got := lm.Max(); got != tc.want {
				t.Errorf("Max() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestLabelMap_Clipped(t *testing.T) {
	if (&LabelMap{Pix: []int32{0, 65535}, W: 2, H: 1}).Clipped() {
		t.Error("65535 should not report clipping")
	}
	if !(&LabelMap{Pix: []int32{0, 65536}, W: 2, H: 1}).Clipped() {
		t.Error("65536 should report clipping")
	}
}

func TestResizeLabels(t *testing.T) {
	lm := &LabelMap{Pix: []int32{1, 2, 3, 4}, W: 2, H: 2}

	out := lm.ResizeLabels(4, 4)

	if out.W != 4 || out.H != 4 {
		t.Fatalf("got %dx%d, want 4x4", out.W, out.H)
	}
	// Nearest neighbor: each source pixel becomes a 2x2 block.
	want := []int32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}
	for i := range want {
		if out.Pix[i] != want[i] {
			t.Errorf("Pix[%d] = %d, want %d", i, out.Pix[i], want[i])
		}
	}
	// No label values invented by interpolation.
	for _, v := range out.Pix {
		if v < 1 || v > 4 {
			t.Errorf("unexpected label %d", v)
		}
	}
}

func TestLabelMap_Renumber(t *testing.T) {
	lm := &LabelMap{Pix: []int32{0, 5, 0, 3}, W: 2, H: 2}

	lm.Renumber()

	want := []int32{0, 1, 0, 2}
	for i := range want {
		if lm.Pix[i] != want[i] {
			t.Errorf("Pix[%d] = %d, want %d", i, lm.Pix[i], want[i])
		}
	}
	if got := lm.Max(); got != 2 {
		t.Errorf("Max() = %d, want 2", got)
	}
}

func TestResizeLabels_DownsampleDropsObject(t *testing.T) {
	// A 3x5 object near the origin falls between the sample points of an
	// 8x downsample and vanishes; the large object keeps its old value,
	// leaving a gap that Renumber closes.
	lm := &LabelMap{Pix: make([]int32, 200*200), W: 200, H: 200}
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 5; x++ {
			lm.Pix[y*200+x] = 1
		}
	}
	for y := 50; y < 150; y++ {
		for x := 50; x < 150; x++ {
			lm.Pix[y*200+x] = 2
		}
	}

	out := lm.ResizeLabels(25, 25)

	seen := map[int32]bool{}
	for _, v := range out.Pix {
		if v != 0 {
			seen[v] = true
		}
	}
	if seen[1] || !seen[2] {
		t.Fatalf("distinct labels after resize = %v, want only 2", seen)
	}

	out.Renumber()
	if got := out.Max(); got != 1 {
		t.Errorf("Max() after Renumber = %d, want 1 surviving object", got)
	}
	for i, v := range out.Pix {
		if v != 0 && v != 1 {
			t.Errorf("Pix[%d] = %d, want dense numbering", i, v)
		}
	}
}

func TestReadLabels_FileNotFound(t *testing.T) {
	_, err := ReadLabels(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got: %v", err)
	}
}
