package masks

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jamesainslie/go-cellseg/imgio"
)

// EstimateDiameter returns the median equivalent diameter of the masks in
// lm, in pixels: the diameter of the circle with each mask's area. Returns
// 0 when lm has no masks.
func EstimateDiameter(lm *imgio.LabelMap) float64 {
	max := lm.Max()
	if max == 0 {
		return 0
	}

	sizes := make([]int, max+1)
	for _, label := range lm.Pix {
		if label != 0 {
			sizes[label]++
		}
	}

	var diams []float64
	for label := int32(1); label <= max; label++ {
		if sizes[label] == 0 {
			continue
		}
		diams = append(diams, 2*math.Sqrt(float64(sizes[label])/math.Pi))
	}
	if len(diams) == 0 {
		return 0
	}

	sort.Float64s(diams)
	return stat.Quantile(0.5, stat.Empirical, diams, nil)
}
