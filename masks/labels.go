package masks

import (
	"math"

	"github.com/jamesainslie/go-cellseg/imgio"
	"github.com/jamesainslie/go-cellseg/inference"
)

// assignLabels groups candidate pixels whose sinks fall in the same
// 8-connected sink region and writes one label per group.
func assignLabels(lm *imgio.LabelMap, candidates, sinks []int) {
	w, h := lm.W, lm.H

	// Mark sink pixels.
	isSink := make([]bool, w*h)
	for _, s := range sinks {
		isSink[s] = true
	}

	// Union 8-connected sink pixels.
	uf := newUnionFind(w * h)
	for idx := 0; idx < w*h; idx++ {
		if !isSink[idx] {
			continue
		}
		y, x := idx/w, idx%w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dy == 0 && dx == 0 {
					continue
				}
				ny, nx := y+dy, x+dx
				if ny < 0 || ny >= h || nx < 0 || nx >= w {
					continue
				}
				n := ny*w + nx
				if isSink[n] {
					uf.union(idx, n)
				}
			}
		}
	}

	// One label per sink region, in scan order for determinism.
	next := int32(1)
	labels := make(map[int]int32)
	for ci, idx := range candidates {
		root := uf.find(sinks[ci])
		label, ok := labels[root]
		if !ok {
			label = next
			next++
			labels[root] = label
		}
		lm.Pix[idx] = label
	}
}

type unionFind struct {
	parent []int32
}

func newUnionFind(n int) *unionFind {
	parent := make([]int32, n)
	for i := range parent {
		parent[i] = int32(i)
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != int32(i) {
		u.parent[i] = u.parent[u.parent[i]] // path halving
		i = int(u.parent[i])
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = int32(rb)
	}
}

// removeInconsistent drops masks whose network flow disagrees with the
// flow implied by the mask shape. The implied flow is the unit vector from
// each pixel toward the mask centroid; the error is the mean squared
// difference against the unit-normalized network flow.
func removeInconsistent(lm *imgio.LabelMap, out *inference.Output, threshold float32) {
	w := lm.W
	max := lm.Max()
	if max == 0 {
		return
	}

	type accum struct {
		sy, sx float64
		n      int
	}
	acc := make([]accum, max+1)
	for i, label := range lm.Pix {
		if label == 0 {
			continue
		}
		acc[label].sy += float64(i / w)
		acc[label].sx += float64(i % w)
		acc[label].n++
	}

	errSum := make([]float64, max+1)
	for i, label := range lm.Pix {
		if label == 0 {
			continue
		}
		a := acc[label]
		cy := a.sy / float64(a.n)
		cx := a.sx / float64(a.n)

		// Unit vector toward the centroid.
		ey := cy - float64(i/w)
		ex := cx - float64(i%w)
		if norm := math.Hypot(ey, ex); norm > 0 {
			ey /= norm
			ex /= norm
		}

		// Unit-normalized network flow.
		fy := float64(out.FlowY[i])
		fx := float64(out.FlowX[i])
		if norm := math.Hypot(fy, fx); norm > 0 {
			fy /= norm
			fx /= norm
		}

		dy := ey - fy
		dx := ex - fx
		errSum[label] += (dy*dy + dx*dx) / 2
	}

	drop := make([]bool, max+1)
	for label := int32(1); label <= max; label++ {
		if acc[label].n == 0 {
			continue
		}
		if float32(errSum[label]/float64(acc[label].n)) > threshold {
			drop[label] = true
		}
	}

	for i, label := range lm.Pix {
		if label != 0 && drop[label] {
			lm.Pix[i] = 0
		}
	}
}

// removeSmall zeroes masks below minSize pixels.
func removeSmall(lm *imgio.LabelMap, minSize int) {
	if minSize <= 0 {
		return
	}
	max := lm.Max()
	if max == 0 {
		return
	}

	sizes := make([]int, max+1)
	for _, label := range lm.Pix {
		sizes[label]++
	}

	for i, label := range lm.Pix {
		if label != 0 && sizes[label] < minSize {
			lm.Pix[i] = 0
		}
	}
}
