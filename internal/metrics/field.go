package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/rdsim/internal/grayscott"
)

// DefaultCoverageThreshold separates pattern cells from background in V.
const DefaultCoverageThreshold = 0.25

// Mean returns the average concentration over the grid.
func Mean(f *grayscott.Field) float64 {
	vals := f.Values()
	return floats.Sum(vals) / float64(len(vals))
}

// Coverage returns the fraction of cells strictly above threshold.
func Coverage(f *grayscott.Field, threshold float64) float64 {
	vals := f.Values()
	n := 0
	for _, v := range vals {
		if v > threshold {
			n++
		}
	}
	return float64(n) / float64(len(vals))
}

// Contrast is max minus min over the grid.
func Contrast(f *grayscott.Field) float64 {
	vals := f.Values()
	return floats.Max(vals) - floats.Min(vals)
}

// Clamped returns the fraction of cells where U has been driven to 0 or V
// to 1. Both bounds sit far from the resting state U=1, V=0.
func Clamped(u, v *grayscott.Field) float64 {
	uv, vv := u.Values(), v.Values()
	n := 0
	for i := range uv {
		if uv[i] <= 0 || vv[i] >= 1 {
			n++
		}
	}
	return float64(n) / float64(len(uv))
}

// Distance is the L2 distance between two equally sized fields.
func Distance(a, b *grayscott.Field) float64 {
	return floats.Distance(a.Values(), b.Values(), 2)
}
