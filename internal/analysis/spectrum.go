package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/rdsim/internal/grayscott"
)

// Spectrum is a radially binned power spectrum. Power[k] collects the
// energy of modes whose frequency radius rounds to k cycles per Size cells.
type Spectrum struct {
	Power []float64
	Size  int
}

// Wavelength returns the spatial period in cells of bin k.
func (s Spectrum) Wavelength(k int) float64 {
	if k <= 0 {
		return math.Inf(1)
	}
	return float64(s.Size) / float64(k)
}

// Peak returns the strongest non-DC bin, or 0 when the spectrum is flat.
func (s Spectrum) Peak() int {
	best, bestPower := 0, 0.0
	for k := 1; k < len(s.Power); k++ {
		if s.Power[k] > bestPower {
			best, bestPower = k, s.Power[k]
		}
	}
	return best
}

// RadialSpectrum removes the mean, takes the 2D FFT and averages |F|^2
// over rings. Non-square grids are binned on the shorter side.
func RadialSpectrum(f *grayscott.Field) Spectrum {
	w, h := f.Width(), f.Height()
	vals := f.Values()

	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	n := min(w, h)
	bins := n/2 + 1
	power := make([]float64, bins)
	if variance(vals, mean) < flatVariance {
		return Spectrum{Power: power, Size: n}
	}

	rows := make([][]float64, h)
	for y := range rows {
		row := make([]float64, w)
		for x := range row {
			row[x] = vals[y*w+x] - mean
		}
		rows[y] = row
	}
	freq := fft.FFT2Real(rows)

	counts := make([]int, bins)

	for y := 0; y < h; y++ {
		fy := float64(signedIndex(y, h)) / float64(h)
		for x := 0; x < w; x++ {
			fx := float64(signedIndex(x, w)) / float64(w)
			k := int(math.Round(math.Hypot(fx, fy) * float64(n)))
			if k >= bins {
				continue
			}
			a := cmplx.Abs(freq[y][x])
			power[k] += a * a
			counts[k]++
		}
	}
	for k := range power {
		if counts[k] > 0 {
			power[k] /= float64(counts[k])
		}
	}
	return Spectrum{Power: power, Size: n}
}

// DominantWavelength returns the pattern spacing in cells, or 0 for a
// field without structure.
func DominantWavelength(f *grayscott.Field) float64 {
	s := RadialSpectrum(f)
	k := s.Peak()
	if k == 0 {
		return 0
	}
	return s.Wavelength(k)
}

// SeriesSpectrum returns the one-sided power spectrum of a mean-removed
// series.
func SeriesSpectrum(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	centred := make([]float64, len(series))
	for i, v := range series {
		centred[i] = v - mean
	}

	if variance(series, mean) < flatVariance {
		return make([]float64, len(series)/2+1)
	}
	freq := fft.FFTReal(centred)
	ps := make([]float64, len(freq)/2+1)
	for i := range ps {
		a := cmplx.Abs(freq[i])
		ps[i] = a * a
	}
	return ps
}

// DominantPeriod returns the strongest oscillation period of a series in
// samples, or 0 when the series is flat.
func DominantPeriod(series []float64) float64 {
	ps := SeriesSpectrum(series)
	best, bestPower := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestPower {
			best, bestPower = k, ps[k]
		}
	}
	if best == 0 {
		return 0
	}
	return float64(len(series)) / float64(best)
}

// flatVariance is the variance below which a field counts as uniform.
const flatVariance = 1e-20

func variance(vals []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(vals))
}

func signedIndex(i, n int) int {
	if i > n/2 {
		return i - n
	}
	return i
}
