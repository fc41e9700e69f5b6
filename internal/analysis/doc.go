// Package analysis measures the spatial and temporal structure of
// reaction-diffusion patterns.
//
//   - [RadialSpectrum]: azimuthally averaged 2D power spectrum of a field
//   - [DominantWavelength]: characteristic pattern spacing in cells
//   - [SeriesSpectrum]: power spectrum of a sampled metric series
//   - [DominantPeriod]: strongest oscillation period of a series
//
// # Pattern Scale
//
// Spots and stripes have a well defined spacing which shows up as a ring in
// the 2D spectrum:
//
//	v, _ := eng.Snapshot(grayscott.V)
//	lambda := analysis.DominantWavelength(v)
//	fmt.Printf("pattern spacing: %.1f cells\n", lambda)
//
// Uniform fields have no spectral peak and report 0.
package analysis
