package metrics

import (
	"fmt"
	"strings"

	"github.com/san-kum/rdsim/internal/grayscott"
	"github.com/san-kum/rdsim/internal/sim"
)

var (
	_ sim.Metric = (*FieldMean)(nil)
	_ sim.Metric = (*PatternCoverage)(nil)
	_ sim.Metric = (*FieldContrast)(nil)
	_ sim.Metric = (*Saturation)(nil)
)

func pick(c grayscott.Chemical, u, v *grayscott.Field) *grayscott.Field {
	if c == grayscott.U {
		return u
	}
	return v
}

// FieldMean tracks the latest mean concentration of one chemical.
type FieldMean struct {
	name string
	c    grayscott.Chemical
	last float64
}

func NewMean(c grayscott.Chemical) *FieldMean {
	return &FieldMean{name: fmt.Sprintf("mean_%s", strings.ToLower(c.String())), c: c}
}

func (m *FieldMean) Name() string { return m.name }

func (m *FieldMean) Observe(u, v *grayscott.Field, t float64) {
	m.last = Mean(pick(m.c, u, v))
}

func (m *FieldMean) Value() float64 { return m.last }

func (m *FieldMean) Reset() { m.last = 0 }

// PatternCoverage tracks the fraction of V cells above a threshold.
type PatternCoverage struct {
	name      string
	threshold float64
	last      float64
}

func NewCoverage(threshold float64) *PatternCoverage {
	if threshold <= 0 {
		threshold = DefaultCoverageThreshold
	}
	return &PatternCoverage{name: "coverage", threshold: threshold}
}

func (m *PatternCoverage) Name() string { return m.name }

func (m *PatternCoverage) Observe(u, v *grayscott.Field, t float64) {
	m.last = Coverage(v, m.threshold)
}

func (m *PatternCoverage) Value() float64 { return m.last }
func (m *PatternCoverage) Reset()         { m.last = 0 }

// FieldContrast tracks max-min of V.
type FieldContrast struct {
	last float64
}

func NewContrast() *FieldContrast { return &FieldContrast{} }

func (m *FieldContrast) Name() string { return "contrast" }

func (m *FieldContrast) Observe(u, v *grayscott.Field, t float64) {
	m.last = Contrast(v)
}

func (m *FieldContrast) Value() float64 { return m.last }
func (m *FieldContrast) Reset()         { m.last = 0 }

// Saturation reports the worst clamped fraction seen during a run. The
// engine clamps silently; a value creeping towards 1 means dt is too large
// for the diffusion rates.
type Saturation struct {
	worst float64
}

func NewSaturation() *Saturation { return &Saturation{} }

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(u, v *grayscott.Field, t float64) {
	s.worst = max(s.worst, Clamped(u, v))
}

func (s *Saturation) Value() float64 { return s.worst }
func (s *Saturation) Reset()         { s.worst = 0 }

// Standard returns the metric set recorded by headless runs.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewMean(grayscott.U),
		NewMean(grayscott.V),
		NewCoverage(DefaultCoverageThreshold),
		NewContrast(),
		NewSaturation(),
	}
}
