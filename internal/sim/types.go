package sim

import (
	"errors"

	"github.com/san-kum/rdsim/internal/grayscott"
)

var ErrInvalidRun = errors.New("sim: invalid run configuration")

// Metric reduces the fields to one number at each sample point.
type Metric interface {
	Name() string
	Observe(u, v *grayscott.Field, t float64)
	Value() float64
	Reset()
}

// Observer is called at every sample point with the live engine. It must
// not step or reseed the engine.
type Observer interface {
	OnSample(step int, e *grayscott.Engine) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, e *grayscott.Engine) error

func (f ObserverFunc) OnSample(step int, e *grayscott.Engine) error { return f(step, e) }

type Config struct {
	Steps int
	// SampleEvery is the number of steps between samples. Zero picks a
	// stride giving about DefaultSamples samples.
	SampleEvery int
}

const DefaultSamples = 200

type Result struct {
	Steps      []int
	Times      []float64
	Series     map[string][]float64
	Metrics    map[string]float64
	StepsTaken int
	Params     grayscott.Params
}

// Last returns the final sampled value of a series.
func (r *Result) Last(name string) (float64, bool) {
	s := r.Series[name]
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}
