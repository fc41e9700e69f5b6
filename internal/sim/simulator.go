package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/rdsim/internal/grayscott"
)

// Simulator drives an engine headlessly and samples metrics along the way.
type Simulator struct {
	eng       *grayscott.Engine
	metrics   []Metric
	observers []Observer
}

func New(eng *grayscott.Engine) *Simulator {
	return &Simulator{
		eng:       eng,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) Engine() *grayscott.Engine { return s.eng }

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances the engine cfg.Steps times. The initial state and the final
// state are always sampled. On cancellation the partial result is returned
// with ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	every := sampleStride(cfg)

	result := &Result{
		Steps:   make([]int, 0, cfg.Steps/every+2),
		Times:   make([]float64, 0, cfg.Steps/every+2),
		Series:  make(map[string][]float64, len(s.metrics)),
		Metrics: make(map[string]float64, len(s.metrics)),
		Params:  s.eng.Params(),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	if err := s.sample(result); err != nil {
		return result, err
	}

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		s.eng.Step()
		result.StepsTaken++

		if i%every == 0 || i == cfg.Steps {
			if err := s.sample(result); err != nil {
				s.finish(result)
				return result, err
			}
		}
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) sample(r *Result) error {
	u, v := s.eng.U(), s.eng.V()
	t := s.eng.Time()
	r.Steps = append(r.Steps, s.eng.Steps())
	r.Times = append(r.Times, t)
	for _, m := range s.metrics {
		m.Observe(u, v, t)
		r.Series[m.Name()] = append(r.Series[m.Name()], m.Value())
	}
	for _, obs := range s.observers {
		if err := obs.OnSample(s.eng.Steps(), s.eng); err != nil {
			return fmt.Errorf("observer at step %d: %w", s.eng.Steps(), err)
		}
	}
	return nil
}

func (s *Simulator) finish(r *Result) {
	r.Params = s.eng.Params()
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback steps until the callback returns false, the context is
// cancelled or maxSteps is reached. maxSteps <= 0 means no limit.
func (s *Simulator) RunWithCallback(ctx context.Context, maxSteps int, callback func(e *grayscott.Engine) bool) error {
	for i := 0; maxSteps <= 0 || i < maxSteps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(s.eng) {
			return nil
		}
		s.eng.Step()
	}
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidRun, cfg.Steps)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample stride must be non-negative, got %d", ErrInvalidRun, cfg.SampleEvery)
	}
	return nil
}

func sampleStride(cfg Config) int {
	if cfg.SampleEvery > 0 {
		return cfg.SampleEvery
	}
	return max(cfg.Steps/DefaultSamples, 1)
}
