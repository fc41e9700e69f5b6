package grayscott

import (
	"fmt"
	"math"
)

const (
	DefaultDu   = 0.16
	DefaultDv   = 0.08
	DefaultFeed = 0.055
	DefaultKill = 0.062
	DefaultDt   = 1.0

	// MinRate and MaxRate bound both the feed and the kill rate.
	MinRate = 0.001
	MaxRate = 0.1
)

// Params are the scalar coefficients of the model. Du, Dv and Dt are fixed
// once an engine is built; F and K may change between steps.
type Params struct {
	Du, Dv float64
	F, K   float64
	Dt     float64
}

// DefaultParams returns the conventional spot-forming configuration.
func DefaultParams() Params {
	return Params{Du: DefaultDu, Dv: DefaultDv, F: DefaultFeed, K: DefaultKill, Dt: DefaultDt}
}

// withDefaults fills zero fields from DefaultParams and clamps the rates.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Du == 0 {
		p.Du = d.Du
	}
	if p.Dv == 0 {
		p.Dv = d.Dv
	}
	if p.F == 0 {
		p.F = d.F
	}
	if p.K == 0 {
		p.K = d.K
	}
	if p.Dt == 0 {
		p.Dt = d.Dt
	}
	p.F = ClampRate(p.F)
	p.K = ClampRate(p.K)
	return p
}

func (p Params) validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be finite and non-negative, got %v", ErrInvalidConfiguration, name, v)
		}
		return nil
	}
	if err := check("du", p.Du); err != nil {
		return err
	}
	if err := check("dv", p.Dv); err != nil {
		return err
	}
	return check("dt", p.Dt)
}

// ClampRate limits a feed or kill rate to [MinRate, MaxRate].
// NaN maps to MinRate.
func ClampRate(v float64) float64 {
	if !(v >= MinRate) {
		return MinRate
	}
	if v > MaxRate {
		return MaxRate
	}
	return v
}

// Params returns a copy of the current parameters.
func (e *Engine) Params() Params { return e.params }

// SetParameters clamps and stores both rates.
func (e *Engine) SetParameters(f, k float64) {
	e.SetFeed(f)
	e.SetKill(k)
}

// SetFeed clamps and stores the feed rate.
func (e *Engine) SetFeed(f float64) { e.params.F = ClampRate(f) }

// SetKill clamps and stores the kill rate.
func (e *Engine) SetKill(k float64) { e.params.K = ClampRate(k) }

// ApplyPreset overwrites f and k from the preset table. Unknown IDs are
// ignored and reported as false.
func (e *Engine) ApplyPreset(id int) bool {
	p, ok := LookupPreset(id)
	if !ok {
		return false
	}
	e.SetParameters(p.F, p.K)
	return true
}

// GetParams exposes the parameters by name.
func (e *Engine) GetParams() map[string]float64 {
	return map[string]float64{
		"f":  e.params.F,
		"k":  e.params.K,
		"du": e.params.Du,
		"dv": e.params.Dv,
		"dt": e.params.Dt,
	}
}

// TunableParams lists the names accepted by SetParam.
func (e *Engine) TunableParams() []string { return []string{"f", "k"} }

// SetParam updates a parameter by name. Only f and k are mutable.
func (e *Engine) SetParam(name string, v float64) error {
	switch name {
	case "f":
		e.SetFeed(v)
	case "k":
		e.SetKill(v)
	case "du", "dv", "dt":
		return fmt.Errorf("%w: %s", ErrImmutableParam, name)
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidArgument, name)
	}
	return nil
}
