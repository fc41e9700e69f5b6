package grayscott

import (
	"fmt"
	"runtime"
	"time"
)

const (
	// DefaultSeeds is the number of random discs placed by New and Reset.
	DefaultSeeds = 5
	// NoSeeds makes New leave V empty so callers can lay out seeds themselves.
	NoSeeds = -1
)

// Random seeding bounds. Upper bounds are exclusive.
const (
	minSeedRadius  = 5
	maxSeedRadius  = 15
	minClearSeeds  = 3
	maxClearSeeds  = 8
	seedEdgeMargin = 50
)

// Config describes a new engine. Zero-valued fields take defaults.
type Config struct {
	Width, Height int
	Params        Params
	// Seeds is the number of random V discs placed at construction.
	Seeds int
	// Workers bounds the goroutines used per step. Defaults to NumCPU.
	Workers int
	// Rand drives seed placement. Defaults to a time-seeded source.
	Rand RandSource
}

// Engine owns the U and V fields and advances them in time.
type Engine struct {
	params  Params
	kernel  Kernel
	u, v    *Field
	uNext   *Field
	vNext   *Field
	rng     RandSource
	workers int
	steps   int
}

// New builds an engine with U=1 everywhere, V=0 everywhere, then places
// cfg.Seeds random V discs.
func New(cfg Config) (*Engine, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: grid size must be positive, got %dx%d", ErrInvalidConfiguration, cfg.Width, cfg.Height)
	}
	params := cfg.Params.withDefaults()
	if err := params.validate(); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = NewRand(time.Now().UnixNano())
	}

	e := &Engine{
		params:  params,
		kernel:  DefaultKernel,
		rng:     rng,
		workers: workers,
	}
	buffers := []**Field{&e.u, &e.v, &e.uNext, &e.vNext}
	for _, b := range buffers {
		f, err := NewField(cfg.Width, cfg.Height)
		if err != nil {
			return nil, err
		}
		*b = f
	}

	seeds := cfg.Seeds
	switch {
	case seeds == 0:
		seeds = DefaultSeeds
	case seeds < 0:
		seeds = 0
	}
	e.reseed(seeds)
	return e, nil
}

// Size returns the grid dimensions.
func (e *Engine) Size() (w, h int) { return e.u.w, e.u.h }

// Steps returns the number of steps taken since construction or the last reset.
func (e *Engine) Steps() int { return e.steps }

// Time returns the simulated time since construction or the last reset.
func (e *Engine) Time() float64 { return float64(e.steps) * e.params.Dt }

// Workers returns the goroutine bound used by Step.
func (e *Engine) Workers() int { return e.workers }

// Step advances both fields by one explicit Euler step. Every cell reads
// the pre-step snapshot; results land in the back buffers which are then
// swapped in.
func (e *Engine) Step() {
	parallelRows(e.u.h, e.workers, e.stepRows)
	e.u, e.uNext = e.uNext, e.u
	e.v, e.vNext = e.vNext, e.v
	e.steps++
}

// StepN calls Step n times.
func (e *Engine) StepN(n int) {
	for i := 0; i < n; i++ {
		e.Step()
	}
}

func (e *Engine) stepRows(y0, y1 int) {
	p, k := e.params, &e.kernel
	w := e.u.w
	u, v := e.u.data, e.v.data
	un, vn := e.uNext.data, e.vNext.data

	for y := y0; y < y1; y++ {
		up, mid, down := e.u.rowNeighbours(y)
		for x := 0; x < w; x++ {
			xl, xr := wrapLeft(x, w), wrapRight(x, w)
			i := mid + x
			uu, vv := u[i], v[i]

			lapU := stencilAt(k, u, up, mid, down, xl, x, xr)
			lapV := stencilAt(k, v, up, mid, down, xl, x, xr)
			r := uu * vv * vv

			un[i] = clamp01(uu + p.Dt*(p.Du*lapU-r+p.F*(1-uu)))
			vn[i] = clamp01(vv + p.Dt*(p.Dv*lapV+r-(p.F+p.K)*vv))
		}
	}
}

func (e *Engine) field(c Chemical) (*Field, error) {
	switch c {
	case U:
		return e.u, nil
	case V:
		return e.v, nil
	}
	return nil, fmt.Errorf("%w: unknown chemical %v", ErrInvalidArgument, c)
}

// Field returns the live grid for c. It must be treated as read-only and
// is only valid until the next Step, Reset or ClearWithSeeds.
func (e *Engine) Field(c Chemical) (*Field, error) {
	return e.field(c)
}

// U returns the live U grid. The same validity rules as Field apply.
func (e *Engine) U() *Field { return e.u }

// V returns the live V grid.
func (e *Engine) V() *Field { return e.v }

// Snapshot returns a copy of the grid for c.
func (e *Engine) Snapshot(c Chemical) (*Field, error) {
	f, err := e.field(c)
	if err != nil {
		return nil, err
	}
	return f.Clone(), nil
}

// AddChemical sets every cell whose centre lies within radius of (x, y) to
// value. The disc does not wrap around the torus; parts outside the grid are
// dropped. Negative radii act as zero and value is clamped to [0, 1].
func (e *Engine) AddChemical(x, y, radius int, c Chemical, value float64) error {
	f, err := e.field(c)
	if err != nil {
		return err
	}
	if radius < 0 {
		radius = 0
	}
	fillDisc(f, x, y, radius, clamp01(value))
	return nil
}

func fillDisc(f *Field, cx, cy, radius int, value float64) {
	x0, x1 := max(cx-radius, 0), min(cx+radius, f.w-1)
	y0, y1 := max(cy-radius, 0), min(cy+radius, f.h-1)
	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		dy := y - cy
		row := f.data[y*f.w : (y+1)*f.w]
		for x := x0; x <= x1; x++ {
			dx := x - cx
			if dx*dx+dy*dy <= r2 {
				row[x] = value
			}
		}
	}
}

// Reset restores U=1, V=0 and places DefaultSeeds random V discs.
// Parameters are untouched.
func (e *Engine) Reset() {
	e.reseed(DefaultSeeds)
}

// ClearWithSeeds is Reset with a random disc count in [3, 8).
func (e *Engine) ClearWithSeeds() {
	e.reseed(intIn(e.rng, minClearSeeds, maxClearSeeds))
}

func (e *Engine) reseed(n int) {
	e.u.Fill(1)
	e.v.Fill(0)
	e.steps = 0
	mx, my := seedMargin(e.u.w), seedMargin(e.u.h)
	for i := 0; i < n; i++ {
		cx := intIn(e.rng, mx, e.u.w-mx)
		cy := intIn(e.rng, my, e.u.h-my)
		r := intIn(e.rng, minSeedRadius, maxSeedRadius)
		fillDisc(e.v, cx, cy, r, 1)
	}
}

// seedMargin keeps random discs away from the edges, shrinking the margin
// on grids too small for the default.
func seedMargin(n int) int {
	if n > 2*seedEdgeMargin {
		return seedEdgeMargin
	}
	return n / 4
}
