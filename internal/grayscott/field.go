package grayscott

import "fmt"

// Field is a dense W x H grid of concentrations stored in row-major order.
type Field struct {
	w, h int
	data []float64
}

// NewField allocates a zeroed field. Dimensions must be positive.
func NewField(w, h int) (*Field, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: field size %dx%d", ErrInvalidConfiguration, w, h)
	}
	return &Field{w: w, h: h, data: make([]float64, w*h)}, nil
}

func (f *Field) Width() int  { return f.w }
func (f *Field) Height() int { return f.h }

// Index returns the slice index for (x, y). No bounds check.
func (f *Field) Index(x, y int) int { return y*f.w + x }

// At returns the value at column x, row y.
func (f *Field) At(x, y int) float64 { return f.data[y*f.w+x] }

// Set writes v at column x, row y.
func (f *Field) Set(x, y int, v float64) { f.data[y*f.w+x] = v }

// Fill sets every cell to v.
func (f *Field) Fill(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Values exposes the backing slice. Callers must not retain it across steps.
func (f *Field) Values() []float64 { return f.data }

// Clone returns an independent copy.
func (f *Field) Clone() *Field {
	c := &Field{w: f.w, h: f.h, data: make([]float64, len(f.data))}
	copy(c.data, f.data)
	return c
}

// CopyFrom overwrites f with src. Sizes must match.
func (f *Field) CopyFrom(src *Field) error {
	if src.w != f.w || src.h != f.h {
		return fmt.Errorf("%w: copy %dx%d into %dx%d", ErrInvalidArgument, src.w, src.h, f.w, f.h)
	}
	copy(f.data, src.data)
	return nil
}

// Wrap maps (x, y) onto the torus.
func (f *Field) Wrap(x, y int) (int, int) {
	x = (x%f.w + f.w) % f.w
	y = (y%f.h + f.h) % f.h
	return x, y
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
