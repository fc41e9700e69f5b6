package grayscott

import "fmt"

// Kernel holds 3x3 stencil weights indexed [row][col], centre at [1][1].
type Kernel [3][3]float64

// DefaultKernel is the nine-point Laplacian used by the Gray-Scott step.
// Its weights sum to zero, so uniform fields have no diffusion.
var DefaultKernel = Kernel{
	{0.05, 0.20, 0.05},
	{0.20, -1.00, 0.20},
	{0.05, 0.20, 0.05},
}

// Sum returns the total weight of the kernel.
func (k Kernel) Sum() float64 {
	s := 0.0
	for _, row := range k {
		for _, w := range row {
			s += w
		}
	}
	return s
}

// Laplacian returns a new field holding the stencil of a with periodic wrap.
func Laplacian(a *Field) *Field {
	dst := &Field{w: a.w, h: a.h, data: make([]float64, len(a.data))}
	laplacianRows(&DefaultKernel, dst, a, 0, a.h)
	return dst
}

// LaplacianInto writes the stencil of a into dst. dst must not alias a.
func LaplacianInto(dst, a *Field) error {
	if dst.w != a.w || dst.h != a.h {
		return fmt.Errorf("%w: laplacian %dx%d into %dx%d", ErrInvalidArgument, a.w, a.h, dst.w, dst.h)
	}
	if dst == a {
		return fmt.Errorf("%w: laplacian destination aliases its source", ErrInvalidArgument)
	}
	laplacianRows(&DefaultKernel, dst, a, 0, a.h)
	return nil
}

func laplacianRows(k *Kernel, dst, a *Field, y0, y1 int) {
	w := a.w
	for y := y0; y < y1; y++ {
		up, mid, down := a.rowNeighbours(y)
		out := dst.data[mid : mid+w]
		for x := 0; x < w; x++ {
			xl, xr := wrapLeft(x, w), wrapRight(x, w)
			out[x] = stencilAt(k, a.data, up, mid, down, xl, x, xr)
		}
	}
}

// rowNeighbours returns the start offsets of rows y-1, y and y+1 on the torus.
func (f *Field) rowNeighbours(y int) (up, mid, down int) {
	yu := y - 1
	if yu < 0 {
		yu = f.h - 1
	}
	yd := y + 1
	if yd == f.h {
		yd = 0
	}
	return yu * f.w, y * f.w, yd * f.w
}

func wrapLeft(x, w int) int {
	if x == 0 {
		return w - 1
	}
	return x - 1
}

func wrapRight(x, w int) int {
	if x == w-1 {
		return 0
	}
	return x + 1
}

// stencilAt sums the 3x3 neighbourhood in a fixed order so every caller
// produces bit-identical results.
func stencilAt(k *Kernel, d []float64, up, mid, down, xl, x, xr int) float64 {
	return k[0][0]*d[up+xl] + k[0][1]*d[up+x] + k[0][2]*d[up+xr] +
		k[1][0]*d[mid+xl] + k[1][1]*d[mid+x] + k[1][2]*d[mid+xr] +
		k[2][0]*d[down+xl] + k[2][1]*d[down+x] + k[2][2]*d[down+xr]
}
