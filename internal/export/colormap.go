package export

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/mazznoer/colorgrad"
)

// PaletteSize is the number of discrete colours in every colormap.
const PaletteSize = 256

// Colormap maps a concentration in [0, 1] to a colour.
type Colormap struct {
	Name    string
	palette color.Palette
}

type stop struct {
	t       float64
	r, g, b float64
}

var (
	classicStops = []stop{
		{0.0, 10, 10, 40},
		{0.1, 30, 40, 100},
		{0.3, 50, 200, 200},
		{0.5, 200, 255, 100},
		{0.7, 255, 175, 50},
		{0.85, 255, 75, 80},
		{1.0, 255, 255, 255},
	}
	emberStops = []stop{
		{0.0, 15, 5, 30},
		{0.2, 40, 15, 80},
		{0.4, 160, 45, 160},
		{0.6, 255, 165, 50},
		{0.8, 255, 235, 30},
		{1.0, 255, 255, 255},
	}
)

var gradients = map[string]func() colorgrad.Gradient{
	"viridis": colorgrad.Viridis,
	"inferno": colorgrad.Inferno,
	"magma":   colorgrad.Magma,
	"plasma":  colorgrad.Plasma,
}

// cycleOrder is the order the viewer steps through.
var cycleOrder = []string{"classic", "ember", "viridis", "inferno", "magma", "plasma"}

// Names lists every available colormap in cycle order.
func Names() []string {
	out := make([]string, len(cycleOrder))
	copy(out, cycleOrder)
	return out
}

// Next returns the colormap after name in cycle order.
func Next(name string) string {
	for i, n := range cycleOrder {
		if n == name {
			return cycleOrder[(i+1)%len(cycleOrder)]
		}
	}
	return cycleOrder[0]
}

// Lookup builds the named colormap.
func Lookup(name string) (*Colormap, error) {
	switch name {
	case "classic":
		return &Colormap{Name: name, palette: fromStops(classicStops)}, nil
	case "ember":
		return &Colormap{Name: name, palette: fromStops(emberStops)}, nil
	}
	if g, ok := gradients[name]; ok {
		return &Colormap{Name: name, palette: fromGradient(g())}, nil
	}
	known := Names()
	sort.Strings(known)
	return nil, fmt.Errorf("unknown colormap %q (known: %v)", name, known)
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) *Colormap {
	cm, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return cm
}

// Index returns the palette slot for a concentration.
func Index(v float64) uint8 {
	switch {
	case v != v || v <= 0:
		return 0
	case v >= 1:
		return PaletteSize - 1
	}
	return uint8(v * (PaletteSize - 1))
}

// At returns the colour for a concentration.
func (c *Colormap) At(v float64) color.RGBA {
	return c.palette[Index(v)].(color.RGBA)
}

// Palette returns the underlying 256-entry palette.
func (c *Colormap) Palette() color.Palette { return c.palette }

// fromStops linearly interpolates between stops, one segment at a time.
func fromStops(stops []stop) color.Palette {
	pal := make(color.Palette, PaletteSize)
	seg := 0
	for i := range pal {
		t := float64(i) / (PaletteSize - 1)
		for seg < len(stops)-2 && t > stops[seg+1].t {
			seg++
		}
		a, b := stops[seg], stops[seg+1]
		s := (t - a.t) / (b.t - a.t)
		s = min(max(s, 0), 1)
		pal[i] = color.RGBA{
			R: uint8(a.r + s*(b.r-a.r)),
			G: uint8(a.g + s*(b.g-a.g)),
			B: uint8(a.b + s*(b.b-a.b)),
			A: 255,
		}
	}
	return pal
}

func fromGradient(g colorgrad.Gradient) color.Palette {
	pal := make(color.Palette, 0, PaletteSize)
	for _, c := range g.Colors(PaletteSize) {
		pal = append(pal, color.RGBAModel.Convert(c).(color.RGBA))
	}
	return pal
}
