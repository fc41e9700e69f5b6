package viz

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rdsim/internal/export"
	"github.com/san-kum/rdsim/internal/grayscott"
)

// halfBlock draws the top sample in the foreground and the bottom one in
// the background.
const halfBlock = "▀"

// quantShift drops palette resolution so the style cache stays small.
const quantShift = 3

// Canvas renders a field into a fixed block of terminal cells.
type Canvas struct {
	Cols, Rows int
	cm         *export.Colormap
	styles     map[[2]uint8]lipgloss.Style
}

func NewCanvas(cols, rows int, cm *export.Colormap) *Canvas {
	return &Canvas{
		Cols:   cols,
		Rows:   rows,
		cm:     cm,
		styles: make(map[[2]uint8]lipgloss.Style),
	}
}

// SetColormap swaps the palette and drops cached styles.
func (c *Canvas) SetColormap(cm *export.Colormap) {
	c.cm = cm
	c.styles = make(map[[2]uint8]lipgloss.Style)
}

// Resize changes the viewport. Sizes below one cell are raised to one.
func (c *Canvas) Resize(cols, rows int) {
	c.Cols, c.Rows = max(cols, 1), max(rows, 1)
}

// GridPos maps a terminal cell to the grid cell under it. ok is false
// outside the canvas.
func (c *Canvas) GridPos(col, row, w, h int) (x, y int, ok bool) {
	if col < 0 || row < 0 || col >= c.Cols || row >= c.Rows {
		return 0, 0, false
	}
	x = col * w / c.Cols
	y = (2*row*h + h/2) / (2 * c.Rows)
	return min(x, w-1), min(y, h-1), true
}

func (c *Canvas) style(top, bottom uint8) lipgloss.Style {
	key := [2]uint8{top >> quantShift, bottom >> quantShift}
	if s, ok := c.styles[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(hex(c.cm.Palette()[top&^(1<<quantShift-1)])).
		Background(hex(c.cm.Palette()[bottom&^(1<<quantShift-1)]))
	c.styles[key] = s
	return s
}

func hex(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

// Render samples f with nearest-neighbour lookup, two grid rows per
// terminal row.
func (c *Canvas) Render(f *grayscott.Field) string {
	w, h := f.Width(), f.Height()
	samples := 2 * c.Rows

	var sb strings.Builder
	for row := 0; row < c.Rows; row++ {
		yTop := (2 * row) * h / samples
		yBot := (2*row + 1) * h / samples
		for col := 0; col < c.Cols; col++ {
			x := col * w / c.Cols
			top := export.Index(f.At(x, yTop))
			bot := export.Index(f.At(x, yBot))
			sb.WriteString(c.style(top, bot).Render(halfBlock))
		}
		if row < c.Rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
