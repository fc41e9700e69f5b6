package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/san-kum/rdsim/internal/grayscott"
)

// ScreenshotName is the file name used for viewer screenshots.
func ScreenshotName(frame int) string {
	return fmt.Sprintf("reaction_diffusion_%06d.png", frame)
}

// Render maps a field through the colormap at one pixel per cell, then
// scales it up with nearest-neighbour sampling.
func Render(f *grayscott.Field, cm *Colormap, scale int) *image.Paletted {
	w, h := f.Width(), f.Height()
	img := image.NewPaletted(image.Rect(0, 0, w, h), cm.Palette())
	vals := f.Values()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for x := range row {
			row[x] = Index(vals[y*w+x])
		}
	}
	if scale <= 1 {
		return img
	}

	big := image.NewPaletted(image.Rect(0, 0, w*scale, h*scale), cm.Palette())
	xdraw.NearestNeighbor.Scale(big, big.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return big
}

func EncodePNG(w io.Writer, f *grayscott.Field, cm *Colormap, scale int) error {
	return png.Encode(w, Render(f, cm, scale))
}

func SavePNG(path string, f *grayscott.Field, cm *Colormap, scale int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodePNG(file, f, cm, scale); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
