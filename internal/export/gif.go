package export

import (
	"errors"
	"image"
	"image/gif"
	"io"
	"os"

	"github.com/san-kum/rdsim/internal/grayscott"
)

// DefaultMaxFrames caps a recording so a forgotten toggle cannot eat memory.
const DefaultMaxFrames = 600

var ErrNoFrames = errors.New("export: no frames recorded")

// GIFRecorder collects rendered frames of the V field.
type GIFRecorder struct {
	cm        *Colormap
	scale     int
	delay     int
	maxFrames int
	frames    []*image.Paletted
}

// NewGIFRecorder records frames with the given colormap. delay is in
// hundredths of a second.
func NewGIFRecorder(cm *Colormap, scale, delay int) *GIFRecorder {
	if delay <= 0 {
		delay = 2
	}
	return &GIFRecorder{cm: cm, scale: scale, delay: delay, maxFrames: DefaultMaxFrames}
}

// SetColormap changes the colormap of later frames.
func (r *GIFRecorder) SetColormap(cm *Colormap) { r.cm = cm }

// Capture renders f as the next frame. Frames past the cap are dropped.
func (r *GIFRecorder) Capture(f *grayscott.Field) {
	if len(r.frames) >= r.maxFrames {
		return
	}
	r.frames = append(r.frames, Render(f, r.cm, r.scale))
}

// OnSample captures V at every sample point of a headless run.
func (r *GIFRecorder) OnSample(step int, e *grayscott.Engine) error {
	r.Capture(e.V())
	return nil
}

func (r *GIFRecorder) Len() int { return len(r.frames) }

func (r *GIFRecorder) Reset() { r.frames = r.frames[:0] }

func (r *GIFRecorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (r *GIFRecorder) Save(path string) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
