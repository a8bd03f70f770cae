package view

import (
	"fmt"
	"image"
	"image/gif"
	"io"

	"golang.org/x/image/draw"
)

// Recorder collects frames into an animated GIF, one square of scale×scale
// pixels per cell.
type Recorder struct {
	palette Palette
	scale   int
	delay   int
	anim    gif.GIF
}

// NewRecorder returns a recorder; delay is in hundredths of a second.
func NewRecorder(p Palette, scale, delay int) *Recorder {
	if scale < 1 {
		scale = 1
	}
	return &Recorder{palette: p, scale: scale, delay: delay}
}

// Add appends a row-major frame of size×size states.
func (r *Recorder) Add(size int, cells []byte) error {
	if len(cells) != size*size {
		return fmt.Errorf("frame has %d cells, want %d", len(cells), size*size)
	}
	colors := r.palette.Colors()
	src := image.NewPaletted(image.Rect(0, 0, size, size), colors)
	copy(src.Pix, cells)

	dst := image.NewPaletted(image.Rect(0, 0, size*r.scale, size*r.scale), colors)
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	r.anim.Image = append(r.anim.Image, dst)
	r.anim.Delay = append(r.anim.Delay, r.delay)
	return nil
}

func (r *Recorder) Frames() int {
	return len(r.anim.Image)
}

func (r *Recorder) Encode(w io.Writer) error {
	if len(r.anim.Image) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	if err := gif.EncodeAll(w, &r.anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}
