// Package view turns server frames into pictures: a client side board that
// follows the stream, the state palette and an animated GIF recorder.
package view

import (
	"image/color"

	"github.com/zucenko/contagion/model"
)

// Palette holds one color per state, indexed by the state value.
type Palette [4]color.RGBA

var DefaultPalette = Palette{
	model.Susceptible: {R: 48, G: 41, B: 40, A: 255},
	model.Infected:    {R: 255, G: 140, B: 0, A: 255},
	model.Recovered:   {R: 252, G: 250, B: 104, A: 255},
	model.Dead:        {R: 127, G: 127, B: 127, A: 255},
}

func (p Palette) Color(s model.State) color.RGBA {
	if !s.Valid() {
		return color.RGBA{A: 255}
	}
	return p[s]
}

// Colors returns p as an image palette whose index equals the state value.
func (p Palette) Colors() color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = c
	}
	return out
}
