package view

import (
	"bytes"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderWritesScaledFrames(t *testing.T) {
	rec := NewRecorder(DefaultPalette, 3, 20)
	require.NoError(t, rec.Add(2, []byte{0, 1, 2, 3}))
	require.NoError(t, rec.Add(2, []byte{3, 3, 3, 3}))
	assert.Error(t, rec.Add(2, []byte{0}))
	assert.Equal(t, 2, rec.Frames())

	var buf bytes.Buffer
	require.NoError(t, rec.Encode(&buf))

	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, anim.Image, 2)
	assert.Equal(t, []int{20, 20}, anim.Delay)

	first := anim.Image[0]
	assert.Equal(t, 6, first.Bounds().Dx())
	r, g, b, _ := first.At(4, 1).RGBA()
	want := DefaultPalette[1]
	assert.Equal(t, []uint32{uint32(want.R), uint32(want.G), uint32(want.B)}, []uint32{r >> 8, g >> 8, b >> 8})
	r, g, b, _ = first.At(5, 5).RGBA()
	want = DefaultPalette[3]
	assert.Equal(t, []uint32{uint32(want.R), uint32(want.G), uint32(want.B)}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestRecorderWithoutFrames(t *testing.T) {
	assert.Error(t, NewRecorder(DefaultPalette, 0, 5).Encode(&bytes.Buffer{}))
}
