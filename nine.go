package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten"
)

// Nine draws a nine-slice panel: fixed corners, stretched edges and center.
type Nine struct {
	images              *ebiten.Image
	alpha               float64
	R, G, B, Scale      float64
	positions           [4][2]int
	x, y, width, height int
	targetPositions     [4][2]float64
}

// panelSource renders a rounded square used as the legend panel skin.
func panelSource(side, radius int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	r2 := radius * radius
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			dx, dy := 0, 0
			if x < radius {
				dx = radius - x
			} else if x >= side-radius {
				dx = x - (side - radius - 1)
			}
			if y < radius {
				dy = radius - y
			} else if y >= side-radius {
				dy = y - (side - radius - 1)
			}
			if dx*dx+dy*dy <= r2 {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func NewNine(side, radius int) (*Nine, error) {
	src, err := ebiten.NewImageFromImage(panelSource(side, radius), ebiten.FilterDefault)
	if err != nil {
		return nil, err
	}
	return &Nine{
		images: src,
		alpha:  0.85,
		R:      0.12, G: 0.12, B: 0.14, Scale: 1,
		positions: [4][2]int{{0, 0}, {radius, radius}, {side - radius, side - radius}, {side, side}},
	}, nil
}

func (n *Nine) SetPosition(x, y int) {
	n.x = x
	n.y = y
	n.SetSize(n.width, n.height)
}

func (n *Nine) SetSize(width, height int) {
	n.width = width
	n.height = height
	n.targetPositions[0] = [2]float64{float64(n.x), float64(n.y)}
	n.targetPositions[1] = [2]float64{
		float64(n.x) + n.Scale*float64(n.positions[1][0]),
		float64(n.y) + n.Scale*float64(n.positions[1][1])}
	n.targetPositions[2] = [2]float64{
		float64(n.x+n.width) - n.Scale*float64(n.positions[3][0]-n.positions[2][0]),
		float64(n.y+n.height) - n.Scale*float64(n.positions[3][1]-n.positions[2][1])}
	n.targetPositions[3] = [2]float64{float64(n.x + n.width), float64(n.y + n.height)}
}

func (n *Nine) Draw(screen *ebiten.Image) {
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			srcW := n.positions[col+1][0] - n.positions[col][0]
			srcH := n.positions[row+1][1] - n.positions[row][1]
			dstW := n.targetPositions[col+1][0] - n.targetPositions[col][0]
			dstH := n.targetPositions[row+1][1] - n.targetPositions[row][1]
			if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
				continue
			}
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(dstW/float64(srcW), dstH/float64(srcH))
			op.GeoM.Translate(n.targetPositions[col][0], n.targetPositions[row][1])
			op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
			part := n.images.SubImage(image.Rect(
				n.positions[col][0], n.positions[row][1],
				n.positions[col+1][0], n.positions[row+1][1])).(*ebiten.Image)
			_ = screen.DrawImage(part, op)
		}
	}
}
