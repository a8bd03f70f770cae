package view

import (
	"fmt"

	"github.com/zucenko/contagion/model"
)

// Board mirrors the session a viewer is attached to.
type Board struct {
	Session    string
	Size       int
	Frames     int
	Paused     bool
	Generation uint64
	Cells      []model.State
	Counts     model.Counts
	Over       *model.Over

	// Changed lists the cell indexes that differ from the previous frame.
	Changed []int
}

// Apply folds one server message into the board.
func (b *Board) Apply(mes model.ServerMessage) error {
	for _, setup := range mes.Setup {
		if setup.Session != b.Session || setup.Size != b.Size {
			b.Cells = make([]model.State, setup.Size*setup.Size)
			b.Over = nil
		}
		b.Session = setup.Session
		b.Size = setup.Size
		b.Frames = setup.Frames
		b.Paused = setup.Paused
	}
	for _, frame := range mes.Frames {
		if len(frame.Cells) != len(b.Cells) {
			return fmt.Errorf("frame %d has %d cells, board has %d", frame.Generation, len(frame.Cells), len(b.Cells))
		}
		b.Changed = b.Changed[:0]
		for i, raw := range frame.Cells {
			s := model.State(raw)
			if b.Cells[i] != s {
				b.Changed = append(b.Changed, i)
				b.Cells[i] = s
			}
		}
		b.Generation = frame.Generation
		b.Counts = frame.Counts
	}
	for i := range mes.Over {
		over := mes.Over[i]
		b.Over = &over
	}
	return nil
}

func (b *Board) At(row, col int) model.State {
	return b.Cells[row*b.Size+col]
}
