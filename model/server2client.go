package model

type ServerMessage struct {
	Setup  []Setup
	Frames []Frame
	Over   []Over
}

type Setup struct {
	Session string
	Size    int
	Frames  int
	Paused  bool
}

// Frame is one generation of the grid, row-major, one State per byte.
type Frame struct {
	Generation uint64
	Cells      []byte
	Counts     Counts
}

type Over struct {
	Generation uint64
	Reason     string
}

// FrameOf captures the current generation of m.
func FrameOf(m *Model) Frame {
	return Frame{
		Generation: m.Generation(),
		Cells:      m.Flat(),
		Counts:     m.Counts(),
	}
}
