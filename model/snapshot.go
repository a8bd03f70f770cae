package model

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
)

// ErrSnapshotMismatch is returned when snapshot arrays disagree with its size
// or hold states the rules could never produce.
var ErrSnapshotMismatch = errors.New("snapshot mismatch")

// Snapshot is the complete dynamic and static state of a model.
type Snapshot struct {
	Size         int
	Generation   uint64
	Cells        [][]State
	Immune       [][]bool
	CanRecover   [][]bool
	DaysInfected [][]uint32
}

func (m *Model) Snapshot() Snapshot {
	snap := Snapshot{
		Size:         m.size,
		Generation:   m.generation,
		Cells:        cloneStates(m.matrix),
		Immune:       make([][]bool, m.size),
		CanRecover:   make([][]bool, m.size),
		DaysInfected: make([][]uint32, m.size),
	}
	for r := 0; r < m.size; r++ {
		snap.Immune[r] = append([]bool(nil), m.immune[r]...)
		snap.CanRecover[r] = append([]bool(nil), m.canRecover[r]...)
		snap.DaysInfected[r] = append([]uint32(nil), m.daysInfected[r]...)
	}
	return snap
}

// Restore rebuilds a model from a snapshot. cfg supplies the rule constants
// and the seeds used by later rebuilds; its grid size is replaced by the
// snapshot's.
func Restore(snap Snapshot, cfg Config, src Source) (*Model, error) {
	cfg.GridSize = snap.Size
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := snap.check(); err != nil {
		return nil, err
	}
	m := newEmptyModel(cfg, src)
	m.generation = snap.Generation
	for r := 0; r < m.size; r++ {
		copy(m.matrix[r], snap.Cells[r])
		copy(m.immune[r], snap.Immune[r])
		copy(m.canRecover[r], snap.CanRecover[r])
		copy(m.daysInfected[r], snap.DaysInfected[r])
	}
	return m, nil
}

func (s Snapshot) check() error {
	if len(s.Cells) != s.Size || len(s.Immune) != s.Size ||
		len(s.CanRecover) != s.Size || len(s.DaysInfected) != s.Size {
		return fmt.Errorf("%w: expected %d rows", ErrSnapshotMismatch, s.Size)
	}
	for r := 0; r < s.Size; r++ {
		if len(s.Cells[r]) != s.Size || len(s.Immune[r]) != s.Size ||
			len(s.CanRecover[r]) != s.Size || len(s.DaysInfected[r]) != s.Size {
			return fmt.Errorf("%w: row %d is not %d wide", ErrSnapshotMismatch, r, s.Size)
		}
		for c, st := range s.Cells[r] {
			if !st.Valid() {
				return fmt.Errorf("%w: cell (%d,%d) has state %v", ErrSnapshotMismatch, r, c, st)
			}
			if s.Immune[r][c] && st != Susceptible {
				return fmt.Errorf("%w: immune cell (%d,%d) is %v", ErrSnapshotMismatch, r, c, st)
			}
			if st == Susceptible && s.DaysInfected[r][c] > 0 {
				return fmt.Errorf("%w: susceptible cell (%d,%d) has %d days infected", ErrSnapshotMismatch, r, c, s.DaysInfected[r][c])
			}
		}
	}
	return nil
}

func WriteSnapshot(w io.Writer, snap Snapshot) error {
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := snap.check(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
