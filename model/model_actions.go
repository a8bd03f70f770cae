package model

// neighbours lists the Moore offsets in the order the spreading rule visits them.
var neighbours = [8][2]int{
	{0, -1}, {0, 1}, {-1, 0}, {1, 0},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// New builds a model with every cell susceptible except the configured seeds.
// Traits are drawn once per cell, immune first, in row-major order.
func New(cfg Config, src Source) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := newEmptyModel(cfg, src)
	// draw traits
	for r := 0; r < m.size; r++ {
		for c := 0; c < m.size; c++ {
			m.immune[r][c] = src.Float64() < cfg.ImmuneProbability
			m.canRecover[r][c] = src.Float64() < cfg.RecoverProbability
		}
	}
	// patient zero
	for _, seed := range cfg.Seeds {
		at := cfg.wrap(seed)
		m.matrix[at.Row][at.Col] = Infected
		m.immune[at.Row][at.Col] = false
	}
	return m, nil
}

func newEmptyModel(cfg Config, src Source) *Model {
	n := cfg.GridSize
	m := &Model{
		size:         n,
		cfg:          cfg,
		src:          src,
		matrix:       make([][]State, n),
		immune:       make([][]bool, n),
		canRecover:   make([][]bool, n),
		daysInfected: make([][]uint32, n),
	}
	for r := 0; r < n; r++ {
		m.matrix[r] = make([]State, n)
		m.immune[r] = make([]bool, n)
		m.canRecover[r] = make([]bool, n)
		m.daysInfected[r] = make([]uint32, n)
	}
	return m
}

// Step advances the grid by one generation.
//
// Rules read the previous generation but write into a single next buffer that
// later cells of the same row-major scan also read from. A neighbour infected
// earlier in the scan is therefore not rolled again. This ordering is part of
// the model's observable dynamics and must not be replaced by a clean double
// buffer.
func (m *Model) Step() {
	old := m.matrix
	next := cloneStates(old)
	n := m.size

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if old[i][j] != Infected {
				continue
			}
			m.daysInfected[i][j]++

			if m.daysInfected[i][j] > m.cfg.InfectionDurationThreshold {
				if m.canRecover[i][j] {
					if m.src.Float64() > 1-m.cfg.RecoveryRollProbability {
						next[i][j] = Recovered
					}
				} else if m.src.Float64() > 1-m.cfg.DeathRollProbability {
					next[i][j] = Dead
				}
			}

			// the first row and column never spread
			if i == 0 || j == 0 {
				continue
			}
			for _, d := range neighbours {
				m.spread(next, (i+d[0]+n)%n, (j+d[1]+n)%n)
			}
		}
	}

	m.matrix = next
	m.generation++
}

func (m *Model) spread(next [][]State, r, c int) {
	if m.immune[r][c] {
		next[r][c] = Susceptible
		return
	}
	switch next[r][c] {
	case Susceptible:
		if m.src.Float64() > 1-m.cfg.SpreadProbability {
			next[r][c] = Infected
		}
	case Infected, Recovered, Dead:
	}
}

func (m *Model) Size() int {
	return m.size
}

// Generation is the number of Step calls applied so far.
func (m *Model) Generation() uint64 {
	return m.generation
}

func (m *Model) Config() Config {
	return m.cfg
}

func (m *Model) At(at Coord) State {
	return m.matrix[at.Row][at.Col]
}

func (m *Model) DaysInfected(at Coord) uint32 {
	return m.daysInfected[at.Row][at.Col]
}

func (m *Model) Immune(at Coord) bool {
	return m.immune[at.Row][at.Col]
}

func (m *Model) CanRecover(at Coord) bool {
	return m.canRecover[at.Row][at.Col]
}

// Cells returns a copy of the current grid indexed [row][col].
func (m *Model) Cells() [][]State {
	return cloneStates(m.matrix)
}

// Flat returns the current grid in row-major order, one byte per cell.
func (m *Model) Flat() []byte {
	out := make([]byte, 0, m.size*m.size)
	for _, row := range m.matrix {
		for _, s := range row {
			out = append(out, byte(s))
		}
	}
	return out
}

func (m *Model) Counts() Counts {
	var counts Counts
	for _, row := range m.matrix {
		for _, s := range row {
			counts.add(s)
		}
	}
	return counts
}

func cloneStates(src [][]State) [][]State {
	dst := make([][]State, len(src))
	for i, row := range src {
		dst[i] = append([]State(nil), row...)
	}
	return dst
}
