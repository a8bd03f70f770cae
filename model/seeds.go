package model

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadSeeds reads a seed map: one text line per grid row, '*' marks an
// infected seed, '.' or ' ' a susceptible cell. Lines starting with '#' are
// comments.
func ReadSeeds(reader io.Reader) ([]Coord, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	seeds := make([]Coord, 0)
	row := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#") {
			continue
		}
		for col, char := range []rune(line) {
			switch char {
			case '*':
				seeds = append(seeds, Coord{Row: row, Col: col})
			case '.', ' ':
			default:
				return nil, fmt.Errorf("%w: seed map row %d col %d: unexpected %q", ErrInvalidConfiguration, row, col, char)
			}
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seed map: %w", err)
	}
	return seeds, nil
}
