package types

import (
	"errors"
	"fmt"
)

// ErrInvalidDirection is returned for any direction token other than up, down, left or right.
var ErrInvalidDirection = errors.New("invalid direction")

// Cell is one integer coordinate pair on the grid.
// Y grows downwards, so "up" decreases it.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Step returns the neighbouring cell in the given direction.
// The result may lie outside the grid.
func (c Cell) Step(d Direction) Cell {
	dx, dy := d.Delta()
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// InBounds reports whether the cell lies within [0,size) on both axes.
func (c Cell) InBounds(size int) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

// Clamp pulls each axis back into [0,size).
func (c Cell) Clamp(size int) Cell {
	return Cell{X: clamp(c.X, 0, size-1), Y: clamp(c.Y, 0, size-1)}
}

// Chebyshev returns max(|dx|,|dy|) between two cells.
func Chebyshev(a, b Cell) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Directions returns the four cardinal directions.
func Directions() []Direction {
	return []Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}
}

// ParseDirection validates a direction token.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Delta returns the unit offset of the direction, or (0,0) for an unknown direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	case DirectionRight:
		return 1, 0
	default:
		return 0, 0
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
