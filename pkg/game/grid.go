package game

import (
	"errors"
	"math/rand"

	"github.com/cbodonnell/minimmo/pkg/game/constants"
	"github.com/cbodonnell/minimmo/pkg/game/types"
	"github.com/cbodonnell/minimmo/pkg/repositories/models"
)

// ErrGridFull is returned when no free cell remains.
var ErrGridFull = errors.New("no free cell on the grid")

// Occupancy counts the characters on each cell at the time of a snapshot.
// Manual moves do not check occupancy, so a count can exceed one.
type Occupancy map[types.Cell]int

func occupancyOf(positions []*models.Position) Occupancy {
	occupied := make(Occupancy, len(positions))
	for _, p := range positions {
		occupied.Add(types.Cell{X: p.X, Y: p.Y})
	}
	return occupied
}

func (o Occupancy) Has(c types.Cell) bool {
	return o[c] > 0
}

func (o Occupancy) Add(c types.Cell) {
	o[c]++
}

func (o Occupancy) Remove(c types.Cell) {
	if o[c] <= 1 {
		delete(o, c)
		return
	}
	o[c]--
}

// FreeCells lists the in-bounds cells missing from occupied, in row-major order.
func FreeCells(occupied Occupancy, size int) []types.Cell {
	free := make([]types.Cell, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := types.Cell{X: x, Y: y}
			if !occupied.Has(c) {
				free = append(free, c)
			}
		}
	}
	return free
}

// RandomFreeCell picks a cell uniformly among those not in occupied.
// It samples at random while the grid is sparse and enumerates once sampling
// is unlikely to succeed, so the search always terminates.
func RandomFreeCell(rng *rand.Rand, occupied Occupancy, size int) (types.Cell, error) {
	total := size * size
	if float64(len(occupied)) < constants.FreeCellEnumerateOccupancy*float64(total) {
		for i := 0; i < constants.FreeCellSampleAttempts; i++ {
			c := types.Cell{X: rng.Intn(size), Y: rng.Intn(size)}
			if !occupied.Has(c) {
				return c, nil
			}
		}
	}

	free := FreeCells(occupied, size)
	if len(free) == 0 {
		return types.Cell{}, ErrGridFull
	}
	return free[rng.Intn(len(free))], nil
}

// stepCharacter tries the four directions in random order and returns the first
// destination that is on the grid and unoccupied. ok is false when every direction is blocked.
func stepCharacter(rng *rand.Rand, from types.Cell, occupied Occupancy, size int) (to types.Cell, ok bool) {
	directions := types.Directions()
	rng.Shuffle(len(directions), func(i, j int) {
		directions[i], directions[j] = directions[j], directions[i]
	})
	for _, d := range directions {
		candidate := from.Step(d)
		if candidate.InBounds(size) && !occupied.Has(candidate) {
			return candidate, true
		}
	}
	return from, false
}
