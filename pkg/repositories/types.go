package repositories

import (
	"errors"
	"math"
)

type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return e.Resource + " not found"
}

func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}

func characterNotFound() error {
	return &ErrNotFound{Resource: "character"}
}

func positionNotFound() error {
	return &ErrNotFound{Resource: "position"}
}

func enemyNotFound() error {
	return &ErrNotFound{Resource: "enemy"}
}

// roundStat rounds an average to one decimal place.
func roundStat(v float64) float64 {
	return math.Round(v*10) / 10
}
