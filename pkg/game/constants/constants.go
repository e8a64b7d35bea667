package constants

import "time"

const (
	// GridSize is the width and height of the square grid.
	// Spawn, manual moves and the mover all bound positions with it.
	GridSize int = 10

	// MoverInterval is the time between background mover cycles
	MoverInterval time.Duration = 3 * time.Second
	// MoverBatchSize is the maximum number of characters moved per cycle
	MoverBatchSize int = 3
	// MoverMinCharacters is the number of positioned characters required for a cycle to run
	MoverMinCharacters int = 2

	// AttackRange is the maximum Chebyshev distance between attacker and target
	AttackRange int = 1
	// AttackManaFactor scales the attacker's mana into damage
	AttackManaFactor float64 = 0.35

	// FreeCellSampleAttempts caps random sampling before free cells are enumerated
	FreeCellSampleAttempts int = 64
	// FreeCellEnumerateOccupancy is the occupied fraction above which sampling is skipped
	FreeCellEnumerateOccupancy float64 = 0.8

	// Default character stats
	CharacterDefaultHealth int = 100
	CharacterDefaultArmor  int = 0
	CharacterDefaultMana   int = 0
	CharacterDefaultKills  int = 0

	// EnemyDefaultHealth is the health of an enemy created without one
	EnemyDefaultHealth int = 100

	// Random character stat ranges (inclusive)
	RandomHealthMin int = 60
	RandomHealthMax int = 150
	RandomArmorMin  int = 0
	RandomArmorMax  int = 50
	RandomManaMin   int = 0
	RandomManaMax   int = 150
	RandomKillsMin  int = 0
	RandomKillsMax  int = 20
	// Random names get a number in this range appended
	RandomNameSuffixMin int = 1
	RandomNameSuffixMax int = 99
)

// RandomNames is the pool random characters draw their names from
var RandomNames = []string{"Valeera", "Uther", "Illidan", "Sylvanas", "Malfurion", "Anduin", "Guldan", "Rexxar"}
