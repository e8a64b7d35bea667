package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/cbodonnell/minimmo/pkg/game/constants"
	"github.com/cbodonnell/minimmo/pkg/game/types"
	"github.com/cbodonnell/minimmo/pkg/log"
	"github.com/cbodonnell/minimmo/pkg/repositories"
	"github.com/cbodonnell/minimmo/pkg/repositories/models"
)

var (
	// ErrOutOfRange is returned when the attacker is not adjacent to the target.
	ErrOutOfRange = errors.New("target out of range")
	// ErrSelfAttack is returned when a character targets itself.
	ErrSelfAttack = errors.New("a character cannot attack itself")
)

// GameManager coordinates every read-then-write of the grid.
// Spawns, manual moves and mover cycles hold gridLock for their whole
// snapshot-decide-write sequence, which keeps the no-shared-cell invariant
// across rows that the repository alone cannot enforce.
type GameManager struct {
	repository repositories.Repository
	gridSize   int

	gridLock sync.Mutex
	// rng is only used while gridLock is held
	rng *rand.Rand
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	Repository repositories.Repository
	// GridSize defaults to constants.GridSize
	GridSize int
	// Rand defaults to a time-seeded source
	Rand *rand.Rand
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	gridSize := opts.GridSize
	if gridSize <= 0 {
		gridSize = constants.GridSize
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &GameManager{
		repository: opts.Repository,
		gridSize:   gridSize,
		rng:        rng,
	}
}

func (gm *GameManager) GridSize() int {
	return gm.gridSize
}

// GetPosition returns the character's position or a not found error.
func (gm *GameManager) GetPosition(ctx context.Context, characterID int64) (*models.Position, error) {
	return gm.repository.GetPosition(ctx, characterID)
}

// randomFreeCell must be called with gridLock held.
func (gm *GameManager) randomFreeCell(ctx context.Context) (types.Cell, error) {
	positions, err := gm.repository.ListPositions(ctx)
	if err != nil {
		return types.Cell{}, fmt.Errorf("failed to list positions: %w", err)
	}
	return RandomFreeCell(gm.rng, occupancyOf(positions), gm.gridSize)
}

// Spawn places the character on a random free cell.
// A character that already has a position is moved to the new cell.
func (gm *GameManager) Spawn(ctx context.Context, characterID int64) (*models.Position, error) {
	if _, err := gm.repository.GetCharacter(ctx, characterID); err != nil {
		return nil, fmt.Errorf("failed to get character %d: %w", characterID, err)
	}

	gm.gridLock.Lock()
	defer gm.gridLock.Unlock()

	cell, err := gm.randomFreeCell(ctx)
	if err != nil {
		return nil, err
	}
	position, err := gm.repository.UpsertPosition(ctx, characterID, cell.X, cell.Y)
	if err != nil {
		return nil, fmt.Errorf("failed to save position: %w", err)
	}
	log.Debug("Spawned character %d at %s", characterID, cell)
	return position, nil
}

// Move steps the character one cell in the given direction.
// Moving into the edge of the grid leaves that coordinate unchanged.
// Occupancy is not checked, so a manual move may land on another character.
func (gm *GameManager) Move(ctx context.Context, characterID int64, direction string) (*models.Position, error) {
	d, err := types.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	gm.gridLock.Lock()
	defer gm.gridLock.Unlock()

	current, err := gm.repository.GetPosition(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get position of character %d: %w", characterID, err)
	}
	to := types.Cell{X: current.X, Y: current.Y}.Step(d).Clamp(gm.gridSize)
	position, err := gm.repository.UpsertPosition(ctx, characterID, to.X, to.Y)
	if err != nil {
		return nil, fmt.Errorf("failed to save position: %w", err)
	}
	return position, nil
}

type AttackRequest struct {
	AttackerID int64
	TargetID   int64
	// SessionHP is the target's health as tracked by the client; nil when not supplied
	SessionHP *int
}

type AttackResult struct {
	AttackerID int64 `json:"attackerId"`
	TargetID   int64 `json:"targetId"`
	Damage     int   `json:"damage"`
	// TargetHealth is the session health after the hit, floored at 0; nil without a session health
	TargetHealth *int `json:"targetHealth"`
	Killed       bool `json:"killed"`
}

// Damage is floor(mana * AttackManaFactor).
func Damage(mana int) int {
	return int(math.Floor(float64(mana) * constants.AttackManaFactor))
}

// Attack resolves one hit of attacker on target.
// Health is tracked by the client; the only persisted effect is the attacker's kill count.
func (gm *GameManager) Attack(ctx context.Context, req AttackRequest) (*AttackResult, error) {
	if req.AttackerID == req.TargetID {
		return nil, fmt.Errorf("%w: character %d", ErrSelfAttack, req.AttackerID)
	}

	attackerPosition, targetPosition, err := gm.combatantPositions(ctx, req.AttackerID, req.TargetID)
	if err != nil {
		return nil, err
	}

	attackerCell := types.Cell{X: attackerPosition.X, Y: attackerPosition.Y}
	targetCell := types.Cell{X: targetPosition.X, Y: targetPosition.Y}
	if distance := types.Chebyshev(attackerCell, targetCell); distance > constants.AttackRange {
		return nil, fmt.Errorf("%w: distance %d", ErrOutOfRange, distance)
	}

	attacker, err := gm.repository.GetCharacter(ctx, req.AttackerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attacker %d: %w", req.AttackerID, err)
	}
	if _, err := gm.repository.GetCharacter(ctx, req.TargetID); err != nil {
		return nil, fmt.Errorf("failed to get target %d: %w", req.TargetID, err)
	}

	result := &AttackResult{
		AttackerID: req.AttackerID,
		TargetID:   req.TargetID,
		Damage:     Damage(attacker.Mana),
	}
	if req.SessionHP == nil {
		return result, nil
	}

	health := *req.SessionHP - result.Damage
	if health <= 0 {
		if _, err := gm.repository.IncrementKills(ctx, req.AttackerID); err != nil {
			return nil, fmt.Errorf("failed to record kill: %w", err)
		}
		result.Killed = true
		log.Debug("Character %d killed character %d", req.AttackerID, req.TargetID)
	}
	health = max(health, 0)
	result.TargetHealth = &health
	return result, nil
}

// combatantPositions reads both positions under the grid lock so they come from one consistent snapshot.
func (gm *GameManager) combatantPositions(ctx context.Context, attackerID, targetID int64) (*models.Position, *models.Position, error) {
	gm.gridLock.Lock()
	defer gm.gridLock.Unlock()

	attacker, err := gm.repository.GetPosition(ctx, attackerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get position of attacker %d: %w", attackerID, err)
	}
	target, err := gm.repository.GetPosition(ctx, targetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get position of target %d: %w", targetID, err)
	}
	return attacker, target, nil
}

// Step is one accepted step of the background mover.
type Step struct {
	CharacterID int64
	From        types.Cell
	To          types.Cell
}

// MoveRandomCharacters runs one mover cycle.
// Up to MoverBatchSize characters, chosen uniformly, each try one step in a random
// cardinal direction. A step must stay on the grid and land on a cell that is free in
// the working snapshot, which is updated after every accepted step. Each step is
// persisted as soon as it is accepted. Cycles with fewer than MoverMinCharacters
// positioned characters do nothing.
func (gm *GameManager) MoveRandomCharacters(ctx context.Context) ([]Step, error) {
	gm.gridLock.Lock()
	defer gm.gridLock.Unlock()

	positions, err := gm.repository.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	if len(positions) < constants.MoverMinCharacters {
		return nil, nil
	}

	occupied := occupancyOf(positions)
	selected := gm.rng.Perm(len(positions))[:min(constants.MoverBatchSize, len(positions))]

	moves := make([]Step, 0, len(selected))
	for _, i := range selected {
		p := positions[i]
		from := types.Cell{X: p.X, Y: p.Y}
		to, ok := stepCharacter(gm.rng, from, occupied, gm.gridSize)
		if !ok {
			log.Trace("Character %d is boxed in at %s", p.CharacterID, from)
			continue
		}

		if _, err := gm.repository.UpsertPosition(ctx, p.CharacterID, to.X, to.Y); err != nil {
			return moves, fmt.Errorf("failed to move character %d: %w", p.CharacterID, err)
		}
		occupied.Remove(from)
		occupied.Add(to)
		moves = append(moves, Step{CharacterID: p.CharacterID, From: from, To: to})
	}

	return moves, nil
}
