package repositories

import (
	"context"

	"github.com/cbodonnell/minimmo/pkg/repositories/models"
)

// DefaultListLimit is the page size used when a caller passes a non-positive limit.
const DefaultListLimit = 100

// Repository is the transactional record store for characters, positions and enemies.
// Implementations must be safe for concurrent use. Single-row writes are atomic;
// nothing here coordinates invariants that span rows.
type Repository interface {
	Close(ctx context.Context) error

	CreateCharacter(ctx context.Context, character models.CharacterCreate) (*models.Character, error)
	ListCharacters(ctx context.Context, skip int, limit int) ([]*models.Character, error)
	GetCharacter(ctx context.Context, characterID int64) (*models.Character, error)
	// UpdateCharacter changes only the non-nil fields of update.
	UpdateCharacter(ctx context.Context, characterID int64, update models.CharacterUpdate) (*models.Character, error)
	// DeleteCharacter removes the character and its position and returns the deleted record.
	DeleteCharacter(ctx context.Context, characterID int64) (*models.Character, error)
	IncrementKills(ctx context.Context, characterID int64) (*models.Character, error)
	CharacterStats(ctx context.Context) (*models.CharacterStats, error)

	GetPosition(ctx context.Context, characterID int64) (*models.Position, error)
	// UpsertPosition creates the character's position or overwrites it in place.
	// It never produces two rows for the same character, even when racing.
	UpsertPosition(ctx context.Context, characterID int64, x int, y int) (*models.Position, error)
	ListPositions(ctx context.Context) ([]*models.Position, error)
	ListPositionViews(ctx context.Context) ([]*models.PositionView, error)

	CreateEnemy(ctx context.Context, enemy models.EnemyCreate) (*models.Enemy, error)
	GetEnemy(ctx context.Context, enemyID int64) (*models.Enemy, error)
	ListEnemies(ctx context.Context) ([]*models.Enemy, error)
}

func normalizePage(skip int, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return skip, limit
}
