package mocks

import (
	"context"

	"github.com/cbodonnell/minimmo/pkg/repositories/models"
	"github.com/stretchr/testify/mock"
)

// Repository is a testify mock of repositories.Repository.
type Repository struct {
	mock.Mock
}

// NewRepository creates a Repository mock whose expectations are asserted when the test ends.
func NewRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *Repository {
	m := &Repository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Repository) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Repository) CreateCharacter(ctx context.Context, character models.CharacterCreate) (*models.Character, error) {
	ret := m.Called(ctx, character)
	return characterResult(ret)
}

func (m *Repository) ListCharacters(ctx context.Context, skip int, limit int) ([]*models.Character, error) {
	ret := m.Called(ctx, skip, limit)
	characters, _ := ret.Get(0).([]*models.Character)
	return characters, ret.Error(1)
}

func (m *Repository) GetCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	return characterResult(m.Called(ctx, characterID))
}

func (m *Repository) UpdateCharacter(ctx context.Context, characterID int64, update models.CharacterUpdate) (*models.Character, error) {
	return characterResult(m.Called(ctx, characterID, update))
}

func (m *Repository) DeleteCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	return characterResult(m.Called(ctx, characterID))
}

func (m *Repository) IncrementKills(ctx context.Context, characterID int64) (*models.Character, error) {
	return characterResult(m.Called(ctx, characterID))
}

func (m *Repository) CharacterStats(ctx context.Context) (*models.CharacterStats, error) {
	ret := m.Called(ctx)
	stats, _ := ret.Get(0).(*models.CharacterStats)
	return stats, ret.Error(1)
}

func (m *Repository) GetPosition(ctx context.Context, characterID int64) (*models.Position, error) {
	return positionResult(m.Called(ctx, characterID))
}

func (m *Repository) UpsertPosition(ctx context.Context, characterID int64, x int, y int) (*models.Position, error) {
	return positionResult(m.Called(ctx, characterID, x, y))
}

func (m *Repository) ListPositions(ctx context.Context) ([]*models.Position, error) {
	ret := m.Called(ctx)
	positions, _ := ret.Get(0).([]*models.Position)
	return positions, ret.Error(1)
}

func (m *Repository) ListPositionViews(ctx context.Context) ([]*models.PositionView, error) {
	ret := m.Called(ctx)
	views, _ := ret.Get(0).([]*models.PositionView)
	return views, ret.Error(1)
}

func (m *Repository) CreateEnemy(ctx context.Context, enemy models.EnemyCreate) (*models.Enemy, error) {
	return enemyResult(m.Called(ctx, enemy))
}

func (m *Repository) GetEnemy(ctx context.Context, enemyID int64) (*models.Enemy, error) {
	return enemyResult(m.Called(ctx, enemyID))
}

func (m *Repository) ListEnemies(ctx context.Context) ([]*models.Enemy, error) {
	ret := m.Called(ctx)
	enemies, _ := ret.Get(0).([]*models.Enemy)
	return enemies, ret.Error(1)
}

func characterResult(ret mock.Arguments) (*models.Character, error) {
	c, _ := ret.Get(0).(*models.Character)
	return c, ret.Error(1)
}

func positionResult(ret mock.Arguments) (*models.Position, error) {
	p, _ := ret.Get(0).(*models.Position)
	return p, ret.Error(1)
}

func enemyResult(ret mock.Arguments) (*models.Enemy, error) {
	e, _ := ret.Get(0).(*models.Enemy)
	return e, ret.Error(1)
}
