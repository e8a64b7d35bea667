package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cbodonnell/minimmo/pkg/repositories/models"
	"github.com/jinzhu/copier"
)

// InMemoryRepository keeps every record in maps behind a single lock.
// Records handed out are copies; callers never alias stored state.
type InMemoryRepository struct {
	lock sync.RWMutex

	characters map[int64]*models.Character
	// positions is keyed by character id, which makes the one-position-per-character constraint structural
	positions map[int64]*models.Position
	enemies   map[int64]*models.Enemy

	nextCharacterID int64
	nextPositionID  int64
	nextEnemyID     int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		characters: make(map[int64]*models.Character),
		positions:  make(map[int64]*models.Position),
		enemies:    make(map[int64]*models.Enemy),
	}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) CreateCharacter(ctx context.Context, character models.CharacterCreate) (*models.Character, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.nextCharacterID++
	c := &models.Character{ID: r.nextCharacterID}
	if err := copier.Copy(c, &character); err != nil {
		return nil, fmt.Errorf("failed to copy character: %v", err)
	}
	r.characters[c.ID] = c
	return copyCharacter(c)
}

func (r *InMemoryRepository) ListCharacters(ctx context.Context, skip int, limit int) ([]*models.Character, error) {
	skip, limit = normalizePage(skip, limit)

	r.lock.RLock()
	defer r.lock.RUnlock()

	ids := sortedKeys(r.characters)
	characters := []*models.Character{}
	for i := skip; i < len(ids) && len(characters) < limit; i++ {
		c, err := copyCharacter(r.characters[ids[i]])
		if err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}
	return characters, nil
}

func (r *InMemoryRepository) GetCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	c, ok := r.characters[characterID]
	if !ok {
		return nil, characterNotFound()
	}
	return copyCharacter(c)
}

func (r *InMemoryRepository) UpdateCharacter(ctx context.Context, characterID int64, update models.CharacterUpdate) (*models.Character, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	c, ok := r.characters[characterID]
	if !ok {
		return nil, characterNotFound()
	}
	// IgnoreEmpty skips nil fields; pointers to zero values are still copied
	if err := copier.CopyWithOption(c, &update, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, fmt.Errorf("failed to apply character update: %v", err)
	}
	return copyCharacter(c)
}

func (r *InMemoryRepository) DeleteCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	c, ok := r.characters[characterID]
	if !ok {
		return nil, characterNotFound()
	}
	delete(r.characters, characterID)
	delete(r.positions, characterID)
	return c, nil
}

func (r *InMemoryRepository) IncrementKills(ctx context.Context, characterID int64) (*models.Character, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	c, ok := r.characters[characterID]
	if !ok {
		return nil, characterNotFound()
	}
	c.Kills++
	return copyCharacter(c)
}

func (r *InMemoryRepository) CharacterStats(ctx context.Context) (*models.CharacterStats, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	stats := &models.CharacterStats{Total: int64(len(r.characters))}
	if stats.Total == 0 {
		return stats, nil
	}
	var health, armor, mana, kills int
	for _, c := range r.characters {
		health += c.Health
		armor += c.Armor
		mana += c.Mana
		kills += c.Kills
	}
	n := float64(stats.Total)
	stats.AvgHealth = float64(health) / n
	stats.AvgArmor = float64(armor) / n
	stats.AvgMana = float64(mana) / n
	stats.AvgKills = float64(kills) / n
	return roundStats(stats), nil
}

func (r *InMemoryRepository) GetPosition(ctx context.Context, characterID int64) (*models.Position, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	p, ok := r.positions[characterID]
	if !ok {
		return nil, positionNotFound()
	}
	copy := *p
	return &copy, nil
}

func (r *InMemoryRepository) UpsertPosition(ctx context.Context, characterID int64, x int, y int) (*models.Position, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	// mirror the foreign key of the SQL schemas
	if _, ok := r.characters[characterID]; !ok {
		return nil, characterNotFound()
	}

	p, ok := r.positions[characterID]
	if !ok {
		r.nextPositionID++
		p = &models.Position{ID: r.nextPositionID, CharacterID: characterID}
		r.positions[characterID] = p
	}
	p.X = x
	p.Y = y
	copy := *p
	return &copy, nil
}

func (r *InMemoryRepository) ListPositions(ctx context.Context) ([]*models.Position, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	positions := make([]*models.Position, 0, len(r.positions))
	for _, p := range r.positions {
		copy := *p
		positions = append(positions, &copy)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].ID < positions[j].ID })
	return positions, nil
}

func (r *InMemoryRepository) ListPositionViews(ctx context.Context) ([]*models.PositionView, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	views := []*models.PositionView{}
	for _, id := range sortedKeys(r.positions) {
		c, ok := r.characters[id]
		if !ok {
			continue
		}
		p := r.positions[id]
		views = append(views, &models.PositionView{ID: c.ID, Name: c.Name, Image: c.Image, X: p.X, Y: p.Y})
	}
	return views, nil
}

func (r *InMemoryRepository) CreateEnemy(ctx context.Context, enemy models.EnemyCreate) (*models.Enemy, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.nextEnemyID++
	e := &models.Enemy{ID: r.nextEnemyID, X: enemy.X, Y: enemy.Y, Health: enemy.Health}
	r.enemies[e.ID] = e
	copy := *e
	return &copy, nil
}

func (r *InMemoryRepository) GetEnemy(ctx context.Context, enemyID int64) (*models.Enemy, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	e, ok := r.enemies[enemyID]
	if !ok {
		return nil, enemyNotFound()
	}
	copy := *e
	return &copy, nil
}

func (r *InMemoryRepository) ListEnemies(ctx context.Context) ([]*models.Enemy, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	enemies := []*models.Enemy{}
	for _, id := range sortedKeys(r.enemies) {
		copy := *r.enemies[id]
		enemies = append(enemies, &copy)
	}
	return enemies, nil
}

func copyCharacter(c *models.Character) (*models.Character, error) {
	out := &models.Character{}
	if err := copier.Copy(out, c); err != nil {
		return nil, fmt.Errorf("failed to copy character: %v", err)
	}
	return out, nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
