package repositories

import "github.com/cbodonnell/minimmo/pkg/repositories/models"

const positionViewQuery = `
	SELECT c.id, c.name, c.image, p.x, p.y
	FROM positions p
	JOIN characters c ON c.id = p.character_id
	ORDER BY c.id`

// scanner is satisfied by *sql.Row, *sql.Rows, pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row scanner) (*models.Character, error) {
	c := &models.Character{}
	if err := row.Scan(&c.ID, &c.Name, &c.Image, &c.Health, &c.Armor, &c.Mana, &c.Kills); err != nil {
		return nil, err
	}
	return c, nil
}

func scanPosition(row scanner) (*models.Position, error) {
	p := &models.Position{}
	if err := row.Scan(&p.ID, &p.CharacterID, &p.X, &p.Y); err != nil {
		return nil, err
	}
	return p, nil
}

func scanEnemy(row scanner) (*models.Enemy, error) {
	e := &models.Enemy{}
	if err := row.Scan(&e.ID, &e.X, &e.Y, &e.Health); err != nil {
		return nil, err
	}
	return e, nil
}

func roundStats(stats *models.CharacterStats) *models.CharacterStats {
	if stats.Total == 0 {
		return &models.CharacterStats{}
	}
	stats.AvgHealth = roundStat(stats.AvgHealth)
	stats.AvgArmor = roundStat(stats.AvgArmor)
	stats.AvgMana = roundStat(stats.AvgMana)
	stats.AvgKills = roundStat(stats.AvgKills)
	return stats
}

// updateArgs flattens a partial update into COALESCE parameters followed by the id.
// Unset fields bind as NULL so the column keeps its value.
func updateArgs(update models.CharacterUpdate, characterID int64) []any {
	return []any{
		nullable(update.Name),
		nullable(update.Image),
		nullable(update.Health),
		nullable(update.Armor),
		nullable(update.Mana),
		nullable(update.Kills),
		characterID,
	}
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
