package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cbodonnell/minimmo/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDriver is the database/sql driver registered by github.com/mattn/go-sqlite3.
const SQLiteDriver = "sqlite3"

const (
	characterColumns = "id, name, image, health, armor, mana, kills"
	positionColumns  = "id, character_id, x, y"
	enemyColumns     = "id, x, y, health"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database with the given database/sql driver and applies the embedded migrations.
// Any SQLite driver works; production uses SQLiteDriver.
func NewSQLiteRepository(ctx context.Context, driver string, dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open(driver, foreignKeysDSN(driver, dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// SQLite allows a single writer; one connection avoids "database is locked" under concurrent requests.
	db.SetMaxOpenConns(1)

	var foreignKeys int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check foreign keys: %v", err)
	}
	if foreignKeys != 1 {
		db.Close()
		return nil, fmt.Errorf("foreign keys are not enabled by driver %q", driver)
	}

	err = runMigrations(ctx, "sqlite", func(ctx context.Context, statement string) error {
		_, err := db.ExecContext(ctx, statement)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

// foreignKeysDSN adds the driver's connection parameter for foreign key enforcement,
// so every pooled connection enforces it and not only the first.
func foreignKeysDSN(driver string, dsn string) string {
	var param string
	switch driver {
	case SQLiteDriver:
		param = "_foreign_keys=1"
	case "sqlite":
		// modernc.org/sqlite
		param = "_pragma=foreign_keys(1)"
	default:
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateCharacter(ctx context.Context, character models.CharacterCreate) (*models.Character, error) {
	q := `
	INSERT INTO characters (name, image, health, armor, mana, kills)
	VALUES (?, ?, ?, ?, ?, ?)
	RETURNING ` + characterColumns
	c, err := scanCharacter(r.db.QueryRowContext(ctx, q, character.Name, character.Image, character.Health, character.Armor, character.Mana, character.Kills))
	if err != nil {
		return nil, fmt.Errorf("failed to insert character: %v", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCharacters(ctx context.Context, skip int, limit int) ([]*models.Character, error) {
	skip, limit = normalizePage(skip, limit)
	q := `SELECT ` + characterColumns + ` FROM characters ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query characters: %v", err)
	}
	defer rows.Close()

	characters := []*models.Character{}
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %v", err)
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

func (r *SQLiteRepository) GetCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	q := `SELECT ` + characterColumns + ` FROM characters WHERE id = ?`
	c, err := scanCharacter(r.db.QueryRowContext(ctx, q, characterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to scan character: %v", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCharacter(ctx context.Context, characterID int64, update models.CharacterUpdate) (*models.Character, error) {
	q := `
	UPDATE characters SET
		name = COALESCE(?, name),
		image = COALESCE(?, image),
		health = COALESCE(?, health),
		armor = COALESCE(?, armor),
		mana = COALESCE(?, mana),
		kills = COALESCE(?, kills)
	WHERE id = ?
	RETURNING ` + characterColumns
	c, err := scanCharacter(r.db.QueryRowContext(ctx, q, updateArgs(update, characterID)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to update character: %v", err)
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	c, err := scanCharacter(tx.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, characterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to scan character: %v", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE character_id = ?`, characterID); err != nil {
		return nil, fmt.Errorf("failed to delete position: %v", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, characterID); err != nil {
		return nil, fmt.Errorf("failed to delete character: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}
	return c, nil
}

func (r *SQLiteRepository) IncrementKills(ctx context.Context, characterID int64) (*models.Character, error) {
	q := `UPDATE characters SET kills = kills + 1 WHERE id = ? RETURNING ` + characterColumns
	c, err := scanCharacter(r.db.QueryRowContext(ctx, q, characterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to increment kills: %v", err)
	}
	return c, nil
}

func (r *SQLiteRepository) CharacterStats(ctx context.Context) (*models.CharacterStats, error) {
	q := `
	SELECT COUNT(*),
		COALESCE(AVG(health), 0.0),
		COALESCE(AVG(armor), 0.0),
		COALESCE(AVG(mana), 0.0),
		COALESCE(AVG(kills), 0.0)
	FROM characters`
	stats := &models.CharacterStats{}
	err := r.db.QueryRowContext(ctx, q).Scan(&stats.Total, &stats.AvgHealth, &stats.AvgArmor, &stats.AvgMana, &stats.AvgKills)
	if err != nil {
		return nil, fmt.Errorf("failed to query character stats: %v", err)
	}
	return roundStats(stats), nil
}

func (r *SQLiteRepository) GetPosition(ctx context.Context, characterID int64) (*models.Position, error) {
	q := `SELECT ` + positionColumns + ` FROM positions WHERE character_id = ?`
	p, err := scanPosition(r.db.QueryRowContext(ctx, q, characterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, positionNotFound()
		}
		return nil, fmt.Errorf("failed to scan position: %v", err)
	}
	return p, nil
}

func (r *SQLiteRepository) UpsertPosition(ctx context.Context, characterID int64, x int, y int) (*models.Position, error) {
	q := `
	INSERT INTO positions (character_id, x, y) VALUES (?, ?, ?)
	ON CONFLICT (character_id) DO UPDATE SET x = excluded.x, y = excluded.y
	RETURNING ` + positionColumns
	p, err := scanPosition(r.db.QueryRowContext(ctx, q, characterID, x, y))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert position: %v", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListPositions(ctx context.Context) ([]*models.Position, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+positionColumns+` FROM positions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %v", err)
	}
	defer rows.Close()

	positions := []*models.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %v", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *SQLiteRepository) ListPositionViews(ctx context.Context) ([]*models.PositionView, error) {
	rows, err := r.db.QueryContext(ctx, positionViewQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query position views: %v", err)
	}
	defer rows.Close()

	views := []*models.PositionView{}
	for rows.Next() {
		v := &models.PositionView{}
		if err := rows.Scan(&v.ID, &v.Name, &v.Image, &v.X, &v.Y); err != nil {
			return nil, fmt.Errorf("failed to scan position view: %v", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *SQLiteRepository) CreateEnemy(ctx context.Context, enemy models.EnemyCreate) (*models.Enemy, error) {
	q := `INSERT INTO enemies (x, y, health) VALUES (?, ?, ?) RETURNING ` + enemyColumns
	e, err := scanEnemy(r.db.QueryRowContext(ctx, q, enemy.X, enemy.Y, enemy.Health))
	if err != nil {
		return nil, fmt.Errorf("failed to insert enemy: %v", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetEnemy(ctx context.Context, enemyID int64) (*models.Enemy, error) {
	e, err := scanEnemy(r.db.QueryRowContext(ctx, `SELECT `+enemyColumns+` FROM enemies WHERE id = ?`, enemyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, enemyNotFound()
		}
		return nil, fmt.Errorf("failed to scan enemy: %v", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListEnemies(ctx context.Context) ([]*models.Enemy, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+enemyColumns+` FROM enemies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query enemies: %v", err)
	}
	defer rows.Close()

	enemies := []*models.Enemy{}
	for rows.Next() {
		e, err := scanEnemy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enemy: %v", err)
		}
		enemies = append(enemies, e)
	}
	return enemies, rows.Err()
}
