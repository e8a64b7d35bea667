package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cbodonnell/minimmo/pkg/log"
	"github.com/cbodonnell/minimmo/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to the database and applies the embedded migrations.
// A pool is used because HTTP handlers and the mover query concurrently.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %v", err)
	}
	log.Info("Connected to %s as %s", database, username)

	err = runMigrations(ctx, "postgres", func(ctx context.Context, statement string) error {
		_, err := pool.Exec(ctx, statement)
		return err
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) CreateCharacter(ctx context.Context, character models.CharacterCreate) (*models.Character, error) {
	q := `
	INSERT INTO characters (name, image, health, armor, mana, kills)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + characterColumns
	c, err := scanCharacter(r.pool.QueryRow(ctx, q, character.Name, character.Image, character.Health, character.Armor, character.Mana, character.Kills))
	if err != nil {
		return nil, fmt.Errorf("failed to insert character: %v", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListCharacters(ctx context.Context, skip int, limit int) ([]*models.Character, error) {
	skip, limit = normalizePage(skip, limit)
	q := `SELECT ` + characterColumns + ` FROM characters ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, limit, skip)
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

func (r *PostgresRepository) GetCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	q := `SELECT ` + characterColumns + ` FROM characters WHERE id = $1`
	c, err := scanCharacter(r.pool.QueryRow(ctx, q, characterID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to scan character: %v", err)
	}
	return c, nil
}

func (r *PostgresRepository) UpdateCharacter(ctx context.Context, characterID int64, update models.CharacterUpdate) (*models.Character, error) {
	q := `
	UPDATE characters SET
		name = COALESCE($1, name),
		image = COALESCE($2, image),
		health = COALESCE($3, health),
		armor = COALESCE($4, armor),
		mana = COALESCE($5, mana),
		kills = COALESCE($6, kills)
	WHERE id = $7
	RETURNING ` + characterColumns
	c, err := scanCharacter(r.pool.QueryRow(ctx, q, updateArgs(update, characterID)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to update character: %v", err)
	}
	return c, nil
}

func (r *PostgresRepository) DeleteCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	q := `DELETE FROM characters WHERE id = $1 RETURNING ` + characterColumns
	if _, err := tx.Exec(ctx, `DELETE FROM positions WHERE character_id = $1`, characterID); err != nil {
		return nil, fmt.Errorf("failed to delete position: %v", err)
	}
	c, err := scanCharacter(tx.QueryRow(ctx, q, characterID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to delete character: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}
	return c, nil
}

func (r *PostgresRepository) IncrementKills(ctx context.Context, characterID int64) (*models.Character, error) {
	q := `UPDATE characters SET kills = kills + 1 WHERE id = $1 RETURNING ` + characterColumns
	c, err := scanCharacter(r.pool.QueryRow(ctx, q, characterID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to increment kills: %v", err)
	}
	return c, nil
}

func (r *PostgresRepository) CharacterStats(ctx context.Context) (*models.CharacterStats, error) {
	q := `
	SELECT COUNT(*),
		COALESCE(AVG(health), 0)::float8,
		COALESCE(AVG(armor), 0)::float8,
		COALESCE(AVG(mana), 0)::float8,
		COALESCE(AVG(kills), 0)::float8
	FROM characters`
	stats := &models.CharacterStats{}
	err := r.pool.QueryRow(ctx, q).Scan(&stats.Total, &stats.AvgHealth, &stats.AvgArmor, &stats.AvgMana, &stats.AvgKills)
	if err != nil {
		return nil, fmt.Errorf("failed to query character stats: %v", err)
	}
	return roundStats(stats), nil
}

func (r *PostgresRepository) GetPosition(ctx context.Context, characterID int64) (*models.Position, error) {
	q := `SELECT ` + positionColumns + ` FROM positions WHERE character_id = $1`
	p, err := scanPosition(r.pool.QueryRow(ctx, q, characterID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, positionNotFound()
		}
		return nil, fmt.Errorf("failed to scan position: %v", err)
	}
	return p, nil
}

func (r *PostgresRepository) UpsertPosition(ctx context.Context, characterID int64, x int, y int) (*models.Position, error) {
	q := `
	INSERT INTO positions (character_id, x, y) VALUES ($1, $2, $3)
	ON CONFLICT (character_id) DO UPDATE SET x = EXCLUDED.x, y = EXCLUDED.y
	RETURNING ` + positionColumns
	p, err := scanPosition(r.pool.QueryRow(ctx, q, characterID, x, y))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert position: %v", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListPositions(ctx context.Context) ([]*models.Position, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+positionColumns+` FROM positions ORDER BY id`)
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

func (r *PostgresRepository) ListPositionViews(ctx context.Context) ([]*models.PositionView, error) {
	rows, err := r.pool.Query(ctx, positionViewQuery)
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

func (r *PostgresRepository) CreateEnemy(ctx context.Context, enemy models.EnemyCreate) (*models.Enemy, error) {
	q := `INSERT INTO enemies (x, y, health) VALUES ($1, $2, $3) RETURNING ` + enemyColumns
	e, err := scanEnemy(r.pool.QueryRow(ctx, q, enemy.X, enemy.Y, enemy.Health))
	if err != nil {
		return nil, fmt.Errorf("failed to insert enemy: %v", err)
	}
	return e, nil
}

func (r *PostgresRepository) GetEnemy(ctx context.Context, enemyID int64) (*models.Enemy, error) {
	e, err := scanEnemy(r.pool.QueryRow(ctx, `SELECT `+enemyColumns+` FROM enemies WHERE id = $1`, enemyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, enemyNotFound()
		}
		return nil, fmt.Errorf("failed to scan enemy: %v", err)
	}
	return e, nil
}

func (r *PostgresRepository) ListEnemies(ctx context.Context) ([]*models.Enemy, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+enemyColumns+` FROM enemies ORDER BY id`)
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
