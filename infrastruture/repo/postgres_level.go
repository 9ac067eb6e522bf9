package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	dmn "github.com/beka-birhanu/vinom-dungeon/domain"
	"github.com/beka-birhanu/vinom-dungeon/service/i"
	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
)

const levelSchema = `
CREATE TABLE IF NOT EXISTS levels (
	id UUID PRIMARY KEY,
	seed BIGINT NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	tiles JSONB NOT NULL,
	rooms JSONB NOT NULL,
	spawns JSONB NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`

// PostgresLevelRepo stores levels in PostgreSQL with the tile, room and spawn lists as JSONB.
type PostgresLevelRepo struct {
	db *sql.DB
}

var _ i.LevelRepo = &PostgresLevelRepo{}

// NewPostgresLevelRepo connects to connString and creates the levels table if needed.
func NewPostgresLevelRepo(connString string) (*PostgresLevelRepo, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.ExecContext(ctx, levelSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &PostgresLevelRepo{db: db}, nil
}

// Save inserts the level or overwrites the stored level with the same ID.
func (r *PostgresLevelRepo) Save(ctx context.Context, level *dmn.Level) error {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	tiles, rooms, spawns, err := marshalLevelLists(level)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO levels (id, seed, width, height, tiles, rooms, spawns, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id)
	DO UPDATE SET
		seed = $2, width = $3, height = $4,
		tiles = $5, rooms = $6, spawns = $7
	`
	_, err = r.db.ExecContext(ctx, query,
		level.ID, level.Seed, level.Width, level.Height,
		string(tiles), string(rooms), string(spawns), level.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving level %s: %w", level.ID, err)
	}
	return nil
}

// ByID retrieves a level by its ID.
// Returns dmn.ErrLevelNotFound if no level has that ID.
func (r *PostgresLevelRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Level, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	query := `SELECT id, seed, width, height, tiles, rooms, spawns, created_at FROM levels WHERE id = $1`

	var (
		level                dmn.Level
		tiles, rooms, spawns []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&level.ID, &level.Seed, &level.Width, &level.Height,
		&tiles, &rooms, &spawns, &level.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", dmn.ErrLevelNotFound, id)
		}
		return nil, fmt.Errorf("loading level %s: %w", id, err)
	}

	if err := json.Unmarshal(tiles, &level.Tiles); err != nil {
		return nil, fmt.Errorf("%w: %s: tiles: %w", dmn.ErrCorruptLevel, id, err)
	}
	if err := json.Unmarshal(rooms, &level.Rooms); err != nil {
		return nil, fmt.Errorf("%w: %s: rooms: %w", dmn.ErrCorruptLevel, id, err)
	}
	if err := json.Unmarshal(spawns, &level.Spawns); err != nil {
		return nil, fmt.Errorf("%w: %s: spawns: %w", dmn.ErrCorruptLevel, id, err)
	}
	return &level, nil
}

// Close closes the database connection.
func (r *PostgresLevelRepo) Close() error {
	return r.db.Close()
}

func marshalLevelLists(level *dmn.Level) (tiles, rooms, spawns []byte, err error) {
	if tiles, err = json.Marshal(level.Tiles); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling tiles: %w", err)
	}
	if rooms, err = json.Marshal(level.Rooms); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling rooms: %w", err)
	}
	if spawns, err = json.Marshal(level.Spawns); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling spawns: %w", err)
	}
	return tiles, rooms, spawns, nil
}
