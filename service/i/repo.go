package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-dungeon/domain"
	"github.com/google/uuid"
)

// LevelRepo defines the interface for level persistence operations.
type LevelRepo interface {
	// Save inserts or updates a level in the repository.
	Save(ctx context.Context, level *dmn.Level) error

	// ByID retrieves a level by its unique ID.
	// Returns ErrLevelNotFound (wrapped) if the level does not exist.
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Level, error)
}
