package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-dungeon/domain"
	"github.com/google/uuid"
)

// EpisodeBoard ranks finished episodes of a level by their return.
type EpisodeBoard interface {
	// Record adds a finished episode to the level's board.
	Record(ctx context.Context, levelID uuid.UUID, score dmn.EpisodeScore) error

	// Top returns up to n episodes with the highest return, best first.
	Top(ctx context.Context, levelID uuid.UUID, n int64) ([]dmn.EpisodeScore, error)

	// Trim keeps only the best keep episodes of the level.
	Trim(ctx context.Context, levelID uuid.UUID, keep int64) error
}
