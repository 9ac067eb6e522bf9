package i

import (
	"context"
	"io"

	dmn "github.com/beka-birhanu/vinom-dungeon/domain"
	"github.com/beka-birhanu/vinom-dungeon/game/dungeon"
	"github.com/beka-birhanu/vinom-dungeon/game/grid"
	"github.com/beka-birhanu/vinom-dungeon/game/gridworld"
	"github.com/google/uuid"
)

// SessionRequest describes the level a new environment session runs on.
// A LevelID replays a stored level; otherwise a level is generated from Seed and Params.
type SessionRequest struct {
	LevelID *uuid.UUID
	Seed    *int64
	Params  *dungeon.Params
}

// SessionInfo describes a running environment session.
type SessionInfo struct {
	ID      uuid.UUID
	LevelID uuid.UUID
	Seed    int64
	Width   int
	Height  int
	Start   grid.Coordinate
	Spawns  []grid.Coordinate
}

// Transition is one step of a session.
type Transition struct {
	gridworld.StepResult
	Episode int     // Episode index within the session, starting at 1
	Return  float64 // Accumulated reward of the episode so far
}

// SessionManager runs environment sessions on behalf of remote training harnesses.
type SessionManager interface {
	NewSession(ctx context.Context, req SessionRequest) (SessionInfo, gridworld.Observation, error)
	Reset(ctx context.Context, id uuid.UUID) (gridworld.Observation, error)
	Step(ctx context.Context, id uuid.UUID, action gridworld.Action) (Transition, error)
	Subscribe(id uuid.UUID) (<-chan gridworld.TraceEvent, func(), error)
	Vision(id uuid.UUID, w io.Writer) error
	Close(id uuid.UUID) error
	Board(ctx context.Context, levelID uuid.UUID, n int64) ([]dmn.EpisodeScore, error)
}
