// Package domain holds the persisted records of the dungeon service.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-dungeon/game/dungeon"
	"github.com/beka-birhanu/vinom-dungeon/game/grid"
	"github.com/google/uuid"
)

var (
	ErrCorruptLevel  = errors.New("stored level is corrupt")
	ErrLevelNotFound = errors.New("level not found")
)

// Level is the storage form of a dungeon level.
type Level struct {
	ID        uuid.UUID         `bson:"_id" json:"id"`
	Seed      int64             `bson:"seed" json:"seed"`
	Width     int               `bson:"width" json:"width"`
	Height    int               `bson:"height" json:"height"`
	Tiles     []grid.TileID     `bson:"tiles" json:"tiles"`
	Rooms     []dungeon.Room    `bson:"rooms" json:"rooms"`
	Spawns    []grid.Coordinate `bson:"spawns" json:"spawns"`
	CreatedAt time.Time         `bson:"createdAt" json:"created_at"`
}

// NewLevel wraps a generated level for storage under a fresh ID.
func NewLevel(l *dungeon.Level) *Level {
	tiles := make([]grid.TileID, len(l.Grid.Tiles))
	copy(tiles, l.Grid.Tiles)

	return &Level{
		ID:        uuid.New(),
		Seed:      l.Seed,
		Width:     l.Grid.Width,
		Height:    l.Grid.Height,
		Tiles:     tiles,
		Rooms:     append([]dungeon.Room(nil), l.Rooms...),
		Spawns:    append([]grid.Coordinate(nil), l.Spawns...),
		CreatedAt: time.Now().UTC(),
	}
}

// Dungeon restores the generated level.
func (l *Level) Dungeon() (*dungeon.Level, error) {
	tg := &grid.TileGrid{Width: l.Width, Height: l.Height, Tiles: append([]grid.TileID(nil), l.Tiles...)}
	if err := tg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptLevel, l.ID, err)
	}
	for _, s := range l.Spawns {
		if !tg.InBound(s.X, s.Y) {
			return nil, fmt.Errorf("%w: %s: spawn %s outside the %dx%d grid", ErrCorruptLevel, l.ID, s, l.Width, l.Height)
		}
	}

	return &dungeon.Level{
		Grid:   tg,
		Rooms:  append([]dungeon.Room(nil), l.Rooms...),
		Spawns: append([]grid.Coordinate(nil), l.Spawns...),
		Seed:   l.Seed,
	}, nil
}
