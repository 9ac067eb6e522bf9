/*
Package grid provides the spatial layers of a tile based dungeon.

A TileGrid carries opaque tile identifiers. Derive classifies every tile through an explicit
ClassTable and produces the immutable wall and goal matrices the simulation runs on.
Unknown tile identifiers are treated as walls.
*/
package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrTileCountMismatch = errors.New("tile count does not match grid dimensions")
)

// Coordinate is a column/row pair on the grid.
type Coordinate struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// Add returns the coordinate shifted by d.
func (c Coordinate) Add(d Coordinate) Coordinate {
	return Coordinate{X: c.X + d.X, Y: c.Y + d.Y}
}

// String provides a textual representation of the coordinate.
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// TileID is an opaque tile identifier.
type TileID string

// TileGrid is a row-major width x height grid of tile identifiers.
type TileGrid struct {
	Width  int      // Number of columns
	Height int      // Number of rows
	Tiles  []TileID // Tiles[y*Width+x]
}

// NewTileGrid creates a grid filled with fill.
func NewTileGrid(width, height int, fill TileID) (*TileGrid, error) {
	if width <= 0 || height <= 0 || width > math.MaxInt/height {
		return nil, ErrInvalidDimensions
	}

	tiles := make([]TileID, width*height)
	for i := range tiles {
		tiles[i] = fill
	}
	return &TileGrid{Width: width, Height: height, Tiles: tiles}, nil
}

// Validate checks that the tiles cover the declared dimensions exactly.
func (g *TileGrid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 || g.Width > math.MaxInt/g.Height {
		return ErrInvalidDimensions
	}
	if len(g.Tiles) != g.Width*g.Height {
		return fmt.Errorf("%w: have %d, want %d", ErrTileCountMismatch, len(g.Tiles), g.Width*g.Height)
	}
	return nil
}

// InBound reports whether (x, y) lies on the grid.
func (g *TileGrid) InBound(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// At returns the tile at (x, y). The caller must check bounds.
func (g *TileGrid) At(x, y int) TileID {
	return g.Tiles[y*g.Width+x]
}

// Set overwrites the tile at (x, y). Out of bound writes are ignored.
func (g *TileGrid) Set(x, y int, id TileID) {
	if !g.InBound(x, y) {
		return
	}
	g.Tiles[y*g.Width+x] = id
}

// Clone returns a deep copy of the grid.
func (g *TileGrid) Clone() *TileGrid {
	tiles := make([]TileID, len(g.Tiles))
	copy(tiles, g.Tiles)
	return &TileGrid{Width: g.Width, Height: g.Height, Tiles: tiles}
}

// Class is the movement classification of a tile.
type Class int

const (
	Blocking Class = iota // Impassable. The zero value so unknown tiles block.
	Walkable              // Enterable, no effect.
	Goal                  // Enterable, ends the episode in victory.
)

func (c Class) String() string {
	switch c {
	case Walkable:
		return "walkable"
	case Goal:
		return "goal"
	default:
		return "blocking"
	}
}

// ClassTable maps tile identifiers to their classification.
// Identifiers missing from the table are Blocking.
type ClassTable map[TileID]Class

// Classify returns the class of id.
func (t ClassTable) Classify(id TileID) Class {
	return t[id]
}
