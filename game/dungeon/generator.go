/*
Package dungeon provides procedural generation of room and corridor levels.

A Generator places non-overlapping rectangular rooms, connects consecutive rooms with L-shaped
corridors, drops castle landmarks into the two largest rooms and scatters trees over the map.

Every random draw comes from the Generator's own *rand.Rand in a fixed order: room sampling,
then one coin per corridor, then one roll per tile for decoration. Two generators seeded alike
produce identical levels.
*/
package dungeon

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/beka-birhanu/vinom-dungeon/game/grid"
)

// Tile identifiers written by the generator.
const (
	TileEmpty  grid.TileID = "empty"
	TileFloor  grid.TileID = "floor"
	TilePath   grid.TileID = "path"
	TileWall   grid.TileID = "wall"
	TileCastle grid.TileID = "castle"
	TileTree   grid.TileID = "tree"
)

const (
	attemptsPerRoom = 12
	maxSpawns       = 6

	DefaultWidth             = 48
	DefaultHeight            = 36
	DefaultRoomCount         = 12
	DefaultMinRoomWidth      = 5
	DefaultMaxRoomWidth      = 12
	DefaultMinRoomHeight     = 4
	DefaultMaxRoomHeight     = 9
	DefaultLandmarkSize      = 4
	DefaultDecorationDensity = 0.02

	// MaxDimension bounds every length a Params may carry: map sides, room sides and the landmark.
	MaxDimension = 4096
	// MaxArea bounds the map's tile count.
	MaxArea = 1 << 20
)

var (
	ErrInvalidDimensions = errors.New("invalid level dimensions")
	ErrInvalidRoomCount  = errors.New("room count must not be negative")
	ErrInvalidRoomSize   = errors.New("invalid room size range")
	ErrInvalidDensity    = errors.New("decoration density must be within [0, 1]")
	ErrInvalidLandmark   = errors.New("landmark size must not be negative")
	ErrParamsTooLarge    = errors.New("level parameters exceed the size limits")
)

// Params configures a generation run.
type Params struct {
	Width             int     // Map columns
	Height            int     // Map rows
	RoomCount         int     // Rooms requested; fewer may be placed
	MinRoomWidth      int     // Inclusive
	MaxRoomWidth      int     // Inclusive
	MinRoomHeight     int     // Inclusive
	MaxRoomHeight     int     // Inclusive
	LandmarkSize      int     // Side of the castle block
	DecorationDensity float64 // Per-tile probability of a tree
	Seed              int64   // Used by Generate only
}

// DefaultParams returns the parameters of the stock 48x36 dungeon.
func DefaultParams() Params {
	return Params{
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		RoomCount:         DefaultRoomCount,
		MinRoomWidth:      DefaultMinRoomWidth,
		MaxRoomWidth:      DefaultMaxRoomWidth,
		MinRoomHeight:     DefaultMinRoomHeight,
		MaxRoomHeight:     DefaultMaxRoomHeight,
		LandmarkSize:      DefaultLandmarkSize,
		DecorationDensity: DefaultDecorationDensity,
	}
}

// Validate checks the parameters without consuming randomness.
func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return ErrInvalidDimensions
	}
	if p.RoomCount < 0 {
		return ErrInvalidRoomCount
	}
	if p.MinRoomWidth < 1 || p.MinRoomHeight < 1 || p.MinRoomWidth > p.MaxRoomWidth || p.MinRoomHeight > p.MaxRoomHeight {
		return ErrInvalidRoomSize
	}
	if p.DecorationDensity < 0 || p.DecorationDensity > 1 {
		return ErrInvalidDensity
	}
	if p.LandmarkSize < 0 {
		return ErrInvalidLandmark
	}

	if p.Width > MaxDimension || p.Height > MaxDimension || p.Width*p.Height > MaxArea {
		return fmt.Errorf("%w: map is %dx%d, at most %d per side and %d tiles", ErrParamsTooLarge, p.Width, p.Height, MaxDimension, MaxArea)
	}
	if p.RoomCount > p.Width*p.Height {
		return fmt.Errorf("%w: %d rooms requested on %d tiles", ErrParamsTooLarge, p.RoomCount, p.Width*p.Height)
	}
	if p.MaxRoomWidth > MaxDimension || p.MaxRoomHeight > MaxDimension || p.LandmarkSize > MaxDimension {
		return fmt.Errorf("%w: room and landmark sides are at most %d", ErrParamsTooLarge, MaxDimension)
	}
	return nil
}

// Level is the output of a generation run.
type Level struct {
	Grid   *grid.TileGrid    // Populated tiles
	Rooms  []Room            // Accepted rooms in acceptance order
	Spawns []grid.Coordinate // Centers of up to the first six rooms
	Seed   int64             // Seed the level was generated from, when known
}

// Start returns the agent's default start: the first spawn point, or the map center
// when no room was placed.
func (l *Level) Start() grid.Coordinate {
	if len(l.Spawns) > 0 {
		return l.Spawns[0]
	}
	return grid.Coordinate{X: l.Grid.Width / 2, Y: l.Grid.Height / 2}
}

// Matrices derives the wall and goal layers with the default classification.
func (l *Level) Matrices() *grid.Matrices {
	return grid.Derive(l.Grid, ClassTable())
}

// ClassTable returns the classification of the generator's tiles.
// Trees are cosmetic and never block.
func ClassTable() grid.ClassTable {
	return grid.ClassTable{
		TileFloor:  grid.Walkable,
		TilePath:   grid.Walkable,
		TileTree:   grid.Walkable,
		TileCastle: grid.Goal,
		TileEmpty:  grid.Blocking,
		TileWall:   grid.Blocking,
	}
}

// Generator builds levels from an owned pseudo-random source.
// A Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator drawing from rng.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate creates a level with a generator seeded from p.Seed.
func Generate(p Params) (*Level, error) {
	level, err := NewGenerator(rand.New(rand.NewSource(p.Seed))).Generate(p)
	if err != nil {
		return nil, err
	}
	level.Seed = p.Seed
	return level, nil
}

// Generate creates a level. Placing fewer rooms than requested is not an error.
func (g *Generator) Generate(p Params) (*Level, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tiles, err := grid.NewTileGrid(p.Width, p.Height, TileEmpty)
	if err != nil {
		return nil, err
	}

	rooms := g.placeRooms(tiles, p)
	g.carveCorridors(tiles, rooms)
	placeLandmarks(tiles, rooms, p.LandmarkSize)
	g.decorate(tiles, p.DecorationDensity)

	return &Level{
		Grid:   tiles,
		Rooms:  rooms,
		Spawns: spawnPoints(rooms),
	}, nil
}

// between draws an integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

// placeRooms samples rectangles until enough rooms fit or the attempt budget runs out.
func (g *Generator) placeRooms(tiles *grid.TileGrid, p Params) []Room {
	rooms := make([]Room, 0, p.RoomCount)
	for attempts := 0; len(rooms) < p.RoomCount && attempts < p.RoomCount*attemptsPerRoom; attempts++ {
		w := g.between(p.MinRoomWidth, p.MaxRoomWidth)
		h := g.between(p.MinRoomHeight, p.MaxRoomHeight)

		maxX, maxY := p.Width-w-2, p.Height-h-2
		if maxX < 1 || maxY < 1 {
			continue
		}

		candidate := Room{X: g.between(1, maxX), Y: g.between(1, maxY), Width: w, Height: h}
		if overlapsAny(candidate, rooms) {
			continue
		}

		fill(tiles, candidate, TileFloor)
		rooms = append(rooms, candidate)
	}
	return rooms
}

func overlapsAny(r Room, rooms []Room) bool {
	for _, o := range rooms {
		if r.Overlaps(o, roomPadding) {
			return true
		}
	}
	return false
}

// fill paints the part of r that lies on the grid.
func fill(tiles *grid.TileGrid, r Room, id grid.TileID) {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.Width, tiles.Width), min(r.Y+r.Height, tiles.Height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			tiles.Set(x, y, id)
		}
	}
}

// placeLandmarks drops a size x size castle block near the centers of the two largest rooms.
func placeLandmarks(tiles *grid.TileGrid, rooms []Room, size int) {
	if len(rooms) < 2 || size == 0 {
		return
	}

	bySize := make([]Room, len(rooms))
	copy(bySize, rooms)
	sort.SliceStable(bySize, func(a, b int) bool {
		return bySize[a].Area() > bySize[b].Area()
	})

	offset := (size - 1) / 2
	for _, r := range bySize[:2] {
		c := r.Center()
		fill(tiles, Room{X: c.X - offset, Y: c.Y - offset, Width: size, Height: size}, TileCastle)
	}
}

// decorate rolls every tile once, row by row.
func (g *Generator) decorate(tiles *grid.TileGrid, density float64) {
	for y := 0; y < tiles.Height; y++ {
		for x := 0; x < tiles.Width; x++ {
			if g.rng.Float64() < density {
				tiles.Set(x, y, TileTree)
			}
		}
	}
}

func spawnPoints(rooms []Room) []grid.Coordinate {
	spawns := make([]grid.Coordinate, 0, maxSpawns)
	for i, r := range rooms {
		if i == maxSpawns {
			break
		}
		spawns = append(spawns, r.Center())
	}
	return spawns
}
