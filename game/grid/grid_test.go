package grid

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTable = ClassTable{
	"floor":  Walkable,
	"castle": Goal,
	"stone":  Blocking,
}

func gridFromRows(t *testing.T, rows ...[]TileID) *TileGrid {
	t.Helper()
	g, err := NewTileGrid(len(rows[0]), len(rows), "")
	require.NoError(t, err)
	for y, row := range rows {
		for x, id := range row {
			g.Set(x, y, id)
		}
	}
	return g
}

func TestDerive(t *testing.T) {
	g := gridFromRows(t,
		[]TileID{"floor", "stone", "castle"},
		[]TileID{"mystery", "floor", ""},
	)
	m := Derive(g, testTable)

	t.Run("walkable tile", func(t *testing.T) {
		assert.False(t, m.IsWall(Coordinate{0, 0}))
		assert.False(t, m.IsGoal(Coordinate{0, 0}))
	})

	t.Run("blocking tile", func(t *testing.T) {
		assert.True(t, m.IsWall(Coordinate{1, 0}))
		assert.False(t, m.IsGoal(Coordinate{1, 0}))
	})

	t.Run("goal tile is enterable", func(t *testing.T) {
		assert.False(t, m.IsWall(Coordinate{2, 0}))
		assert.True(t, m.IsGoal(Coordinate{2, 0}))
	})

	t.Run("unknown identifiers become walls", func(t *testing.T) {
		assert.True(t, m.IsWall(Coordinate{0, 1}))
		assert.True(t, m.IsWall(Coordinate{2, 1}))
	})

	t.Run("out of bound is wall and never goal", func(t *testing.T) {
		assert.True(t, m.IsWall(Coordinate{-1, 0}))
		assert.True(t, m.IsWall(Coordinate{0, 2}))
		assert.False(t, m.IsGoal(Coordinate{3, 0}))
	})

	t.Run("goal list", func(t *testing.T) {
		assert.Equal(t, []Coordinate{{2, 0}}, m.Goals())
		assert.Equal(t, 3, m.Width())
		assert.Equal(t, 2, m.Height())
	})
}

func TestDeriveGoalNeverWall(t *testing.T) {
	ids := []TileID{"floor", "castle", "stone", "x"}
	g, err := NewTileGrid(8, 8, "")
	require.NoError(t, err)
	for i := range g.Tiles {
		g.Tiles[i] = ids[(i*7)%len(ids)]
	}

	m := Derive(g, testTable)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := Coordinate{x, y}
			if m.IsGoal(c) {
				assert.False(t, m.IsWall(c), "goal at %s is a wall", c)
			}
		}
	}
}

func TestTileGrid(t *testing.T) {
	t.Run("invalid dimensions", func(t *testing.T) {
		_, err := NewTileGrid(0, 4, "floor")
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	})

	t.Run("tile count overflow", func(t *testing.T) {
		_, err := NewTileGrid(math.MaxInt/2+1, 2, "floor")
		assert.ErrorIs(t, err, ErrInvalidDimensions)
		_, err = NewTileGrid(math.MaxInt, 2, "floor")
		assert.ErrorIs(t, err, ErrInvalidDimensions)

		g := &TileGrid{Width: math.MaxInt, Height: 3}
		assert.ErrorIs(t, g.Validate(), ErrInvalidDimensions)
	})

	t.Run("validate tile count", func(t *testing.T) {
		g := &TileGrid{Width: 2, Height: 2, Tiles: []TileID{"floor"}}
		assert.True(t, errors.Is(g.Validate(), ErrTileCountMismatch))
	})

	t.Run("set ignores out of bound", func(t *testing.T) {
		g, err := NewTileGrid(2, 2, "floor")
		require.NoError(t, err)
		g.Set(5, 5, "castle")
		g.Set(1, 1, "castle")
		assert.Equal(t, TileID("castle"), g.At(1, 1))
		assert.Equal(t, TileID("floor"), g.At(0, 0))
	})

	t.Run("clone is independent", func(t *testing.T) {
		g, err := NewTileGrid(2, 2, "floor")
		require.NoError(t, err)
		c := g.Clone()
		c.Set(0, 0, "stone")
		assert.Equal(t, TileID("floor"), g.At(0, 0))
	})
}

func TestNearestGoalDistance(t *testing.T) {
	tests := []struct {
		name  string
		pos   Coordinate
		goals []Coordinate
		want  float64
	}{
		{name: "no goals", pos: Coordinate{1, 1}, goals: nil, want: math.Inf(1)},
		{name: "on goal", pos: Coordinate{3, 4}, goals: []Coordinate{{3, 4}}, want: 0},
		{name: "pythagorean", pos: Coordinate{0, 0}, goals: []Coordinate{{3, 4}}, want: 5},
		{name: "closest wins", pos: Coordinate{0, 0}, goals: []Coordinate{{10, 0}, {0, 2}, {6, 8}}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NearestGoalDistance(tt.pos, tt.goals))
		})
	}
}

func TestVision(t *testing.T) {
	g := gridFromRows(t,
		[]TileID{"floor", "stone"},
		[]TileID{"castle", "floor"},
	)
	m := Derive(g, testTable)

	t.Run("rgb buffer", func(t *testing.T) {
		want := []byte{
			255, 255, 255, 0, 0, 0,
			255, 0, 0, 255, 255, 255,
		}
		assert.Equal(t, want, VisionRGB(m))
	})

	t.Run("png round trip", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteVisionPNG(&buf, m))
		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 2, img.Bounds().Dx())
		assert.Equal(t, 2, img.Bounds().Dy())
	})

	t.Run("writer failure is reported", func(t *testing.T) {
		err := WriteVisionPNG(failingWriter{}, m)
		assert.Error(t, err)
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}
