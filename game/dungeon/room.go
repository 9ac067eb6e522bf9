package dungeon

import "github.com/beka-birhanu/vinom-dungeon/game/grid"

// roomPadding is the minimum gap, in tiles, kept between two rooms.
const roomPadding = 1

// Room is an axis-aligned rectangle of floor tiles.
type Room struct {
	X      int `json:"x" bson:"x"`           // Column of the top-left corner
	Y      int `json:"y" bson:"y"`           // Row of the top-left corner
	Width  int `json:"width" bson:"width"`   // Number of columns
	Height int `json:"height" bson:"height"` // Number of rows
}

// Center returns the center tile of the room.
func (r Room) Center() grid.Coordinate {
	return grid.Coordinate{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Area returns the number of tiles covered by the room.
func (r Room) Area() int {
	return r.Width * r.Height
}

// Contains reports whether c lies inside the room.
func (r Room) Contains(c grid.Coordinate) bool {
	return c.X >= r.X && c.X < r.X+r.Width && c.Y >= r.Y && c.Y < r.Y+r.Height
}

// Overlaps reports whether r and o overlap once each is grown by padding tiles.
// Rooms overlap unless one is strictly separated from the other by more than padding
// along x or y.
func (r Room) Overlaps(o Room, padding int) bool {
	rx2, ry2 := r.X+r.Width-1, r.Y+r.Height-1
	ox2, oy2 := o.X+o.Width-1, o.Y+o.Height-1
	return !(rx2+padding < o.X || ox2+padding < r.X || ry2+padding < o.Y || oy2+padding < r.Y)
}
