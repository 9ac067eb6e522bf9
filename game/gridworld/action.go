package gridworld

import (
	"fmt"

	"github.com/beka-birhanu/vinom-dungeon/game/grid"
)

// Action is a discrete one-tile move.
type Action int

const (
	Up Action = iota
	Down
	Left
	Right

	actionCount = 4
)

var deltas = [actionCount]grid.Coordinate{
	Up:    {X: 0, Y: -1},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
	Right: {X: 1, Y: 0},
}

// Valid reports whether a is one of the four moves.
func (a Action) Valid() bool {
	return a >= 0 && a < actionCount
}

// Delta returns the one-tile offset of the move.
func (a Action) Delta() grid.Coordinate {
	return deltas[a]
}

func (a Action) String() string {
	switch a {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Outcome classifies how a step resolved.
type Outcome int

const (
	Ongoing Outcome = iota
	OutOfBounds
	WallCollision
	GoalReached
)

func (o Outcome) String() string {
	switch o {
	case OutOfBounds:
		return "out_of_bounds"
	case WallCollision:
		return "wall_collision"
	case GoalReached:
		return "goal_reached"
	default:
		return "ongoing"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
