package gridworld

import "github.com/beka-birhanu/vinom-dungeon/game/grid"

// Observation channel layout and values.
const (
	WallChannel  = 0
	AgentChannel = 1
	GoalChannel  = 2
	Channels     = 3

	Low  uint8 = 0
	High uint8 = 255
)

// Observation is a channel-major 3 x Height x Width snapshot of the grid.
type Observation struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Data   []uint8 `json:"data"`
}

// At returns the value of channel ch at (x, y).
func (o Observation) At(ch, x, y int) uint8 {
	return o.Data[ch*o.Width*o.Height+y*o.Width+x]
}

// Equal reports whether two observations hold the same values.
func (o Observation) Equal(other Observation) bool {
	if o.Width != other.Width || o.Height != other.Height || len(o.Data) != len(other.Data) {
		return false
	}
	for i := range o.Data {
		if o.Data[i] != other.Data[i] {
			return false
		}
	}
	return true
}

// observe builds the observation for an agent at pos.
func observe(m *grid.Matrices, pos grid.Coordinate) Observation {
	w, h := m.Width(), m.Height()
	plane := w * h
	data := make([]uint8, Channels*plane)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := grid.Coordinate{X: x, Y: y}
			i := y*w + x
			if m.IsWall(c) {
				data[WallChannel*plane+i] = High
			}
			if m.IsGoal(c) {
				data[GoalChannel*plane+i] = High
			}
		}
	}

	if m.InBound(pos) {
		data[AgentChannel*plane+pos.Y*w+pos.X] = High
	}

	return Observation{Width: w, Height: h, Data: data}
}
