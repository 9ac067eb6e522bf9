package grid

// Matrices holds the wall and goal layers derived from a TileGrid.
// It is immutable after Derive and safe to share between readers.
type Matrices struct {
	width  int
	height int
	wall   []bool
	goal   []bool
	goals  []Coordinate // goal coordinates in row-major order
}

// Derive classifies every tile of g through table.
//
// Walkable tiles are neither wall nor goal, Goal tiles are enterable goals, and every other
// identifier becomes a wall. Derive never fails on unknown identifiers.
func Derive(g *TileGrid, table ClassTable) *Matrices {
	m := &Matrices{
		width:  g.Width,
		height: g.Height,
		wall:   make([]bool, g.Width*g.Height),
		goal:   make([]bool, g.Width*g.Height),
	}

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			i := y*g.Width + x
			var id TileID
			if i < len(g.Tiles) {
				id = g.Tiles[i]
			}

			switch table.Classify(id) {
			case Walkable:
			case Goal:
				m.goal[i] = true
				m.goals = append(m.goals, Coordinate{X: x, Y: y})
			default:
				m.wall[i] = true
			}
		}
	}

	return m
}

// Width returns the number of columns.
func (m *Matrices) Width() int {
	return m.width
}

// Height returns the number of rows.
func (m *Matrices) Height() int {
	return m.height
}

// InBound reports whether c lies on the grid.
func (m *Matrices) InBound(c Coordinate) bool {
	return c.X >= 0 && c.X < m.width && c.Y >= 0 && c.Y < m.height
}

// IsWall reports whether c blocks movement. Out of bound coordinates are walls.
func (m *Matrices) IsWall(c Coordinate) bool {
	if !m.InBound(c) {
		return true
	}
	return m.wall[c.Y*m.width+c.X]
}

// IsGoal reports whether reaching c ends the episode in victory.
func (m *Matrices) IsGoal(c Coordinate) bool {
	if !m.InBound(c) {
		return false
	}
	return m.goal[c.Y*m.width+c.X]
}

// Goals returns a copy of the goal coordinates in row-major order.
func (m *Matrices) Goals() []Coordinate {
	goals := make([]Coordinate, len(m.goals))
	copy(goals, m.goals)
	return goals
}

// NearestGoalDistance returns the distance from c to the closest goal of m.
func (m *Matrices) NearestGoalDistance(c Coordinate) float64 {
	return NearestGoalDistance(c, m.goals)
}
