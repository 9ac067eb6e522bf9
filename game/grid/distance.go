package grid

import "math"

// NearestGoalDistance returns the minimum Euclidean distance from pos to any of goals,
// or +Inf when goals is empty.
func NearestGoalDistance(pos Coordinate, goals []Coordinate) float64 {
	nearest := math.Inf(1)
	for _, g := range goals {
		dx := float64(pos.X - g.X)
		dy := float64(pos.Y - g.Y)
		if d := math.Sqrt(dx*dx + dy*dy); d < nearest {
			nearest = d
		}
	}
	return nearest
}
