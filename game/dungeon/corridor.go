package dungeon

import "github.com/beka-birhanu/vinom-dungeon/game/grid"

// carveCorridors joins every pair of consecutive rooms with an L-shaped path between their
// centers. One coin per pair decides whether the horizontal leg comes first.
func (g *Generator) carveCorridors(tiles *grid.TileGrid, rooms []Room) {
	for i := 1; i < len(rooms); i++ {
		from, to := rooms[i-1].Center(), rooms[i].Center()
		if g.rng.Intn(2) == 0 {
			carveHorizontal(tiles, from.X, to.X, from.Y)
			carveVertical(tiles, from.Y, to.Y, to.X)
		} else {
			carveVertical(tiles, from.Y, to.Y, from.X)
			carveHorizontal(tiles, from.X, to.X, to.Y)
		}
	}
}

func carveHorizontal(tiles *grid.TileGrid, x1, x2, y int) {
	for x := min(x1, x2); x <= max(x1, x2); x++ {
		tiles.Set(x, y, TilePath)
	}
}

func carveVertical(tiles *grid.TileGrid, y1, y2, x int) {
	for y := min(y1, y2); y <= max(y1, y2); y++ {
		tiles.Set(x, y, TilePath)
	}
}
