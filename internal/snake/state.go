package snake

// Cell values of the vision grid.
const (
	CellWall  = -1.0
	CellBody  = -0.5
	CellEmpty = 0.0
	CellApple = 1.0
)

// DefaultVisionSize is the side of the square window around the head.
const DefaultVisionSize = 7

// EncodeGrid returns the visionSize×visionSize window centred on the head,
// flattened with the x offset as the row and the y offset as the column.
// The apple is not drawn where it lies; instead the border cell in its
// direction (per axis sign) is set to CellApple. visionSize must be odd.
func EncodeGrid(g *Game, visionSize int) []float64 {
	half := visionSize / 2
	head := g.Head()
	grid := make([]float64, visionSize*visionSize)

	for dx := -half; dx <= half; dx++ {
		for dy := -half; dy <= half; dy++ {
			p := Point{X: head.X + dx, Y: head.Y + dy}
			v := CellEmpty
			switch {
			case !g.inside(p):
				v = CellWall
			case g.occupied(p):
				v = CellBody
			}
			grid[(dx+half)*visionSize+dy+half] = v
		}
	}

	apple := g.Apple()
	ax := half + sign(apple.X-head.X)*half
	ay := half + sign(apple.Y-head.Y)*half
	if ax >= 0 && ax < visionSize && ay >= 0 && ay < visionSize {
		grid[ax*visionSize+ay] = CellApple
	}
	return grid
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
