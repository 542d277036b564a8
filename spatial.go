package main

const (
	SpatialCellSize = 100.0 // room is 2000x2000 -> 20x20 cells
	SpatialCols     = 20
	SpatialRows     = 20
)

// SpatialGrid is a fixed-size broad-phase index over junk positions,
// rebuilt each tick before the pickup phase so every robot only scans
// junk in nearby cells.
type SpatialGrid struct {
	cells [SpatialCols * SpatialRows][]string
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func cellIndex(pos Position) int {
	col := int(pos.X / SpatialCellSize)
	row := int(pos.Y / SpatialCellSize)
	if col < 0 {
		col = 0
	} else if col >= SpatialCols {
		col = SpatialCols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= SpatialRows {
		row = SpatialRows - 1
	}
	return row*SpatialCols + col
}

// Insert adds a junk id at the given position
func (g *SpatialGrid) Insert(pos Position, id string) {
	idx := cellIndex(pos)
	g.cells[idx] = append(g.cells[idx], id)
}

// QueryCircle returns the ids in every cell overlapping the circle.
// Candidates still need a narrow-phase collision test.
func (g *SpatialGrid) QueryCircle(pos Position, radius float64, out []string) []string {
	minCol := int((pos.X - radius) / SpatialCellSize)
	maxCol := int((pos.X + radius) / SpatialCellSize)
	minRow := int((pos.Y - radius) / SpatialCellSize)
	maxRow := int((pos.Y + radius) / SpatialCellSize)
	if minCol < 0 {
		minCol = 0
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxCol >= SpatialCols {
		maxCol = SpatialCols - 1
	}
	if maxRow >= SpatialRows {
		maxRow = SpatialRows - 1
	}
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			out = append(out, g.cells[row*SpatialCols+col]...)
		}
	}
	return out
}
