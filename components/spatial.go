package components

import "math"

// Add returns the cell shifted by a command.
func (c Cell) Add(cmd Command) Cell {
	return Cell{Row: c.Row + cmd.DY, Col: c.Col + cmd.DX}
}

// Point converts the cell to a continuous position.
func (c Cell) Point() Point {
	return Point{Row: float64(c.Row), Col: float64(c.Col)}
}

// Distance returns the Euclidean distance between two points in cells.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.Row-o.Row, p.Col-o.Col)
}

// Round snaps the point to the nearest cell.
func (p Point) Round() Cell {
	return Cell{Row: int(math.Round(p.Row)), Col: int(math.Round(p.Col))}
}
