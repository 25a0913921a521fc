package game

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slamsim/components"
)

// HoveredCell holds data about the grid cell under the cursor.
type HoveredCell struct {
	Cell      components.Cell
	Blocked   bool
	Occupancy float64
	Particles int
}

// cellAt converts world coordinates to a grid cell. The second result is
// false outside the grid.
func cellAt(wx, wy float32, rows, cols int) (components.Cell, bool) {
	col := int(math.Floor(float64(wx)))
	row := int(math.Floor(float64(wy)))
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return components.Cell{}, false
	}
	return components.Cell{Row: row, Col: col}, true
}

// findCellAtMouse returns the cell under the mouse cursor, if any.
func (g *Game) findCellAtMouse() (HoveredCell, bool) {
	mouse := rl.GetMousePosition()
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	rows, cols := g.world.Dims()
	cell, ok := cellAt(wx, wy, rows, cols)
	if !ok {
		return HoveredCell{}, false
	}
	return g.describeCell(cell), true
}

// describeCell collects the true, learned and believed state of one cell.
func (g *Game) describeCell(cell components.Cell) HoveredCell {
	h := HoveredCell{
		Cell:      cell,
		Blocked:   g.world.Blocked(cell),
		Occupancy: g.grid.At(cell.Row, cell.Col),
	}
	for _, p := range g.filter.Locations() {
		if p == cell {
			h.Particles++
		}
	}
	return h
}

// drawTooltip shows the hovered cell's state next to the cursor.
func (g *Game) drawTooltip() {
	h, ok := g.findCellAtMouse()
	if !ok {
		return
	}
	state := "free"
	if h.Blocked {
		state = "obstacle"
	}
	lines := []string{
		fmt.Sprintf("cell (%d, %d) %s", h.Cell.Row, h.Cell.Col, state),
		fmt.Sprintf("p(occupied) %.2f", h.Occupancy),
		fmt.Sprintf("particles %d", h.Particles),
	}

	mouse := rl.GetMousePosition()
	x, y := int32(mouse.X)+14, int32(mouse.Y)+14
	width := int32(0)
	for _, l := range lines {
		width = max(width, rl.MeasureText(l, 12))
	}
	rl.DrawRectangle(x-4, y-4, width+8, int32(len(lines))*14+8, rl.Color{R: 20, G: 25, B: 30, A: 220})
	for i, l := range lines {
		rl.DrawText(l, x, y+int32(i)*14, 12, rl.LightGray)
	}
}
