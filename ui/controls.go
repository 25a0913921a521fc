package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel lists overlay toggles by category above a movement key pad
// that highlights the last command.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a hidden controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// keyPad is the on-screen layout of the movement keys; each entry pairs the
// key label with the direction it sends.
var keyPad = [3][3]struct{ key, dir string }{
	{{"Q", "wa"}, {"W", "w"}, {"E", "wd"}},
	{{"A", "a"}, {"N", ""}, {"D", "d"}},
	{{"Z", "sa"}, {"S", "s"}, {"C", "sd"}},
}

const keyCell = 22

// Draw renders the panel and returns the y coordinate below it. lastDir is the
// direction of the most recent cycle ("" for a sense-only cycle).
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, lastDir string, hasLast bool) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	pad := r.Theme.Padding
	lh := r.Theme.LineHeight

	categories := overlays.Categories()
	rowsNeeded := 1
	for _, cat := range categories {
		rowsNeeded += len(overlays.ByCategory(cat)) + 1
	}
	height := int32(rowsNeeded)*lh + pad*4 + lh + 3*keyCell
	r.DrawPanel(c.x, c.y, c.width, height)

	y := c.y + pad
	rl.DrawText("Overlays", c.x+pad, y, 16, rl.White)
	y += lh + 4

	for _, cat := range categories {
		descs := overlays.ByCategory(cat)
		on := 0
		for _, d := range descs {
			if overlays.IsEnabled(d.ID) {
				on++
			}
		}
		header := fmt.Sprintf("%s (%d/%d)", categoryLabel(cat), on, len(descs))
		rl.DrawText(header, c.x+pad, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lh
		for _, d := range descs {
			c.drawToggle(c.x+pad, y, d, overlays.IsEnabled(d.ID), c.width-pad*2)
			y += lh
		}
	}

	y += pad
	rl.DrawText("Move", c.x+pad, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	y += lh
	c.drawKeyPad(c.x+pad, y, lastDir, hasLast)
	return y + 3*keyCell + pad
}

// drawToggle draws one overlay line: indicator, name and key binding.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer
	indicator, name := rl.Color{R: 80, G: 80, B: 80, A: 255}, r.Theme.LabelColor
	if enabled {
		indicator, name = rl.Color{R: 100, G: 200, B: 100, A: 255}, rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, indicator)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, name)

	if desc.KeyLabel != "" {
		key := "[" + desc.KeyLabel + "]"
		rl.DrawText(key, x+width-rl.MeasureText(key, r.Theme.FontSize), y, r.Theme.FontSize, rl.Gray)
	}
}

// drawKeyPad draws the 3x3 movement keys, highlighting lastDir.
func (c *ControlsPanel) drawKeyPad(x, y int32, lastDir string, hasLast bool) {
	fs := c.renderer.Theme.FontSize
	for row, keys := range keyPad {
		for col, k := range keys {
			kx := x + int32(col)*keyCell
			ky := y + int32(row)*keyCell
			bg := rl.Color{R: 45, G: 48, B: 56, A: 255}
			if hasLast && k.dir == lastDir {
				bg = rl.Color{R: 90, G: 140, B: 210, A: 255}
			}
			rl.DrawRectangle(kx, ky, keyCell-2, keyCell-2, bg)
			tw := rl.MeasureText(k.key, fs)
			rl.DrawText(k.key, kx+(keyCell-2-tw)/2, ky+(keyCell-2-fs)/2, fs, rl.White)
		}
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "map":
		return "Map"
	case "filter":
		return "Filter"
	case "robot":
		return "Robot"
	default:
		return cat
	}
}

// QuickStatsData holds the latest telemetry window for display.
type QuickStatsData struct {
	ErrorMean        float64
	ErrorP90         float64
	IllegalMoves     int
	DegenerateCycles int
	MapError         float64
	Converged        bool
}

// QuickStatsPanel renders the latest window statistics.
type QuickStatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewQuickStatsPanel creates a new quick stats panel.
func NewQuickStatsPanel(x, y, width int32) *QuickStatsPanel {
	return &QuickStatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (q *QuickStatsPanel) SetPosition(x, y int32) {
	q.x = x
	q.y = y
}

// Draw renders the quick stats panel.
func (q *QuickStatsPanel) Draw(data QuickStatsData) int32 {
	r := q.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	panelHeight := lineHeight*7 + padding*2

	r.DrawPanel(q.x, q.y, q.width, panelHeight)

	y := q.y + padding

	rl.DrawText("Last Window", q.x+padding, y, 14, rl.White)
	y += lineHeight + 2

	y = r.DrawLabelValue(q.x+padding, y, "Err mean", fmt.Sprintf("%.2f", data.ErrorMean))
	y = r.DrawLabelValue(q.x+padding, y, "Err p90", fmt.Sprintf("%.2f", data.ErrorP90))
	y = r.DrawLabelValue(q.x+padding, y, "Illegal", fmt.Sprintf("%d", data.IllegalMoves))
	y = r.DrawLabelValue(q.x+padding, y, "Degenerate", fmt.Sprintf("%d", data.DegenerateCycles))
	y = r.DrawLabelValue(q.x+padding, y, "Map err", fmt.Sprintf("%.3f", data.MapError))

	status, color := "searching", rl.Orange
	if data.Converged {
		status, color = "localized", rl.Green
	}
	rl.DrawText(status, q.x+padding, y, r.Theme.FontSize, color)

	return y + lineHeight
}
