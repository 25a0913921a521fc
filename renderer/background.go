package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slamsim/camera"
)

// minGridZoom is the pixels-per-cell below which grid lines are skipped.
const minGridZoom = 6

// BackgroundRenderer clears the screen and draws cell grid lines when zoomed in.
type BackgroundRenderer struct {
	color     rl.Color
	lineColor rl.Color
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		color:     rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		lineColor: rl.Color{R: 255, G: 255, B: 255, A: 18},
	}
}

// Draw clears the screen.
func (b *BackgroundRenderer) Draw() {
	rl.ClearBackground(b.color)
}

// DrawGrid draws lines on visible cell boundaries.
func (b *BackgroundRenderer) DrawGrid(cam *camera.Camera, rows, cols int) {
	if cam.Zoom < minGridZoom {
		return
	}
	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	c0, c1 := clampLine(minX, cols), clampLine(maxX+1, cols)
	r0, r1 := clampLine(minY, rows), clampLine(maxY+1, rows)

	top, bottom := float32(r0), float32(r1)
	for c := c0; c <= c1; c++ {
		x0, y0 := cam.WorldToScreen(float32(c), top)
		x1, y1 := cam.WorldToScreen(float32(c), bottom)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, b.lineColor)
	}
	left, right := float32(c0), float32(c1)
	for r := r0; r <= r1; r++ {
		x0, y0 := cam.WorldToScreen(left, float32(r))
		x1, y1 := cam.WorldToScreen(right, float32(r))
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, b.lineColor)
	}
}

func clampLine(v float32, n int) int {
	i := int(v)
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
