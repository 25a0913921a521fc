package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slamsim/camera"
	"github.com/pthm-cable/slamsim/components"
	"github.com/pthm-cable/slamsim/systems"
)

var (
	floorColor    = color.RGBA{R: 34, G: 38, B: 44, A: 255}
	obstacleColor = color.RGBA{R: 170, G: 160, B: 140, A: 255}
)

// MapRenderer draws the ground-truth map as a single texture, one texel per cell.
type MapRenderer struct {
	tex         rl.Texture2D
	rows, cols  int
	initialized bool
}

// NewMapRenderer creates a map renderer. Init must run after the window exists.
func NewMapRenderer() *MapRenderer {
	return &MapRenderer{}
}

// Init uploads the map texture.
func (r *MapRenderer) Init(t systems.Terrain) {
	if r.initialized {
		return
	}
	r.rows, r.cols = t.Dims()

	img := rl.GenImageColor(r.cols, r.rows, rl.Black)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterPoint)
	rl.UnloadImage(img)

	rl.UpdateTexture(r.tex, mapPixels(t))
	r.initialized = true
}

// mapPixels renders the map in row-major texel order.
func mapPixels(t systems.Terrain) []color.RGBA {
	rows, cols := t.Dims()
	pixels := make([]color.RGBA, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			px := floorColor
			if t.Blocked(components.Cell{Row: row, Col: col}) {
				px = obstacleColor
			}
			pixels[row*cols+col] = px
		}
	}
	return pixels
}

// Draw renders the map under the camera.
func (r *MapRenderer) Draw(cam *camera.Camera) {
	if !r.initialized {
		return
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.cols), Height: float32(r.rows)}
	rl.DrawTexturePro(r.tex, src, worldRect(cam, r.rows, r.cols), rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *MapRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}

// worldRect is the screen rectangle covering the whole grid.
func worldRect(cam *camera.Camera, rows, cols int) rl.Rectangle {
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(float32(cols), float32(rows))
	return rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// cellCenter converts a grid position to screen coordinates at the cell's center.
func cellCenter(cam *camera.Camera, row, col float64) rl.Vector2 {
	sx, sy := cam.WorldToScreen(float32(col)+0.5, float32(row)+0.5)
	return rl.Vector2{X: sx, Y: sy}
}
