package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slamsim/camera"
)

// OccupancyRenderer draws the learned occupancy grid as a translucent overlay.
// Probability maps to alpha so unexplored cells at the prior stay faint.
type OccupancyRenderer struct {
	tex         rl.Texture2D
	rows, cols  int
	pixels      []color.RGBA
	initialized bool
}

// NewOccupancyRenderer creates an occupancy renderer.
func NewOccupancyRenderer() *OccupancyRenderer {
	return &OccupancyRenderer{}
}

// Init initializes the texture (must be called after raylib window is created).
func (r *OccupancyRenderer) Init(rows, cols int) {
	if r.initialized {
		return
	}
	r.rows, r.cols = rows, cols
	r.pixels = make([]color.RGBA, rows*cols)

	img := rl.GenImageColor(cols, rows, rl.Blank)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterPoint)
	rl.UnloadImage(img)

	r.initialized = true
}

// Update uploads a row-major probability snapshot to the GPU texture.
func (r *OccupancyRenderer) Update(snapshot []float64) {
	if !r.initialized || len(snapshot) != r.rows*r.cols {
		return
	}
	occupancyPixels(snapshot, r.pixels)
	rl.UpdateTexture(r.tex, r.pixels)
}

// occupancyPixels converts probabilities in [0,1] to magenta texels with matching alpha.
func occupancyPixels(snapshot []float64, out []color.RGBA) {
	for i, p := range snapshot {
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		out[i] = color.RGBA{R: 230, G: 60, B: 200, A: uint8(p * 220)}
	}
}

// Draw renders the overlay.
func (r *OccupancyRenderer) Draw(cam *camera.Camera) {
	if !r.initialized {
		return
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.cols), Height: float32(r.rows)}
	rl.DrawTexturePro(r.tex, src, worldRect(cam, r.rows, r.cols), rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *OccupancyRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
