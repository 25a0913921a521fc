package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slamsim/camera"
	"github.com/pthm-cable/slamsim/components"
)

// ParticleRenderer draws the particle cloud, the pose estimate, the true pose
// and the endpoints of the last scan.
type ParticleRenderer struct{}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{}
}

// DrawParticles renders one dot per hypothesis. Heavier particles are more opaque.
func (r *ParticleRenderer) DrawParticles(cam *camera.Camera, cells []components.Cell, weights []float64) {
	maxW := 0.0
	for _, w := range weights {
		maxW = max(maxW, w)
	}
	size := max(cam.Zoom*0.25, 1.5)

	for i, c := range cells {
		if !cam.IsVisible(float32(c.Col), float32(c.Row), 1) {
			continue
		}
		alpha := uint8(140)
		if maxW > 0 && i < len(weights) {
			alpha = uint8(60 + 195*weights[i]/maxW)
		}
		p := cellCenter(cam, float64(c.Row), float64(c.Col))
		rl.DrawCircleV(p, size, rl.Color{R: 80, G: 200, B: 255, A: alpha})
	}
}

// DrawEstimate renders the posterior mean with a ring sized by the cloud spread (cells).
func (r *ParticleRenderer) DrawEstimate(cam *camera.Camera, est components.Point, spread float64) {
	p := cellCenter(cam, est.Row, est.Col)
	rl.DrawCircleLines(int32(p.X), int32(p.Y), float32(spread)*cam.Zoom, rl.Yellow)
	rl.DrawCircleV(p, max(cam.Zoom*0.6, 3), rl.Yellow)
}

// DrawTruth renders the robot's true pose.
func (r *ParticleRenderer) DrawTruth(cam *camera.Camera, truth components.Cell) {
	p := cellCenter(cam, float64(truth.Row), float64(truth.Col))
	rl.DrawCircleV(p, max(cam.Zoom*0.6, 3), rl.Red)
}

// DrawBeams renders scan endpoints relative to origin. Offsets are physical
// units and scale is the physical size of one cell.
func (r *ParticleRenderer) DrawBeams(cam *camera.Camera, origin components.Cell, offsets []components.Offset, scale float64) {
	if scale <= 0 {
		return
	}
	from := cellCenter(cam, float64(origin.Row), float64(origin.Col))
	for _, o := range offsets {
		to := cellCenter(cam, float64(origin.Row)+o.DY/scale, float64(origin.Col)+o.DX/scale)
		rl.DrawLineV(from, to, rl.Color{R: 255, G: 90, B: 90, A: 90})
		rl.DrawCircleV(to, max(cam.Zoom*0.3, 2), rl.Color{R: 255, G: 90, B: 90, A: 220})
	}
}
