package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slamsim/ui"
)

// defaultOverlays are enabled when the window opens.
var defaultOverlays = []ui.OverlayID{
	ui.OverlayTrueMap,
	ui.OverlayOccupancy,
	ui.OverlayParticles,
	ui.OverlayEstimate,
	ui.OverlayTruth,
	ui.OverlayBeams,
}

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.overlays.Toggle(desc.ID)
		}
	}
}

// drawActiveOverlays renders all currently enabled overlays in registry order,
// so map layers sit under the filter state.
func (g *Game) drawActiveOverlays() {
	rows, cols := g.world.Dims()
	scale := g.world.Scale()

	for _, id := range g.overlays.EnabledOverlays() {
		switch id {
		case ui.OverlayTrueMap:
			g.mapRenderer.Draw(g.camera)
		case ui.OverlayOccupancy:
			g.occupancyRenderer.Draw(g.camera)
		case ui.OverlayGrid:
			g.backgroundRenderer.DrawGrid(g.camera, rows, cols)
		case ui.OverlayParticles:
			g.particleRenderer.DrawParticles(g.camera, g.filter.Locations(), g.filter.Weights())
		case ui.OverlayEstimate:
			g.particleRenderer.DrawEstimate(g.camera, g.filter.SupposedLocation(), g.filter.StdDev())
		case ui.OverlayTruth:
			g.particleRenderer.DrawTruth(g.camera, g.odometry.ActualPosition())
		case ui.OverlayBeams:
			if g.hasLast {
				offsets := g.sensor.ConvertToRelativeCartesian(g.last.Scan)
				g.particleRenderer.DrawBeams(g.camera, g.last.Truth, offsets, scale)
			}
		}
	}
}
